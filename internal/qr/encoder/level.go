package encoder

import (
	"fmt"
	"strings"
)

// Level is a QR error-correction level. Higher levels trade capacity for
// resilience to damage and occlusion.
type Level int

const (
	Low      Level = iota // ~7% recovery
	Medium                // ~15% recovery
	Quartile              // ~25% recovery
	High                  // ~30% recovery
)

// formatBits returns the two-bit level indicator written into format info.
func (l Level) formatBits() int {
	switch l {
	case Low:
		return 0x01
	case Medium:
		return 0x00
	case Quartile:
		return 0x03
	case High:
		return 0x02
	}
	return 0
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool { return l >= Low && l <= High }

func (l Level) String() string {
	switch l {
	case Low:
		return "L"
	case Medium:
		return "M"
	case Quartile:
		return "Q"
	case High:
		return "H"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts the single-letter form (L, M, Q, H) or the full name,
// case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return Low, nil
	case "m", "medium":
		return Medium, nil
	case "q", "quartile":
		return Quartile, nil
	case "h", "high":
		return High, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so levels can be read
// straight from environment variables and flags.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
