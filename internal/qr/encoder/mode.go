package encoder

import "github.com/yeqown/reedsolomon/binary"

// Mode is the data encoding mode of a symbol.
type Mode int

const (
	ModeNumeric      Mode = 0x1
	ModeAlphanumeric Mode = 0x2
	ModeByte         Mode = 0x4
)

func (m Mode) String() string {
	switch m {
	case ModeNumeric:
		return "numeric"
	case ModeAlphanumeric:
		return "alphanumeric"
	case ModeByte:
		return "byte"
	}
	return "unknown"
}

// countBits returns the width of the character count field for versions
// 1-9, 10-26 and 27-40.
func (m Mode) countBits(version int) int {
	var widths [3]int
	switch m {
	case ModeNumeric:
		widths = [3]int{10, 12, 14}
	case ModeAlphanumeric:
		widths = [3]int{9, 11, 13}
	default:
		widths = [3]int{8, 16, 16}
	}
	switch {
	case version <= 9:
		return widths[0]
	case version <= 26:
		return widths[1]
	}
	return widths[2]
}

const alphanumericCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// alphanumericValue maps an ASCII byte to its alphanumeric code, or -1.
func alphanumericValue(c byte) int {
	for i := 0; i < len(alphanumericCharset); i++ {
		if alphanumericCharset[i] == c {
			return i
		}
	}
	return -1
}

// chooseMode picks the most compact single mode able to hold payload.
// The empty payload is encoded in byte mode.
func chooseMode(payload string) Mode {
	if payload == "" {
		return ModeByte
	}
	numeric := true
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c >= '0' && c <= '9' {
			continue
		}
		numeric = false
		if alphanumericValue(c) == -1 {
			return ModeByte
		}
	}
	if numeric {
		return ModeNumeric
	}
	return ModeAlphanumeric
}

// appendPayload writes the encoded data bits of payload in mode m.
func appendPayload(bits *binary.Binary, payload string, m Mode) {
	switch m {
	case ModeNumeric:
		for i := 0; i < len(payload); i += 3 {
			end := min(i+3, len(payload))
			group := 0
			for _, c := range []byte(payload[i:end]) {
				group = group*10 + int(c-'0')
			}
			// 3 digits -> 10 bits, 2 -> 7, 1 -> 4
			bits.AppendUint32(uint32(group), []int{0, 4, 7, 10}[end-i])
		}
	case ModeAlphanumeric:
		for i := 0; i < len(payload); i += 2 {
			if i+1 < len(payload) {
				pair := alphanumericValue(payload[i])*45 + alphanumericValue(payload[i+1])
				bits.AppendUint32(uint32(pair), 11)
			} else {
				bits.AppendUint32(uint32(alphanumericValue(payload[i])), 6)
			}
		}
	default:
		for i := 0; i < len(payload); i++ {
			bits.AppendUint32(uint32(payload[i]), 8)
		}
	}
}
