package encoder

import "errors"

var (
	// ErrPayloadTooLarge is returned when no version up to 40 can hold the
	// payload at the requested level.
	ErrPayloadTooLarge = errors.New("qr: payload too large")
	// ErrUnsupportedCharacter is returned when the payload cannot be
	// represented, i.e. it is not valid UTF-8.
	ErrUnsupportedCharacter = errors.New("qr: unsupported character in payload")
	// ErrInvalidLevel is returned for an unknown error-correction level.
	ErrInvalidLevel = errors.New("qr: invalid error correction level")
)
