package gsm

import (
	"errors"
	"fmt"
)

// The error kinds reported by the codec packages. Callers match them with errors.Is,
// the packages add context with fmt.Errorf and %w.
var (
	// ErrMalformedHex indicates a hex string with odd length or a non-hex digit.
	ErrMalformedHex = errors.New("malformed hex")

	// ErrTruncatedPdu indicates that a declared length exceeds the remaining PDU bytes.
	ErrTruncatedPdu = errors.New("truncated PDU")

	// ErrUnsupportedEncoding indicates a data coding scheme that cannot be decoded.
	// No partially decoded text is returned together with this error.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")

	// ErrUnmappableCharacter indicates a character that has no GSM 7-bit representation.
	ErrUnmappableCharacter = errors.New("unmappable character")

	// ErrTooFewFields indicates an AT response with less fields than required.
	ErrTooFewFields = errors.New("too few fields")

	// ErrBufferTooSmall indicates that the result does not fit into the destination.
	// The concrete error is a *BufferTooSmallError that carries the required size.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrMalformedResponse indicates an AT response from which a required field cannot be extracted.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrOutsideBMP indicates a code point above U+FFFF, which UCS-2 cannot represent.
	ErrOutsideBMP = errors.New("code point outside the basic multilingual plane")

	// ErrInvalidUTF8 indicates an invalid UTF-8 byte sequence.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
)

// BufferTooSmallError is returned when a destination buffer cannot hold the result.
// Nothing is written to the destination in that case.
type BufferTooSmallError struct {
	Required int
	Capacity int
}

func (e *BufferTooSmallError) Error() string {
	return fmt.Sprintf("%s: %d required, capacity %d", ErrBufferTooSmall, e.Required, e.Capacity)
}

// Is makes errors.Is(err, ErrBufferTooSmall) work.
func (e *BufferTooSmallError) Is(target error) bool {
	return target == ErrBufferTooSmall
}

// CheckCapacity returns a *BufferTooSmallError if capacity is less than required.
func CheckCapacity(required, capacity int) error {
	if required > capacity {
		return &BufferTooSmallError{Required: required, Capacity: capacity}
	}
	return nil
}
