package gsm

import (
	"fmt"
	"regexp"
)

const upperHexDigits = "0123456789ABCDEF"

// HexEncode writes two uppercase hex digits per byte of src into dst and returns the number of
// bytes written. It fails only with ErrBufferTooSmall if dst is shorter than 2*len(src).
func HexEncode(dst, src []byte) (int, error) {
	n := len(src) * 2
	if err := CheckCapacity(n, len(dst)); err != nil {
		return 0, err
	}
	// back to front, so that src may be the prefix of dst
	for i := len(src) - 1; i >= 0; i-- {
		b := src[i]
		dst[2*i+1] = upperHexDigits[b&0x0F]
		dst[2*i] = upperHexDigits[b>>4]
	}
	return n, nil
}

// HexDecode decodes the hex digits in src into dst and returns the number of bytes written.
// Upper and lower case digits are accepted. dst may alias src: the decoding runs from left to
// right and never writes ahead of the current read position.
//
// Errors: ErrMalformedHex, ErrBufferTooSmall.
func HexDecode(dst, src []byte) (int, error) {
	if len(src)%2 != 0 {
		return 0, fmt.Errorf("%w: odd length %d", ErrMalformedHex, len(src))
	}
	n := len(src) / 2
	if err := CheckCapacity(n, len(dst)); err != nil {
		return 0, err
	}
	// validate first, so that a malformed input leaves dst untouched
	for i, c := range src {
		if _, ok := fromHexDigit(c); !ok {
			return 0, fmt.Errorf("%w: invalid digit %q at %d", ErrMalformedHex, c, i)
		}
	}
	for i := 0; i < n; i++ {
		hi, _ := fromHexDigit(src[2*i])
		lo, _ := fromHexDigit(src[2*i+1])
		dst[i] = hi<<4 | lo
	}
	return n, nil
}

func fromHexDigit(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

var hexSanitizer = regexp.MustCompile(`\s+`)

// HexToBinary converts the hex representation used along the AT interface for binary data into a slice of bytes.
// Whitespace is ignored.
func HexToBinary(s string) ([]byte, error) {
	buf := []byte(hexSanitizer.ReplaceAllString(s, ""))
	n, err := HexDecode(buf, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// BinaryToHex converts a slice of bytes into the hex representation used along the AT interface for binary data
func BinaryToHex(b []byte) string {
	result := make([]byte, len(b)*2)
	HexEncode(result, b)
	return string(result)
}
