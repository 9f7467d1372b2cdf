package charset

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ftl/gsm-pei/gsm"
)

const replacementChar = 0xFFFD

// UTF8ToUCS2 converts the UTF-8 text in src into 16-bit code units in dst and returns the number
// of code units written. Code points above U+FFFF are rejected; UCS-2 has no representation for them.
//
// Errors: ErrInvalidUTF8, ErrOutsideBMP, ErrBufferTooSmall.
func UTF8ToUCS2(dst []uint16, src []byte) (int, error) {
	required := 0
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			return 0, fmt.Errorf("%w at byte %d", gsm.ErrInvalidUTF8, i)
		}
		if r > 0xFFFF {
			return 0, fmt.Errorf("%w: U+%X at byte %d", gsm.ErrOutsideBMP, r, i)
		}
		required++
		i += size
	}
	if err := gsm.CheckCapacity(required, len(dst)); err != nil {
		return 0, err
	}

	n := 0
	for i := 0; i < len(src); n++ {
		r, size := utf8.DecodeRune(src[i:])
		dst[n] = uint16(r)
		i += size
	}
	return n, nil
}

// UCS2ToUTF8 converts the 16-bit code units in src into UTF-8 in dst and returns the number of
// bytes written. Valid surrogate pairs are combined, lone surrogates become U+FFFD.
//
// Errors: ErrBufferTooSmall.
func UCS2ToUTF8(dst []byte, src []uint16) (int, error) {
	required := 0
	forEachRune(src, func(r rune) {
		required += utf8.RuneLen(r)
	})
	if err := gsm.CheckCapacity(required, len(dst)); err != nil {
		return 0, err
	}

	n := 0
	forEachRune(src, func(r rune) {
		n += utf8.EncodeRune(dst[n:], r)
	})
	return n, nil
}

func forEachRune(src []uint16, f func(rune)) {
	for i := 0; i < len(src); i++ {
		r := rune(src[i])
		if utf16.IsSurrogate(r) {
			if i+1 < len(src) {
				if combined := utf16.DecodeRune(r, rune(src[i+1])); combined != utf8.RuneError {
					f(combined)
					i++
					continue
				}
			}
			r = replacementChar
		}
		f(r)
	}
}

// UCS2FromBytes reads big-endian 16-bit code units from b into dst and returns the number of code units.
//
// Errors: ErrTruncatedPdu (odd length), ErrBufferTooSmall.
func UCS2FromBytes(dst []uint16, b []byte) (int, error) {
	if len(b)%2 != 0 {
		return 0, fmt.Errorf("%w: UCS-2 data with odd length %d", gsm.ErrTruncatedPdu, len(b))
	}
	n := len(b) / 2
	if err := gsm.CheckCapacity(n, len(dst)); err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		dst[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return n, nil
}

// UCS2ToBytes writes the code units in src as big-endian octets into dst and returns the number of bytes written.
//
// Errors: ErrBufferTooSmall.
func UCS2ToBytes(dst []byte, src []uint16) (int, error) {
	n := 2 * len(src)
	if err := gsm.CheckCapacity(n, len(dst)); err != nil {
		return 0, err
	}
	for i, u := range src {
		dst[2*i] = byte(u >> 8)
		dst[2*i+1] = byte(u)
	}
	return n, nil
}
