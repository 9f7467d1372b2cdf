package charset

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ftl/gsm-pei/gsm"
)

// UCS2 handles big-endian 16-bit code units, as used by the UCS2 alphabet. It is UTF-16BE
// without byte order mark, so surrogate pairs received from the network are combined.
var UCS2 encoding.Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// GSM7 handles unpacked GSM 7-bit septets, one septet per byte, as delivered by modems in
// text mode with AT+CSCS="GSM". Unmappable characters are reported, never substituted.
var GSM7 encoding.Encoding = gsm7Encoding{}

type gsm7Encoding struct{}

func (gsm7Encoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: new(gsm7Decoder)}
}

func (gsm7Encoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: new(gsm7Encoder)}
}

func (gsm7Encoding) String() string {
	return "GSM 7-bit default alphabet"
}

type gsm7Decoder struct {
	transform.NopResetter
}

func (d *gsm7Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		septet := src[nSrc] & 0x7F
		consumed := 1
		escaped := false
		if septet == Escape {
			if nSrc+1 == len(src) {
				if !atEOF {
					return nDst, nSrc, transform.ErrShortSrc
				}
				nSrc++ // dangling escape
				continue
			}
			septet = src[nSrc+1] & 0x7F
			consumed = 2
			escaped = true
		}

		r := rune(decodeSeptet(septet, escaped))
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += consumed
	}
	return nDst, nSrc, nil
}

type gsm7Encoder struct {
	transform.NopResetter
}

func (e *gsm7Encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 {
			return nDst, nSrc, fmt.Errorf("%w at byte %d", gsm.ErrInvalidUTF8, nSrc)
		}
		if r > 0xFFFF {
			return nDst, nSrc, fmt.Errorf("%w: U+%X", gsm.ErrUnmappableCharacter, r)
		}
		first, second, count := lookupGSM7(uint16(r))
		if count == 0 {
			return nDst, nSrc, fmt.Errorf("%w: U+%04X", gsm.ErrUnmappableCharacter, r)
		}
		if nDst+count > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = first
		if count == 2 {
			dst[nDst+1] = second
		}
		nDst += count
		nSrc += size
	}
	return nDst, nSrc, nil
}
