package charset

import (
	"fmt"

	"github.com/ftl/gsm-pei/gsm"
)

// Escape is the septet that switches to the extension table for the following septet.
const Escape byte = 0x1B

// defaultAlphabet maps each septet of the GSM 7-bit default alphabet to its UCS-2 code unit
// according to 3GPP TS 23.038 6.2.1.
var defaultAlphabet = [128]uint16{
	'@', 0x00A3, '$', 0x00A5, 0x00E8, 0x00E9, 0x00F9, 0x00EC,
	0x00F2, 0x00C7, '\n', 0x00D8, 0x00F8, '\r', 0x00C5, 0x00E5,
	0x0394, '_', 0x03A6, 0x0393, 0x039B, 0x03A9, 0x03A0, 0x03A8,
	0x03A3, 0x0398, 0x039E, 0x00A0, 0x00C6, 0x00E6, 0x00DF, 0x00C9,
	' ', '!', '"', '#', 0x00A4, '%', '&', '\'',
	'(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7',
	'8', '9', ':', ';', '<', '=', '>', '?',
	0x00A1, 'A', 'B', 'C', 'D', 'E', 'F', 'G',
	'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W',
	'X', 'Y', 'Z', 0x00C4, 0x00D6, 0x00D1, 0x00DC, 0x00A7,
	0x00BF, 'a', 'b', 'c', 'd', 'e', 'f', 'g',
	'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w',
	'x', 'y', 'z', 0x00E4, 0x00F6, 0x00F1, 0x00FC, 0x00E0,
}

// extensionTable maps the septet following an Escape to its UCS-2 code unit according to
// 3GPP TS 23.038 6.2.1.1.
var extensionTable = map[byte]uint16{
	0x0A: 0x000C, // form feed
	0x14: '^',
	0x28: '{',
	0x29: '}',
	0x2F: '\\',
	0x3C: '[',
	0x3D: '~',
	0x3E: ']',
	0x40: '|',
	0x65: 0x20AC, // euro sign
}

var (
	defaultReverse   = make(map[uint16]byte, len(defaultAlphabet))
	extensionReverse = make(map[uint16]byte, len(extensionTable))
)

func init() {
	for septet, u := range defaultAlphabet {
		if byte(septet) == Escape {
			continue
		}
		defaultReverse[u] = byte(septet)
	}
	for septet, u := range extensionTable {
		extensionReverse[u] = septet
	}
}

// lookupGSM7 returns the septets for the given code unit: one for the default alphabet,
// two (Escape + code) for the extension table.
func lookupGSM7(u uint16) (byte, byte, int) {
	if septet, ok := defaultReverse[u]; ok {
		return septet, 0, 1
	}
	if septet, ok := extensionReverse[u]; ok {
		return Escape, septet, 2
	}
	return 0, 0, 0
}

// decodeSeptet resolves a septet, escaped if the previous septet was an Escape. Unknown
// extension codes fall back to the default alphabet as required by TS 23.038.
func decodeSeptet(septet byte, escaped bool) uint16 {
	septet &= 0x7F
	if escaped {
		if u, ok := extensionTable[septet]; ok {
			return u
		}
	}
	return defaultAlphabet[septet]
}

// GSM7Length returns the number of septets needed to encode src and whether all code units
// are representable in the GSM 7-bit default alphabet or its extension table.
func GSM7Length(src []uint16) (int, bool) {
	result := 0
	for _, u := range src {
		_, _, n := lookupGSM7(u)
		if n == 0 {
			return result, false
		}
		result += n
	}
	return result, true
}

// GSM7Encode maps the UCS-2 code units in src to unpacked septets in dst and returns the number
// of septets written. Characters from the extension table take two septets (Escape + code).
// Characters that are not representable are never substituted.
//
// Errors: ErrUnmappableCharacter, ErrBufferTooSmall.
func GSM7Encode(dst []byte, src []uint16) (int, error) {
	required := 0
	for i, u := range src {
		_, _, n := lookupGSM7(u)
		if n == 0 {
			return 0, fmt.Errorf("%w: U+%04X at %d", gsm.ErrUnmappableCharacter, u, i)
		}
		required += n
	}
	if err := gsm.CheckCapacity(required, len(dst)); err != nil {
		return 0, err
	}

	n := 0
	for _, u := range src {
		first, second, count := lookupGSM7(u)
		dst[n] = first
		n++
		if count == 2 {
			dst[n] = second
			n++
		}
	}
	return n, nil
}

// GSM7Decode maps unpacked septets to UCS-2 code units in dst and returns the number of code units
// written. An Escape at the very end is dropped.
//
// Errors: ErrBufferTooSmall.
func GSM7Decode(dst []uint16, septets []byte) (int, error) {
	required := decodedLength(len(septets), func(i int) byte { return septets[i] })
	if err := gsm.CheckCapacity(required, len(dst)); err != nil {
		return 0, err
	}
	return decodeSeptets(dst, len(septets), func(i int) byte { return septets[i] }), nil
}

func decodedLength(count int, septet func(int) byte) int {
	result := 0
	for i := 0; i < count; i++ {
		if septet(i)&0x7F == Escape {
			i++
			if i == count {
				break
			}
		}
		result++
	}
	return result
}

func decodeSeptets(dst []uint16, count int, septet func(int) byte) int {
	n := 0
	escaped := false
	for i := 0; i < count; i++ {
		s := septet(i) & 0x7F
		if s == Escape && !escaped {
			escaped = true
			continue
		}
		dst[n] = decodeSeptet(s, escaped)
		n++
		escaped = false
	}
	return n
}
