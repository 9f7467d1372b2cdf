/*
The package charset converts between the text encodings used by the SMS wire format:
UTF-8, UCS-2 (16-bit code units) and the GSM 7-bit default alphabet with its extension table,
including the bit-packing of septets. It is based on:
  [23.038] 3GPP TS 23.038 Alphabets and language-specific information
  [23.040] 3GPP TS 23.040 Technical realization of the Short Message Service

All conversions write into caller supplied buffers and never exceed their length; if a result
does not fit, a *gsm.BufferTooSmallError reports the required size and nothing is written.
The allocating helpers in this file size their buffers exactly.

Restrictions:
UCS-2 cannot represent code points above U+FFFF, they are rejected with gsm.ErrOutsideBMP.
National language shift tables are not supported.
*/
package charset

import (
	"golang.org/x/text/encoding"
)

// Alphabet selected by the data coding scheme according to [23.038] 4
type Alphabet byte

// All alphabets defined by [23.038]
const (
	Alphabet7Bit Alphabet = iota
	Alphabet8Bit
	AlphabetUCS2
)

func (a Alphabet) String() string {
	switch a {
	case Alphabet7Bit:
		return "GSM7"
	case Alphabet8Bit:
		return "8bit"
	case AlphabetUCS2:
		return "UCS2"
	default:
		return "reserved"
	}
}

// Codecs contains encoding.Encoding instances for the alphabets in their unpacked form.
// 8-bit data is passed through unchanged.
var Codecs = map[Alphabet]encoding.Encoding{
	Alphabet7Bit: GSM7,
	Alphabet8Bit: encoding.Nop,
	AlphabetUCS2: UCS2,
}

// EncodeUCS2String converts s into UCS-2 code units.
func EncodeUCS2String(s string) ([]uint16, error) {
	result := make([]uint16, len(s))
	n, err := UTF8ToUCS2(result, []byte(s))
	if err != nil {
		return nil, err
	}
	return result[:n], nil
}

// DecodeUCS2String converts UCS-2 code units into a UTF-8 string.
func DecodeUCS2String(u []uint16) string {
	result := make([]byte, 3*len(u))
	n, _ := UCS2ToUTF8(result, u)
	return string(result[:n])
}

// DecodeUCS2Bytes converts big-endian UCS-2 octets into a UTF-8 string.
func DecodeUCS2Bytes(b []byte) (string, error) {
	units := make([]uint16, len(b)/2)
	n, err := UCS2FromBytes(units, b)
	if err != nil {
		return "", err
	}
	return DecodeUCS2String(units[:n]), nil
}

// EncodeUCS2Bytes converts s into big-endian UCS-2 octets.
func EncodeUCS2Bytes(s string) ([]byte, error) {
	units, err := EncodeUCS2String(s)
	if err != nil {
		return nil, err
	}
	result := make([]byte, 2*len(units))
	UCS2ToBytes(result, units)
	return result, nil
}

// IsGSM7 indicates if s can be encoded completely with the GSM 7-bit default alphabet and its extension table.
func IsGSM7(s string) bool {
	units, err := EncodeUCS2String(s)
	if err != nil {
		return false
	}
	_, ok := GSM7Length(units)
	return ok
}

// EncodeGSM7String converts s into unpacked septets.
func EncodeGSM7String(s string) ([]byte, error) {
	units, err := EncodeUCS2String(s)
	if err != nil {
		return nil, err
	}
	result := make([]byte, 2*len(units))
	n, err := GSM7Encode(result, units)
	if err != nil {
		return nil, err
	}
	return result[:n], nil
}

// DecodeGSM7String converts unpacked septets into a UTF-8 string.
func DecodeGSM7String(septets []byte) string {
	units := make([]uint16, len(septets))
	n, _ := GSM7Decode(units, septets)
	return DecodeUCS2String(units[:n])
}

// DecodePackedGSM7 unpacks count septets behind fillBits fill bits and converts them into a UTF-8 string.
func DecodePackedGSM7(packed []byte, count, fillBits int) (string, error) {
	if count < 0 {
		count = 0
	}
	units := make([]uint16, count)
	n, err := GSM7UnpackDecode(units, packed, count, fillBits)
	if err != nil {
		return "", err
	}
	return DecodeUCS2String(units[:n]), nil
}

// EncodePackedGSM7 converts s into packed septets behind fillBits fill bits. It returns the packed octets
// and the number of septets.
func EncodePackedGSM7(s string, fillBits int) ([]byte, int, error) {
	septets, err := EncodeGSM7String(s)
	if err != nil {
		return nil, 0, err
	}
	result := make([]byte, PackedLength(len(septets), fillBits))
	n, err := GSM7Pack(result, septets, fillBits)
	if err != nil {
		return nil, 0, err
	}
	return result[:n], len(septets), nil
}

// DecodePackedUSSD converts a packed USSD string into UTF-8. If the last octet holds seven spare bits,
// they carry a CR pad, which is removed according to [23.038] 6.1.2.3.1. The same applies to the
// additional CR that follows a CR on an octet boundary.
func DecodePackedUSSD(packed []byte) (string, error) {
	count := PackedSeptets(len(packed), 0)
	switch {
	case count > 0 && (8*len(packed))%7 == 0 && unpackSeptet(packed, count-1, 0) == '\r':
		count--
	case count > 8 && count%8 == 1 && unpackSeptet(packed, count-1, 0) == '\r' && unpackSeptet(packed, count-2, 0) == '\r':
		count--
	}
	return DecodePackedGSM7(packed, count, 0)
}

// EncodePackedUSSD converts s into a packed USSD string. Seven spare bits at the end are filled with a CR.
func EncodePackedUSSD(s string) ([]byte, error) {
	septets, err := EncodeGSM7String(s)
	if err != nil {
		return nil, err
	}
	if (7*len(septets))%8 == 1 || (len(septets) > 0 && len(septets)%8 == 0 && septets[len(septets)-1] == '\r') {
		septets = append(septets, '\r')
	}
	result := make([]byte, PackedLength(len(septets), 0))
	_, err = GSM7Pack(result, septets, 0)
	if err != nil {
		return nil, err
	}
	return result, nil
}
