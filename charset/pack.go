package charset

import (
	"fmt"

	"github.com/ftl/gsm-pei/gsm"
)

// MaxFillBits is the largest number of fill bits needed to align septets after a user data header.
const MaxFillBits = 6

// PackedLength returns the number of octets needed to pack the given number of septets
// behind fillBits leading fill bits.
func PackedLength(septets, fillBits int) int {
	if septets <= 0 {
		return 0
	}
	return (fillBits + 7*septets + 7) / 8
}

// PackedSeptets returns the maximum number of septets contained in the given number of octets
// behind fillBits leading fill bits. If a packed message ends exactly on a septet boundary
// the last septet is ambiguous; SMS resolves this with the user data length, USSD with a CR pad.
func PackedSeptets(octets, fillBits int) int {
	bits := 8*octets - fillBits
	if bits < 0 {
		return 0
	}
	return bits / 7
}

// FillBits returns the number of fill bits that align user data after a user data header of
// udhOctets octets (including the length octet) to the next septet boundary, see 3GPP TS 23.040 9.2.3.24.
func FillBits(udhOctets int) int {
	return (7 - (udhOctets*8)%7) % 7
}

// GSM7Pack packs the septets into dst, least significant bit first, starting after fillBits zero
// bits (0-6), and returns the number of octets written.
//
// Errors: ErrBufferTooSmall.
func GSM7Pack(dst []byte, septets []byte, fillBits int) (int, error) {
	if fillBits < 0 || fillBits > MaxFillBits {
		return 0, fmt.Errorf("invalid fill bit count %d", fillBits)
	}
	required := PackedLength(len(septets), fillBits)
	if err := gsm.CheckCapacity(required, len(dst)); err != nil {
		return 0, err
	}

	for i := 0; i < required; i++ {
		dst[i] = 0
	}
	for i, s := range septets {
		s &= 0x7F
		bit := fillBits + 7*i
		shift := bit % 8
		dst[bit/8] |= s << shift
		if shift > 1 {
			dst[bit/8+1] |= s >> (8 - shift)
		}
	}
	return required, nil
}

// GSM7Unpack extracts count septets from packed, skipping fillBits leading bits, into dst.
//
// Errors: ErrTruncatedPdu, ErrBufferTooSmall.
func GSM7Unpack(dst []byte, packed []byte, count, fillBits int) (int, error) {
	if err := checkPacked(packed, count, fillBits); err != nil {
		return 0, err
	}
	if err := gsm.CheckCapacity(count, len(dst)); err != nil {
		return 0, err
	}
	for i := 0; i < count; i++ {
		dst[i] = unpackSeptet(packed, i, fillBits)
	}
	return count, nil
}

// GSM7UnpackDecode unpacks count septets from packed, skipping fillBits leading bits, and maps
// them to UCS-2 code units in dst, resolving escape sequences. It returns the number of code units written.
//
// Errors: ErrTruncatedPdu, ErrBufferTooSmall.
func GSM7UnpackDecode(dst []uint16, packed []byte, count, fillBits int) (int, error) {
	if err := checkPacked(packed, count, fillBits); err != nil {
		return 0, err
	}
	septet := func(i int) byte { return unpackSeptet(packed, i, fillBits) }
	required := decodedLength(count, septet)
	if err := gsm.CheckCapacity(required, len(dst)); err != nil {
		return 0, err
	}
	return decodeSeptets(dst, count, septet), nil
}

func checkPacked(packed []byte, count, fillBits int) error {
	if fillBits < 0 || fillBits > MaxFillBits {
		return fmt.Errorf("invalid fill bit count %d", fillBits)
	}
	if count < 0 {
		return fmt.Errorf("invalid septet count %d", count)
	}
	if required := PackedLength(count, fillBits); required > len(packed) {
		return fmt.Errorf("%w: %d septets need %d octets, got %d", gsm.ErrTruncatedPdu, count, required, len(packed))
	}
	return nil
}

func unpackSeptet(packed []byte, i, fillBits int) byte {
	bit := fillBits + 7*i
	shift := bit % 8
	result := packed[bit/8] >> shift
	if shift > 1 {
		result |= packed[bit/8+1] << (8 - shift)
	}
	return result & 0x7F
}
