package gsm

import (
	"fmt"
	"strings"
)

// TypeOfAddress is the type-of-address octet according to 3GPP TS 23.040 9.1.2.5.
// Bit 7 is always set, bits 6-4 hold the type of number, bits 3-0 the numbering plan.
type TypeOfAddress byte

// TypeOfNumber according to 3GPP TS 23.040 9.1.2.5
type TypeOfNumber byte

// All defined TypeOfNumber values
const (
	UnknownNumber TypeOfNumber = iota
	InternationalNumber
	NationalNumber
	NetworkSpecificNumber
	SubscriberNumber
	AlphanumericNumber
	AbbreviatedNumber
)

// Commonly used type-of-address values.
const (
	UnknownAddress       TypeOfAddress = 0x81
	InternationalAddress TypeOfAddress = 0x91
	NationalAddress      TypeOfAddress = 0xA1
	AlphanumericAddress  TypeOfAddress = 0xD0
)

// TypeOfNumber returns bits 6-4 of the type-of-address.
func (t TypeOfAddress) TypeOfNumber() TypeOfNumber {
	return TypeOfNumber((t >> 4) & 0x07)
}

// NumberingPlan returns bits 3-0 of the type-of-address.
func (t TypeOfAddress) NumberingPlan() byte {
	return byte(t) & 0x0F
}

// International indicates an international number, which is rendered with a leading +.
func (t TypeOfAddress) International() bool {
	return t.TypeOfNumber() == InternationalNumber
}

// Alphanumeric indicates an address that contains GSM 7-bit packed text instead of digits.
func (t TypeOfAddress) Alphanumeric() bool {
	return t.TypeOfNumber() == AlphanumericNumber
}

// Address is a phone number (or USSD/alphanumeric address) together with its type-of-address.
type Address struct {
	Type   TypeOfAddress
	Number string
	// Alpha contains the decoded text of an alphanumeric address, empty otherwise.
	Alpha string
}

// ParseAddress creates an address from a dialing string. A leading + selects the international type.
func ParseAddress(s string) Address {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") {
		return Address{Type: InternationalAddress, Number: s[1:]}
	}
	return Address{Type: UnknownAddress, Number: s}
}

// String renders international numbers with a leading +, all other types with their raw digits.
func (a Address) String() string {
	if a.Type.International() && a.Number != "" && !strings.HasPrefix(a.Number, "+") {
		return "+" + a.Number
	}
	return a.Number
}

// Empty indicates that this address carries no digits.
func (a Address) Empty() bool {
	return a.Number == "" && a.Alpha == ""
}

const semiOctetDigits = "0123456789*#abc"

// DecodeSemiOctets decodes the given count of nibble-swapped digits from b. A 0xF nibble
// is a filler and ends the number.
func DecodeSemiOctets(b []byte, digits int) (string, error) {
	if (digits+1)/2 > len(b) {
		return "", fmt.Errorf("%w: %d digits need %d bytes, got %d", ErrTruncatedPdu, digits, (digits+1)/2, len(b))
	}
	var result strings.Builder
	result.Grow(digits)
	for i := 0; i < digits; i++ {
		nibble := b[i/2]
		if i%2 == 0 {
			nibble &= 0x0F
		} else {
			nibble >>= 4
		}
		if nibble == 0x0F {
			break
		}
		result.WriteByte(semiOctetDigits[nibble])
	}
	return result.String(), nil
}

// EncodeSemiOctets encodes the digits of number as nibble-swapped semi-octets, padding an odd count with 0xF.
func EncodeSemiOctets(number string) ([]byte, error) {
	result := make([]byte, (len(number)+1)/2)
	for i := 0; i < len(number); i++ {
		nibble := strings.IndexByte(semiOctetDigits, toLowerASCII(number[i]))
		if nibble < 0 {
			return nil, fmt.Errorf("invalid digit %q in number %s", number[i], number)
		}
		if i%2 == 0 {
			result[i/2] = 0xF0 | byte(nibble)
		} else {
			result[i/2] = (result[i/2] & 0x0F) | byte(nibble)<<4
		}
	}
	return result, nil
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
