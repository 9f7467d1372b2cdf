package gsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	tt := []struct {
		desc     string
		value    Address
		expected string
	}{
		{desc: "international", value: Address{Type: InternationalAddress, Number: "79139131234"}, expected: "+79139131234"},
		{desc: "international with plus", value: Address{Type: InternationalAddress, Number: "+79139131234"}, expected: "+79139131234"},
		{desc: "national", value: Address{Type: NationalAddress, Number: "10699000"}, expected: "10699000"},
		{desc: "unknown", value: Address{Type: UnknownAddress, Number: "112"}, expected: "112"},
		{desc: "empty international", value: Address{Type: InternationalAddress}, expected: ""},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.value.String())
		})
	}
}

func TestParseAddress(t *testing.T) {
	assert.Equal(t, Address{Type: InternationalAddress, Number: "4915112345678"}, ParseAddress(" +4915112345678"))
	assert.Equal(t, Address{Type: UnknownAddress, Number: "015112345678"}, ParseAddress("015112345678"))
}

func TestTypeOfAddress(t *testing.T) {
	assert.True(t, InternationalAddress.International())
	assert.Equal(t, NationalNumber, NationalAddress.TypeOfNumber())
	assert.True(t, AlphanumericAddress.Alphanumeric())
	assert.Equal(t, byte(1), InternationalAddress.NumberingPlan())
}

func TestSemiOctets(t *testing.T) {
	tt := []struct {
		desc    string
		bytes   []byte
		digits  int
		number  string
		invalid bool
	}{
		{desc: "even", bytes: []byte{0x01, 0x96, 0x09, 0x00}, digits: 8, number: "10699000"},
		{desc: "odd with filler", bytes: []byte{0x01, 0x56, 0x89, 0x37, 0xF1}, digits: 9, number: "106598731"},
		{desc: "special digits", bytes: []byte{0xBA, 0xDC, 0xFE}, digits: 5, number: "*#abc"},
		{desc: "truncated", bytes: []byte{0x01}, digits: 4, invalid: true},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := DecodeSemiOctets(tc.bytes, tc.digits)
			if tc.invalid {
				assert.ErrorIs(t, err, ErrTruncatedPdu)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.number, actual)

			encoded, err := EncodeSemiOctets(tc.number)
			require.NoError(t, err)
			assert.Equal(t, tc.bytes, encoded)
		})
	}
}

func TestEncodeSemiOctets_InvalidDigit(t *testing.T) {
	_, err := EncodeSemiOctets("12x4")
	assert.Error(t, err)
}
