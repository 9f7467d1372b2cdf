package pdu

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
)

func TestEncodeSubmit_SinglePart(t *testing.T) {
	tt := []struct {
		desc     string
		submit   Submit
		expected string
		length   int
	}{
		{
			desc: "gsm 7 bit",
			submit: Submit{
				Destination: gsm.ParseAddress("+4917612345678"),
				Text:        "Hello world",
			},
			expected: "0001000D91947116325476F800000BC8329BFD06DDDF723619",
			length:   24,
		},
		{
			desc: "flash ucs2 with smsc, validity and status report",
			submit: Submit{
				SMSC:         gsm.ParseAddress("+491710760000"),
				Destination:  gsm.ParseAddress("+4917612345678"),
				Text:         "Hi",
				Reference:    7,
				Validity:     ValidityPeriod(24 * time.Hour),
				StatusReport: true,
				Flash:        true,
				UCS2:         true,
			},
			expected: "079194710167000031070D91947116325476F80018A70400480069",
			length:   19,
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := EncodeSubmit(tc.submit)
			require.NoError(t, err)
			require.Len(t, actual, 1)

			assert.Equal(t, tc.expected, actual[0].Hex())
			assert.Equal(t, tc.length, actual[0].TPDULength)
		})
	}
}

func TestEncodeSubmit_Roundtrip(t *testing.T) {
	submit := Submit{
		SMSC:         gsm.ParseAddress("+491710760000"),
		Destination:  gsm.ParseAddress("+4917612345678"),
		Text:         "Grüße {aus} Köln, 10€",
		Reference:    0x42,
		Validity:     ValidityPeriod(48 * time.Hour),
		StatusReport: true,
		Flash:        true,
	}

	parts, err := EncodeSubmit(submit)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	actual, err := Decode(parts[0].PDU, parts[0].TPDULength)
	require.NoError(t, err)

	assert.Equal(t, SubmitMessage, actual.Type)
	assert.Equal(t, "+491710760000", actual.SMSC.String())
	assert.Equal(t, "+4917612345678", actual.Address.String())
	assert.Equal(t, byte(0x42), actual.Reference)
	assert.Equal(t, charset.Alphabet7Bit, actual.Alphabet)
	assert.Equal(t, submit.Text, actual.Text)
	assert.True(t, actual.StatusReport)
	assert.Equal(t, RelativeValidityPeriod, actual.Validity.Format)
	assert.Equal(t, submit.Validity, actual.Validity.Relative)
	class, ok := actual.Class()
	assert.True(t, ok)
	assert.Equal(t, Class0, class)
}

func TestEncodeSubmit_Concatenated(t *testing.T) {
	tt := []struct {
		desc      string
		text      string
		alphabet  charset.Alphabet
		partCount int
		firstPart string
	}{
		{
			desc:      "gsm 7 bit",
			text:      strings.Repeat("0123456789", 40),
			alphabet:  charset.Alphabet7Bit,
			partCount: 3,
			firstPart: strings.Repeat("0123456789", 15) + "012",
		},
		{
			desc:      "escape sequence at the boundary",
			text:      strings.Repeat("a", 152) + "€" + strings.Repeat("b", 100),
			alphabet:  charset.Alphabet7Bit,
			partCount: 2,
			firstPart: strings.Repeat("a", 152),
		},
		{
			desc:      "ucs2",
			text:      strings.Repeat("验证码", 50),
			alphabet:  charset.AlphabetUCS2,
			partCount: 3,
			firstPart: strings.Repeat("验证码", 22) + "验",
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			parts, err := EncodeSubmit(Submit{
				Destination:            gsm.ParseAddress("0171123456"),
				Text:                   tc.text,
				ConcatenationReference: 0x17,
			})
			require.NoError(t, err)
			require.Len(t, parts, tc.partCount)

			var texts []string
			for i, part := range parts {
				assert.LessOrEqual(t, part.TPDULength, 140+13)
				message, err := Decode(part.PDU, part.TPDULength)
				require.NoError(t, err)
				assert.Equal(t, tc.alphabet, message.Alphabet)
				assert.Equal(t, "0171123456", message.Address.String())
				assert.Equal(t, byte(i), message.Reference)

				concatenation, ok := message.Concatenation()
				require.True(t, ok)
				assert.Equal(t, Concatenation{Reference: 0x17, Total: byte(tc.partCount), Sequence: byte(i + 1)}, concatenation)
				texts = append(texts, message.Text)
			}
			assert.Equal(t, tc.firstPart, texts[0])
			assert.Equal(t, tc.text, strings.Join(texts, ""))
		})
	}
}

func TestEncodeSubmit_Errors(t *testing.T) {
	_, err := EncodeSubmit(Submit{Destination: gsm.ParseAddress("+49171"), Text: "emoji 😀"})
	assert.ErrorIs(t, err, gsm.ErrOutsideBMP)

	_, err = EncodeSubmit(Submit{Text: "no destination"})
	assert.Error(t, err)

	_, err = EncodeSubmit(Submit{Destination: gsm.ParseAddress("+49 171"), Text: "invalid digit"})
	assert.Error(t, err)

	_, err = EncodeSubmit(Submit{Destination: gsm.ParseAddress("+49171"), Text: strings.Repeat("x", 153*255+1)})
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestPart_Command(t *testing.T) {
	part := Part{PDU: []byte{0x00, 0x01}, TPDULength: 1}

	assert.Equal(t, "AT+CMGS=1", part.Command())
	assert.Equal(t, "0001", part.Hex())
}
