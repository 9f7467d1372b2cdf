package pdu

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
)

// The capacity of a single short message and of one part of a concatenated short message,
// according to [23.040] 9.2.3.24.1
const (
	MaxSeptets               = 160
	MaxConcatenatedSeptets   = 153
	MaxUCS2Units             = 70
	MaxConcatenatedUCS2Units = 67
	MaxParts                 = 255
)

// ErrMessageTooLong indicates a text that needs more than MaxParts parts.
var ErrMessageTooLong = errors.New("message too long")

// Submit describes an outgoing short message.
type Submit struct {
	// SMSC may be empty, then the modem uses the service centre configured on the SIM.
	SMSC        gsm.Address
	Destination gsm.Address
	Text        string

	// Reference is the TP-Message-Reference of the first part, following parts use the next values.
	// Most modems replace it with their own counter.
	Reference byte
	// ConcatenationReference identifies the parts of a concatenated message.
	ConcatenationReference byte

	// Validity is the relative validity period, zero omits it.
	Validity         ValidityPeriod
	StatusReport     bool
	RejectDuplicates bool
	// Flash sends the message as class 0, to be displayed immediately.
	Flash bool
	// UCS2 forces the UCS2 alphabet even if the text could be sent with the GSM 7 bit default alphabet.
	UCS2 bool
}

// Part is one encoded SMS-SUBMIT PDU, ready to be sent with AT+CMGS in PDU mode.
type Part struct {
	PDU []byte
	// TPDULength is the length of the PDU without the SMSC information, as expected by AT+CMGS.
	TPDULength int
}

// Hex returns the PDU as hex string, as it is sent to the modem.
func (p Part) Hex() string {
	return gsm.BinaryToHex(p.PDU)
}

// Command returns the AT+CMGS command that announces this part.
func (p Part) Command() string {
	return fmt.Sprintf("AT+CMGS=%d", p.TPDULength)
}

// EncodeSubmit encodes the given message into one or more SMS-SUBMIT PDUs according to [23.040] 9.2.2.2.
// The text is sent with the GSM 7 bit default alphabet if possible, otherwise with UCS2. Texts that do not fit
// into a single message are split into concatenated parts with a user data header, escape sequences
// and surrogate pairs are never split.
//
// Errors: gsm.ErrOutsideBMP, gsm.ErrInvalidUTF8, ErrMessageTooLong.
func EncodeSubmit(s Submit) ([]Part, error) {
	if s.Destination.Number == "" {
		return nil, fmt.Errorf("destination address missing")
	}
	smsc, err := encodeSMSC(nil, s.SMSC)
	if err != nil {
		return nil, fmt.Errorf("SMSC: %w", err)
	}
	destination, err := encodeAddress(nil, s.Destination)
	if err != nil {
		return nil, fmt.Errorf("destination address: %w", err)
	}

	var chunks []userDataChunk
	alphabet := charset.AlphabetUCS2
	if !s.UCS2 && charset.IsGSM7(s.Text) {
		alphabet = charset.Alphabet7Bit
		septets, err := charset.EncodeGSM7String(s.Text)
		if err != nil {
			return nil, err
		}
		chunks = splitSeptets(septets)
	} else {
		units, err := charset.EncodeUCS2String(s.Text)
		if err != nil {
			return nil, err
		}
		chunks = splitUCS2(units)
	}
	if len(chunks) > MaxParts {
		return nil, fmt.Errorf("%w: %d parts", ErrMessageTooLong, len(chunks))
	}

	class := NoClass
	if s.Flash {
		class = Class0
	}
	dcs := NewDCS(alphabet, class)

	result := make([]Part, 0, len(chunks))
	for i, chunk := range chunks {
		var udh *UDH
		if len(chunks) > 1 {
			header := NewConcatenationUDH(s.ConcatenationReference, byte(len(chunks)), byte(i+1))
			udh = &header
		}

		firstOctet := byte(SubmitMessage)
		if s.RejectDuplicates {
			firstOctet |= 0x04
		}
		if s.Validity > 0 {
			firstOctet |= byte(RelativeValidityPeriod) << 3
		}
		if s.StatusReport {
			firstOctet |= 0x20
		}
		if udh != nil {
			firstOctet |= 0x40
		}

		bytes := append([]byte(nil), smsc...)
		bytes = append(bytes, firstOctet, s.Reference+byte(i))
		bytes = append(bytes, destination...)
		bytes = append(bytes, 0x00, byte(dcs))
		if s.Validity > 0 {
			bytes = append(bytes, s.Validity.Encode())
		}
		bytes, err = chunk.Encode(bytes, udh)
		if err != nil {
			return nil, err
		}

		result = append(result, Part{
			PDU:        bytes,
			TPDULength: len(bytes) - len(smsc),
		})
	}
	return result, nil
}

type userDataChunk struct {
	septets []byte
	units   []uint16
}

// Encode appends the user data length and the user data with the optional header.
func (c userDataChunk) Encode(bytes []byte, udh *UDH) ([]byte, error) {
	headerLength := 0
	var header []byte
	if udh != nil {
		header = udh.Encode(nil)
		headerLength = len(header)
	}

	if c.units != nil {
		userDataLength := headerLength + 2*len(c.units)
		bytes = append(bytes, byte(userDataLength))
		bytes = append(bytes, header...)
		start := len(bytes)
		bytes = append(bytes, make([]byte, 2*len(c.units))...)
		_, err := charset.UCS2ToBytes(bytes[start:], c.units)
		return bytes, err
	}

	fillBits := 0
	headerSeptets := 0
	if headerLength > 0 {
		fillBits = charset.FillBits(headerLength)
		headerSeptets = (headerLength*8 + fillBits) / 7
	}
	bytes = append(bytes, byte(headerSeptets+len(c.septets)))
	bytes = append(bytes, header...)
	start := len(bytes)
	bytes = append(bytes, make([]byte, charset.PackedLength(len(c.septets), fillBits))...)
	_, err := charset.GSM7Pack(bytes[start:], c.septets, fillBits)
	return bytes, err
}

func splitSeptets(septets []byte) []userDataChunk {
	if len(septets) <= MaxSeptets {
		return []userDataChunk{{septets: septets}}
	}
	var result []userDataChunk
	for start := 0; start < len(septets); {
		end := start + MaxConcatenatedSeptets
		if end >= len(septets) {
			end = len(septets)
		} else if septets[end-1] == charset.Escape {
			end--
		}
		result = append(result, userDataChunk{septets: septets[start:end]})
		start = end
	}
	return result
}

func splitUCS2(units []uint16) []userDataChunk {
	if units == nil {
		units = []uint16{}
	}
	if len(units) <= MaxUCS2Units {
		return []userDataChunk{{units: units}}
	}
	var result []userDataChunk
	for start := 0; start < len(units); {
		end := start + MaxConcatenatedUCS2Units
		if end >= len(units) {
			end = len(units)
		} else if r := rune(units[end-1]); utf16.IsSurrogate(r) && r < 0xDC00 {
			end--
		}
		result = append(result, userDataChunk{units: units[start:end]})
		start = end
	}
	return result
}

// encodeSMSC appends the SMSC information according to [27.005] 3.3.1. An empty address is encoded
// as a zero length octet.
func encodeSMSC(bytes []byte, address gsm.Address) ([]byte, error) {
	if address.Number == "" {
		return append(bytes, 0x00), nil
	}
	digits, err := gsm.EncodeSemiOctets(strings.TrimPrefix(address.Number, "+"))
	if err != nil {
		return nil, err
	}
	bytes = append(bytes, byte(len(digits)+1), byte(addressType(address)))
	return append(bytes, digits...), nil
}

// encodeAddress appends an address field according to [23.040] 9.1.2.5.
func encodeAddress(bytes []byte, address gsm.Address) ([]byte, error) {
	if address.Type.Alphanumeric() {
		return nil, fmt.Errorf("alphanumeric addresses cannot be used as destination")
	}
	number := strings.TrimPrefix(address.Number, "+")
	digits, err := gsm.EncodeSemiOctets(number)
	if err != nil {
		return nil, err
	}
	bytes = append(bytes, byte(len(number)), byte(addressType(address)))
	return append(bytes, digits...), nil
}

func addressType(address gsm.Address) gsm.TypeOfAddress {
	switch {
	case strings.HasPrefix(address.Number, "+"):
		return gsm.InternationalAddress
	case address.Type == 0:
		return gsm.UnknownAddress
	default:
		return address.Type
	}
}
