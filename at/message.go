package at

import (
	"fmt"
	"strings"

	"github.com/ftl/gsm-pei/gsm"
	"github.com/ftl/gsm-pei/pdu"
)

// Tags of the responses that are followed by a PDU line.
const (
	CMT  = "+CMT"
	CMGR = "+CMGR"
	CDS  = "+CDS"
)

// MessageStatus is the storage status <stat> of a message in PDU mode according to [27.005] 3.1.
type MessageStatus int

// All defined message storage status values
const (
	ReceivedUnread MessageStatus = iota
	ReceivedRead
	StoredUnsent
	StoredSent
	AllMessages
)

func (s MessageStatus) String() string {
	switch s {
	case ReceivedUnread:
		return "REC UNREAD"
	case ReceivedRead:
		return "REC READ"
	case StoredUnsent:
		return "STO UNSENT"
	case StoredSent:
		return "STO SENT"
	case AllMessages:
		return "ALL"
	case NoValue:
		return ""
	default:
		return fmt.Sprintf("status %d", int(s))
	}
}

// IncomingMessage is a message that was delivered by the modem in PDU mode, either unsolicited (+CMT, +CDS)
// or as response to a read command (+CMGR).
type IncomingMessage struct {
	Tag string
	// Status is the storage status of a +CMGR response, NoValue otherwise.
	Status MessageStatus
	// Alpha is the phonebook entry of the sender, if the modem reports one.
	Alpha   string
	Length  int
	Message pdu.Message
}

// ParseIncomingMessage reads a +CMT, +CMGR or +CDS header according to [27.005] 3.4.1 and 3.4.3
// and decodes the following PDU line:
// +CMT: [<alpha>],<length>
// +CMGR: <stat>,[<alpha>],<length>
// +CDS: <length>
// The last field of the header is the length of the TPDU in octets. The PDU is decoded strictly; many
// modems report PDUs that are shorter than the declared length, use ParseIncomingMessageWith with
// pdu.Decoder{Tolerant: true} to accept them.
//
// Errors: ErrMalformedResponse, ErrTooFewFields and all errors of pdu.Decoder.DecodeHex.
func ParseIncomingMessage(header, pduHex string) (IncomingMessage, error) {
	return ParseIncomingMessageWith(pdu.Decoder{}, header, pduHex)
}

// ParseIncomingMessageWith works like ParseIncomingMessage, using the given decoder for the PDU.
func ParseIncomingMessageWith(decoder pdu.Decoder, header, pduHex string) (IncomingMessage, error) {
	result, err := parseMessageHeader(header)
	if err != nil {
		return IncomingMessage{}, err
	}
	result.Message, err = decoder.DecodeHex(pduHex, result.Length)
	if err != nil {
		return IncomingMessage{}, fmt.Errorf("%s: %w", result.Tag, err)
	}
	return result, nil
}

// ParseIncomingMessageLines works like ParseIncomingMessage on a block that contains the header and the PDU
// in two lines.
func ParseIncomingMessageLines(decoder pdu.Decoder, block string) (IncomingMessage, error) {
	lines := strings.FieldsFunc(block, func(r rune) bool { return r == '\r' || r == '\n' })
	if len(lines) < 2 {
		return IncomingMessage{}, fmt.Errorf("%w: header and PDU expected, got %d lines", gsm.ErrTooFewFields, len(lines))
	}
	return ParseIncomingMessageWith(decoder, lines[0], lines[1])
}

// IsIncomingMessage indicates if the line is a header that is followed by a PDU line.
func IsIncomingMessage(line string) bool {
	switch ResponseTag(line) {
	case CMT, CMGR, CDS:
		return true
	default:
		return false
	}
}

func parseMessageHeader(header string) (IncomingMessage, error) {
	tag, rest, err := splitAnyResponse(header, CMT, CMGR, CDS)
	if err != nil {
		return IncomingMessage{}, err
	}
	fields := Scan(rest)
	if len(fields) == 0 {
		return IncomingMessage{}, fmt.Errorf("%w: no PDU length: %q", gsm.ErrTooFewFields, header)
	}

	result := IncomingMessage{
		Tag:    tag,
		Status: NoValue,
	}
	result.Length, err = fields.Int(len(fields) - 1)
	if err != nil {
		return IncomingMessage{}, err
	}

	switch tag {
	case CMT:
		if len(fields) > 1 {
			result.Alpha = fields.String(0)
		}
	case CMGR:
		status, err := fields.Int(0)
		if len(fields) < 2 || err != nil {
			return IncomingMessage{}, fmt.Errorf("%w: no message status: %q", gsm.ErrMalformedResponse, header)
		}
		result.Status = MessageStatus(status)
		if len(fields) > 2 {
			result.Alpha = fields.String(1)
		}
	}

	return result, nil
}

// WithMessages registers the headers +CMT, +CMGR and +CDS together with their PDU line. The handler receives
// each message decoded with the given decoder, or the reason why it could not be decoded.
func (i *Indications) WithMessages(decoder pdu.Decoder, handler func(IncomingMessage, error)) *Indications {
	for _, tag := range []string{CMT, CMGR, CDS} {
		i.Add(tag+":", 1, func(lines []string) {
			handler(ParseIncomingMessageWith(decoder, lines[0], lines[1]))
		})
	}
	return i
}
