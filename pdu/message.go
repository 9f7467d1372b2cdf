package pdu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
)

// ErrUnsupportedMessageType indicates a TP-Message-Type-Indicator that is not supported.
var ErrUnsupportedMessageType = errors.New("unsupported message type")

// MessageType is the TP-Message-Type-Indicator according to [23.040] 9.2.3.1
type MessageType byte

// The supported message types. The values are the TP-MTI bits of the first octet.
const (
	DeliverMessage      MessageType = 0x00
	SubmitMessage       MessageType = 0x01
	StatusReportMessage MessageType = 0x02
)

func (t MessageType) String() string {
	switch t {
	case DeliverMessage:
		return "SMS-DELIVER"
	case SubmitMessage:
		return "SMS-SUBMIT"
	case StatusReportMessage:
		return "SMS-STATUS-REPORT"
	default:
		return fmt.Sprintf("MTI 0x%x", byte(t))
	}
}

// Message is a decoded SMS-DELIVER, SMS-SUBMIT or SMS-STATUS-REPORT. It does not refer to the
// decoded input; all byte slices are owned by the message.
type Message struct {
	// SMSC is the service centre address, empty if the PDU did not contain one.
	SMSC gsm.Address
	Type MessageType

	// Address is the originating address of a SMS-DELIVER, the destination address of a SMS-SUBMIT,
	// or the recipient address of a SMS-STATUS-REPORT.
	Address gsm.Address
	// Reference is the TP-Message-Reference of a SMS-SUBMIT or SMS-STATUS-REPORT.
	Reference byte

	// MoreMessagesToSend is set when the service centre has more messages waiting (SMS-DELIVER, SMS-STATUS-REPORT).
	MoreMessagesToSend bool
	// StatusReport is the TP-SRI of a SMS-DELIVER, the TP-SRR of a SMS-SUBMIT or the TP-SRQ of a SMS-STATUS-REPORT.
	StatusReport     bool
	ReplyPath        bool
	RejectDuplicates bool

	ProtocolID byte
	DCS        DCS
	Alphabet   charset.Alphabet

	// Timestamp is the TP-Service-Centre-Time-Stamp (SMS-DELIVER, SMS-STATUS-REPORT).
	Timestamp Timestamp
	// Discharge is the TP-Discharge-Time of a SMS-STATUS-REPORT.
	Discharge Timestamp
	// Status is the TP-Status of a SMS-STATUS-REPORT.
	Status Status
	// Validity is the TP-Validity-Period of a SMS-SUBMIT.
	Validity Validity

	UDH *UDH
	// Text is the decoded user data as UTF-8, empty for 8-bit data.
	Text string
	// Data is the user data without the header, as it was transmitted.
	Data []byte

	// Truncated is set by a tolerant decoder when the PDU was shorter than declared.
	Truncated bool
}

// Class returns the message class, if the data coding scheme defines one.
func (m Message) Class() (MessageClass, bool) {
	return m.DCS.Class()
}

// Concatenation returns the concatenation information, if this message is part of a concatenated message.
func (m Message) Concatenation() (Concatenation, bool) {
	if m.UDH == nil {
		return Concatenation{}, false
	}
	return m.UDH.Concatenation()
}

// CopyText writes the UTF-8 text into dst and returns the number of bytes written.
//
// Errors: gsm.ErrBufferTooSmall.
func (m Message) CopyText(dst []byte) (int, error) {
	if err := gsm.CheckCapacity(len(m.Text), len(dst)); err != nil {
		return 0, err
	}
	return copy(dst, m.Text), nil
}

func (m Message) String() string {
	var result strings.Builder
	fmt.Fprintf(&result, "%s", m.Type)
	switch m.Type {
	case DeliverMessage:
		fmt.Fprintf(&result, " from %s at %s", displayAddress(m.Address), m.Timestamp)
	case SubmitMessage:
		fmt.Fprintf(&result, " 0x%02x to %s", m.Reference, displayAddress(m.Address))
	case StatusReportMessage:
		fmt.Fprintf(&result, " 0x%02x for %s: %s", m.Reference, displayAddress(m.Address), m.Status)
	}
	if concatenation, ok := m.Concatenation(); ok {
		fmt.Fprintf(&result, " (part %d/%d of 0x%x)", concatenation.Sequence, concatenation.Total, concatenation.Reference)
	}
	if m.Text != "" {
		fmt.Fprintf(&result, ":\n%s", m.Text)
	}
	return result.String()
}

func displayAddress(a gsm.Address) string {
	if a.Alpha != "" {
		return a.Alpha
	}
	return a.String()
}

// Status is the TP-Status of a status report according to [23.040] 9.2.3.15
type Status byte

// Completed indicates that the short message transaction is completed (see [23.040] 9.2.3.15).
func (s Status) Completed() bool {
	return (s & 0xE0) == 0x00
}

// StillTrying indicates a temporary error while the service centre is still trying to transfer the message.
func (s Status) StillTrying() bool {
	return (s & 0xE0) == 0x20
}

// PermanentError indicates a permanent error, the service centre is not making any more transfer attempts.
func (s Status) PermanentError() bool {
	return (s & 0xE0) == 0x40
}

// TemporaryError indicates a temporary error, the service centre is not making any more transfer attempts.
func (s Status) TemporaryError() bool {
	return (s & 0xE0) == 0x60
}

func (s Status) String() string {
	switch {
	case s.Completed():
		return fmt.Sprintf("completed (0x%02x)", byte(s))
	case s.StillTrying():
		return fmt.Sprintf("still trying (0x%02x)", byte(s))
	case s.PermanentError():
		return fmt.Sprintf("permanent error (0x%02x)", byte(s))
	case s.TemporaryError():
		return fmt.Sprintf("temporary error (0x%02x)", byte(s))
	default:
		return fmt.Sprintf("reserved (0x%02x)", byte(s))
	}
}

// The Status values according to [23.040] 9.2.3.15
const (
	// Short message transaction completed

	StatusDelivered            Status = 0x00
	StatusForwardedUnconfirmed Status = 0x01
	StatusReplacedByServiceCtr Status = 0x02

	// Temporary error, service centre still trying to transfer the short message

	StatusCongestion                  Status = 0x20
	StatusRecipientBusy               Status = 0x21
	StatusNoResponseFromRecipient     Status = 0x22
	StatusServiceRejected             Status = 0x23
	StatusQualityOfServiceUnavailable Status = 0x24
	StatusErrorInRecipient            Status = 0x25

	// Permanent error, service centre is not making any more transfer attempts

	StatusRemoteProcedureError         Status = 0x40
	StatusIncompatibleDestination      Status = 0x41
	StatusConnectionRejected           Status = 0x42
	StatusNotObtainable                Status = 0x43
	StatusQualityOfServiceNotAvailable Status = 0x44
	StatusNoInterworkingAvailable      Status = 0x45
	StatusValidityPeriodExpired        Status = 0x46
	StatusDeletedByOriginator          Status = 0x47
	StatusDeletedByServiceCtr          Status = 0x48
	StatusMessageDoesNotExist          Status = 0x49

	// Temporary error, service centre is not making any more transfer attempts

	StatusCongestionGaveUp                  Status = 0x60
	StatusRecipientBusyGaveUp               Status = 0x61
	StatusNoResponseFromRecipientGaveUp     Status = 0x62
	StatusServiceRejectedGaveUp             Status = 0x63
	StatusQualityOfServiceUnavailableGaveUp Status = 0x64
	StatusErrorInRecipientGaveUp            Status = 0x65
)
