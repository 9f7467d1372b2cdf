package pdu

import (
	"fmt"
	"strings"

	"github.com/ftl/gsm-pei/gsm"
)

// MultipartMessage is a short message assembled from one or more parts.
type MultipartMessage struct {
	Reference uint16
	Sender    gsm.Address
	Timestamp Timestamp
	parts     []part
}

// NewMultipartMessage returns an empty message with the given number of parts.
func NewMultipartMessage(reference uint16, sender gsm.Address, timestamp Timestamp, parts int) MultipartMessage {
	return MultipartMessage{
		Reference: reference,
		Sender:    sender,
		Timestamp: timestamp,
		parts:     make([]part, parts),
	}
}

// Complete indicates that all parts are present.
func (m MultipartMessage) Complete() bool {
	for _, part := range m.parts {
		if !part.Valid {
			return false
		}
	}
	return true
}

// Parts returns the number of parts.
func (m MultipartMessage) Parts() int {
	return len(m.parts)
}

// Text returns the text of all parts in order; missing parts are marked with "...".
func (m MultipartMessage) Text() string {
	var result strings.Builder
	for _, part := range m.parts {
		if part.Valid {
			result.WriteString(part.Text)
		} else if result.Len() > 0 {
			result.WriteString("...")
		}
	}
	return result.String()
}

func (m MultipartMessage) String() string {
	return fmt.Sprintf("Message 0x%x from %s at %s:\n%s",
		m.Reference, displayAddress(m.Sender), m.Timestamp, m.Text())
}

// SetPart sets the text of the part with the given sequence number, starting at 1.
func (m *MultipartMessage) SetPart(sequence int, text string) {
	i := sequence - 1
	if i < 0 || i >= len(m.parts) {
		return
	}

	m.parts[i].Text = text
	m.parts[i].Valid = true
}

type part struct {
	Valid bool
	Text  string
}

// MessageCallback is called for every complete message.
type MessageCallback func(MultipartMessage)

// StatusReportCallback is called for every status report.
type StatusReportCallback func(Message)

type messageKey struct {
	sender    string
	reference uint16
}

// Stack reassembles concatenated short messages. Single part messages are delivered immediately,
// the parts of concatenated messages are collected until the message is complete.
// A Stack is not safe for concurrent use.
type Stack struct {
	messageCallback      MessageCallback
	statusReportCallback StatusReportCallback
	pendingMessages      map[messageKey]MultipartMessage
}

// NewStack returns a new empty stack.
func NewStack() *Stack {
	return &Stack{
		pendingMessages: make(map[messageKey]MultipartMessage),
	}
}

// WithMessageCallback sets the callback for complete messages.
func (s *Stack) WithMessageCallback(callback MessageCallback) *Stack {
	s.messageCallback = callback
	return s
}

// WithStatusReportCallback sets the callback for status reports.
func (s *Stack) WithStatusReportCallback(callback StatusReportCallback) *Stack {
	s.statusReportCallback = callback
	return s
}

// Put a decoded message into the stack.
func (s *Stack) Put(message Message) error {
	switch message.Type {
	case StatusReportMessage:
		if s.statusReportCallback != nil {
			s.statusReportCallback(message)
		}
		return nil
	case DeliverMessage, SubmitMessage:
	default:
		return fmt.Errorf("unexpected message type %s", message.Type)
	}

	concatenation, ok := message.Concatenation()
	if !ok || concatenation.Total <= 1 {
		result := NewMultipartMessage(uint16(message.Reference), message.Address, message.Timestamp, 1)
		result.SetPart(1, message.Text)
		if s.messageCallback != nil {
			s.messageCallback(result)
		}
		return nil
	}

	if concatenation.Sequence == 0 || concatenation.Sequence > concatenation.Total {
		return fmt.Errorf("invalid part %d of %d in message 0x%x", concatenation.Sequence, concatenation.Total, concatenation.Reference)
	}

	key := messageKey{
		sender:    message.Address.String(),
		reference: concatenation.Reference,
	}
	result, ok := s.pendingMessages[key]
	if !ok {
		result = NewMultipartMessage(concatenation.Reference, message.Address, message.Timestamp, int(concatenation.Total))
	} else if result.Parts() != int(concatenation.Total) {
		return fmt.Errorf("part does not match message 0x%x from %s: %d != %d parts", result.Reference, key.sender, result.Parts(), concatenation.Total)
	}
	result.SetPart(int(concatenation.Sequence), message.Text)
	if concatenation.Sequence == 1 {
		result.Timestamp = message.Timestamp
	}

	if result.Complete() {
		delete(s.pendingMessages, key)
		if s.messageCallback != nil {
			s.messageCallback(result)
		}
	} else {
		s.pendingMessages[key] = result
	}

	return nil
}

// Pending returns the messages that still miss some parts.
func (s *Stack) Pending() []MultipartMessage {
	result := make([]MultipartMessage, 0, len(s.pendingMessages))
	for _, message := range s.pendingMessages {
		result = append(result, message)
	}
	return result
}
