package main

import (
	"fmt"

	"github.com/ftl/gsm-pei/at"
	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
	"github.com/ftl/gsm-pei/pdu"
)

type concatenationView struct {
	Reference uint16 `json:"reference"`
	Total     byte   `json:"total"`
	Sequence  byte   `json:"sequence"`
}

type messageView struct {
	Type        string             `json:"type"`
	SMSC        string             `json:"smsc,omitempty"`
	Address     string             `json:"address"`
	AddressType string             `json:"address_type"`
	Reference   *byte              `json:"reference,omitempty"`
	Timestamp   string             `json:"timestamp,omitempty"`
	Discharge   string             `json:"discharge,omitempty"`
	Status      string             `json:"status,omitempty"`
	Validity    string             `json:"validity,omitempty"`
	ProtocolID  byte               `json:"protocol_id"`
	DCS         string             `json:"dcs"`
	Alphabet    string             `json:"alphabet"`
	Class       *int               `json:"class,omitempty"`
	Part        *concatenationView `json:"part,omitempty"`
	Port        *pdu.Port          `json:"port,omitempty"`
	Text        string             `json:"text,omitempty"`
	Data        string             `json:"data,omitempty"`
	Truncated   bool               `json:"truncated,omitempty"`
}

func newMessageView(message pdu.Message) messageView {
	result := messageView{
		Type:        message.Type.String(),
		SMSC:        message.SMSC.String(),
		Address:     addressText(message.Address),
		AddressType: fmt.Sprintf("0x%02X", byte(message.Address.Type)),
		ProtocolID:  message.ProtocolID,
		DCS:         fmt.Sprintf("0x%02X", byte(message.DCS)),
		Alphabet:    message.Alphabet.String(),
		Text:        message.Text,
		Truncated:   message.Truncated,
	}
	if message.Alphabet == charset.Alphabet8Bit {
		result.Data = gsm.BinaryToHex(message.Data)
	}

	switch message.Type {
	case pdu.DeliverMessage:
		result.Timestamp = message.Timestamp.String()
	case pdu.SubmitMessage:
		reference := message.Reference
		result.Reference = &reference
		result.Validity = validityText(message.Validity)
	case pdu.StatusReportMessage:
		reference := message.Reference
		result.Reference = &reference
		result.Timestamp = message.Timestamp.String()
		result.Discharge = message.Discharge.String()
		result.Status = message.Status.String()
	}

	if class, ok := message.Class(); ok {
		value := int(class)
		result.Class = &value
	}
	if concatenation, ok := message.Concatenation(); ok {
		result.Part = &concatenationView{
			Reference: concatenation.Reference,
			Total:     concatenation.Total,
			Sequence:  concatenation.Sequence,
		}
	}
	if message.UDH != nil {
		if port, ok := message.UDH.Port(); ok {
			result.Port = &port
		}
	}
	return result
}

func addressText(a gsm.Address) string {
	if a.Alpha != "" {
		return a.Alpha
	}
	return a.String()
}

func validityText(v pdu.Validity) string {
	switch v.Format {
	case pdu.RelativeValidityPeriod:
		return v.Relative.String()
	case pdu.AbsoluteValidityPeriod:
		return v.Absolute.String()
	case pdu.EnhancedValidityPeriod:
		return gsm.BinaryToHex(v.Enhanced)
	default:
		return ""
	}
}

type multipartView struct {
	Reference uint16 `json:"reference"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp,omitempty"`
	Parts     int    `json:"parts"`
	Text      string `json:"text"`
}

func newMultipartView(message pdu.MultipartMessage) multipartView {
	return multipartView{
		Reference: message.Reference,
		Sender:    addressText(message.Sender),
		Timestamp: message.Timestamp.String(),
		Parts:     message.Parts(),
		Text:      message.Text(),
	}
}

type partView struct {
	Command string `json:"command"`
	Length  int    `json:"length"`
	PDU     string `json:"pdu"`
}

func newPartViews(parts []pdu.Part) []partView {
	result := make([]partView, len(parts))
	for i, part := range parts {
		result[i] = partView{
			Command: part.Command(),
			Length:  part.TPDULength,
			PDU:     part.Hex(),
		}
	}
	return result
}

type incomingMessageView struct {
	Tag     string      `json:"tag"`
	Status  string      `json:"status,omitempty"`
	Alpha   string      `json:"alpha,omitempty"`
	Length  int         `json:"length"`
	Message messageView `json:"message"`
}

func newIncomingMessageView(message at.IncomingMessage) incomingMessageView {
	return incomingMessageView{
		Tag:     message.Tag,
		Status:  message.Status.String(),
		Alpha:   message.Alpha,
		Length:  message.Length,
		Message: newMessageView(message.Message),
	}
}

type responseView struct {
	Tag   string      `json:"tag"`
	Value interface{} `json:"value"`
}
