package pdu

import (
	"fmt"

	"github.com/ftl/gsm-pei/gsm"
)

// InformationElementID according to [23.040] 9.2.3.24
type InformationElementID byte

// The information element identifiers that are interpreted by this package.
const (
	ConcatenatedShortMessage8Bit  InformationElementID = 0x00
	ApplicationPort8Bit           InformationElementID = 0x04
	ApplicationPort16Bit          InformationElementID = 0x05
	ConcatenatedShortMessage16Bit InformationElementID = 0x08
)

// InformationElement is one element of the user data header.
type InformationElement struct {
	ID   InformationElementID
	Data []byte
}

// UDH is the TP-User-Data-Header according to [23.040] 9.2.3.24
type UDH struct {
	Elements []InformationElement
}

// ParseUDH parses the user data header at the start of b, beginning with the UDHL octet.
// It returns the header and the number of octets it occupies including the UDHL octet.
func ParseUDH(b []byte) (UDH, int, error) {
	if len(b) < 1 {
		return UDH{}, 0, fmt.Errorf("%w: user data header length missing", gsm.ErrTruncatedPdu)
	}
	length := int(b[0]) + 1
	if length > len(b) {
		return UDH{}, 0, fmt.Errorf("%w: user data header of %d bytes, got %d", gsm.ErrTruncatedPdu, length, len(b))
	}

	var result UDH
	for i := 1; i < length; {
		if i+2 > length {
			return UDH{}, 0, fmt.Errorf("%w: information element header at %d", gsm.ErrTruncatedPdu, i)
		}
		id := InformationElementID(b[i])
		elementLength := int(b[i+1])
		start := i + 2
		end := start + elementLength
		if end > length {
			return UDH{}, 0, fmt.Errorf("%w: information element 0x%02X of %d bytes exceeds the header", gsm.ErrTruncatedPdu, id, elementLength)
		}
		result.Elements = append(result.Elements, InformationElement{
			ID:   id,
			Data: append([]byte(nil), b[start:end]...),
		})
		i = end
	}
	return result, length, nil
}

// NewConcatenationUDH returns a header with a single concatenation element with 8-bit reference.
func NewConcatenationUDH(reference byte, total, sequence byte) UDH {
	return UDH{
		Elements: []InformationElement{
			{ID: ConcatenatedShortMessage8Bit, Data: []byte{reference, total, sequence}},
		},
	}
}

// Length returns the length of this encoded header in bytes, including the UDHL octet.
func (h UDH) Length() int {
	result := 1
	for _, element := range h.Elements {
		result += 2 + len(element.Data)
	}
	return result
}

// Encode appends this header, starting with the UDHL octet.
func (h UDH) Encode(bytes []byte) []byte {
	bytes = append(bytes, byte(h.Length()-1))
	for _, element := range h.Elements {
		bytes = append(bytes, byte(element.ID), byte(len(element.Data)))
		bytes = append(bytes, element.Data...)
	}
	return bytes
}

// Element returns the first element with the given ID.
func (h UDH) Element(id InformationElementID) (InformationElement, bool) {
	for _, element := range h.Elements {
		if element.ID == id {
			return element, true
		}
	}
	return InformationElement{}, false
}

// Concatenation describes one part of a concatenated short message according to [23.040] 9.2.3.24.1 and 9.2.3.24.8
type Concatenation struct {
	Reference uint16
	Total     byte
	Sequence  byte
}

// Concatenation returns the concatenation information of this header, if there is a valid one.
func (h UDH) Concatenation() (Concatenation, bool) {
	for _, element := range h.Elements {
		switch {
		case element.ID == ConcatenatedShortMessage8Bit && len(element.Data) == 3:
			return Concatenation{
				Reference: uint16(element.Data[0]),
				Total:     element.Data[1],
				Sequence:  element.Data[2],
			}, true
		case element.ID == ConcatenatedShortMessage16Bit && len(element.Data) == 4:
			return Concatenation{
				Reference: uint16(element.Data[0])<<8 | uint16(element.Data[1]),
				Total:     element.Data[2],
				Sequence:  element.Data[3],
			}, true
		}
	}
	return Concatenation{}, false
}

// Port describes the application port addressing according to [23.040] 9.2.3.24.3 and 9.2.3.24.4
type Port struct {
	Destination uint16
	Source      uint16
}

// Port returns the application port addressing of this header, if there is one.
func (h UDH) Port() (Port, bool) {
	for _, element := range h.Elements {
		switch {
		case element.ID == ApplicationPort8Bit && len(element.Data) == 2:
			return Port{Destination: uint16(element.Data[0]), Source: uint16(element.Data[1])}, true
		case element.ID == ApplicationPort16Bit && len(element.Data) == 4:
			return Port{
				Destination: uint16(element.Data[0])<<8 | uint16(element.Data[1]),
				Source:      uint16(element.Data[2])<<8 | uint16(element.Data[3]),
			}, true
		}
	}
	return Port{}, false
}
