package pdu

import (
	"fmt"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
)

// DCS is the TP-Data-Coding-Scheme according to [23.038] 4
type DCS byte

// Commonly used data coding schemes.
const (
	DCSDefault DCS = 0x00
	DCS8Bit    DCS = 0x04
	DCSUCS2    DCS = 0x08
)

// Alphabet returns the alphabet selected by this data coding scheme. Compressed text,
// the reserved alphabet and the reserved coding groups are reported as gsm.ErrUnsupportedEncoding.
func (d DCS) Alphabet() (charset.Alphabet, error) {
	switch {
	case d&0x80 == 0x00: // general data coding, with and without automatic deletion
		if d&0x20 != 0 {
			return 0, fmt.Errorf("%w: compressed text (DCS 0x%02X)", gsm.ErrUnsupportedEncoding, byte(d))
		}
		alphabet := charset.Alphabet((d >> 2) & 0x03)
		if alphabet > charset.AlphabetUCS2 {
			return 0, fmt.Errorf("%w: reserved alphabet (DCS 0x%02X)", gsm.ErrUnsupportedEncoding, byte(d))
		}
		return alphabet, nil
	case d&0xF0 == 0xC0, d&0xF0 == 0xD0: // message waiting indication, discard or store
		return charset.Alphabet7Bit, nil
	case d&0xF0 == 0xE0: // message waiting indication, store, UCS2
		return charset.AlphabetUCS2, nil
	case d&0xF0 == 0xF0: // data coding and message class
		if d&0x04 != 0 {
			return charset.Alphabet8Bit, nil
		}
		return charset.Alphabet7Bit, nil
	default:
		return 0, fmt.Errorf("%w: reserved coding group (DCS 0x%02X)", gsm.ErrUnsupportedEncoding, byte(d))
	}
}

// Class returns the message class, if this data coding scheme defines one.
func (d DCS) Class() (MessageClass, bool) {
	switch {
	case d&0x80 == 0x00 && d&0x10 != 0:
		return MessageClass(d & 0x03), true
	case d&0xF0 == 0xF0:
		return MessageClass(d & 0x03), true
	default:
		return NoClass, false
	}
}

// Compressed indicates compressed user data.
func (d DCS) Compressed() bool {
	return d&0x80 == 0x00 && d&0x20 != 0
}

// NewDCS returns the general data coding scheme for the given alphabet and optional message class.
func NewDCS(alphabet charset.Alphabet, class MessageClass) DCS {
	result := DCS(alphabet&0x03) << 2
	if class != NoClass {
		result |= 0x10 | DCS(class&0x03)
	}
	return result
}

// MessageClass according to [23.038] 4
type MessageClass int

// All message classes
const (
	NoClass MessageClass = -1
	Class0  MessageClass = 0 // flash message, displayed immediately
	Class1  MessageClass = 1 // mobile equipment specific
	Class2  MessageClass = 2 // SIM specific
	Class3  MessageClass = 3 // terminal equipment specific
)

// CBSAlphabet returns the alphabet selected by a cell broadcast data coding scheme according to [23.038] 5.
// USSD strings use this variant of the data coding scheme.
func CBSAlphabet(dcs byte) (charset.Alphabet, error) {
	switch {
	case dcs&0xF0 == 0x00, dcs&0xF0 == 0x20, dcs&0xF0 == 0x30: // language groups, GSM 7 bit
		return charset.Alphabet7Bit, nil
	case dcs == 0x10:
		return charset.Alphabet7Bit, nil
	case dcs == 0x11:
		return charset.AlphabetUCS2, nil
	case dcs&0xC0 == 0x40, dcs&0xF0 == 0x90: // general data coding, message with UDH
		if dcs&0xC0 == 0x40 && dcs&0x20 != 0 {
			return 0, fmt.Errorf("%w: compressed text (CBS DCS 0x%02X)", gsm.ErrUnsupportedEncoding, dcs)
		}
		alphabet := charset.Alphabet((dcs >> 2) & 0x03)
		if alphabet > charset.AlphabetUCS2 {
			return 0, fmt.Errorf("%w: reserved alphabet (CBS DCS 0x%02X)", gsm.ErrUnsupportedEncoding, dcs)
		}
		return alphabet, nil
	case dcs&0xF0 == 0xF0:
		if dcs&0x04 != 0 {
			return charset.Alphabet8Bit, nil
		}
		return charset.Alphabet7Bit, nil
	default:
		return 0, fmt.Errorf("%w: reserved coding group (CBS DCS 0x%02X)", gsm.ErrUnsupportedEncoding, dcs)
	}
}
