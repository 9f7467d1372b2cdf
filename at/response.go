package at

import (
	"fmt"
	"strings"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
	"github.com/ftl/gsm-pei/pdu"
)

// Response tags of the parsers in this package.
const (
	CNUM  = "+CNUM"
	COPS  = "+COPS"
	CREG  = "+CREG"
	CGREG = "+CGREG"
	CEREG = "+CEREG"
	CMTI  = "+CMTI"
	CDSI  = "+CDSI"
	CUSD  = "+CUSD"
	CLCC  = "+CLCC"
)

// ParseSubscriberNumber reads the own number from a +CNUM response according to [27.007] 7.1:
// +CNUM: [<alpha>],<number>,<type>[,<speed>,<service>[,<itc>]]
// An empty or missing number results in "".
//
// Errors: ErrMalformedResponse.
func ParseSubscriberNumber(line string) (string, error) {
	rest, err := SplitResponse(line, CNUM)
	if err != nil {
		return "", err
	}
	fields := Scan(rest)

	switch {
	case len(fields) >= 3:
		return fields.String(1), nil
	case len(fields) == 2 && looksLikeNumber(fields.String(0)):
		return fields.String(0), nil
	case len(fields) == 2:
		return fields.String(1), nil
	default:
		return "", fmt.Errorf("%w: no number field: %q", gsm.ErrMalformedResponse, line)
	}
}

func looksLikeNumber(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789*#", c) {
			return false
		}
	}
	return true
}

// ParseOperator reads the operator name from a +COPS response according to [27.007] 7.3:
// +COPS: <mode>[,<format>,<oper>[,<AcT>]]
// If the modem is not registered, the response has no operator and the result is "".
//
// Errors: ErrMalformedResponse.
func ParseOperator(line string) (string, error) {
	rest, err := SplitResponse(line, COPS)
	if err != nil {
		return "", err
	}
	fields := Scan(rest)
	return fields.String(2), nil
}

// RegistrationStatus according to [27.007] 7.2
type RegistrationStatus int

// All defined registration status values
const (
	NotRegistered RegistrationStatus = iota
	RegisteredHome
	Searching
	RegistrationDenied
	UnknownRegistration
	RegisteredRoaming
)

func (s RegistrationStatus) String() string {
	switch s {
	case NotRegistered:
		return "not registered"
	case RegisteredHome:
		return "registered, home network"
	case Searching:
		return "searching"
	case RegistrationDenied:
		return "registration denied"
	case UnknownRegistration:
		return "unknown"
	case RegisteredRoaming:
		return "registered, roaming"
	default:
		return fmt.Sprintf("status %d", int(s))
	}
}

// NoValue marks an optional numeric field that is not present in the response.
const NoValue = -1

// Registration is the network registration state reported with +CREG, +CGREG or +CEREG.
type Registration struct {
	// Presentation is the unsolicited result code setting <n>, NoValue if the response does not contain it.
	Presentation int
	Status       RegistrationStatus
	// Registered is true if the modem is registered in its home network or roaming.
	Registered bool
	// LAC is the location area (or tracking area) code as hex digits, not decoded further.
	LAC string
	// CellID is the cell identity as hex digits, not decoded further.
	CellID string
	// AccessTechnology is the <AcT> value, NoValue if the response does not contain it.
	AccessTechnology int
}

// ParseRegistration reads the registration state from a +CREG, +CGREG or +CEREG response according to [27.007] 7.2.
// It handles the read command response +CREG: <n>,<stat>[,<lac>,<ci>[,<AcT>]] as well as the
// unsolicited result code +CREG: <stat>[,<lac>,<ci>[,<AcT>]].
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseRegistration(line string) (Registration, error) {
	_, rest, err := splitAnyResponse(line, CREG, CGREG, CEREG)
	if err != nil {
		return Registration{}, err
	}
	fields := Scan(rest)

	result := Registration{
		Presentation:     NoValue,
		AccessTechnology: NoValue,
	}
	statusIndex := 0
	switch {
	case len(fields) == 0:
		return Registration{}, fmt.Errorf("%w: no registration status: %q", gsm.ErrTooFewFields, line)
	case len(fields) == 2, len(fields) >= 4 && !fields[1].Quoted:
		statusIndex = 1
		result.Presentation, err = fields.Int(0)
		if err != nil {
			return Registration{}, err
		}
	}

	status, err := fields.Int(statusIndex)
	if err != nil {
		return Registration{}, err
	}
	result.Status = RegistrationStatus(status)
	result.Registered = result.Status == RegisteredHome || result.Status == RegisteredRoaming
	result.LAC = fields.String(statusIndex + 1)
	result.CellID = fields.String(statusIndex + 2)
	result.AccessTechnology, err = fields.OptionalInt(statusIndex+3, NoValue)
	if err != nil {
		return Registration{}, err
	}

	return result, nil
}

// NoIndex indicates that a message indication does not carry a valid storage index.
const NoIndex = -1

// MessageIndication tells where a new message was stored.
type MessageIndication struct {
	Storage string
	Index   int
}

// Valid indicates that the indication contains a storage index.
func (i MessageIndication) Valid() bool {
	return i.Index != NoIndex
}

// ParseMessageIndication reads a +CMTI or +CDSI unsolicited result code according to [27.005] 3.4.1:
// +CMTI: <mem>,<index>
// The storage may also be given as bare number. A missing or unparsable index results in NoIndex,
// as the absence of an index is a valid signal.
func ParseMessageIndication(line string) MessageIndication {
	result := MessageIndication{Index: NoIndex}
	_, rest, err := splitAnyResponse(line, CMTI, CDSI)
	if err != nil {
		return result
	}
	fields := Scan(rest)

	switch len(fields) {
	case 0:
	case 1:
		if index, err := fields.Int(0); err == nil && index >= 0 {
			result.Index = index
		} else {
			result.Storage = fields.String(0)
		}
	default:
		result.Storage = fields.String(0)
		if index, err := fields.Int(len(fields) - 1); err == nil && index >= 0 {
			result.Index = index
		}
	}
	return result
}

// USSDType is the result type <m> of a +CUSD response according to [27.007] 7.15.
type USSDType int

// All defined USSD result types
const (
	USSDNoFurtherAction USSDType = iota
	USSDFurtherAction
	USSDTerminated
	USSDOtherClient
	USSDNotSupported
	USSDTimeout
)

func (t USSDType) String() string {
	switch t {
	case USSDNoFurtherAction:
		return "no further action required"
	case USSDFurtherAction:
		return "further action required"
	case USSDTerminated:
		return "terminated by network"
	case USSDOtherClient:
		return "other local client has responded"
	case USSDNotSupported:
		return "operation not supported"
	case USSDTimeout:
		return "network time out"
	default:
		return fmt.Sprintf("type %d", int(t))
	}
}

// NoDCS indicates that a USSD response does not specify a data coding scheme.
const NoDCS = -1

// USSD is a response of the network to an unstructured supplementary service request.
type USSD struct {
	Type USSDType
	// Payload is the <str> field as received, empty if the response has none.
	Payload string
	// DCS is the cell broadcast data coding scheme of the payload, NoDCS if unspecified.
	DCS int
}

// HasDCS indicates if the response specifies a data coding scheme for the payload.
func (u USSD) HasDCS() bool {
	return u.DCS != NoDCS
}

// ParseUSSD reads a +CUSD response according to [27.007] 7.15:
// +CUSD: <m>[,<str>,<dcs>]
// Only the type is required.
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseUSSD(line string) (USSD, error) {
	rest, err := SplitResponse(line, CUSD)
	if err != nil {
		return USSD{}, err
	}
	fields := Scan(rest)

	ussdType, err := fields.Int(0)
	if err != nil {
		return USSD{}, err
	}
	dcs, err := fields.OptionalInt(2, NoDCS)
	if err != nil {
		return USSD{}, err
	}
	return USSD{
		Type:    USSDType(ussdType),
		Payload: fields.String(1),
		DCS:     dcs,
	}, nil
}

// Text decodes the payload according to its data coding scheme. GSM 7 bit payloads are expected
// as packed septets in hex, as sent by modems in the "IRA" or "HEX" character set; if the payload
// is not hex, it is returned as is. Without a DCS the payload is returned as is.
//
// Errors: ErrUnsupportedEncoding, ErrMalformedHex, ErrTruncatedPdu.
func (u USSD) Text() (string, error) {
	if !u.HasDCS() {
		return u.Payload, nil
	}
	alphabet, err := pdu.CBSAlphabet(byte(u.DCS))
	if err != nil {
		return "", err
	}

	switch alphabet {
	case charset.Alphabet7Bit:
		packed, err := gsm.HexToBinary(u.Payload)
		if err != nil {
			return u.Payload, nil
		}
		return charset.DecodePackedUSSD(packed)
	case charset.AlphabetUCS2:
		octets, err := gsm.HexToBinary(u.Payload)
		if err != nil {
			return "", err
		}
		if len(octets)%2 != 0 {
			return "", fmt.Errorf("%w: UCS-2 payload with odd length %d", gsm.ErrTruncatedPdu, len(octets))
		}
		text, err := charset.UCS2.NewDecoder().Bytes(octets)
		if err != nil {
			return "", fmt.Errorf("%w: %v", gsm.ErrUnsupportedEncoding, err)
		}
		return string(text), nil
	default:
		return u.Payload, nil
	}
}

// CallDirection according to [27.007] 7.18
type CallDirection int

// All defined call directions
const (
	MobileOriginated CallDirection = iota
	MobileTerminated
)

// CallState according to [27.007] 7.18
type CallState int

// All defined call states
const (
	CallActive CallState = iota
	CallHeld
	CallDialing
	CallAlerting
	CallIncoming
	CallWaiting
)

func (s CallState) String() string {
	switch s {
	case CallActive:
		return "active"
	case CallHeld:
		return "held"
	case CallDialing:
		return "dialing"
	case CallAlerting:
		return "alerting"
	case CallIncoming:
		return "incoming"
	case CallWaiting:
		return "waiting"
	default:
		return fmt.Sprintf("state %d", int(s))
	}
}

// CallMode according to [27.007] 7.18
type CallMode int

// All defined call modes
const (
	VoiceCall CallMode = iota
	DataCall
	FaxCall
)

// Call is one entry of the current call list.
type Call struct {
	Index         int
	Direction     CallDirection
	State         CallState
	Mode          CallMode
	Multiparty    bool
	Number        string
	TypeOfAddress gsm.TypeOfAddress
	// Alpha is the phonebook entry of the number, if the modem reports one.
	Alpha string
}

// Address returns the number of the other party together with its type.
func (c Call) Address() gsm.Address {
	return gsm.Address{Type: c.TypeOfAddress, Number: strings.TrimPrefix(c.Number, "+")}
}

var callScanner = Scanner{Strict: true, MinFields: 7}

// ParseCall reads one entry of a +CLCC response according to [27.007] 7.18:
// +CLCC: <id>,<dir>,<stat>,<mode>,<mpty>,<number>,<type>[,<alpha>[,<priority>]]
// The entry is parsed strictly, an entry without type-of-address is a partial read and therefore an error.
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseCall(line string) (Call, error) {
	rest, err := SplitResponse(line, CLCC)
	if err != nil {
		return Call{}, err
	}
	fields, err := callScanner.Scan(rest)
	if err != nil {
		return Call{}, err
	}

	var values [5]int
	for i := range values {
		values[i], err = fields.Int(i)
		if err != nil {
			return Call{}, err
		}
	}
	toa, err := fields.Int(6)
	if err != nil {
		return Call{}, err
	}
	if toa < 0 || toa > 0xFF {
		return Call{}, fmt.Errorf("%w: invalid type of address %d", gsm.ErrMalformedResponse, toa)
	}

	return Call{
		Index:         values[0],
		Direction:     CallDirection(values[1]),
		State:         CallState(values[2]),
		Mode:          CallMode(values[3]),
		Multiparty:    values[4] == 1,
		Number:        fields.String(5),
		TypeOfAddress: gsm.TypeOfAddress(toa),
		Alpha:         fields.String(7),
	}, nil
}

// ParseCalls reads all +CLCC entries of a response and ignores all other lines.
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseCalls(lines []string) ([]Call, error) {
	result := make([]Call, 0, len(lines))
	for _, line := range lines {
		if ResponseTag(line) != CLCC {
			continue
		}
		call, err := ParseCall(line)
		if err != nil {
			return nil, err
		}
		result = append(result, call)
	}
	return result, nil
}
