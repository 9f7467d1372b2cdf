package at

import (
	"fmt"
	"strings"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
)

// More response tags.
const (
	CSQ  = "+CSQ"
	RSSI = "^RSSI"
	MODE = "^MODE"
	CPIN = "+CPIN"
	CSCA = "+CSCA"
	CMGS = "+CMGS"
	CCWA = "+CCWA"
)

// UnknownSignal is the RSSI or BER value for "not known or not detectable".
const UnknownSignal = 99

// SignalQuality according to [27.007] 8.5
type SignalQuality struct {
	RSSI int
	BER  int
}

// DBM converts the RSSI value into dBm. It returns false if the signal strength is unknown.
func (q SignalQuality) DBM() (int, bool) {
	return rssiToDBM(q.RSSI)
}

func rssiToDBM(rssi int) (int, bool) {
	if rssi < 0 || rssi > 31 {
		return 0, false
	}
	return -113 + 2*rssi, true
}

// ParseSignalQuality reads a +CSQ response according to [27.007] 8.5:
// +CSQ: <rssi>,<ber>
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseSignalQuality(line string) (SignalQuality, error) {
	rest, err := SplitResponse(line, CSQ)
	if err != nil {
		return SignalQuality{}, err
	}
	fields := Scan(rest)

	rssi, err := fields.Int(0)
	if err != nil {
		return SignalQuality{}, err
	}
	ber, err := fields.OptionalInt(1, UnknownSignal)
	if err != nil {
		return SignalQuality{}, err
	}
	return SignalQuality{RSSI: rssi, BER: ber}, nil
}

// ParseRSSI reads the ^RSSI unsolicited result code of Huawei modems: ^RSSI: <rssi>
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseRSSI(line string) (int, error) {
	rest, err := SplitResponse(line, RSSI)
	if err != nil {
		return 0, err
	}
	return Scan(rest).Int(0)
}

// SystemMode is reported by Huawei modems with ^MODE.
type SystemMode struct {
	Mode    int
	Submode int
}

// ParseMode reads the ^MODE unsolicited result code of Huawei modems: ^MODE: <sys_mode>[,<sys_submode>]
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseMode(line string) (SystemMode, error) {
	rest, err := SplitResponse(line, MODE)
	if err != nil {
		return SystemMode{}, err
	}
	fields := Scan(rest)

	mode, err := fields.Int(0)
	if err != nil {
		return SystemMode{}, err
	}
	submode, err := fields.OptionalInt(1, NoValue)
	if err != nil {
		return SystemMode{}, err
	}
	return SystemMode{Mode: mode, Submode: submode}, nil
}

// PINReady is the +CPIN status of a SIM that does not wait for a password.
const PINReady = "READY"

// ParsePINStatus reads a +CPIN response according to [27.007] 8.3: +CPIN: <code>
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParsePINStatus(line string) (string, error) {
	rest, err := SplitResponse(line, CPIN)
	if err != nil {
		return "", err
	}
	fields := Scan(rest)
	if len(fields) == 0 || fields.String(0) == "" {
		return "", fmt.Errorf("%w: no PIN status: %q", gsm.ErrTooFewFields, line)
	}
	return strings.ToUpper(fields.String(0)), nil
}

// ParseServiceCenter reads the service center address from a +CSCA response according to [27.005] 3.3.1:
// +CSCA: <sca>,<tosca>
// Modems that use the UCS2 character set report the address as hex encoded UCS-2, it is decoded transparently.
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseServiceCenter(line string) (gsm.Address, error) {
	rest, err := SplitResponse(line, CSCA)
	if err != nil {
		return gsm.Address{}, err
	}
	fields := Scan(rest)
	if len(fields) == 0 {
		return gsm.Address{}, fmt.Errorf("%w: no service center address: %q", gsm.ErrTooFewFields, line)
	}

	number := fields.String(0)
	if decoded, ok := decodeUCS2Number(number); ok {
		number = decoded
	}
	result := gsm.ParseAddress(number)

	toa, err := fields.OptionalInt(1, NoValue)
	if err != nil {
		return gsm.Address{}, err
	}
	if toa >= 0 && toa <= 0xFF {
		result.Type = gsm.TypeOfAddress(toa)
	}
	return result, nil
}

func decodeUCS2Number(s string) (string, bool) {
	if len(s) < 4 || len(s)%4 != 0 || !strings.HasPrefix(s, "00") {
		return "", false
	}
	octets, err := gsm.HexToBinary(s)
	if err != nil {
		return "", false
	}
	result, err := charset.DecodeUCS2Bytes(octets)
	if err != nil || !looksLikeNumber(result) {
		return "", false
	}
	return result, true
}

// ParseSendResult reads the message reference from a +CMGS response according to [27.005] 3.5.1:
// +CMGS: <mr>[,<scts>]
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseSendResult(line string) (int, error) {
	rest, err := SplitResponse(line, CMGS)
	if err != nil {
		return 0, err
	}
	return Scan(rest).Int(0)
}

// CallWaitingStatus is the response to the call waiting query according to [27.007] 7.12.
type CallWaitingStatus struct {
	Enabled bool
	Class   int
}

// ParseCallWaiting reads a +CCWA query response: +CCWA: <status>,<class>
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func ParseCallWaiting(line string) (CallWaitingStatus, error) {
	rest, err := SplitResponse(line, CCWA)
	if err != nil {
		return CallWaitingStatus{}, err
	}
	fields := Scan(rest)

	status, err := fields.Int(0)
	if err != nil {
		return CallWaitingStatus{}, err
	}
	class, err := fields.OptionalInt(1, NoValue)
	if err != nil {
		return CallWaitingStatus{}, err
	}
	return CallWaitingStatus{Enabled: status == 1, Class: class}, nil
}
