package main

import (
	"fmt"

	"github.com/ftl/gsm-pei/at"
)

type ussdView struct {
	at.USSD
	Text string `json:"Text,omitempty"`
}

type signalQualityView struct {
	at.SignalQuality
	DBM *int `json:"DBM,omitempty"`
}

type finalResultView struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// parseResponse decodes one AT response line with the parser for its tag.
func parseResponse(line string) (responseView, error) {
	if final, err := at.FinalResult(line); final {
		result := finalResultView{OK: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		return responseView{Tag: "final", Value: result}, nil
	}

	tag := at.ResponseTag(line)
	value, err := parseTaggedResponse(tag, line)
	if err != nil {
		return responseView{}, err
	}
	return responseView{Tag: tag, Value: value}, nil
}

func parseTaggedResponse(tag string, line string) (interface{}, error) {
	switch tag {
	case at.CNUM:
		return at.ParseSubscriberNumber(line)
	case at.COPS:
		return at.ParseOperator(line)
	case at.CREG, at.CGREG, at.CEREG:
		return at.ParseRegistration(line)
	case at.CMTI, at.CDSI:
		return at.ParseMessageIndication(line), nil
	case at.CUSD:
		ussd, err := at.ParseUSSD(line)
		if err != nil {
			return nil, err
		}
		text, err := ussd.Text()
		if err != nil {
			return nil, err
		}
		return ussdView{USSD: ussd, Text: text}, nil
	case at.CLCC:
		return at.ParseCall(line)
	case at.CSQ:
		quality, err := at.ParseSignalQuality(line)
		if err != nil {
			return nil, err
		}
		result := signalQualityView{SignalQuality: quality}
		if dbm, ok := quality.DBM(); ok {
			result.DBM = &dbm
		}
		return result, nil
	case at.RSSI:
		return at.ParseRSSI(line)
	case at.MODE:
		return at.ParseMode(line)
	case at.CPIN:
		return at.ParsePINStatus(line)
	case at.CSCA:
		address, err := at.ParseServiceCenter(line)
		if err != nil {
			return nil, err
		}
		return address.String(), nil
	case at.CMGS:
		return at.ParseSendResult(line)
	case at.CCWA:
		return at.ParseCallWaiting(line)
	default:
		return nil, fmt.Errorf("unsupported response: %q", line)
	}
}
