package at

import (
	"context"
	"fmt"
	"strings"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
	"github.com/ftl/gsm-pei/pdu"
)

// Requester sends a request to the modem and returns the lines of its response, without the final result code.
type Requester interface {
	Request(context.Context, string) ([]string, error)
}

// RequesterFunc wraps a function to implement the Requester interface.
type RequesterFunc func(context.Context, string) ([]string, error)

func (f RequesterFunc) Request(ctx context.Context, request string) ([]string, error) {
	return f(ctx, request)
}

const (
	// CRLF line ending for AT commands
	CRLF = "\x0d\x0a"
	// CtrlZ line ending for PDUs
	CtrlZ = "\x1a"

	// SwitchToPDUMode selects the PDU message format according to [27.005] 3.2.3
	SwitchToPDUMode = "AT+CMGF=0"
	// EnableMessageIndications routes new messages as +CMTI and status reports as +CDS according to [27.005] 3.4.1
	EnableMessageIndications = "AT+CNMI=2,1,0,1,0"
	// USSDDataCodingScheme is the GSM 7 bit data coding scheme used for USSD requests
	USSDDataCodingScheme = 15
)

// SendMessage according to [27.005] 3.5.1
func SendMessage(part pdu.Part) string {
	return fmt.Sprintf("%s"+CRLF+"%s"+CtrlZ, part.Command(), part.Hex())
}

// ReadMessage according to [27.005] 3.4.3
func ReadMessage(index int) string {
	return fmt.Sprintf("AT+CMGR=%d", index)
}

// DeleteMessage according to [27.005] 3.5.4
func DeleteMessage(index int) string {
	return fmt.Sprintf("AT+CMGD=%d", index)
}

// SetRegistrationIndications enables +CREG unsolicited result codes with location information according to [27.007] 7.2
func SetRegistrationIndications(tag string) string {
	return fmt.Sprintf("AT+%s=2", strings.TrimPrefix(strings.ToUpper(tag), "+"))
}

// SendUSSD according to [27.007] 7.15, the code is sent as packed GSM 7 bit string in hex
func SendUSSD(code string) (string, error) {
	packed, err := charset.EncodePackedUSSD(code)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`AT+CUSD=1,"%s",%d`, gsm.BinaryToHex(packed), USSDDataCodingScheme), nil
}

// CancelUSSD according to [27.007] 7.15
const CancelUSSD = "AT+CUSD=2"

func findResponse(responses []string, tag string) (string, error) {
	if len(responses) < 1 {
		return "", fmt.Errorf("no response received")
	}
	for _, response := range responses {
		if ResponseTag(response) == tag {
			return response, nil
		}
	}
	return "", fmt.Errorf("%w: unexpected response: %s", gsm.ErrMalformedResponse, responses[0])
}

func requestLine(ctx context.Context, requester Requester, request string, tag string) (string, error) {
	responses, err := requester.Request(ctx, request)
	if err != nil {
		return "", err
	}
	return findResponse(responses, tag)
}

// RequestSubscriberNumber reads the own number according to [27.007] 7.1
func RequestSubscriberNumber(ctx context.Context, requester Requester) (string, error) {
	response, err := requestLine(ctx, requester, "AT+CNUM", CNUM)
	if err != nil {
		return "", err
	}
	return ParseSubscriberNumber(response)
}

// RequestOperator reads the name of the current operator according to [27.007] 7.3
func RequestOperator(ctx context.Context, requester Requester) (string, error) {
	response, err := requestLine(ctx, requester, "AT+COPS?", COPS)
	if err != nil {
		return "", err
	}
	return ParseOperator(response)
}

// RequestRegistration reads the registration state according to [27.007] 7.2. The tag selects the
// network domain: CREG (circuit switched), CGREG (GPRS) or CEREG (EPS).
func RequestRegistration(ctx context.Context, requester Requester, tag string) (Registration, error) {
	tag = "+" + strings.TrimPrefix(strings.ToUpper(tag), "+")
	response, err := requestLine(ctx, requester, "AT"+tag+"?", tag)
	if err != nil {
		return Registration{}, err
	}
	return ParseRegistration(response)
}

// RequestSignalQuality reads the signal quality according to [27.007] 8.5
func RequestSignalQuality(ctx context.Context, requester Requester) (SignalQuality, error) {
	response, err := requestLine(ctx, requester, "AT+CSQ", CSQ)
	if err != nil {
		return SignalQuality{}, err
	}
	return ParseSignalQuality(response)
}

// RequestPINStatus reads the SIM PIN status according to [27.007] 8.3
func RequestPINStatus(ctx context.Context, requester Requester) (string, error) {
	response, err := requestLine(ctx, requester, "AT+CPIN?", CPIN)
	if err != nil {
		return "", err
	}
	return ParsePINStatus(response)
}

// RequestServiceCenter reads the service center address according to [27.005] 3.3.1
func RequestServiceCenter(ctx context.Context, requester Requester) (gsm.Address, error) {
	response, err := requestLine(ctx, requester, "AT+CSCA?", CSCA)
	if err != nil {
		return gsm.Address{}, err
	}
	return ParseServiceCenter(response)
}

// RequestCalls reads the list of current calls according to [27.007] 7.18
func RequestCalls(ctx context.Context, requester Requester) ([]Call, error) {
	responses, err := requester.Request(ctx, "AT+CLCC")
	if err != nil {
		return nil, err
	}
	return ParseCalls(responses)
}

// RequestMessage reads the message at the given storage index according to [27.005] 3.4.3
func RequestMessage(ctx context.Context, requester Requester, decoder pdu.Decoder, index int) (IncomingMessage, error) {
	responses, err := requester.Request(ctx, ReadMessage(index))
	if err != nil {
		return IncomingMessage{}, err
	}
	for i, response := range responses {
		if ResponseTag(response) != CMGR {
			continue
		}
		if i+1 >= len(responses) {
			return IncomingMessage{}, fmt.Errorf("%w: no PDU after %s", gsm.ErrTooFewFields, response)
		}
		return ParseIncomingMessageWith(decoder, response, responses[i+1])
	}
	if len(responses) < 1 {
		return IncomingMessage{}, fmt.Errorf("no response received")
	}
	return IncomingMessage{}, fmt.Errorf("%w: unexpected response: %s", gsm.ErrMalformedResponse, responses[0])
}

// Send transmits all parts of a message according to [27.005] 3.5.1 and returns the message references
// assigned by the network.
func Send(ctx context.Context, requester Requester, parts []pdu.Part) ([]int, error) {
	result := make([]int, 0, len(parts))
	for i, part := range parts {
		response, err := requestLine(ctx, requester, SendMessage(part), CMGS)
		if err != nil {
			return result, fmt.Errorf("part %d: %w", i+1, err)
		}
		reference, err := ParseSendResult(response)
		if err != nil {
			return result, fmt.Errorf("part %d: %w", i+1, err)
		}
		result = append(result, reference)
	}
	return result, nil
}

// RequestUSSD sends a USSD code and returns the immediate +CUSD response according to [27.007] 7.15.
// Most networks deliver the response later as unsolicited result code; then the result is empty
// and has the type USSDNoFurtherAction.
func RequestUSSD(ctx context.Context, requester Requester, code string) (USSD, error) {
	request, err := SendUSSD(code)
	if err != nil {
		return USSD{}, err
	}
	responses, err := requester.Request(ctx, request)
	if err != nil {
		return USSD{}, err
	}
	for _, response := range responses {
		if ResponseTag(response) == CUSD {
			return ParseUSSD(response)
		}
	}
	return USSD{Type: USSDNoFurtherAction, DCS: NoDCS}, nil
}
