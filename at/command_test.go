package at

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/gsm-pei/gsm"
	"github.com/ftl/gsm-pei/pdu"
)

func fixedResponses(responses map[string][]string) (Requester, *[]string) {
	requests := make([]string, 0)
	return RequesterFunc(func(_ context.Context, request string) ([]string, error) {
		requests = append(requests, request)
		response, ok := responses[request]
		if !ok {
			return nil, fmt.Errorf("unexpected request %q", request)
		}
		return response, nil
	}), &requests
}

func TestSendMessage(t *testing.T) {
	parts, err := pdu.EncodeSubmit(pdu.Submit{
		Destination: gsm.ParseAddress("+4917612345678"),
		Text:        "Hello world",
	})
	require.NoError(t, err)
	require.Len(t, parts, 1)

	actual := SendMessage(parts[0])

	assert.Equal(t, "AT+CMGS=24\r\n0001000D91947116325476F800000BC8329BFD06DDDF723619\x1a", actual)
}

func TestCommands(t *testing.T) {
	assert.Equal(t, "AT+CMGR=3", ReadMessage(3))
	assert.Equal(t, "AT+CMGD=12", DeleteMessage(12))
	assert.Equal(t, "AT+CEREG=2", SetRegistrationIndications(CEREG))
	assert.Equal(t, "AT+CREG=2", SetRegistrationIndications("creg"))

	ussd, err := SendUSSD("*100#")
	require.NoError(t, err)
	assert.Equal(t, `AT+CUSD=1,"AA180C3602",15`, ussd)

	_, err = SendUSSD("€€€中")
	assert.ErrorIs(t, err, gsm.ErrUnmappableCharacter)
}

func TestRequests(t *testing.T) {
	requester, requests := fixedResponses(map[string][]string{
		"AT+CNUM":   {`+CNUM: "","+79139131234",145`},
		"AT+COPS?":  {`+COPS: 0,0,"TELE2",0`},
		"AT+CEREG?": {"+CEREG: 2,1,9110,7E6"},
		"AT+CSQ":    {"+CSQ: 17,99"},
		"AT+CPIN?":  {"+CPIN: READY"},
		"AT+CSCA?":  {`+CSCA: "+8613010374500",145`},
		"AT+CLCC":   {`+CLCC: 1,1,4,0,0,"+79139131234",145`},
	})
	ctx := context.Background()

	number, err := RequestSubscriberNumber(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, "+79139131234", number)

	operator, err := RequestOperator(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, "TELE2", operator)

	registration, err := RequestRegistration(ctx, requester, "+cereg")
	require.NoError(t, err)
	assert.True(t, registration.Registered)

	quality, err := RequestSignalQuality(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, 17, quality.RSSI)

	pin, err := RequestPINStatus(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, PINReady, pin)

	serviceCenter, err := RequestServiceCenter(ctx, requester)
	require.NoError(t, err)
	assert.Equal(t, "+8613010374500", serviceCenter.String())

	calls, err := RequestCalls(ctx, requester)
	require.NoError(t, err)
	assert.Len(t, calls, 1)

	assert.Equal(t, []string{"AT+CNUM", "AT+COPS?", "AT+CEREG?", "AT+CSQ", "AT+CPIN?", "AT+CSCA?", "AT+CLCC"}, *requests)
}

func TestRequest_UnexpectedResponse(t *testing.T) {
	requester, _ := fixedResponses(map[string][]string{
		"AT+COPS?": {"+CREG: 1"},
		"AT+CSQ":   {},
	})

	_, err := RequestOperator(context.Background(), requester)
	assert.ErrorIs(t, err, gsm.ErrMalformedResponse)

	_, err = RequestSignalQuality(context.Background(), requester)
	assert.Error(t, err)

	_, err = RequestPINStatus(context.Background(), requester)
	assert.Error(t, err)
}

func TestRequestMessage(t *testing.T) {
	requester, _ := fixedResponses(map[string][]string{
		"AT+CMGR=1": {"+CMGR: 1,,28", helloHello},
		"AT+CMGR=2": {"+CMGR: 1,,28"},
	})

	actual, err := RequestMessage(context.Background(), requester, pdu.Decoder{}, 1)
	require.NoError(t, err)
	assert.Equal(t, ReceivedRead, actual.Status)
	assert.Equal(t, "hellohello", actual.Message.Text)

	_, err = RequestMessage(context.Background(), requester, pdu.Decoder{}, 2)
	assert.ErrorIs(t, err, gsm.ErrTooFewFields)
}

func TestSend(t *testing.T) {
	parts, err := pdu.EncodeSubmit(pdu.Submit{
		Destination: gsm.ParseAddress("+4917612345678"),
		Text:        "this text is long enough to be split into two parts, because it has more than one hundred and sixty characters; each part carries a user data header with the reference",
	})
	require.NoError(t, err)
	require.Len(t, parts, 2)

	reference := 10
	requester := RequesterFunc(func(_ context.Context, request string) ([]string, error) {
		reference++
		return []string{fmt.Sprintf("+CMGS: %d", reference)}, nil
	})

	actual, err := Send(context.Background(), requester, parts)
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12}, actual)
}

func TestRequestUSSD(t *testing.T) {
	requester, _ := fixedResponses(map[string][]string{
		`AT+CUSD=1,"AA180C3602",15`: {`+CUSD: 0,"CF2135487D2E4130572D0682BB1A",15`},
	})

	actual, err := RequestUSSD(context.Background(), requester, "*100#")
	require.NoError(t, err)

	text, err := actual.Text()
	require.NoError(t, err)
	assert.Equal(t, "OCTATOK 0.51 p.", text)
}
