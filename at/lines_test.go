package at

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/gsm-pei/pdu"
)

func scanAll(s string) []string {
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Split(ScanLines)
	result := make([]string, 0)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}
	return result
}

func TestScanLines(t *testing.T) {
	tt := []struct {
		desc     string
		value    string
		expected []string
	}{
		{
			desc:     "crlf",
			value:    "\r\n+CSQ: 17,99\r\n\r\nOK\r\n",
			expected: []string{"+CSQ: 17,99", "OK"},
		},
		{
			desc:     "lf only",
			value:    "+CMTI: \"SM\",1\n",
			expected: []string{`+CMTI: "SM",1`},
		},
		{
			desc:     "prompt",
			value:    "\r\n> ",
			expected: []string{Prompt},
		},
		{
			desc:     "no final line break",
			value:    "OK",
			expected: []string{"OK"},
		},
		{
			desc:     "control characters",
			value:    "O\x00K\r\n",
			expected: []string{"OK"},
		},
		{
			desc:     "empty",
			value:    "\r\n\r\n",
			expected: []string{},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, scanAll(tc.value))
		})
	}
}

func TestFinalResult(t *testing.T) {
	tt := []struct {
		line     string
		final    bool
		expected *CommandError
	}{
		{"OK", true, nil},
		{" ok ", true, nil},
		{"ERROR", true, &CommandError{Result: ERROR, Code: NoValue}},
		{"NO CARRIER", true, &CommandError{Result: NoCarrier, Code: NoValue}},
		{"+CME ERROR: 10", true, &CommandError{Result: "+CME ERROR", Code: 10}},
		{"+CMS ERROR: 500", true, &CommandError{Result: "+CMS ERROR", Code: 500}},
		{"+CME ERROR: SIM not inserted", true, &CommandError{Result: "+CME ERROR", Code: NoValue, Text: "SIM not inserted"}},
		{"+CSQ: 17,99", false, nil},
		{"OKAY", false, nil},
	}
	for _, tc := range tt {
		t.Run(tc.line, func(t *testing.T) {
			final, err := FinalResult(tc.line)
			assert.Equal(t, tc.final, final)
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrCommandFailed)
			assert.Equal(t, tc.expected, err)
		})
	}
}

func TestCommandError_Error(t *testing.T) {
	assert.Equal(t, "ERROR", (&CommandError{Result: ERROR, Code: NoValue}).Error())
	assert.Equal(t, "+CMS ERROR 500", (&CommandError{Result: "+CMS ERROR", Code: 500}).Error())
	assert.Equal(t, "+CME ERROR SIM busy", (&CommandError{Result: "+CME ERROR", Code: NoValue, Text: "SIM busy"}).Error())
}

func TestResponse(t *testing.T) {
	response := new(Response)
	response.AddLine("+CSQ: 17,99")
	assert.False(t, response.Complete())
	response.AddLine("OK")
	assert.True(t, response.Complete())
	response.AddLine("+CSQ: 1,1")

	lines, err := response.Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"+CSQ: 17,99"}, lines)

	response = new(Response)
	response.AddLine("+CMS ERROR: 304")
	assert.True(t, response.Complete())
	_, err = response.Result()
	assert.ErrorIs(t, err, ErrCommandFailed)
}

func TestIndications(t *testing.T) {
	var singleLines []string
	var multiLines [][]string
	indications := NewIndications().
		Add(CMTI, 0, func(lines []string) { singleLines = append(singleLines, lines...) }).
		Add("+CUSTOM:", 2, func(lines []string) { multiLines = append(multiLines, lines) })

	assert.True(t, indications.Put(`+CMTI: "SM",1`))
	assert.False(t, indications.Waiting())
	assert.False(t, indications.Put("+CSQ: 17,99"))
	assert.True(t, indications.Put("+custom: 1"))
	assert.True(t, indications.Waiting())
	assert.True(t, indications.Put("first"))
	assert.True(t, indications.Put("second"))
	assert.False(t, indications.Waiting())
	assert.False(t, indications.Put("OK"))

	assert.Equal(t, []string{`+CMTI: "SM",1`}, singleLines)
	assert.Equal(t, [][]string{{"+custom: 1", "first", "second"}}, multiLines)
}

func TestIndications_WithMessages(t *testing.T) {
	var messages []IncomingMessage
	var errs []error
	indications := NewIndications().
		WithMessages(pdu.Decoder{Tolerant: true}, func(message IncomingMessage, err error) {
			if err != nil {
				errs = append(errs, err)
				return
			}
			messages = append(messages, message)
		})

	input := "\r\n+CMT: ,28\r\n" + helloHello + "\r\n" +
		"\r\n+CMTI: \"SM\",3\r\n" +
		"\r\n+CDS: 26\r\n" + statusReport + "\r\n" +
		"\r\n+CMT: ,28\r\nnot hex\r\n"
	unhandled := make([]string, 0)
	for _, line := range scanAll(input) {
		if !indications.Put(line) {
			unhandled = append(unhandled, line)
		}
	}

	assert.Equal(t, []string{`+CMTI: "SM",3`}, unhandled)
	require.Len(t, messages, 2)
	assert.Equal(t, "hellohello", messages[0].Message.Text)
	assert.Equal(t, pdu.StatusReportMessage, messages[1].Message.Type)
	assert.Len(t, errs, 1)
}
