package at

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Final result codes according to [V.250] 5.7.1 and the error result codes of [27.007] 9.2 and [27.005] 3.2.5.
const (
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// Prompt is sent by the modem when it waits for the PDU of +CMGS
	Prompt = "> "
)

// ErrCommandFailed is returned for all final result codes other than OK.
var ErrCommandFailed = errors.New("command failed")

// CommandError is a final result code that reports a failure. Code is NoValue for plain ERROR
// and for textual error reports.
type CommandError struct {
	Result string
	Code   int
	Text   string
}

func (e *CommandError) Error() string {
	switch {
	case e.Code != NoValue:
		return fmt.Sprintf("%s %d", e.Result, e.Code)
	case e.Text != "":
		return fmt.Sprintf("%s %s", e.Result, e.Text)
	default:
		return e.Result
	}
}

func (e *CommandError) Is(target error) bool {
	return target == ErrCommandFailed
}

// FinalResult checks if the line terminates the response to a command. If the result code reports a
// failure, the returned error is a *CommandError.
func FinalResult(line string) (bool, error) {
	saniLine := strings.TrimSpace(strings.ToUpper(line))
	switch {
	case saniLine == OK:
		return true, nil
	case saniLine == ERROR, saniLine == NoCarrier, saniLine == NoDialtone, saniLine == Busy, saniLine == NoAnswer:
		return true, &CommandError{Result: saniLine, Code: NoValue}
	case strings.HasPrefix(saniLine, CmeError):
		return true, newCommandError(CmeError, line)
	case strings.HasPrefix(saniLine, CmsError):
		return true, newCommandError(CmsError, line)
	default:
		return false, nil
	}
}

func newCommandError(result string, line string) *CommandError {
	detail := strings.TrimSpace(strings.TrimSpace(line)[len(result):])
	code, err := strconv.Atoi(detail)
	if err != nil {
		return &CommandError{Result: strings.TrimSuffix(result, ":"), Code: NoValue, Text: detail}
	}
	return &CommandError{Result: strings.TrimSuffix(result, ":"), Code: code}
}

// Response collects the lines of a response until the final result code.
type Response struct {
	lines    []string
	err      error
	complete bool
}

// AddLine adds the next line of the response. Lines after the final result code are ignored.
func (r *Response) AddLine(line string) {
	if r.complete {
		return
	}
	final, err := FinalResult(line)
	if final {
		r.complete = true
		r.err = err
		return
	}
	r.lines = append(r.lines, line)
}

// Complete indicates that the final result code was received.
func (r *Response) Complete() bool {
	return r.complete
}

// Result returns the lines of the response without the final result code, or the error reported by the modem.
func (r *Response) Result() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.lines, nil
}

// ScanLines is a bufio.SplitFunc for modem output. It splits at CR and LF, drops empty lines and
// control characters and returns the prompt of +CMGS as a separate token.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && (data[start] == '\r' || data[start] == '\n') {
		start++
	}
	if atEOF && start == len(data) {
		return len(data), nil, nil
	}

	if bytes.HasPrefix(data[start:], []byte(Prompt)) {
		end := start + len(Prompt)
		return end, data[start:end], nil
	}

	if i := bytes.IndexAny(data[start:], "\r\n"); i >= 0 {
		return start + i + 1, sanitizeLine(data[start : start+i]), nil
	}

	if atEOF {
		return len(data), sanitizeLine(data[start:]), nil
	}
	return start, nil, nil
}

var _ bufio.SplitFunc = ScanLines

func sanitizeLine(line []byte) []byte {
	result := make([]byte, 0, len(line))
	for _, b := range line {
		if b < ' ' {
			continue
		}
		result = append(result, b)
	}
	return result
}

// Indications assembles unsolicited result codes that span more than one line, e.g. +CMT with its PDU line.
// It is not safe for concurrent use.
type Indications struct {
	configs []indicationConfig
	active  *indication
}

// NewIndications returns an empty set of indications.
func NewIndications() *Indications {
	return &Indications{}
}

// Add registers a handler for the indication with the given prefix. The handler is called with
// the line that starts with the prefix and the given number of trailing lines.
func (i *Indications) Add(prefix string, trailingLines int, handler func(lines []string)) *Indications {
	i.configs = append(i.configs, indicationConfig{
		prefix:        strings.ToUpper(prefix),
		trailingLines: trailingLines,
		handler:       handler,
	})
	return i
}

// Put feeds the next line. It returns true if the line belongs to a registered indication.
func (i *Indications) Put(line string) bool {
	if i.active != nil {
		i.active.AddLine(line)
		if i.active.Complete() {
			i.active = nil
		}
		return true
	}
	for _, config := range i.configs {
		if ind := config.NewIfMatches(line); ind != nil {
			if !ind.Complete() {
				i.active = ind
			}
			return true
		}
	}
	return false
}

// Waiting indicates that an indication waits for trailing lines.
func (i *Indications) Waiting() bool {
	return i.active != nil
}

type indicationConfig struct {
	prefix        string
	trailingLines int
	handler       func(lines []string)
}

func (c *indicationConfig) NewIfMatches(line string) *indication {
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), c.prefix) {
		return nil
	}
	result := &indication{
		config: *c,
		lines:  []string{line},
	}
	if result.Complete() {
		c.handler(result.lines)
	}
	return result
}

type indication struct {
	config indicationConfig
	lines  []string
}

func (ind *indication) AddLine(line string) {
	if ind.Complete() {
		return
	}

	ind.lines = append(ind.lines, line)
	if ind.Complete() {
		ind.config.handler(ind.lines)
	}
}

func (ind *indication) Complete() bool {
	return len(ind.lines) >= ind.config.trailingLines+1
}
