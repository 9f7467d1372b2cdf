package at

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ftl/gsm-pei/gsm"
)

// Field is one comma separated value of a response line.
type Field struct {
	Value string
	// Quoted indicates that the value was enclosed in double quotes.
	Quoted bool
}

// Fields contains the fields of a response line in order. A field beyond the end is absent,
// a present field with an empty value is empty.
type Fields []Field

// Has indicates if the field at index i is present.
func (f Fields) Has(i int) bool {
	return i >= 0 && i < len(f)
}

// String returns the value of the field at index i, or "" if it is absent.
func (f Fields) String(i int) string {
	if !f.Has(i) {
		return ""
	}
	return f[i].Value
}

// Int parses the field at index i as decimal integer.
//
// Errors: ErrTooFewFields, ErrMalformedResponse.
func (f Fields) Int(i int) (int, error) {
	if !f.Has(i) {
		return 0, fmt.Errorf("%w: field %d is missing", gsm.ErrTooFewFields, i)
	}
	result, err := strconv.Atoi(strings.TrimSpace(f[i].Value))
	if err != nil {
		return 0, fmt.Errorf("%w: field %d is not a number: %q", gsm.ErrMalformedResponse, i, f[i].Value)
	}
	return result, nil
}

// OptionalInt parses the field at index i as decimal integer. If the field is absent or empty, it returns absent.
//
// Errors: ErrMalformedResponse.
func (f Fields) OptionalInt(i int, absent int) (int, error) {
	if strings.TrimSpace(f.String(i)) == "" {
		return absent, nil
	}
	return f.Int(i)
}

// Scanner splits the remainder of a response line into fields.
//
// In tolerant mode, an unterminated quote yields the value up to the next comma, characters
// after a closing quote are dropped and stray quotes around a bare value are trimmed.
// In strict mode these cases are reported as ErrMalformedResponse.
// In both modes, a line with less than MinFields fields is reported as ErrTooFewFields.
type Scanner struct {
	Strict    bool
	MinFields int
}

// Scan splits s into fields using a tolerant Scanner.
func Scan(s string) Fields {
	result, _ := Scanner{}.Scan(s)
	return result
}

// Scan splits s into fields. A blank line has no fields, a trailing comma adds an empty field.
//
// Errors: ErrMalformedResponse, ErrTooFewFields.
func (s Scanner) Scan(line string) (Fields, error) {
	var result Fields
	if strings.TrimSpace(line) != "" {
		rest := line
		for {
			field, next, more, err := s.scanField(rest)
			if err != nil {
				return nil, err
			}
			result = append(result, field)
			if !more {
				break
			}
			rest = next
		}
	}
	if len(result) < s.MinFields {
		return nil, fmt.Errorf("%w: %d fields, at least %d required: %q", gsm.ErrTooFewFields, len(result), s.MinFields, line)
	}
	return result, nil
}

func (s Scanner) scanField(rest string) (Field, string, bool, error) {
	trimmed := strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(trimmed, `"`) {
		return s.scanQuoted(trimmed[1:])
	}

	value, next, more := cutField(trimmed)
	value = strings.TrimSpace(value)
	if strings.Contains(value, `"`) {
		if s.Strict {
			return Field{}, "", false, fmt.Errorf("%w: stray quote in %q", gsm.ErrMalformedResponse, value)
		}
		value = strings.TrimSpace(strings.Trim(value, `"`))
	}
	return Field{Value: value}, next, more, nil
}

func (s Scanner) scanQuoted(body string) (Field, string, bool, error) {
	if end := closingQuote(body); end >= 0 {
		_, next, more := cutField(body[end+1:])
		return Field{Value: body[:end], Quoted: true}, next, more, nil
	}
	if s.Strict {
		return Field{}, "", false, fmt.Errorf("%w: unterminated quote in %q", gsm.ErrMalformedResponse, body)
	}

	value, next, more := cutField(body)
	if i := strings.IndexByte(value, '"'); i >= 0 {
		value = value[:i]
	}
	return Field{Value: strings.TrimSpace(value), Quoted: true}, next, more, nil
}

// closingQuote returns the index of the first quote in body that is followed only by blanks
// up to the next comma or the end of the line, or -1.
func closingQuote(body string) int {
	offset := 0
	for {
		i := strings.IndexByte(body[offset:], '"')
		if i < 0 {
			return -1
		}
		end := offset + i
		after := strings.TrimLeft(body[end+1:], " \t\r\n")
		if after == "" || after[0] == ',' {
			return end
		}
		offset = end + 1
	}
}

func cutField(s string) (value, next string, more bool) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// SplitResponse checks that line starts with the given tag (e.g. +CREG) followed by a colon and returns the rest
// of the line. The comparison is case-insensitive.
//
// Errors: ErrMalformedResponse.
func SplitResponse(line, tag string) (string, error) {
	trimmed := strings.TrimSpace(line)
	tag = strings.TrimSuffix(tag, ":")
	if len(trimmed) < len(tag) || !strings.EqualFold(trimmed[:len(tag)], tag) {
		return "", fmt.Errorf("%w: %s expected: %q", gsm.ErrMalformedResponse, tag, line)
	}
	rest := strings.TrimLeft(trimmed[len(tag):], " ")
	if !strings.HasPrefix(rest, ":") {
		return "", fmt.Errorf("%w: %s expected: %q", gsm.ErrMalformedResponse, tag, line)
	}
	return strings.TrimLeft(rest[1:], " "), nil
}

// ResponseTag returns the upper case tag of a response line that starts with + or ^, or "" if the line has no tag.
func ResponseTag(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "+") && !strings.HasPrefix(trimmed, "^") {
		return ""
	}
	i := strings.IndexByte(trimmed, ':')
	if i < 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(trimmed[:i]))
}

func splitAnyResponse(line string, tags ...string) (string, string, error) {
	tag := ResponseTag(line)
	for _, expected := range tags {
		if tag == expected {
			rest, err := SplitResponse(line, tag)
			return tag, rest, err
		}
	}
	return "", "", fmt.Errorf("%w: one of %s expected: %q", gsm.ErrMalformedResponse, strings.Join(tags, ", "), line)
}
