package at

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/gsm-pei/gsm"
)

func TestScan_Tolerant(t *testing.T) {
	tt := []struct {
		desc     string
		value    string
		expected Fields
	}{
		{
			desc:     "bare fields",
			value:    "0,0,TELE2,0",
			expected: Fields{{Value: "0"}, {Value: "0"}, {Value: "TELE2"}, {Value: "0"}},
		},
		{
			desc:     "quoted field",
			value:    `0,0,"TELE2",0`,
			expected: Fields{{Value: "0"}, {Value: "0"}, {Value: "TELE2", Quoted: true}, {Value: "0"}},
		},
		{
			desc:     "unterminated quote",
			value:    `0,0,"TELE2,0`,
			expected: Fields{{Value: "0"}, {Value: "0"}, {Value: "TELE2", Quoted: true}, {Value: "0"}},
		},
		{
			desc:     "stray closing quote",
			value:    `"",+79139131234",145`,
			expected: Fields{{Value: "", Quoted: true}, {Value: "+79139131234"}, {Value: "145"}},
		},
		{
			desc:     "empty fields",
			value:    `,"",145`,
			expected: Fields{{Value: ""}, {Value: "", Quoted: true}, {Value: "145"}},
		},
		{
			desc:     "trailing comma",
			value:    "1,",
			expected: Fields{{Value: "1"}, {Value: ""}},
		},
		{
			desc:     "comma inside quotes",
			value:    `"a,b",c`,
			expected: Fields{{Value: "a,b", Quoted: true}, {Value: "c"}},
		},
		{
			desc:     "junk after closing quote",
			value:    `"abc"x,1`,
			expected: Fields{{Value: "abc", Quoted: true}, {Value: "1"}},
		},
		{
			desc:     "blanks around fields",
			value:    ` 1 , "x" ,2`,
			expected: Fields{{Value: "1"}, {Value: "x", Quoted: true}, {Value: "2"}},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := Scanner{}.Scan(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestScan_Blank(t *testing.T) {
	assert.Empty(t, Scan(""))
	assert.Empty(t, Scan("  "))
}

func TestScan_Strict(t *testing.T) {
	tt := []struct {
		desc     string
		value    string
		expected error
	}{
		{"unterminated quote", `0,0,"TELE2,0`, gsm.ErrMalformedResponse},
		{"stray quote", `"",+79139131234",145`, gsm.ErrMalformedResponse},
		{"junk after closing quote", `"abc"x,1`, gsm.ErrMalformedResponse},
		{"too few fields", `1,1,4,0,0,"+7913913ABCA"`, gsm.ErrTooFewFields},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := Scanner{Strict: true, MinFields: 7}.Scan(tc.value)
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestScan_MinFieldsInTolerantMode(t *testing.T) {
	_, err := Scanner{MinFields: 2}.Scan("1")
	assert.ErrorIs(t, err, gsm.ErrTooFewFields)

	actual, err := Scanner{MinFields: 2}.Scan("1,")
	require.NoError(t, err)
	assert.Len(t, actual, 2)
}

func TestFields_Access(t *testing.T) {
	fields := Scan(`12,"",abc`)

	assert.True(t, fields.Has(2))
	assert.False(t, fields.Has(3))
	assert.False(t, fields.Has(-1))
	assert.Equal(t, "abc", fields.String(2))
	assert.Equal(t, "", fields.String(3))

	value, err := fields.Int(0)
	require.NoError(t, err)
	assert.Equal(t, 12, value)

	_, err = fields.Int(2)
	assert.ErrorIs(t, err, gsm.ErrMalformedResponse)

	_, err = fields.Int(3)
	assert.ErrorIs(t, err, gsm.ErrTooFewFields)

	value, err = fields.OptionalInt(1, NoValue)
	require.NoError(t, err)
	assert.Equal(t, NoValue, value)

	value, err = fields.OptionalInt(5, NoValue)
	require.NoError(t, err)
	assert.Equal(t, NoValue, value)
}

func TestSplitResponse(t *testing.T) {
	tt := []struct {
		line     string
		tag      string
		expected string
		invalid  bool
	}{
		{line: "+CREG: 1", tag: "+CREG", expected: "1"},
		{line: "+creg: 1", tag: "+CREG", expected: "1"},
		{line: "+CREG:1", tag: "+CREG:", expected: "1"},
		{line: "  +CREG : 0,1  ", tag: "+CREG", expected: "0,1"},
		{line: "^RSSI: 12", tag: "^RSSI", expected: "12"},
		{line: "+CMTI: ", tag: "+CMTI", expected: ""},
		{line: "+CREGX: 1", tag: "+CREG", invalid: true},
		{line: "OK", tag: "+CREG", invalid: true},
		{line: "+CRE", tag: "+CREG", invalid: true},
	}
	for _, tc := range tt {
		t.Run(tc.line, func(t *testing.T) {
			actual, err := SplitResponse(tc.line, tc.tag)
			if tc.invalid {
				assert.ErrorIs(t, err, gsm.ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestResponseTag(t *testing.T) {
	tt := []struct {
		line     string
		expected string
	}{
		{`+cmti: "SM",1`, "+CMTI"},
		{"^MODE: 5,4", "^MODE"},
		{"+CPIN:READY", "+CPIN"},
		{"OK", ""},
		{"+CMS ERROR: 500", "+CMS ERROR"},
		{"0891683110304705F0", ""},
	}
	for _, tc := range tt {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResponseTag(tc.line))
		})
	}
}
