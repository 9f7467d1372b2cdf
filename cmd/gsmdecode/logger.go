package main

import (
	"fmt"
	"io"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// logLevel is the minimum level of the log records that are written, one of debug, info, warn or error.
type logLevel struct {
	level.Value
}

func (l logLevel) String() string {
	if l.Value == nil {
		return level.InfoValue().String()
	}
	return l.Value.String()
}

func (l *logLevel) UnmarshalText(text []byte) error {
	value, err := level.Parse(string(text))
	if err != nil {
		return fmt.Errorf("%q: %w", text, err)
	}
	l.Value = value
	return nil
}

func (l logLevel) filter() level.Option {
	if l.Value == nil {
		return level.AllowInfo()
	}
	return level.Allow(l.Value)
}

// newLogger writes logfmt records to out, dropping everything below the given level.
func newLogger(out io.Writer, minLevel logLevel) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(out))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	return level.NewFilter(logger, minLevel.filter())
}
