package pdu

import (
	"fmt"
	"time"

	"github.com/ftl/gsm-pei/gsm"
)

// ValidityPeriodFormat is the TP-Validity-Period-Format according to [23.040] 9.2.3.3
type ValidityPeriodFormat byte

// All validity period formats
const (
	NoValidityPeriod       ValidityPeriodFormat = 0x00
	EnhancedValidityPeriod ValidityPeriodFormat = 0x01
	RelativeValidityPeriod ValidityPeriodFormat = 0x02
	AbsoluteValidityPeriod ValidityPeriodFormat = 0x03
)

// ValidityPeriod is a relative TP-Validity-Period according to [23.040] 9.2.3.12.1
type ValidityPeriod time.Duration

// ParseValidityPeriod from a relative validity period octet.
func ParseValidityPeriod(b byte) ValidityPeriod {
	switch {
	case b <= 143:
		return ValidityPeriod(time.Duration(b+1) * 5 * time.Minute)
	case b <= 167:
		return ValidityPeriod(12*time.Hour + time.Duration(b-143)*30*time.Minute)
	case b <= 196:
		return ValidityPeriod(time.Duration(b-166) * 24 * time.Hour)
	default:
		return ValidityPeriod(time.Duration(b-192) * 7 * 24 * time.Hour)
	}
}

// Encode the validity period into one octet, rounding up to the next representable value.
// Periods beyond 63 weeks are capped.
func (p ValidityPeriod) Encode() byte {
	d := time.Duration(p)
	ceilDiv := func(d, unit time.Duration) int {
		result := int(d / unit)
		if d%unit != 0 {
			result++
		}
		return result
	}

	switch {
	case d <= 5*time.Minute:
		return 0
	case d <= 12*time.Hour:
		return byte(ceilDiv(d, 5*time.Minute) - 1)
	case d <= 24*time.Hour:
		return byte(143 + ceilDiv(d-12*time.Hour, 30*time.Minute))
	case d <= 30*24*time.Hour:
		days := ceilDiv(d, 24*time.Hour)
		if days < 2 {
			days = 2
		}
		return byte(166 + days)
	case d <= 63*7*24*time.Hour:
		weeks := ceilDiv(d, 7*24*time.Hour)
		if weeks < 5 {
			weeks = 5
		}
		return byte(192 + weeks)
	default:
		return 255
	}
}

func (p ValidityPeriod) String() string {
	return time.Duration(p).String()
}

// Validity is the decoded TP-Validity-Period of an SMS-SUBMIT.
type Validity struct {
	Format ValidityPeriodFormat
	// Relative is set for the relative format.
	Relative ValidityPeriod
	// Absolute is set for the absolute format.
	Absolute Timestamp
	// Enhanced keeps the raw seven octets of the enhanced format.
	Enhanced []byte
}

func decodeValidity(format ValidityPeriodFormat, b []byte) (Validity, int, error) {
	result := Validity{Format: format}
	switch format {
	case NoValidityPeriod:
		return result, 0, nil
	case RelativeValidityPeriod:
		if len(b) < 1 {
			return Validity{}, 0, fmt.Errorf("%w: validity period missing", gsm.ErrTruncatedPdu)
		}
		result.Relative = ParseValidityPeriod(b[0])
		return result, 1, nil
	case AbsoluteValidityPeriod:
		timestamp, err := DecodeTimestamp(b)
		if err != nil {
			return Validity{}, 0, fmt.Errorf("absolute validity period: %w", err)
		}
		result.Absolute = timestamp
		return result, TimestampLength, nil
	default:
		if len(b) < 7 {
			return Validity{}, 0, fmt.Errorf("%w: enhanced validity period needs 7 bytes, got %d", gsm.ErrTruncatedPdu, len(b))
		}
		result.Enhanced = append([]byte(nil), b[:7]...)
		return result, 7, nil
	}
}
