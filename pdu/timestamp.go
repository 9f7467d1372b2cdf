package pdu

import (
	"fmt"
	"time"

	"github.com/ftl/gsm-pei/gsm"
)

// TimestampLength is the length of an encoded service centre time stamp in bytes.
const TimestampLength = 7

// Timestamp is a TP-Service-Centre-Time-Stamp according to [23.040] 9.2.3.11.
// The fields keep the decoded values as they are, without validating them as a calendar date.
type Timestamp struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
	// Zone is the offset to UTC in quarters of an hour.
	Zone int
}

// DecodeTimestamp from the first seven bytes of b. Each field is a nibble-swapped
// pair of decimal digits, bit 3 of the last byte is the sign of the zone.
func DecodeTimestamp(b []byte) (Timestamp, error) {
	if len(b) < TimestampLength {
		return Timestamp{}, fmt.Errorf("%w: timestamp needs %d bytes, got %d", gsm.ErrTruncatedPdu, TimestampLength, len(b))
	}

	zone := int(b[6]&0x07)*10 + int(b[6]>>4)
	if b[6]&0x08 != 0 {
		zone = -zone
	}
	return Timestamp{
		Year:   2000 + decodeDecimalOctet(b[0]),
		Month:  decodeDecimalOctet(b[1]),
		Day:    decodeDecimalOctet(b[2]),
		Hour:   decodeDecimalOctet(b[3]),
		Minute: decodeDecimalOctet(b[4]),
		Second: decodeDecimalOctet(b[5]),
		Zone:   zone,
	}, nil
}

// NewTimestamp converts the given time into a timestamp, keeping its zone offset.
func NewTimestamp(t time.Time) Timestamp {
	_, offset := t.Zone()
	return Timestamp{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Zone:   offset / (15 * 60),
	}
}

// Encode appends the seven byte representation of this timestamp.
func (t Timestamp) Encode(bytes []byte) []byte {
	zone := t.Zone
	var sign byte
	if zone < 0 {
		zone = -zone
		sign = 0x08
	}
	return append(bytes,
		encodeDecimalOctet(t.Year%100),
		encodeDecimalOctet(t.Month),
		encodeDecimalOctet(t.Day),
		encodeDecimalOctet(t.Hour),
		encodeDecimalOctet(t.Minute),
		encodeDecimalOctet(t.Second),
		encodeDecimalOctet(zone%80)|sign,
	)
}

// IsZero indicates that the timestamp is not set.
func (t Timestamp) IsZero() bool {
	return t == Timestamp{}
}

// Time converts this timestamp into a time.Time with a fixed zone.
func (t Timestamp) Time() time.Time {
	location := time.FixedZone("", t.Zone*15*60)
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, location)
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Time().Format(time.RFC3339)
}

func decodeDecimalOctet(b byte) int {
	return int(b&0x0F)*10 + int(b>>4)
}

func encodeDecimalOctet(v int) byte {
	return byte(v%10)<<4 | byte(v/10%10)
}
