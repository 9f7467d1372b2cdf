package pdu

import (
	"fmt"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
)

// Decoder decodes PDUs. The zero value is a strict decoder.
type Decoder struct {
	// Tolerant accepts PDUs that are shorter than their declared TPDU length or user data length.
	// The available user data is decoded and the message is marked as Truncated. Some modems report
	// these lengths inconsistently.
	Tolerant bool
}

// Decode a PDU as reported by AT+CMGR, +CMT or +CDS in PDU mode: the SMSC information followed by the TPDU.
// A positive tpduLength is the TPDU length declared in the response header; the PDU must contain at least
// that many bytes after the SMSC information, any surplus is ignored.
//
// Errors: gsm.ErrTruncatedPdu, gsm.ErrUnsupportedEncoding, ErrUnsupportedMessageType.
func Decode(b []byte, tpduLength int) (Message, error) {
	return Decoder{}.Decode(b, tpduLength)
}

// DecodeHex decodes a hex encoded PDU, see Decode.
//
// Errors: gsm.ErrMalformedHex and the errors of Decode.
func DecodeHex(s string, tpduLength int) (Message, error) {
	return Decoder{}.DecodeHex(s, tpduLength)
}

// DecodeTPDU decodes a TPDU without SMSC information.
func DecodeTPDU(b []byte) (Message, error) {
	return Decoder{}.DecodeTPDU(b)
}

// DecodeHex decodes a hex encoded PDU, see Decode.
func (d Decoder) DecodeHex(s string, tpduLength int) (Message, error) {
	b, err := gsm.HexToBinary(s)
	if err != nil {
		return Message{}, fmt.Errorf("cannot decode hex PDU data: %w", err)
	}
	return d.Decode(b, tpduLength)
}

// Decode a PDU, see the package level Decode.
func (d Decoder) Decode(b []byte, tpduLength int) (Message, error) {
	smsc, n, err := decodeSMSC(b)
	if err != nil {
		return Message{}, err
	}
	tpdu := b[n:]

	truncated := false
	if tpduLength > 0 {
		if tpduLength > len(tpdu) {
			if !d.Tolerant {
				return Message{}, fmt.Errorf("%w: declared TPDU length %d, got %d bytes", gsm.ErrTruncatedPdu, tpduLength, len(tpdu))
			}
			truncated = true
		} else {
			tpdu = tpdu[:tpduLength]
		}
	}

	result, err := d.DecodeTPDU(tpdu)
	if err != nil {
		return Message{}, err
	}
	result.SMSC = smsc
	result.Truncated = result.Truncated || truncated
	return result, nil
}

// DecodeTPDU decodes a TPDU without SMSC information.
func (d Decoder) DecodeTPDU(b []byte) (Message, error) {
	r := &reader{bytes: b}
	firstOctet, err := r.byte("first octet")
	if err != nil {
		return Message{}, err
	}

	var result Message
	result.Type = MessageType(firstOctet & 0x03)
	switch result.Type {
	case DeliverMessage:
		err = d.decodeDeliver(r, firstOctet, &result)
	case SubmitMessage:
		err = d.decodeSubmit(r, firstOctet, &result)
	case StatusReportMessage:
		err = d.decodeStatusReport(r, firstOctet, &result)
	default:
		err = fmt.Errorf("%w: first octet 0x%02X", ErrUnsupportedMessageType, firstOctet)
	}
	if err != nil {
		return Message{}, err
	}
	return result, nil
}

// decodeDeliver according to [23.040] 9.2.2.1
func (d Decoder) decodeDeliver(r *reader, firstOctet byte, result *Message) error {
	result.MoreMessagesToSend = firstOctet&0x04 == 0
	result.StatusReport = firstOctet&0x20 != 0
	result.ReplyPath = firstOctet&0x80 != 0
	udhi := firstOctet&0x40 != 0

	var err error
	result.Address, err = r.address("originating address")
	if err != nil {
		return err
	}
	if err := r.protocolAndCoding(result); err != nil {
		return err
	}
	result.Timestamp, err = r.timestamp("service centre time stamp")
	if err != nil {
		return err
	}
	return d.decodeUserData(r, udhi, result)
}

// decodeSubmit according to [23.040] 9.2.2.2
func (d Decoder) decodeSubmit(r *reader, firstOctet byte, result *Message) error {
	result.RejectDuplicates = firstOctet&0x04 != 0
	result.StatusReport = firstOctet&0x20 != 0
	result.ReplyPath = firstOctet&0x80 != 0
	udhi := firstOctet&0x40 != 0
	validityFormat := ValidityPeriodFormat((firstOctet >> 3) & 0x03)

	var err error
	result.Reference, err = r.byte("message reference")
	if err != nil {
		return err
	}
	result.Address, err = r.address("destination address")
	if err != nil {
		return err
	}
	if err := r.protocolAndCoding(result); err != nil {
		return err
	}
	validity, n, err := decodeValidity(validityFormat, r.rest())
	if err != nil {
		return err
	}
	result.Validity = validity
	r.skip(n)
	return d.decodeUserData(r, udhi, result)
}

// decodeStatusReport according to [23.040] 9.2.2.3. The parameters after TP-Status are optional.
func (d Decoder) decodeStatusReport(r *reader, firstOctet byte, result *Message) error {
	result.MoreMessagesToSend = firstOctet&0x04 == 0
	result.StatusReport = firstOctet&0x20 != 0
	udhi := firstOctet&0x40 != 0

	var err error
	result.Reference, err = r.byte("message reference")
	if err != nil {
		return err
	}
	result.Address, err = r.address("recipient address")
	if err != nil {
		return err
	}
	result.Timestamp, err = r.timestamp("service centre time stamp")
	if err != nil {
		return err
	}
	result.Discharge, err = r.timestamp("discharge time")
	if err != nil {
		return err
	}
	status, err := r.byte("status")
	if err != nil {
		return err
	}
	result.Status = Status(status)

	if r.remaining() == 0 {
		return nil
	}
	parameters, err := r.byte("parameter indicator")
	if err != nil {
		return err
	}
	for extension := parameters; extension&0x80 != 0; {
		extension, err = r.byte("parameter indicator extension")
		if err != nil {
			return err
		}
	}
	if parameters&0x01 != 0 {
		result.ProtocolID, err = r.byte("protocol identifier")
		if err != nil {
			return err
		}
	}
	if parameters&0x02 != 0 {
		dcs, err := r.byte("data coding scheme")
		if err != nil {
			return err
		}
		result.DCS = DCS(dcs)
	}
	if parameters&0x04 == 0 {
		return nil
	}
	return d.decodeUserData(r, udhi, result)
}

// decodeUserData according to [23.040] 9.2.3.16 and 9.2.3.24. If the data coding scheme is not supported,
// no text is decoded at all.
func (d Decoder) decodeUserData(r *reader, udhi bool, result *Message) error {
	alphabet, err := result.DCS.Alphabet()
	if err != nil {
		return err
	}
	result.Alphabet = alphabet

	userDataLength, err := r.byte("user data length")
	if err != nil {
		return err
	}
	length := int(userDataLength)
	octets := length
	if alphabet == charset.Alphabet7Bit {
		octets = charset.PackedLength(length, 0)
	}
	if octets > r.remaining() {
		if !d.Tolerant {
			return fmt.Errorf("%w: user data of %d bytes, got %d", gsm.ErrTruncatedPdu, octets, r.remaining())
		}
		result.Truncated = true
		octets = r.remaining()
		length = octets
		if alphabet == charset.Alphabet7Bit {
			length = charset.PackedSeptets(octets, 0)
		}
	}
	userData, _ := r.take(octets, "user data")

	payload := userData
	septets := length
	fillBits := 0
	if udhi {
		header, headerLength, err := ParseUDH(userData)
		if err != nil {
			return err
		}
		result.UDH = &header
		payload = userData[headerLength:]
		if alphabet == charset.Alphabet7Bit {
			septets = length - (headerLength*8+6)/7
			fillBits = charset.FillBits(headerLength)
			if septets < 0 {
				return fmt.Errorf("%w: user data header of %d bytes exceeds %d septets", gsm.ErrTruncatedPdu, headerLength, length)
			}
		}
	}

	var text string
	switch alphabet {
	case charset.Alphabet7Bit:
		text, err = charset.DecodePackedGSM7(payload, septets, fillBits)
	case charset.AlphabetUCS2:
		if len(payload)%2 != 0 && d.Tolerant {
			result.Truncated = true
			payload = payload[:len(payload)-1]
		}
		text, err = charset.DecodeUCS2Bytes(payload)
	}
	if err != nil {
		return err
	}

	result.Text = text
	result.Data = append([]byte(nil), payload...)
	return nil
}

// decodeSMSC decodes the SMSC information at the start of a PDU according to [27.005] 3.3.1.
// It returns the address and the number of bytes it occupies.
func decodeSMSC(b []byte) (gsm.Address, int, error) {
	if len(b) < 1 {
		return gsm.Address{}, 0, fmt.Errorf("%w: SMSC length missing", gsm.ErrTruncatedPdu)
	}
	length := int(b[0])
	if length == 0 {
		return gsm.Address{}, 1, nil
	}
	if length+1 > len(b) {
		return gsm.Address{}, 0, fmt.Errorf("%w: SMSC information of %d bytes, got %d", gsm.ErrTruncatedPdu, length, len(b)-1)
	}
	address, err := decodeAddress(gsm.TypeOfAddress(b[1]), b[2:length+1], 2*(length-1))
	if err != nil {
		return gsm.Address{}, 0, fmt.Errorf("SMSC: %w", err)
	}
	return address, length + 1, nil
}

// decodeAddress decodes the address value of the given count of semi-octets according to [23.040] 9.1.2.5.
// The digits of an alphanumeric address are kept as hex digits, the decoded text goes to Alpha.
func decodeAddress(addressType gsm.TypeOfAddress, value []byte, semiOctets int) (gsm.Address, error) {
	result := gsm.Address{Type: addressType}
	if addressType.Alphanumeric() {
		octets := (semiOctets + 1) / 2
		if octets > len(value) {
			return gsm.Address{}, fmt.Errorf("%w: alphanumeric address of %d bytes, got %d", gsm.ErrTruncatedPdu, octets, len(value))
		}
		alpha, err := charset.DecodePackedGSM7(value[:octets], semiOctets*4/7, 0)
		if err != nil {
			return gsm.Address{}, err
		}
		result.Number = gsm.BinaryToHex(value[:octets])
		result.Alpha = alpha
		return result, nil
	}

	number, err := gsm.DecodeSemiOctets(value, semiOctets)
	if err != nil {
		return gsm.Address{}, err
	}
	result.Number = number
	return result, nil
}

type reader struct {
	bytes []byte
	pos   int
}

func (r *reader) remaining() int {
	return len(r.bytes) - r.pos
}

func (r *reader) rest() []byte {
	return r.bytes[r.pos:]
}

func (r *reader) skip(n int) {
	r.pos += n
}

func (r *reader) byte(what string) (byte, error) {
	if r.remaining() < 1 {
		return 0, fmt.Errorf("%w: %s missing at offset %d", gsm.ErrTruncatedPdu, what, r.pos)
	}
	result := r.bytes[r.pos]
	r.pos++
	return result, nil
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if r.remaining() < n {
		return nil, fmt.Errorf("%w: %s needs %d bytes at offset %d, got %d", gsm.ErrTruncatedPdu, what, n, r.pos, r.remaining())
	}
	result := r.bytes[r.pos : r.pos+n]
	r.pos += n
	return result, nil
}

// address reads an address field: the count of semi-octets, the type-of-address and the value.
func (r *reader) address(what string) (gsm.Address, error) {
	semiOctets, err := r.byte(what + " length")
	if err != nil {
		return gsm.Address{}, err
	}
	addressType, err := r.byte(what + " type")
	if err != nil {
		return gsm.Address{}, err
	}
	value, err := r.take((int(semiOctets)+1)/2, what)
	if err != nil {
		return gsm.Address{}, err
	}
	result, err := decodeAddress(gsm.TypeOfAddress(addressType), value, int(semiOctets))
	if err != nil {
		return gsm.Address{}, fmt.Errorf("%s: %w", what, err)
	}
	return result, nil
}

func (r *reader) timestamp(what string) (Timestamp, error) {
	value, err := r.take(TimestampLength, what)
	if err != nil {
		return Timestamp{}, err
	}
	return DecodeTimestamp(value)
}

func (r *reader) protocolAndCoding(result *Message) error {
	protocolID, err := r.byte("protocol identifier")
	if err != nil {
		return err
	}
	dcs, err := r.byte("data coding scheme")
	if err != nil {
		return err
	}
	result.ProtocolID = protocolID
	result.DCS = DCS(dcs)
	return nil
}
