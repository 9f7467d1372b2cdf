package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/sms/encoding/pdumode"
	"github.com/warthog618/sms/encoding/tpdu"

	"github.com/ftl/gsm-pei/charset"
	"github.com/ftl/gsm-pei/gsm"
)

// Received from a modem with +CMT and +CMGR. The declared lengths exceed the transmitted data.
const (
	receivedCMT   = "0891683110304705F02408A001960900000842405202147023569A8C8BC17801FF1A003700380032003200300036002867096548671F4E3A00355206949F0029FF0C8BF760A8786E8BA4662F673A4E3B672C4EBAFF0C5982975E673A4E3B672C4EBA8BF75FFD75656B644FE1606F30"
	receivedCMGR1 = "099164000339541902F02409A101568937F10008421060219522237630104E2D56FD75354FE1301160A86B635728767B5F55201C4E2D56FD75354FE1201D004100500050FF0C9A8C8BC178014E3AFF1A003300380038003900340037FF0C8BF7572800335206949F51858F9351653002907F514D969079C16CC49732FF0C9A8C8BC17801520752FF544A77E54ED64EBA"
	receivedCMGR2 = "099164000339541902F0240BA10186425495F50008421060312452236030108109810930119A8C8BC17801FF1A0033003500380039FF0C8BE59A8C8BC1780175284E8E6CE8518C81098109FF0C8BF752FF6CC4973230026B228FCE4F7F752881098109FF0C5F00542F5DE54F5C597D5FC360C5FF0C4E484E4854D2"
)

const (
	helloHello         = "07917283010010F5040BC87238880900F10000993092516195800AE8329BFD4697D9EC37"
	concatenatedPart   = "0791947101670000440D91947116325476F800004230513154034012050003CC0201906536FB0DBABFE56C32"
	eightBitData       = "00040481214300043221133295950A030102FF"
	alphanumericFrom   = "00040BD0C7F7FBCC2E0300004210100000000002E834"
	statusReport       = "00062A0D91947116325476F8423051315403404230513154044000"
	statusReportWithUD = "00062B0D91947116325476F8423051315403404230513154044046060804004F004B"
	compressedText     = "000404812143002442101000000000026834"
	storedSubmit       = "0031050D91947116325476F80008AA0400480069"
)

func TestDecodeHex_Tolerant(t *testing.T) {
	tt := []struct {
		desc        string
		pdu         string
		length      int
		smsc        string
		number      string
		addressType gsm.TypeOfAddress
		text        string
		timestamp   Timestamp
	}{
		{
			desc:        "cmt",
			pdu:         receivedCMT,
			length:      103,
			smsc:        "+8613010374500",
			number:      "10699000",
			addressType: 0xA0,
			text:        "验证码：782206(有效期为5分钟)，请您确认是机主本人，如非机主本人请忽略此信息",
			timestamp:   Timestamp{Year: 2024, Month: 4, Day: 25, Hour: 20, Minute: 41, Second: 7, Zone: 32},
		},
		{
			desc:        "cmgr telecom",
			pdu:         receivedCMGR1,
			length:      136,
			smsc:        "+460030934591200",
			number:      "106598731",
			addressType: gsm.NationalAddress,
			text:        "【中国电信】您正在登录“中国电信”APP，验证码为：388947，请在3分钟内输入。避免隐私泄露，验证码切勿告知他人",
			timestamp:   Timestamp{Year: 2024, Month: 1, Day: 6, Hour: 12, Minute: 59, Second: 22, Zone: 32},
		},
		{
			desc:        "cmgr maimai",
			pdu:         receivedCMGR2,
			length:      115,
			smsc:        "+460030934591200",
			number:      "10682445595",
			addressType: gsm.NationalAddress,
			text:        "【脉脉】验证码：3589，该验证码用于注册脉脉，请勿泄露。欢迎使用脉脉，开启工作好心情，么么哒",
			timestamp:   Timestamp{Year: 2024, Month: 1, Day: 6, Hour: 13, Minute: 42, Second: 25, Zone: 32},
		},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := Decoder{Tolerant: true}.DecodeHex(tc.pdu, tc.length)
			require.NoError(t, err)

			assert.Equal(t, DeliverMessage, actual.Type)
			assert.Equal(t, tc.smsc, actual.SMSC.String())
			assert.Equal(t, tc.number, actual.Address.String())
			assert.Equal(t, tc.addressType, actual.Address.Type)
			assert.Equal(t, charset.AlphabetUCS2, actual.Alphabet)
			assert.Equal(t, tc.text, actual.Text)
			assert.Equal(t, tc.timestamp, actual.Timestamp)
			assert.True(t, actual.Truncated)
		})
	}
}

func TestDecodeHex_StrictRejectsTruncation(t *testing.T) {
	tt := []struct {
		desc   string
		pdu    string
		length int
	}{
		{desc: "declared TPDU length", pdu: receivedCMT, length: 103},
		{desc: "declared user data length", pdu: receivedCMT, length: 0},
		{desc: "cmgr declared TPDU length", pdu: receivedCMGR1, length: 136},
		{desc: "cmgr declared user data length", pdu: receivedCMGR2, length: 113},
		{desc: "missing user data", pdu: helloHello[:len(helloHello)-4], length: 0},
		{desc: "missing timestamp", pdu: helloHello[:40], length: 0},
		{desc: "missing address", pdu: helloHello[:20], length: 0},
		{desc: "missing SMSC", pdu: "0791728301", length: 0},
		{desc: "empty", pdu: "", length: 0},
		{desc: "user data header exceeds user data", pdu: "0044048121430000423051315403400206050003CC0201", length: 0},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := DecodeHex(tc.pdu, tc.length)
			assert.ErrorIs(t, err, gsm.ErrTruncatedPdu)
			assert.Equal(t, "", actual.Text)
		})
	}
}

func TestDecodeHex_MalformedHex(t *testing.T) {
	_, err := DecodeHex("07917283010010F5040BC8723888090", 0)
	assert.ErrorIs(t, err, gsm.ErrMalformedHex)

	_, err = DecodeHex("0791728301001XF5", 0)
	assert.ErrorIs(t, err, gsm.ErrMalformedHex)
}

func TestDecodeHex_SurplusBytesIgnored(t *testing.T) {
	actual, err := DecodeHex(helloHello+"FFFF", 28)

	require.NoError(t, err)
	assert.Equal(t, "hellohello", actual.Text)
	assert.False(t, actual.Truncated)
}

func TestDecodeHex_Deliver(t *testing.T) {
	actual, err := DecodeHex(helloHello, 0)
	require.NoError(t, err)

	assert.Equal(t, "+27381000015", actual.SMSC.String())
	assert.Equal(t, "27838890001", actual.Address.String())
	assert.Equal(t, gsm.SubscriberNumber, actual.Address.Type.TypeOfNumber())
	assert.Equal(t, charset.Alphabet7Bit, actual.Alphabet)
	assert.Equal(t, "hellohello", actual.Text)
	assert.False(t, actual.MoreMessagesToSend)
	assert.Nil(t, actual.UDH)
	assert.Equal(t, 3, actual.Timestamp.Month)
	assert.Equal(t, 29, actual.Timestamp.Day)
	assert.Equal(t, 8, actual.Timestamp.Zone)
}

func TestDecodeHex_ConcatenatedPart(t *testing.T) {
	actual, err := DecodeHex(concatenatedPart, 36)
	require.NoError(t, err)

	assert.Equal(t, "+491710760000", actual.SMSC.String())
	assert.Equal(t, "+4917612345678", actual.Address.String())
	assert.Equal(t, "Hello world", actual.Text)
	assert.Equal(t, Timestamp{Year: 2024, Month: 3, Day: 15, Hour: 13, Minute: 45, Second: 30, Zone: 4}, actual.Timestamp)
	require.NotNil(t, actual.UDH)
	concatenation, ok := actual.Concatenation()
	require.True(t, ok)
	assert.Equal(t, Concatenation{Reference: 0xCC, Total: 2, Sequence: 1}, concatenation)
}

func TestDecodeHex_EightBitData(t *testing.T) {
	actual, err := DecodeHex(eightBitData, 0)
	require.NoError(t, err)

	assert.Equal(t, charset.Alphabet8Bit, actual.Alphabet)
	assert.Equal(t, []byte{0x01, 0x02, 0xFF}, actual.Data)
	assert.Equal(t, "", actual.Text)
	assert.Equal(t, "1234", actual.Address.String())
	assert.True(t, actual.SMSC.Empty())
	assert.Equal(t, -20, actual.Timestamp.Zone)
	assert.Equal(t, "2023-12-31T23:59:59-05:00", actual.Timestamp.String())
}

func TestDecodeHex_AlphanumericOriginator(t *testing.T) {
	actual, err := DecodeHex(alphanumericFrom, 0)
	require.NoError(t, err)

	assert.True(t, actual.Address.Type.Alphanumeric())
	assert.Equal(t, "Google", actual.Address.Alpha)
	assert.Equal(t, "C7F7FBCC2E03", actual.Address.Number)
	assert.Equal(t, "hi", actual.Text)
}

func TestDecodeHex_StatusReport(t *testing.T) {
	actual, err := DecodeHex(statusReport, 0)
	require.NoError(t, err)

	assert.Equal(t, StatusReportMessage, actual.Type)
	assert.Equal(t, byte(0x2A), actual.Reference)
	assert.Equal(t, "+4917612345678", actual.Address.String())
	assert.Equal(t, 30, actual.Timestamp.Second)
	assert.Equal(t, 40, actual.Discharge.Second)
	assert.Equal(t, StatusDelivered, actual.Status)
	assert.True(t, actual.Status.Completed())
	assert.Equal(t, "", actual.Text)

	actual, err = DecodeHex(statusReportWithUD, 0)
	require.NoError(t, err)

	assert.Equal(t, byte(0x2B), actual.Reference)
	assert.Equal(t, StatusValidityPeriodExpired, actual.Status)
	assert.True(t, actual.Status.PermanentError())
	assert.Equal(t, DCSUCS2, actual.DCS)
	assert.Equal(t, "OK", actual.Text)
}

func TestDecodeHex_StoredSubmit(t *testing.T) {
	actual, err := DecodeHex(storedSubmit, 0)
	require.NoError(t, err)

	assert.Equal(t, SubmitMessage, actual.Type)
	assert.Equal(t, byte(0x05), actual.Reference)
	assert.True(t, actual.StatusReport)
	assert.Equal(t, "+4917612345678", actual.Address.String())
	assert.Equal(t, RelativeValidityPeriod, actual.Validity.Format)
	assert.Equal(t, "96h0m0s", actual.Validity.Relative.String())
	assert.Equal(t, "Hi", actual.Text)
}

func TestDecodeHex_UnsupportedEncoding(t *testing.T) {
	actual, err := DecodeHex(compressedText, 0)

	assert.ErrorIs(t, err, gsm.ErrUnsupportedEncoding)
	assert.Equal(t, Message{}, actual)
}

func TestDecodeTPDU_UnsupportedMessageType(t *testing.T) {
	_, err := DecodeTPDU([]byte{0x03, 0x00})

	assert.ErrorIs(t, err, ErrUnsupportedMessageType)
}

func TestDecode_DoesNotReferToInput(t *testing.T) {
	b, err := gsm.HexToBinary(concatenatedPart)
	require.NoError(t, err)

	actual, err := Decode(b, 0)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0
	}

	assert.Equal(t, "Hello world", actual.Text)
	assert.Equal(t, []byte{0xCC, 0x02, 0x01}, actual.UDH.Elements[0].Data)
}

func TestCopyText(t *testing.T) {
	message := Message{Text: "验证码"}

	_, err := message.CopyText(make([]byte, 8))
	var tooSmall *gsm.BufferTooSmallError
	require.ErrorAs(t, err, &tooSmall)
	assert.Equal(t, 9, tooSmall.Required)

	dst := make([]byte, 9)
	n, err := message.CopyText(dst)
	require.NoError(t, err)
	assert.Equal(t, "验证码", string(dst[:n]))
}

func TestDecodeHex_MatchesReference(t *testing.T) {
	tt := []string{helloHello, concatenatedPart}
	for _, pdu := range tt {
		t.Run(pdu, func(t *testing.T) {
			actual, err := DecodeHex(pdu, 0)
			require.NoError(t, err)

			raw, err := gsm.HexToBinary(pdu)
			require.NoError(t, err)
			p, err := pdumode.UnmarshalBinary(raw)
			require.NoError(t, err)
			reference := &tpdu.TPDU{}
			require.NoError(t, reference.UnmarshalBinary(p.TPDU))
			alphabet, err := reference.Alphabet()
			require.NoError(t, err)
			text, err := tpdu.DecodeUserData(reference.UD, reference.UDH, alphabet)
			require.NoError(t, err)

			assert.Equal(t, string(text), actual.Text)

			total, sequence, ref, ok := reference.ConcatInfo()
			concatenation, actualOK := actual.Concatenation()
			assert.Equal(t, ok, actualOK)
			if ok {
				assert.Equal(t, total, int(concatenation.Total))
				assert.Equal(t, sequence, int(concatenation.Sequence))
				assert.Equal(t, ref, int(concatenation.Reference))
			}
		})
	}
}
