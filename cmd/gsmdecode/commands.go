package main

import (
	"fmt"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ftl/gsm-pei/gsm"
	"github.com/ftl/gsm-pei/pdu"
)

func newPDUCmd(a *app) *cobra.Command {
	var length int
	var withoutSMSC bool
	cmd := &cobra.Command{
		Use:   "pdu <hex>...",
		Short: "Decode SMS PDUs given in hex",
		Long:  `Decodes SMS-DELIVER, SMS-SUBMIT and SMS-STATUS-REPORT PDUs as they are received in PDU mode.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decoder := a.decoder()
			for _, arg := range args {
				var message pdu.Message
				var err error
				if withoutSMSC {
					var b []byte
					b, err = gsm.HexToBinary(arg)
					if err == nil {
						message, err = decoder.DecodeTPDU(b)
					}
				} else {
					message, err = decoder.DecodeHex(arg, length)
				}
				if err != nil {
					return fmt.Errorf("cannot decode %s: %w", arg, err)
				}
				level.Debug(a.logger).Log("msg", "decoded", "type", message.Type, "length", length)
				a.out.logJSON(newMessageView(message))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", 0, "declared TPDU length in octets, 0 to skip the check")
	cmd.Flags().BoolVar(&withoutSMSC, "tpdu", false, "the PDU does not start with the service center address")
	return cmd
}

func newATCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "at <line>...",
		Short: "Decode AT response lines",
		Long:  `Decodes AT response lines like +CREG, +CUSD or +CLCC, one line per argument.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, line := range args {
				response, err := parseResponse(line)
				if err != nil {
					return err
				}
				a.out.logJSON(response)
			}
			return nil
		},
	}
}

func newEncodeCmd(a *app) *cobra.Command {
	var submit pdu.Submit
	var smsc string
	var validity time.Duration
	var reference uint8
	cmd := &cobra.Command{
		Use:   "encode <number> <text>",
		Short: "Encode a text message into SMS-SUBMIT PDUs",
		Long:  `Encodes a text message into one or more SMS-SUBMIT PDUs together with the AT+CMGS command to send each of them.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			submit.Destination = gsm.ParseAddress(args[0])
			submit.Text = args[1]
			submit.SMSC = gsm.ParseAddress(smsc)
			submit.Validity = pdu.ValidityPeriod(validity)
			submit.Reference = reference
			submit.ConcatenationReference = reference

			parts, err := pdu.EncodeSubmit(submit)
			if err != nil {
				return err
			}
			level.Debug(a.logger).Log("msg", "encoded", "destination", submit.Destination, "parts", len(parts))
			a.out.logJSON(newPartViews(parts))
			return nil
		},
	}
	cmd.Flags().StringVar(&smsc, "smsc", "", "service center address, empty to use the default of the modem")
	cmd.Flags().DurationVar(&validity, "validity", 0, "relative validity period, 0 for none")
	cmd.Flags().Uint8Var(&reference, "reference", 0, "message reference of the first part")
	cmd.Flags().BoolVar(&submit.StatusReport, "report", false, "request a status report")
	cmd.Flags().BoolVar(&submit.RejectDuplicates, "reject-duplicates", false, "reject duplicates in the service center")
	cmd.Flags().BoolVar(&submit.Flash, "flash", false, "send as class 0 message")
	cmd.Flags().BoolVar(&submit.UCS2, "ucs2", false, "always use the UCS2 alphabet")
	return cmd
}
