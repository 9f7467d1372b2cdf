package main

import (
	"bufio"
	"io"
	"strings"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ftl/gsm-pei/at"
	"github.com/ftl/gsm-pei/pdu"
)

const maxLineLength = 64 * 1024

func newStreamCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Decode a modem trace from stdin",
		Long: `Decodes the output of a modem line by line. Messages (+CMT, +CMGR, +CDS followed by the PDU) are
decoded and concatenated messages are reassembled; all other known responses are decoded as with "at".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newStreamer(a.logger, a.out, a.decoder()).Run(cmd.InOrStdin())
		},
	}
}

type streamer struct {
	logger      kitlog.Logger
	out         printer
	indications *at.Indications
	stack       *pdu.Stack
}

func newStreamer(logger kitlog.Logger, out printer, decoder pdu.Decoder) *streamer {
	result := &streamer{
		logger: logger,
		out:    out,
	}
	result.stack = pdu.NewStack().
		WithMessageCallback(func(message pdu.MultipartMessage) {
			result.out.logJSON(newMultipartView(message))
		}).
		WithStatusReportCallback(func(message pdu.Message) {
			result.out.logJSON(newMessageView(message))
		})
	result.indications = at.NewIndications().WithMessages(decoder, result.handleMessage)
	return result
}

func (s *streamer) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	scanner.Split(at.ScanLines)
	for scanner.Scan() {
		s.handleLine(scanner.Text())
	}

	if s.indications.Waiting() {
		level.Warn(s.logger).Log("msg", "input ended before the PDU of a message")
	}
	for _, message := range s.stack.Pending() {
		level.Info(s.logger).Log("msg", "incomplete message", "reference", message.Reference, "sender", message.Sender, "parts", message.Parts())
	}
	return scanner.Err()
}

func (s *streamer) handleLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed == strings.TrimSpace(at.Prompt) {
		return
	}
	if s.indications.Put(trimmed) {
		return
	}
	if final, err := at.FinalResult(trimmed); final {
		level.Debug(s.logger).Log("msg", "final result", "line", trimmed, "err", err)
		return
	}
	if at.ResponseTag(trimmed) == "" {
		level.Debug(s.logger).Log("msg", "ignored line", "line", trimmed)
		return
	}

	response, err := parseResponse(trimmed)
	if err != nil {
		level.Warn(s.logger).Log("msg", "cannot decode response", "line", trimmed, "err", err)
		return
	}
	s.out.logJSON(response)
}

func (s *streamer) handleMessage(message at.IncomingMessage, err error) {
	if err != nil {
		level.Warn(s.logger).Log("msg", "cannot decode message", "err", err)
		return
	}
	level.Debug(s.logger).Log("msg", "message received", "tag", message.Tag, "type", message.Message.Type)

	if message.Message.Type == pdu.SubmitMessage {
		s.out.logJSON(newIncomingMessageView(message))
		return
	}
	if err := s.stack.Put(message.Message); err != nil {
		level.Warn(s.logger).Log("msg", "cannot reassemble message", "err", err)
	}
}
