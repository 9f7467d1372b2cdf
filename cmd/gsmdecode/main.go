// gsmdecode decodes the output of GSM modems: AT response lines and SMS PDUs.
package main

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/spf13/cobra"

	"github.com/ftl/gsm-pei/pdu"
)

type app struct {
	cfg    config
	logger kitlog.Logger
	out    printer
}

func (a *app) decoder() pdu.Decoder {
	return pdu.Decoder{Tolerant: a.cfg.Tolerant}
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := &app{cfg: cfg}
	rootCmd := newRootCmd(a)
	if err := rootCmd.Execute(); err != nil {
		a.out.logError(err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gsmdecode",
		Short:         "Decode AT responses and SMS PDUs of GSM modems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = printer{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr(), raw: a.cfg.Raw}
			if err := applyConfigFlags(cmd, &a.cfg); err != nil {
				return err
			}
			a.logger = newLogger(cmd.ErrOrStderr(), a.cfg.LogLevel)
			return nil
		},
	}
	a.out = printer{out: os.Stdout, err: os.Stderr, raw: a.cfg.Raw}
	addConfigFlags(rootCmd, &a.cfg)

	rootCmd.AddCommand(newPDUCmd(a))
	rootCmd.AddCommand(newATCmd(a))
	rootCmd.AddCommand(newEncodeCmd(a))
	rootCmd.AddCommand(newStreamCmd(a))

	return rootCmd
}
