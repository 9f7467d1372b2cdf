package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
)

type printer struct {
	out io.Writer
	err io.Writer
	raw bool
}

func (p printer) logJSON(values ...interface{}) {
	for _, value := range values {
		m, err := json.Marshal(value)
		if err != nil {
			p.logError(err)
			return
		}

		if p.raw {
			fmt.Fprintln(p.out, string(m))
			continue
		}

		pj, err := prettyjson.Format(m)
		if err != nil {
			p.logError(err)
			return
		}
		fmt.Fprintf(p.out, "\n%s\n\n", string(pj))
	}
}

func (p printer) logUsage(u string) {
	fmt.Fprintf(p.err, color.YellowString("\nusage: %s\n\n"), u)
}

func (p printer) logError(err error) {
	if p.raw {
		fmt.Fprintf(p.err, "error: %s\n", err.Error())
		return
	}
	boldRed := color.New(color.FgRed, color.Bold)
	boldRed.Fprintf(p.err, "\nerror: ")

	fmt.Fprintf(p.err, "%s\n\n", color.RedString(err.Error()))
}
