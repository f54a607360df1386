package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"substrace/internal/diag"
	"substrace/internal/lint"
	"substrace/internal/lints"
)

var explainCmd = &cobra.Command{
	Use:   "explain <lint|CODE>",
	Short: "Describe a lint or diagnostic code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return explain(cmd.OutOrStdout(), args[0])
	},
}

// engineCodes are the diagnostic codes no lint owns.
var engineCodes = []diag.Code{
	diag.IOLoadError,
	diag.IOInvalidUnit,
	diag.EngAnalysisIncomplete,
	diag.EngTimings,
}

func explain(w io.Writer, query string) error {
	reg := lints.Registry(lints.Options{})
	if l, ok := reg.Lookup(query); ok {
		writeExplanation(w, l)
		return nil
	}
	for _, l := range reg.Lints() {
		if strings.EqualFold(l.Code.ID(), query) {
			writeExplanation(w, l)
			return nil
		}
	}
	for _, c := range engineCodes {
		if strings.EqualFold(c.ID(), query) {
			fmt.Fprintf(w, "%s: %s\n", c.ID(), c.Title())
			return nil
		}
	}
	return &exitError{code: exitFailure, err: fmt.Errorf("no lint or code named %q (see `substrace lints`)", query)}
}

func writeExplanation(w io.Writer, l *lint.Lint) {
	fmt.Fprintf(w, "%s (%s)\n", l.ID(), l.Code.ID())
	fmt.Fprintf(w, "default level: %s\n\n", l.Default)
	fmt.Fprintln(w, l.Desc)
	if l.Explain != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(l.Explain))
	}
}
