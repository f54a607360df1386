package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"substrace/internal/lint"
	"substrace/internal/lints"
)

var lintsCmd = &cobra.Command{
	Use:   "lints",
	Short: "List the built-in lints",
	RunE:  runLints,
}

func init() {
	lintsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type lintJSON struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Code    string `json:"code"`
	Default string `json:"default"`
	Desc    string `json:"description"`
}

func runLints(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	list := lints.Registry(lints.Options{}).Lints()
	switch format {
	case "json":
		out := make([]lintJSON, 0, len(list))
		for _, l := range list {
			out = append(out, lintJSON{Name: l.Name, ID: l.ID(), Code: l.Code.ID(), Default: l.Default.String(), Desc: l.Desc})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "pretty":
		colored, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		writeLintTable(cmd.OutOrStdout(), list, colored)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func writeLintTable(w io.Writer, list []*lint.Lint, colored bool) {
	header := lipgloss.NewStyle().Bold(true)
	levelStyle := map[lint.Level]lipgloss.Style{
		lint.Allow: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		lint.Warn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		lint.Deny:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
	render := func(s lipgloss.Style, text string) string {
		if !colored {
			return text
		}
		return s.Render(text)
	}

	nameW, codeW := len("LINT"), len("CODE")
	for _, l := range list {
		nameW = max(nameW, runewidth.StringWidth(l.Name))
		codeW = max(codeW, len(l.Code.ID()))
	}
	const levelW = len("DEFAULT")

	row := func(name, code, level, desc, levelText string) string {
		return runewidth.FillRight(name, nameW) + "  " +
			runewidth.FillRight(code, codeW) + "  " +
			level + strings.Repeat(" ", levelW-len(levelText)) + "  " + desc
	}
	fmt.Fprintln(w, render(header, row("LINT", "CODE", "DEFAULT", "DESCRIPTION", "DEFAULT")))
	for _, l := range list {
		lvl := l.Default.String()
		fmt.Fprintln(w, strings.TrimRight(row(l.Name, l.Code.ID(), render(levelStyle[l.Default], lvl), l.Desc, lvl), " "))
	}
}
