package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"substrace/internal/diag"
	"substrace/internal/diagfmt"
	"substrace/internal/driver"
	"substrace/internal/ui"
	"substrace/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <unit|directory>...",
	Short: "Lint analysis units",
	Long: `Lint one or more analysis units. Directories are searched recursively
for *.json and *.mp units; hidden directories and target/ are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "output format (pretty|json|sarif|short; default from config or pretty)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "show fix previews (implies --suggest)")
	checkCmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("deny-warnings", false, "exit with findings status on warnings too")
	checkCmd.Flags().Bool("clear-cache", false, "drop cached results before checking")
	checkCmd.Flags().String("ui", "auto", "progress UI for several units (auto|on|off)")
	addAnalysisFlags(checkCmd)
}

type checkOutput struct {
	format       string
	color        bool
	pathMode     diagfmt.PathMode
	withNotes    bool
	showFixes    bool
	preview      bool
	denyWarnings bool
}

// runCheck lints every unit named by args and renders the results.
// The exit status is exitFindings when any unit has errors, or warnings
// with --deny-warnings.
func runCheck(cmd *cobra.Command, args []string) error {
	a, err := loadAnalysis(cmd)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	out, err := readCheckOutput(cmd, a)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if clearCache && a.opts.Cache != nil {
		if err := a.opts.Cache.DropAll(); err != nil {
			return &exitError{code: exitFailure, err: fmt.Errorf("clear cache: %w", err)}
		}
	}

	paths, err := driver.ExpandInputs(args)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	if len(paths) == 0 {
		return &exitError{code: exitFailure, err: fmt.Errorf("no units found in %v", args)}
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	withUI, err := progressUI(uiValue, len(paths), quiet, isTerminal(os.Stderr))
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	var results []*driver.Result
	run := func(sink driver.ProgressSink) error {
		opts := a.opts
		opts.Progress = sink
		var err error
		results, err = driver.CheckPaths(cmd.Context(), paths, opts)
		return err
	}
	if withUI {
		err = ui.RunWithProgress(os.Stderr, "substrace check", paths, run)
	} else {
		err = run(nil)
	}
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	if err := renderResults(cmd.OutOrStdout(), results, out); err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	if failing(results, out.denyWarnings) {
		return &exitError{code: exitFindings}
	}
	return nil
}

func readCheckOutput(cmd *cobra.Command, a *analysis) (checkOutput, error) {
	var out checkOutput
	var err error
	if out.format, err = cmd.Flags().GetString("format"); err != nil {
		return out, fmt.Errorf("failed to get format flag: %w", err)
	}
	if out.format == "" {
		out.format = a.defaults.Format
	}
	if out.format == "" {
		out.format = "pretty"
	}
	switch out.format {
	case "pretty", "json", "sarif", "short":
	default:
		return out, fmt.Errorf("unknown format: %s", out.format)
	}

	pathMode, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return out, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if out.pathMode, ok = diagfmt.ParsePathMode(pathMode); !ok {
		return out, fmt.Errorf("unknown path mode: %s", pathMode)
	}
	if out.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return out, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return out, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if out.preview, err = cmd.Flags().GetBool("preview"); err != nil {
		return out, fmt.Errorf("failed to get preview flag: %w", err)
	}
	out.showFixes = suggest || out.preview
	if out.denyWarnings, err = cmd.Flags().GetBool("deny-warnings"); err != nil {
		return out, fmt.Errorf("failed to get deny-warnings flag: %w", err)
	}
	if out.color, err = useColor(cmd, os.Stdout); err != nil {
		return out, err
	}
	return out, nil
}

func renderResults(w io.Writer, results []*driver.Result, out checkOutput) error {
	switch out.format {
	case "pretty":
		opts := diagfmt.PrettyOpts{
			Color:       out.color,
			Context:     2,
			PathMode:    out.pathMode,
			ShowNotes:   out.withNotes,
			ShowFixes:   out.showFixes,
			ShowPreview: out.preview,
		}
		for _, r := range results {
			opts.Unit = r.Path
			diagfmt.Pretty(w, r.Bag, r.Files, opts)
		}
		printSummary(w, results)
	case "short":
		for _, r := range results {
			diagfmt.Short(w, r.Bag, r.Files, out.pathMode, r.Path)
		}
	case "json":
		opts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         out.pathMode,
			IncludeNotes:     out.withNotes,
			IncludeFixes:     out.showFixes,
			IncludePreviews:  out.preview,
		}
		units := make([]diagfmt.DiagnosticsOutput, 0, len(results))
		for _, r := range results {
			opts.Unit = r.Path
			o, err := diagfmt.BuildDiagnosticsOutput(r.Bag, r.Files, opts)
			if err != nil {
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
			units = append(units, o)
		}
		if err := diagfmt.JSONUnits(w, units); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "sarif":
		units := make([]diagfmt.Unit, 0, len(results))
		for _, r := range results {
			units = append(units, diagfmt.Unit{Path: r.Path, Bag: r.Bag, Files: r.Files})
		}
		meta := diagfmt.SarifRunMeta{
			ToolName:       "substrace",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		}
		if err := diagfmt.Sarif(w, units, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return nil
}

// printSummary prints the closing counts line of pretty output.
func printSummary(w io.Writer, results []*driver.Result) {
	var errs, warns, cached int
	for _, r := range results {
		errs += r.Bag.Count(diag.SevError)
		warns += r.Bag.Count(diag.SevWarning)
		if r.Cached {
			cached++
		}
	}
	line := fmt.Sprintf("checked %d unit(s): %d error(s), %d warning(s)", len(results), errs, warns)
	if cached > 0 {
		line += fmt.Sprintf(" (%d from cache)", cached)
	}
	fmt.Fprintln(w, line)
}

func failing(results []*driver.Result, denyWarnings bool) bool {
	for _, r := range results {
		if r.Bag.HasErrors() {
			return true
		}
		if denyWarnings && r.Bag.Count(diag.SevWarning) > 0 {
			return true
		}
	}
	return false
}

// progressUI decides whether CheckPaths runs under the bubbletea view on
// stderr. A single unit never gets one, and neither does --quiet.
func progressUI(mode string, units int, quiet, tty bool) (bool, error) {
	var on bool
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		on = tty
	case "on":
		on = true
	case "off":
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", mode)
	}
	return on && units > 1 && !quiet, nil
}
