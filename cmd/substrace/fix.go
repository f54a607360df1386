package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"substrace/internal/driver"
	"substrace/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <unit|directory>...",
	Short: "Apply suggested fixes to the sources of analysis units",
	Long: `Lint the units, then apply their suggested fixes to the source files on disk.
Units must be re-exported after fixing; the spans in the old ones are stale.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	addAnalysisFlags(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnceFlag, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnceFlag) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnceFlag {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	opts := fix.ApplyOptions{
		Mode:     mode,
		TargetID: targetID,
	}

	a, err := loadAnalysis(cmd)
	if err != nil {
		return err
	}
	// fixes change the sources, cached results would be stale next time anyway
	a.opts.Cache = nil

	paths, err := driver.ExpandInputs(args)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	// id уникален только в пределах одного юнита
	if targetID != "" && len(paths) != 1 {
		return fmt.Errorf("fix: id can only be used with a single unit")
	}

	results, err := driver.CheckPaths(cmd.Context(), paths, a.opts)
	if err != nil {
		return fmt.Errorf("fix: check failed: %w", err)
	}

	w := cmd.OutOrStdout()
	var firstErr error
	for _, r := range results {
		if r.Files == nil {
			// the unit did not load, nothing to fix
			continue
		}
		res, applyErr := fix.Apply(r.Files, r.Bag.Items(), opts)
		if len(results) > 1 {
			fmt.Fprintf(w, "%s:\n", r.Path)
		}
		if err := handleApplyResult(w, res, applyErr); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", r.Path, err)
		}
		if mode == fix.ApplyModeOnce && res != nil && len(res.Applied) > 0 {
			break
		}
	}
	return firstErr
}

func handleApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		if _, err := fmt.Fprintf(w, "Applied %d fix(es):\n", len(res.Applied)); err != nil {
			return err
		}
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			if _, err := fmt.Fprintf(w, "  %s [%s] %s: %s (%d edits, %s)\n",
				item.Title, item.ID, item.Code.ID(), location, item.EditCount, item.Applicability); err != nil {
				return err
			}
		}
	}

	if len(res.FileChanges) > 0 {
		if _, err := fmt.Fprintln(w, "Updated files:"); err != nil {
			return err
		}
		for _, change := range res.FileChanges {
			if _, err := fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount); err != nil {
				return err
			}
		}
	}

	if len(res.Skipped) > 0 {
		if _, err := fmt.Fprintln(w, "Skipped fixes:"); err != nil {
			return err
		}
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			var err error
			if skip.Title != "" {
				_, err = fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				_, err = fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
			}
			if err != nil {
				return err
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			_, err := fmt.Fprintln(w, "No applicable fixes found.")
			return err
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		_, err := fmt.Fprintln(w, "No fixes applied.")
		return err
	}
	return nil
}
