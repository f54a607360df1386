package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"substrace/internal/hir"
	"substrace/internal/unit"
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags] <unit>",
	Short: "Print the lowered item tree of a unit",
	Long:  "Decode and lower a unit without linting it, then print the resulting crate tree with resolved spans.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().String("unit-format", "auto", "unit encoding (auto|json|msgpack)")
}

func runTree(cmd *cobra.Command, args []string) error {
	path := args[0]
	formatStr, err := cmd.Flags().GetString("unit-format")
	if err != nil {
		return fmt.Errorf("failed to get unit-format flag: %w", err)
	}
	format, err := unit.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if format == unit.FormatAuto {
		format = unit.FormatForPath(path)
	}

	// #nosec G304 -- path is a CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load unit: %w", err)
	}
	u, err := unit.Decode(data, format)
	if err != nil {
		return fmt.Errorf("invalid unit: %w", err)
	}
	crate, fs, err := unit.Lower(u, filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("invalid unit: %w", err)
	}
	return hir.Dump(cmd.OutOrStdout(), crate, fs)
}
