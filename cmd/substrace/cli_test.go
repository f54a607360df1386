package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"substrace/internal/fix"
	"substrace/internal/lint"
	"substrace/internal/lints"
	"substrace/internal/project"
)

func TestDefaultConfigLoadsBack(t *testing.T) {
	data, err := defaultConfigTOML()
	if err != nil {
		t.Fatalf("defaultConfigTOML: %v", err)
	}
	path := filepath.Join(t.TempDir(), "substrace.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v\n%s", err, data)
	}
	if len(cfg.Undecoded) != 0 {
		t.Fatalf("undecoded keys %v in\n%s", cfg.Undecoded, data)
	}
	reg := lints.Registry(cfg.LintOptions())
	if err := cfg.Validate(reg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, l := range reg.Lints() {
		if got := cfg.Lints[l.Name]; got != l.Default {
			t.Errorf("%s = %s, want %s", l.Name, got, l.Default)
		}
	}
	if len(cfg.Panics.Required) == 0 {
		t.Errorf("panics.required not written")
	}
}

func overrideCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "x"}
	addAnalysisFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestLevelOverrides(t *testing.T) {
	cmd := overrideCmd(t, "-A", "panics", "-D", "substrace::storage_iter_insert,panics", "-W", "unbalanced_backticks")
	got, err := levelOverrides(cmd)
	if err != nil {
		t.Fatalf("levelOverrides: %v", err)
	}
	want := map[string]lint.Level{
		"panics":               lint.Deny,
		"storage_iter_insert":  lint.Deny,
		"unbalanced_backticks": lint.Warn,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %s, want %s", k, got[k], v)
		}
	}
}

func TestLevelOverridesUnknown(t *testing.T) {
	_, err := levelOverrides(overrideCmd(t, "-D", "no_such_lint"))
	if !errors.Is(err, project.ErrUnknownLint) {
		t.Fatalf("err = %v, want ErrUnknownLint", err)
	}
}

func TestExplain(t *testing.T) {
	for _, q := range []string{"panics", "substrace::panics", "RTM4001", "rtm4001"} {
		var buf bytes.Buffer
		if err := explain(&buf, q); err != nil {
			t.Fatalf("explain(%q): %v", q, err)
		}
		if !strings.HasPrefix(buf.String(), "substrace::panics (RTM4001)\ndefault level: warn\n") {
			t.Errorf("explain(%q) =\n%s", q, buf.String())
		}
	}

	var buf bytes.Buffer
	if err := explain(&buf, "IO5002"); err != nil {
		t.Fatalf("explain(IO5002): %v", err)
	}
	if got := buf.String(); got != "IO5002: Malformed analysis unit\n" {
		t.Errorf("explain(IO5002) = %q", got)
	}

	var ee *exitError
	if err := explain(&buf, "nope"); !errors.As(err, &ee) || ee.code != exitFailure {
		t.Fatalf("explain(nope) err = %v", err)
	}
}

func TestLintTable(t *testing.T) {
	var buf bytes.Buffer
	list := lints.Registry(lints.Options{}).Lints()
	writeLintTable(&buf, list, false)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(list)+1 {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(list)+1, buf.String())
	}
	if !strings.HasPrefix(lines[0], "LINT") || !strings.Contains(lines[0], "DESCRIPTION") {
		t.Errorf("header = %q", lines[0])
	}
	descCol := strings.Index(lines[0], "DESCRIPTION")
	for i, l := range list {
		if !strings.HasPrefix(lines[i+1], l.Name+" ") {
			t.Errorf("line %d = %q, want lint %s", i+1, lines[i+1], l.Name)
		}
		if strings.Index(lines[i+1], l.Desc) != descCol {
			t.Errorf("line %d: description not aligned: %q", i+1, lines[i+1])
		}
	}
}

func TestProgressUI(t *testing.T) {
	cases := []struct {
		mode  string
		units int
		quiet bool
		tty   bool
		want  bool
	}{
		{"auto", 3, false, true, true},
		{"", 3, false, false, false},
		{" ON ", 3, false, false, true},
		{"on", 1, false, true, false},
		{"on", 3, true, true, false},
		{"off", 3, false, true, false},
	}
	for _, tc := range cases {
		got, err := progressUI(tc.mode, tc.units, tc.quiet, tc.tty)
		if err != nil || got != tc.want {
			t.Errorf("progressUI(%+v) = %v, %v", tc, got, err)
		}
	}
	if _, err := progressUI("sometimes", 2, false, true); err == nil {
		t.Errorf("progressUI(sometimes) accepted")
	}
}

func TestHandleApplyResultNoFixes(t *testing.T) {
	var buf bytes.Buffer
	res := &fix.ApplyResult{Skipped: []fix.SkippedFix{{Title: "add tag", Reason: "expectation mismatch"}}}
	if err := handleApplyResult(&buf, res, fix.ErrNoFixes); err != nil {
		t.Fatalf("handleApplyResult: %v", err)
	}
	want := "Skipped fixes:\n  add tag [(unnamed)]: expectation mismatch\nNo applicable fixes found.\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
