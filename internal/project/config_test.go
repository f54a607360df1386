package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"substrace/internal/docs"
	"substrace/internal/lint"
	"substrace/internal/lints"
	"substrace/internal/lints/storageiter"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	want := write(t, root, "substrace.toml", `
[lints]
storage_iter_insert = "deny"
"substrace::panics" = "allow"

[storage]
report = "every"

[docs]
mixed_raw = "analyze"

[panics]
required = ["unwrap_used"]

[check]
jobs = 2
`)
	nested := filepath.Join(root, "pallets", "balances")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	if cfg.Path != want {
		t.Fatalf("found %s, want %s", cfg.Path, want)
	}
	if err := cfg.Validate(lints.Registry(lints.Options{})); err != nil {
		t.Fatal(err)
	}
	if cfg.Lints["storage_iter_insert"] != lint.Deny || cfg.Lints["panics"] != lint.Allow {
		t.Fatalf("levels not normalised: %v", cfg.Lints)
	}
	opts := cfg.LintOptions()
	if opts.StoragePolicy != storageiter.ReportEvery || opts.MixedRaw != docs.Analyze || len(opts.RequiredPanicLints) != 1 {
		t.Fatalf("unexpected pass options %+v", opts)
	}
	if cfg.Check.Jobs != 2 || len(cfg.Undecoded) != 0 {
		t.Fatalf("check section %+v undecoded %v", cfg.Check, cfg.Undecoded)
	}
}

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, ok, err := Discover(t.TempDir())
	if err != nil || ok {
		t.Fatalf("expected no config, ok=%v err=%v", ok, err)
	}
	if cfg.Storage.Report != storageiter.ReportFirst || cfg.Docs.MixedRaw != docs.AssumePresent {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestUndecodedKeysReported(t *testing.T) {
	p := write(t, t.TempDir(), "substrace.toml", "[storage]\nreport = \"first\"\nwindow = 3\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Undecoded) != 1 || cfg.Undecoded[0] != "storage.window" {
		t.Fatalf("undecoded = %v", cfg.Undecoded)
	}
}

func TestInvalidValues(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(write(t, dir, "substrace.toml", "[lints]\npanics = \"loud\"\n")); err == nil {
		t.Fatal("invalid level accepted")
	}
	if _, err := Load(write(t, dir, "substrace.toml", "[storage]\nreport = \"sometimes\"\n")); err == nil {
		t.Fatal("invalid policy accepted")
	}

	cfg, err := Load(write(t, dir, "substrace.toml", "[lints]\nno_such_lint = \"deny\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(lints.Registry(lints.Options{})); !errors.Is(err, ErrUnknownLint) {
		t.Fatalf("expected ErrUnknownLint, got %v", err)
	}
}

func TestYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".substrace.yaml", "lints:\n  missing_transactional: warn\ndocs:\n  mixed_raw: analyze\n")
	cfg, ok, err := Discover(dir)
	if err != nil || !ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	if cfg.Lints["missing_transactional"] != lint.Warn || cfg.Docs.MixedRaw != docs.Analyze {
		t.Fatalf("unexpected yaml config %+v", cfg)
	}

	bad := write(t, dir, "bad.yaml", "storage:\n  windo: 3\n")
	if _, err := Load(bad); err == nil {
		t.Fatal("unknown yaml key accepted")
	}
	empty := write(t, dir, "empty.yaml", "")
	if _, err := Load(empty); err != nil {
		t.Fatalf("empty yaml: %v", err)
	}
}

func TestFingerprintTracksSettings(t *testing.T) {
	a, b := Default(), Default()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("equal configs hash differently")
	}
	b.Lints["panics"] = lint.Deny
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("level change not reflected")
	}
	b = Default()
	b.Storage.Report = storageiter.ReportEvery
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("policy change not reflected")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := Default()
	cfg.Lints["panics"] = lint.Deny
	cfg.Panics.Required = []string{"todo"}
	cp := cfg.Clone()
	cp.Lints["panics"] = lint.Allow
	cp.Panics.Required[0] = "panic"
	if cfg.Lints["panics"] != lint.Deny || cfg.Panics.Required[0] != "todo" {
		t.Fatal("clone shares state with the original")
	}
	if cfg.Fingerprint() == cp.Fingerprint() {
		t.Fatal("fingerprints must differ")
	}
}
