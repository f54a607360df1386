package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"substrace/internal/diag"
	"substrace/internal/source"
)

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := sample("/home/user/project/src/lib.rs")
	fs.SetBaseDir("/home/user/project")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/src/lib.rs:3:5"},
		{name: "Relative path", mode: PathModeRelative, contains: "src/lib.rs:3:5"},
		{name: "Basename only", mode: PathModeBasename, contains: "\nlib.rs:3:5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := "\n" + buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			// Проверяем что есть основные элементы
			for _, want := range []string{"WARNING", "STO1001", "[storage_iter_insert]", "undefined results"} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected %q in output:\n%s", want, output)
				}
			}
		})
	}
}

func TestPrettySnippetUnderline(t *testing.T) {
	bag, fs := sample("lib.rs")
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	output := buf.String()

	for _, want := range []string{
		" 2 |     T::iter();\n",
		" 3 |     T::swap(1, 2);\n",
		"   |     ^~~~~~~~~~~~~\n",
		" 4 | }\n",
		"  help: consider collecting the keys first\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in:\n%s", want, output)
		}
	}
}

func TestPrettyUnlocatedDiagnostic(t *testing.T) {
	bag, fs := sample("lib.rs")
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Unit: "units/pallet.json"})
	want := "units/pallet.json: ERROR IO5002: invalid unit: unit has no schema version\n"
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("expected %q, got:\n%s", want, buf.String())
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	bag, fs := sample("lib.rs")
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true})
	output := buf.String()

	if !strings.Contains(output, "note: lib.rs:2:5: StorageMap iteration starts here") {
		t.Fatalf("expected note with location, got:\n%s", output)
	}
	if !strings.Contains(output, "fix #1: allow storage_iter_insert (quickfix, has-placeholders) id=STO1001-0-28-0") {
		t.Fatalf("expected fix entry, got:\n%s", output)
	}
	if !strings.Contains(output, `apply="    #[allow(substrace::storage_iter_insert)]\n"`) {
		t.Fatalf("expected quoted edit text, got:\n%s", output)
	}
}

func TestPrettyFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte("#[cfg(feature = \"runtime-benchmarks\")]\nmod benchmarking;\n"))
	sp := source.Span{File: id, Start: 2, End: 37}

	bag := diag.NewBag(2)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.RtmSinglepassBenchmarks,
		Message:  "benchmarks not run in tests",
		Primary:  sp,
		Fixes: []diag.Fix{{Title: "run benchmarks in tests", Edits: []diag.TextEdit{{
			Span:    sp,
			NewText: `cfg(any(test, feature = "runtime-benchmarks"))`,
		}}}},
	})

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowFixes: true, ShowPreview: true})
	output := buf.String()
	if !strings.Contains(output, "preview:") {
		t.Fatalf("expected preview header in output, got:\n%s", output)
	}
	if !strings.Contains(output, `- #[cfg(feature = "runtime-benchmarks")]`) {
		t.Fatalf("expected before line in preview, got:\n%s", output)
	}
	if !strings.Contains(output, `+ #[cfg(any(test, feature = "runtime-benchmarks"))]`) {
		t.Fatalf("expected after line in preview, got:\n%s", output)
	}
}

func TestPrettyTruncatesWideLines(t *testing.T) {
	bag, fs := sample("lib.rs")
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Width: 10})
	if !strings.Contains(buf.String(), "|     T::sw…\n") {
		t.Fatalf("expected truncated snippet, got:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	bag, fs := sample("lib.rs")
	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeAuto, "pallet.json")
	want := "lib.rs:3:5: WARNING STO1001: iterating and modifying storage has undefined results\n" +
		"pallet.json: ERROR IO5002: invalid unit: unit has no schema version\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s", buf.String())
	}
}
