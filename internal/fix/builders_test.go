package fix

import (
	"testing"

	"substrace/internal/diag"
	"substrace/internal/source"
)

func TestInsertTextCollapsesSpan(t *testing.T) {
	span := source.Span{File: 0, Start: 4, End: 10}
	f := InsertText("tag call index", span, "#[pallet::call_index(0)]\n", "")

	if len(f.Edits) != 1 {
		t.Fatalf("expected 1 edit, got %d", len(f.Edits))
	}
	if e := f.Edits[0]; e.Span.Start != 4 || e.Span.End != 4 {
		t.Fatalf("insert span must be empty, got %+v", e.Span)
	}
	if f.Applicability != diag.FixApplicabilityAlwaysSafe || f.Kind != diag.FixKindQuickFix {
		t.Fatalf("unexpected defaults: %+v", f)
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	span := source.Span{File: 0, Start: 0, End: 3}
	f := ReplaceSpan("allow", span, "#[allow(storage_iter_insert)]...", "foo",
		WithApplicability(diag.FixApplicabilityHasPlaceholders),
		WithID("allow-1"),
		nil,
	)
	if f.Applicability != diag.FixApplicabilityHasPlaceholders || f.ID != "allow-1" {
		t.Errorf("options not applied: %+v", f)
	}
	if f.Edits[0].OldText != "foo" {
		t.Errorf("guard = %q", f.Edits[0].OldText)
	}
}

func TestInsertAboveIndents(t *testing.T) {
	fs := source.NewFileSet()
	src := "impl<T> Pallet<T> {\n    pub fn transfer() {}\n}\n"
	id := fs.AddVirtual("lib.rs", []byte(src))
	sig := source.Span{File: id, Start: 24, End: 43} // "pub fn transfer() {}"

	f := InsertAbove(fs, "doc", sig, []string{"/// # Security", "///"})
	e := f.Edits[0]
	if e.Span != (source.Span{File: id, Start: 20, End: 20}) {
		t.Fatalf("insert at %+v, want start of line 2", e.Span)
	}
	if e.NewText != "    /// # Security\n    ///\n" {
		t.Fatalf("text = %q", e.NewText)
	}
}
