package diag

import (
	"testing"

	"substrace/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	b.Add(New(SevWarning, StoIterateMutate, source.Span{File: 0, Start: 20, End: 25}, "late"))
	b.Add(New(SevError, ExtCallIndex, source.Span{File: 0, Start: 3, End: 9}, "early"))
	if b.Add(New(SevError, ExtCallIndex, source.Span{File: 0, Start: 1, End: 2}, "over")) {
		t.Fatal("Add must refuse diagnostics beyond the limit")
	}
	if b.Dropped() != 1 {
		t.Fatalf("Dropped = %d, want 1", b.Dropped())
	}

	b.Sort()
	if b.Items()[0].Message != "early" {
		t.Fatalf("Sort order = %q first", b.Items()[0].Message)
	}
	if !b.HasErrors() {
		t.Fatal("expected an error")
	}
	if b.Count(SevWarning) != 1 || b.Count(SevError) != 1 {
		t.Fatalf("Count mismatch: %d warnings, %d errors", b.Count(SevWarning), b.Count(SevError))
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a, b := NewBag(1), NewBag(1)
	a.Add(New(SevInfo, UnknownCode, source.Span{}, "a"))
	b.Add(New(SevInfo, UnknownCode, source.Span{Start: 1}, "b"))
	a.Merge(b)
	if a.Len() != 2 || a.Cap() != 2 {
		t.Fatalf("Merge: len=%d cap=%d", a.Len(), a.Cap())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.Span{File: 0, Start: 4, End: 8}
	for range 3 {
		ReportWarning(r, StoIterateMutate, span, "same").Emit()
	}
	ReportWarning(r, StoIterateMutate, span, "different").Emit()
	r.Report(Diagnostic{Code: StoIterateMutate, Lint: "other", Primary: span, Message: "same"})
	ReportWarning(r, StoIterateMutate, span, "same").WithNote(source.Span{Start: 1}, "map iteration").Emit()
	ReportWarning(r, StoIterateMutate, span, "same").WithNote(source.Span{Start: 2}, "double map iteration").Emit()
	if bag.Len() != 5 {
		t.Fatalf("DedupReporter forwarded %d diagnostics, want 5", bag.Len())
	}
	if r.Suppressed() != 2 {
		t.Fatalf("Suppressed = %d, want 2", r.Suppressed())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	var got []Diagnostic
	r := ReporterFunc(func(d Diagnostic) { got = append(got, d) })

	b := ReportError(r, ExtMissingTransactional, source.Span{}, "missing").
		WithNote(source.Span{Start: 1}, "body ends here").
		WithFix("wrap", TextEdit{NewText: "#[transactional]\n"})
	b.Emit()
	b.Emit()

	if len(got) != 1 {
		t.Fatalf("Emit delivered %d diagnostics", len(got))
	}
	if len(got[0].Notes) != 1 || len(got[0].Fixes) != 1 {
		t.Fatalf("builder lost details: %+v", got[0])
	}
	if got[0].Fixes[0].Applicability != FixApplicabilityAlwaysSafe {
		t.Fatalf("zero applicability must be always-safe")
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		StoIterateMutate:      "STO1001",
		DocMissingSecurity:    "DOC2001",
		ExtCallIndex:          "EXT3001",
		RtmMissingPanicLints:  "RTM4001",
		IOInvalidUnit:         "IO5002",
		EngAnalysisIncomplete: "ENG6001",
		UnknownCode:           "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %s, want %s", code, got, want)
		}
	}
}

func TestSeverityNames(t *testing.T) {
	tests := []struct {
		sev                 Severity
		upper, lower, sarif string
	}{
		{SevInfo, "INFO", "info", "note"},
		{SevWarning, "WARNING", "warning", "warning"},
		{SevError, "ERROR", "error", "error"},
		{Severity(9), "UNKNOWN", "unknown", "none"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.upper {
			t.Errorf("String(%d) = %q", tt.sev, got)
		}
		if got := tt.sev.Label(); got != tt.lower {
			t.Errorf("Label(%d) = %q", tt.sev, got)
		}
		if got := tt.sev.SarifLevel(); got != tt.sarif {
			t.Errorf("SarifLevel(%d) = %q", tt.sev, got)
		}
	}
}
