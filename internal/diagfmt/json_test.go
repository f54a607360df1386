package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	bag, fs := sample("lib.rs")

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
		IncludeFixes:     true,
		IncludePreviews:  true,
		Unit:             "pallet.json",
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	// Парсим JSON чтобы убедиться что он валидный
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 2 || output.Unit != "pallet.json" {
		t.Fatalf("unexpected header %+v", output)
	}

	d := output.Diagnostics[0]
	if d.Severity != "WARNING" || d.Code != "STO1001" || d.Lint != "storage_iter_insert" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if d.Location == nil || d.Location.File != "lib.rs" || d.Location.StartLine != 3 || d.Location.StartCol != 5 {
		t.Fatalf("unexpected location %+v", d.Location)
	}
	if d.Location.EndByte-d.Location.StartByte != uint32(len("T::swap(1, 2)")) {
		t.Errorf("span length %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location == nil || d.Notes[0].Location.StartLine != 2 {
		t.Errorf("notes %+v", d.Notes)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Applicability != "has-placeholders" || d.Fixes[0].ID != "STO1001-0-28-0" {
		t.Fatalf("fixes %+v", d.Fixes)
	}
	edit := d.Fixes[0].Edits[0]
	if len(edit.AfterLines) != 2 || !strings.Contains(edit.AfterLines[0], "#[allow(") {
		t.Errorf("preview %+v", edit)
	}

	if output.Diagnostics[1].Location != nil {
		t.Errorf("unit-level diagnostic must have no location: %+v", output.Diagnostics[1])
	}
}

func TestJSONMaxAndOptionalSections(t *testing.T) {
	bag, fs := sample("lib.rs")
	out, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Dropped != 1 {
		t.Fatalf("count=%d dropped=%d", out.Count, out.Dropped)
	}
	d := out.Diagnostics[0]
	if d.Notes != nil || d.Fixes != nil {
		t.Fatalf("notes and fixes are opt-in: %+v", d)
	}
	if d.Location.StartLine != 0 {
		t.Fatal("positions are opt-in")
	}
}

func TestJSONUnits(t *testing.T) {
	bag, fs := sample("lib.rs")
	a, _ := BuildDiagnosticsOutput(bag, fs, JSONOpts{Unit: "a.json"})
	b, _ := BuildDiagnosticsOutput(bag, fs, JSONOpts{Unit: "b.json"})

	var buf bytes.Buffer
	if err := JSONUnits(&buf, []DiagnosticsOutput{a, b}); err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Units []DiagnosticsOutput `json:"units"`
		Count int                 `json:"count"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Count != 4 || len(doc.Units) != 2 || doc.Units[1].Unit != "b.json" {
		t.Fatalf("unexpected document %+v", doc)
	}
}
