package observ

import (
	"strings"
	"testing"
)

func TestTimerFoldsRepeatedPhases(t *testing.T) {
	tm := NewTimer()
	for range 3 {
		done := tm.Track("lint")
		done("")
	}
	tm.End(tm.Begin("decode"), "2 units")

	r := tm.Report().Fold()
	if len(r.Phases) != 2 {
		t.Fatalf("expected 2 folded phases, got %+v", r.Phases)
	}
	if r.Phases[0].Name != "lint" || r.Phases[0].Count != 3 {
		t.Fatalf("unexpected lint phase: %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "2 units" {
		t.Fatalf("note lost: %+v", r.Phases[1])
	}
	if s := tm.Summary(); !strings.Contains(s, "x3") || !strings.Contains(s, "total") {
		t.Fatalf("summary missing fields:\n%s", s)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported phases: %+v", r)
	}
}
