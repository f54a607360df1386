package driver

import (
	"encoding/json"
	"fmt"

	"substrace/internal/diag"
	"substrace/internal/observ"
)

// timingNote is the JSON carried by the ENG6002 note.
type timingNote struct {
	Unit    string               `json:"unit"`
	Cached  bool                 `json:"cached,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func timingDiagnostic(res *Result, rep observ.Report) (diag.Diagnostic, error) {
	data, err := json.Marshal(timingNote{Unit: res.Path, Cached: res.Cached, TotalMS: rep.TotalMS, Phases: rep.Phases})
	if err != nil {
		return diag.Diagnostic{}, err
	}
	msg := fmt.Sprintf("timings: total %.2f ms, %s", rep.TotalMS, res.Path)
	if res.Cached {
		msg += " (cached)"
	}
	return diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.EngTimings,
		Message:  msg,
		Notes:    []diag.Note{{Msg: string(data)}},
	}, nil
}

// pushPastLimit appends d even when the bag is full.
func pushPastLimit(bag *diag.Bag, d diag.Diagnostic) {
	if bag.Add(d) {
		return
	}
	extra := diag.NewBag(1)
	extra.Add(d)
	bag.Merge(extra)
}
