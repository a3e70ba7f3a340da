package driver

import (
	"encoding/json"
	"fmt"

	"keel/internal/diag"
	"keel/internal/observ"
	"keel/internal/source"
)

type timingPayload struct {
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic attaches a per-file timing report to bag as an
// info diagnostic with the machine-readable payload in a note. Called
// after the cache write so replayed results never carry stale timings.
func appendTimingDiagnostic(bag *diag.Bag, path string, report observ.Report) {
	if bag == nil {
		return
	}

	payload := timingPayload{Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	msg := fmt.Sprintf("timings: total %.2f ms (%s)", payload.TotalMS, path)
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg)
	d = d.WithNote(source.Span{}, string(data))
	bag.Add(d)
}
