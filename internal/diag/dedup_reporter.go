package diag

import "substrace/internal/source"

// DedupReporter drops a diagnostic identical to one already reported: same
// lint, code, primary span, message and first note. Reports that differ only
// in their note, such as one call hazardous for two storage kinds, are kept.
type DedupReporter struct {
	next       Reporter
	seen       map[dedupKey]struct{}
	suppressed int
}

type dedupKey struct {
	lint string
	code Code
	span source.Span
	msg  string
	note Note
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := dedupKey{lint: d.Lint, code: d.Code, span: d.Primary, msg: d.Message}
	if len(d.Notes) > 0 {
		key.note = d.Notes[0]
	}
	if _, dup := r.seen[key]; dup {
		r.suppressed++
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}

// Suppressed counts dropped duplicates.
func (r *DedupReporter) Suppressed() int { return r.suppressed }
