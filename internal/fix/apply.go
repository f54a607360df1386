package fix

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"slices"

	"substrace/internal/diag"
	"substrace/internal/source"
)

// plan collects accepted edits per file. Every span refers to the file as
// loaded, so nothing has to be rebased while fixes are being accepted.
type plan struct {
	fs    *source.FileSet
	edits map[source.FileID][]diag.TextEdit
}

func newPlan(fs *source.FileSet) *plan {
	return &plan{fs: fs, edits: make(map[source.FileID][]diag.TextEdit)}
}

// accept adds all edits of cand or none of them. A non-empty result is
// the reason the fix was rejected.
func (p *plan) accept(cand candidate) string {
	edits := slices.Clone(cand.fix.Edits)
	slices.SortStableFunc(edits, compareEdits)

	for i, e := range edits {
		f := p.fs.Get(e.Span.File)
		switch {
		case f == nil:
			return "target file is unknown"
		case f.Flags&source.FileVirtual != 0:
			return "target file is virtual"
		case e.Span.Start > e.Span.End || int(e.Span.End) > len(f.Content):
			return "edit span out of range"
		case e.OldText != "" && string(f.Content[e.Span.Start:e.Span.End]) != e.OldText:
			return "existing text does not match expected content"
		}
		if i > 0 && edits[i-1].Span.File == e.Span.File && spansConflict(edits[i-1], e) {
			return "fix contains overlapping edits"
		}
		for _, prev := range p.edits[e.Span.File] {
			if spansConflict(prev, e) {
				return "conflicts with previously applied edits in " + p.path(e.Span.File, "auto")
			}
		}
	}
	for _, e := range edits {
		p.edits[e.Span.File] = append(p.edits[e.Span.File], e)
	}
	return ""
}

// write splices every touched file once and saves it in place.
func (p *plan) write() ([]FileChange, error) {
	ids := make([]source.FileID, 0, len(p.edits))
	for id := range p.edits {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	changes := make([]FileChange, 0, len(ids))
	for _, id := range ids {
		f := p.fs.Get(id)
		edits := p.edits[id]
		slices.SortStableFunc(edits, compareEdits)

		mode := os.FileMode(0o644)
		if info, err := os.Stat(f.Path); err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(f.Path, splice(f.Content, edits), mode); err != nil {
			return changes, fmt.Errorf("write %s: %w", f.Path, err)
		}
		changes = append(changes, FileChange{Path: p.path(id, "relative"), EditCount: len(edits)})
	}
	slices.SortFunc(changes, func(a, b FileChange) int { return cmp.Compare(a.Path, b.Path) })
	return changes, nil
}

func (p *plan) path(id source.FileID, mode string) string {
	f := p.fs.Get(id)
	if f == nil {
		return ""
	}
	return f.FormatPath(mode, p.fs.BaseDir())
}

// splice applies non-overlapping edits sorted by start.
func splice(content []byte, edits []diag.TextEdit) []byte {
	var b bytes.Buffer
	b.Grow(len(content))
	pos := uint32(0)
	for _, e := range edits {
		b.Write(content[pos:e.Span.Start])
		b.WriteString(e.NewText)
		pos = e.Span.End
	}
	b.Write(content[pos:])
	return b.Bytes()
}

func compareEdits(a, b diag.TextEdit) int {
	return cmp.Or(
		cmp.Compare(a.Span.File, b.Span.File),
		cmp.Compare(a.Span.Start, b.Span.Start),
		cmp.Compare(a.Span.End, b.Span.End),
	)
}

// spansConflict treats spans as half-open. Two insertions never conflict;
// an insertion conflicts with a span that strictly contains its position
// or starts at it.
func spansConflict(a, b diag.TextEdit) bool {
	as, ae, bs, be := a.Span.Start, a.Span.End, b.Span.Start, b.Span.End
	switch {
	case as == ae && bs == be:
		return false
	case as == ae:
		return bs <= as && as < be
	case bs == be:
		return as <= bs && bs < ae
	}
	return as < be && bs < ae
}
