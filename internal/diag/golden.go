package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"substrace/internal/source"
)

type goldenLine struct {
	sev  string
	code string
	lint string
	path string // "-" for unit-level diagnostics
	line uint32
	col  uint32
	msg  string
}

// Golden renders diagnostics one per line, sorted by location, for test
// fixtures. Paths are reduced to their base name so expectations do not
// depend on the checkout. With notes, located notes follow as "note" lines.
//
//	warning STO1001[storage_iter_insert] lib.rs:2:1 iterating and modifying storage
//	error IO5001 - unit file is truncated
func Golden(diags []Diagnostic, fs *source.FileSet, notes bool) string {
	lines := make([]goldenLine, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		gl := goldenLine{sev: d.Severity.Label(), code: d.Code.ID(), lint: d.Lint, path: "-", msg: oneLine(d.Message)}
		if f := fs.Get(d.Primary.File); f != nil && !d.UnitLevel() {
			start, _ := fs.Resolve(d.Primary)
			gl.path, gl.line, gl.col = f.FormatPath("basename", ""), start.Line, start.Col
		}
		lines = append(lines, gl)
		if !notes {
			continue
		}
		for _, n := range d.Notes {
			f := fs.Get(n.Span.File)
			if f == nil {
				continue
			}
			start, _ := fs.Resolve(n.Span)
			lines = append(lines, goldenLine{sev: "note", code: gl.code, path: f.FormatPath("basename", ""), line: start.Line, col: start.Col, msg: oneLine(n.Msg)})
		}
	}

	slices.SortStableFunc(lines, func(a, b goldenLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.line, b.line),
			cmp.Compare(a.col, b.col),
			cmp.Compare(a.sev, b.sev),
			cmp.Compare(a.code, b.code),
			cmp.Compare(a.msg, b.msg),
		)
	})

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.sev + " " + l.code)
		if l.lint != "" {
			b.WriteString("[" + l.lint + "]")
		}
		if l.path == "-" {
			fmt.Fprintf(&b, " - %s", l.msg)
			continue
		}
		fmt.Fprintf(&b, " %s:%d:%d %s", l.path, l.line, l.col, l.msg)
	}
	return b.String()
}

func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
