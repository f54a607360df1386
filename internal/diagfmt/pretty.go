package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"substrace/internal/diag"
	"substrace/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, code, gutter, caret, note, help *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgMagenta, color.Bold),
		note:   color.New(color.FgCyan, color.Bold),
		help:   color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.note, p.help} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE> [lint]: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем help, notes и fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pr := &prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for i := range bag.Items() {
		pr.diagnostic(&bag.Items()[i])
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "... %d more diagnostics not shown (limit %d)\n", n, bag.Cap())
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	sev := p.pal.severity(d.Severity).Sprint(d.Severity.String())
	header := sev + " " + p.pal.code.Sprint(d.Code.ID())
	if d.Lint != "" {
		header += " [" + d.Lint + "]"
	}

	if !located(d, p.fs) {
		if p.opts.Unit != "" {
			fmt.Fprintf(p.w, "%s: ", p.opts.Unit)
		}
		fmt.Fprintf(p.w, "%s: %s\n", header, d.Message)
		if p.opts.ShowNotes || d.Code == diag.EngTimings {
			for _, n := range d.Notes {
				fmt.Fprintf(p.w, "  %s %s\n", p.pal.note.Sprint("note:"), n.Msg)
			}
		}
		return
	}

	fmt.Fprintf(p.w, "%s: %s: %s\n", p.position(d.Primary), header, d.Message)
	p.snippet(d.Primary)

	if d.Help != "" {
		fmt.Fprintf(p.w, "  %s %s\n", p.pal.help.Sprint("help:"), d.Help)
	}
	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			if p.fs.Get(n.Span.File) == nil {
				fmt.Fprintf(p.w, "  %s %s\n", p.pal.note.Sprint("note:"), n.Msg)
				continue
			}
			fmt.Fprintf(p.w, "  %s %s: %s\n", p.pal.note.Sprint("note:"), p.position(n.Span), n.Msg)
		}
	}
	if p.opts.ShowFixes {
		for i := range d.Fixes {
			p.fix(i, &d.Fixes[i])
		}
	}
}

func (p *prettyPrinter) position(sp source.Span) string {
	f := p.fs.Get(sp.File)
	start, _ := p.fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, p.fs, p.opts.PathMode), start.Line, start.Col)
}

func (p *prettyPrinter) snippet(sp source.Span) {
	f := p.fs.Get(sp.File)
	start, end := p.fs.Resolve(sp)
	ctx := uint32(max(p.opts.Context, 0)) // #nosec G115 -- non-negative int8
	first := start.Line - min(ctx, start.Line-1)
	last := min(start.Line+ctx, f.LineCount())
	gutter := len(strconv.FormatUint(uint64(last), 10))

	for ln := first; ln <= last; ln++ {
		line := f.Line(ln)
		shown := p.truncate(expandTabs(line))
		fmt.Fprintf(p.w, " %s %s\n", p.pal.gutter.Sprintf("%*d |", gutter, ln), shown)
		if ln != start.Line {
			continue
		}
		col := int(start.Col) - 1
		endCol := len(line)
		if end.Line == start.Line {
			endCol = int(end.Col) - 1
		}
		col = min(col, len(line))
		endCol = min(max(endCol, col), len(line))
		pad := runewidth.StringWidth(expandTabs(line[:col]))
		width := max(runewidth.StringWidth(expandTabs(line[col:endCol])), 1)
		marks := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(p.w, " %s %s%s\n", p.pal.gutter.Sprintf("%*s |", gutter, ""), strings.Repeat(" ", pad), p.pal.caret.Sprint(marks))
	}
}

func (p *prettyPrinter) truncate(s string) string {
	if p.opts.Width == 0 {
		return s
	}
	return runewidth.Truncate(s, int(p.opts.Width), "…")
}

func (p *prettyPrinter) fix(i int, f *diag.Fix) {
	fmt.Fprintf(p.w, "  fix #%d: %s (%s, %s)", i+1, f.Title, f.Kind, f.Applicability)
	if f.ID != "" {
		fmt.Fprintf(p.w, " id=%s", f.ID)
	}
	fmt.Fprintln(p.w)
	for _, e := range f.Edits {
		if p.fs.Get(e.Span.File) == nil {
			continue
		}
		fmt.Fprintf(p.w, "    edit %s apply=%s\n", p.position(e.Span), strconv.Quote(e.NewText))
		if !p.opts.ShowPreview {
			continue
		}
		preview, err := previewEdit(p.fs, e)
		if err != nil {
			continue
		}
		fmt.Fprintln(p.w, "    preview:")
		for _, l := range preview.before {
			fmt.Fprintf(p.w, "      - %s\n", p.truncate(expandTabs(l)))
		}
		for _, l := range preview.after {
			fmt.Fprintf(p.w, "      + %s\n", p.truncate(expandTabs(l)))
		}
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
