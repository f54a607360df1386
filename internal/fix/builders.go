package fix

import (
	"strings"

	"substrace/internal/diag"
	"substrace/internal/source"
)

// Option adjusts a fix after construction.
type Option func(*diag.Fix)

func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

// WithID pins the id `substrace fix --id` selects by.
func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

func build(title string, edit diag.TextEdit, opts []Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{edit},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText inserts text at at.Start. A non-empty guard must match the
// (empty) text there, which only makes sense for callers that widen the span.
func InsertText(title string, at source.Span, text string, guard string, opts ...Option) diag.Fix {
	at.End = at.Start
	return build(title, diag.TextEdit{Span: at, NewText: text, OldText: guard}, opts)
}

// ReplaceSpan swaps the text under span for newText, provided it still reads expect.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return build(title, diag.TextEdit{Span: span, NewText: newText, OldText: expect}, opts)
}

// InsertAbove puts lines directly above the line holding anchor.Start,
// each indented like that line. This is how attributes and doc sections
// are added to an item.
func InsertAbove(fs *source.FileSet, title string, anchor source.Span, lines []string, opts ...Option) diag.Fix {
	indent := fs.Indent(anchor)
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(indent)
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return InsertText(title, fs.LineStart(anchor), b.String(), "", opts...)
}
