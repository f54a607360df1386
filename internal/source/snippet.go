package source

import (
	"strings"
)

// Snippet returns the source text covered by span. It reports false when the
// file is unknown or the span falls outside its content.
func (fileSet *FileSet) Snippet(span Span) (string, bool) {
	f := fileSet.Get(span.File)
	if f == nil || span.Start > span.End || int(span.End) > len(f.Content) {
		return "", false
	}
	return string(f.Content[span.Start:span.End]), true
}

// LineStart returns the zero-length span at the beginning of the line holding span.Start.
func (fileSet *FileSet) LineStart(span Span) Span {
	f := fileSet.Get(span.File)
	if f == nil {
		return span.AtStart()
	}
	return Span{File: span.File, Start: f.lineStartOf(span.Start), End: f.lineStartOf(span.Start)}
}

// Indent returns the leading whitespace of the line holding span.Start.
func (fileSet *FileSet) Indent(span Span) string {
	f := fileSet.Get(span.File)
	if f == nil || int(span.Start) > len(f.Content) {
		return ""
	}
	start := f.lineStartOf(span.Start)
	end := start
	for end < span.Start && (f.Content[end] == ' ' || f.Content[end] == '\t') {
		end++
	}
	return string(f.Content[start:end])
}

// FirstLine truncates span at its first newline.
func (fileSet *FileSet) FirstLine(span Span) Span {
	text, ok := fileSet.Snippet(span)
	if !ok {
		return span
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		span.End = span.Start + uint32(i) // #nosec G115 -- i < span.Len()
	}
	return span
}

// LeadingRegion returns the run of attribute, comment and blank lines directly
// above span, up to span.Start. The region stops at the first line that closes
// or opens a block or ends a statement, so it never reaches into the previous item.
func (fileSet *FileSet) LeadingRegion(span Span) (Span, bool) {
	f := fileSet.Get(span.File)
	if f == nil || int(span.Start) > len(f.Content) {
		return span.AtStart(), false
	}
	start := f.lineStartOf(span.Start)
	for start > 0 {
		prevStart := f.lineStartOf(start - 1)
		line := strings.TrimSpace(string(f.Content[prevStart : start-1]))
		if !leadingLine(line) {
			break
		}
		start = prevStart
	}
	return Span{File: span.File, Start: start, End: span.Start}, true
}

func leadingLine(line string) bool {
	switch {
	case line == "":
		return true
	case strings.HasPrefix(line, "#"), strings.HasPrefix(line, "//"),
		strings.HasPrefix(line, "/*"), strings.HasPrefix(line, "*"):
		return true
	}
	last := line[len(line)-1]
	return last != '{' && last != '}' && last != ';'
}
