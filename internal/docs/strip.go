package docs

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"substrace/internal/hir"
	"substrace/internal/source"
)

// Breakpoint ties a buffer offset to the source position of the same byte.
// Bytes after Offset, up to the next breakpoint, map linearly from Pos.
type Breakpoint struct {
	Offset int
	Pos    source.Span
}

// Doc is the concatenated, undecorated text of an item's doc comments.
type Doc struct {
	Text   string
	Breaks []Breakpoint
}

const delimLen = 3 // "///", "//!", "/**", "/*!"

// Strip removes comment decoration from one doc comment. The returned
// breakpoints carry offsets relative to the returned text.
//
// Line comments lose their marker and gain a trailing newline. Block comments
// lose their delimiters; when any line starts with '*', the first '*' of each
// line becomes a space so columns are kept.
func Strip(c hir.DocComment) (string, []Breakpoint) {
	body, ok := undelimit(c)
	if !ok {
		return "", nil
	}
	contentStart := c.Span.Start + delimLen
	if c.Style == hir.DocLine {
		return body + "\n", []Breakpoint{{
			Offset: 0,
			Pos:    source.Span{File: c.Span.File, Start: contentStart, End: c.Span.End},
		}}
	}

	lines := splitLines(body)
	breaks := make([]Breakpoint, 0, len(lines))
	stars := false
	off := 0
	for _, line := range lines {
		start := contentStart + uint32(off) // #nosec G115 -- bounded by comment length
		breaks = append(breaks, Breakpoint{
			Offset: off,
			Pos:    source.Span{File: c.Span.File, Start: start, End: start + uint32(len(line))}, // #nosec G115 -- bounded by comment length
		})
		stars = stars || strings.HasPrefix(strings.TrimLeftFunc(line, unicode.IsSpace), "*")
		off += len(line) + 1
	}
	if !stars {
		return body, breaks
	}

	var sb strings.Builder
	sb.Grow(len(body) + 1)
	for _, line := range lines {
		sb.WriteString(unstar(line))
		sb.WriteByte('\n')
	}
	return sb.String(), breaks
}

func undelimit(c hir.DocComment) (string, bool) {
	raw := c.Raw
	switch c.Style {
	case hir.DocLine:
		if len(raw) < delimLen || !strings.HasPrefix(raw, "//") {
			return "", false
		}
		return raw[delimLen:], true
	case hir.DocBlock:
		if len(raw) < delimLen+2 || !strings.HasPrefix(raw, "/*") || !strings.HasSuffix(raw, "*/") {
			return "", false
		}
		return raw[delimLen : len(raw)-2], true
	}
	return "", false
}

// splitLines mirrors line iteration that drops a final empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// unstar replaces the first non-space rune with a space if it is '*'.
func unstar(line string) string {
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		if r == '*' {
			return line[:i] + " " + line[i+size:]
		}
		return line
	}
	return line
}

// Collect concatenates the sugared doc comments in source order. Each
// comment starts on a new line; a newline added after a block comment
// maps to its closing delimiter.
func Collect(comments []hir.DocComment) Doc {
	var d Doc
	var sb strings.Builder
	for _, c := range comments {
		text, breaks := Strip(c)
		if text == "" {
			continue
		}
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
		base := sb.Len()
		for _, bp := range breaks {
			bp.Offset += base
			d.Breaks = append(d.Breaks, bp)
		}
		sb.WriteString(text)
	}
	d.Text = sb.String()
	return d
}

// Empty reports whether no documentation text was collected.
func (d Doc) Empty() bool { return d.Text == "" }

// Pos maps a buffer offset back to a zero-length source span.
func (d Doc) Pos(off int) (source.Span, bool) {
	if len(d.Breaks) == 0 || off < 0 {
		return source.Span{}, false
	}
	i := sort.Search(len(d.Breaks), func(i int) bool { return d.Breaks[i].Offset > off }) - 1
	if i < 0 {
		i = 0
	}
	bp := d.Breaks[i]
	at := bp.Pos.Start + uint32(off-bp.Offset) // #nosec G115 -- off >= bp.Offset
	return source.Span{File: bp.Pos.File, Start: at, End: at}, true
}

// Span maps the buffer range [start, end) to the source span covering it.
// Ranges crossing comment boundaries yield the enclosing span.
func (d Doc) Span(start, end int) (source.Span, bool) {
	lo, ok := d.Pos(start)
	if !ok {
		return source.Span{}, false
	}
	if end <= start {
		return lo, true
	}
	hi, ok := d.Pos(end - 1)
	if !ok || hi.File != lo.File {
		return lo, true
	}
	hi.End++
	return lo.Cover(hi), true
}
