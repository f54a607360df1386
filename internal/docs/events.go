package docs

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// EventKind enumerates markup events.
type EventKind uint8

const (
	EvStart EventKind = iota
	EvEnd
	EvText
	EvCode // inline code span
	EvSoftBreak
	EvHardBreak
	EvHTML
	EvRule
)

// Tag names the container of Start/End events.
type Tag uint8

const (
	TagParagraph Tag = iota
	TagHeading
	TagListItem
	TagCodeBlock
	TagLink
	TagTableCell
)

// Event is one markup token. Start and End are byte offsets into the
// undecorated buffer; both are -1 when the node has no source range.
type Event struct {
	Kind  EventKind
	Tag   Tag
	Level int    // heading level
	Lang  string // code block info string
	Dest  string // link destination
	Text  string
	Start int
	End   int
}

// rustdoc renders tables, footnotes, strikethrough and task lists, so the parser does too.
var markdown = goldmark.New(goldmark.WithExtensions(
	extension.Table,
	extension.Strikethrough,
	extension.TaskList,
	extension.Footnote,
))

// Events parses buf and flattens the tree into a token stream. Adjacent text
// tokens are coalesced. Reference links without a definition stay literal
// text, so intra-doc links like [`Pallet`] never fail the parse.
func Events(buf []byte) []Event {
	doc := markdown.Parser().Parse(text.NewReader(buf))
	s := &stream{src: buf}
	_ = ast.Walk(doc, s.visit) //nolint:errcheck // visit never fails
	return s.events
}

type stream struct {
	src    []byte
	events []Event
}

func (s *stream) push(ev Event) {
	if ev.Kind == EvText && len(s.events) > 0 {
		last := &s.events[len(s.events)-1]
		if last.Kind == EvText {
			last.Text += ev.Text
			if ev.End >= 0 {
				last.End = ev.End
			}
			return
		}
	}
	s.events = append(s.events, ev)
}

func (s *stream) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	// Walk calls back on exit even after WalkSkipChildren; leaf handlers act on entry only.
	switch n := n.(type) {
	case *ast.Heading:
		s.block(n, TagHeading, entering, func(ev *Event) { ev.Level = n.Level })
	case *ast.Paragraph:
		s.block(n, TagParagraph, entering, nil)
	case *ast.ListItem:
		s.container(TagListItem, entering)
	case *east.TableCell:
		s.container(TagTableCell, entering)
	case *ast.FencedCodeBlock:
		if entering {
			lang := ""
			if l := n.Language(s.src); l != nil {
				lang = string(l)
			}
			s.codeBlock(n, lang)
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock:
		if entering {
			s.codeBlock(n, "")
		}
		return ast.WalkSkipChildren, nil
	case *ast.Link:
		if entering {
			s.push(Event{Kind: EvStart, Tag: TagLink, Dest: string(n.Destination), Start: -1, End: -1})
		} else {
			s.push(Event{Kind: EvEnd, Tag: TagLink, Start: -1, End: -1})
		}
	case *ast.AutoLink:
		if entering {
			url := string(n.URL(s.src))
			s.push(Event{Kind: EvStart, Tag: TagLink, Dest: url, Start: -1, End: -1})
			s.push(Event{Kind: EvText, Text: string(n.Label(s.src)), Start: -1, End: -1})
			s.push(Event{Kind: EvEnd, Tag: TagLink, Start: -1, End: -1})
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeSpan:
		if entering {
			var buf bytes.Buffer
			start, end := -1, -1
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					if start < 0 {
						start = t.Segment.Start
					}
					end = t.Segment.Stop
					buf.Write(t.Segment.Value(s.src))
				}
			}
			s.push(Event{Kind: EvCode, Text: buf.String(), Start: start, End: end})
		}
		return ast.WalkSkipChildren, nil
	case *ast.Text:
		if entering {
			s.push(Event{Kind: EvText, Text: string(n.Segment.Value(s.src)), Start: n.Segment.Start, End: n.Segment.Stop})
			switch {
			case n.HardLineBreak():
				s.push(Event{Kind: EvHardBreak, Start: n.Segment.Stop, End: n.Segment.Stop})
			case n.SoftLineBreak():
				s.push(Event{Kind: EvSoftBreak, Start: n.Segment.Stop, End: n.Segment.Stop})
			}
		}
	case *ast.String:
		if entering {
			s.push(Event{Kind: EvText, Text: string(n.Value), Start: -1, End: -1})
		}
	case *ast.RawHTML, *ast.HTMLBlock:
		if entering {
			s.push(Event{Kind: EvHTML, Start: -1, End: -1})
		}
		return ast.WalkSkipChildren, nil
	case *ast.ThematicBreak:
		if entering {
			s.push(Event{Kind: EvRule, Start: -1, End: -1})
		}
	}
	return ast.WalkContinue, nil
}

// block emits Start/End for a leaf block whose range comes from its lines.
func (s *stream) block(n ast.Node, tag Tag, entering bool, decorate func(*Event)) {
	start, end := lineRange(n)
	kind := EvEnd
	if entering {
		kind = EvStart
	}
	ev := Event{Kind: kind, Tag: tag, Start: start, End: end}
	if decorate != nil {
		decorate(&ev)
	}
	s.push(ev)
}

func (s *stream) container(tag Tag, entering bool) {
	kind := EvEnd
	if entering {
		kind = EvStart
	}
	s.push(Event{Kind: kind, Tag: tag, Start: -1, End: -1})
}

func (s *stream) codeBlock(n ast.Node, lang string) {
	start, end := lineRange(n)
	s.push(Event{Kind: EvStart, Tag: TagCodeBlock, Lang: lang, Start: start, End: end})
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		s.push(Event{Kind: EvText, Text: string(seg.Value(s.src)), Start: seg.Start, End: seg.Stop})
	}
	s.push(Event{Kind: EvEnd, Tag: TagCodeBlock, Start: start, End: end})
}

func lineRange(n ast.Node) (int, int) {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return -1, -1
	}
	return lines.At(0).Start, lines.At(lines.Len() - 1).Stop
}
