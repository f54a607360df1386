package docs

import (
	"fmt"
	"strings"
	"unicode"

	"substrace/internal/hir"
	"substrace/internal/source"
)

// SecurityHeading is the heading text that documents a hasher choice.
const SecurityHeading = "Security"

// MixedRaw decides what raw #[doc = "..."] attributes mean for the heading check.
type MixedRaw uint8

const (
	// AssumePresent treats any raw doc attribute as satisfying the heading check.
	AssumePresent MixedRaw = iota
	// Analyze ignores raw attributes and checks only the sugared comments.
	Analyze
)

func (m MixedRaw) String() string {
	if m == Analyze {
		return "analyze"
	}
	return "assume-present"
}

// MarshalText implements encoding.TextMarshaler.
func (m MixedRaw) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MixedRaw) UnmarshalText(text []byte) error {
	switch string(text) {
	case "assume-present":
		*m = AssumePresent
	case "analyze":
		*m = Analyze
	default:
		return fmt.Errorf("invalid mixed_raw %q (expected assume-present|analyze)", text)
	}
	return nil
}

// Result is what the structural walk learned about one item's docs.
type Result struct {
	Security   bool          // a heading reads exactly SecurityHeading
	Assumed    bool          // Security was assumed because of raw doc attributes
	Unbalanced []source.Span // paragraphs with an odd number of literal backticks
}

// Check analyses an item's doc comments. attrs are consulted for raw doc attributes.
func Check(comments []hir.DocComment, attrs []hir.Attr, mode MixedRaw) Result {
	if mode == AssumePresent && hir.HasRawDoc(attrs) {
		return Result{Security: true, Assumed: true}
	}
	d := Collect(comments)
	if d.Empty() {
		return Result{}
	}
	return walk(d, Events([]byte(d.Text)))
}

// HasSecurity is the required-section query alone.
func HasSecurity(comments []hir.DocComment, attrs []hir.Attr, mode MixedRaw) bool {
	return Check(comments, attrs, mode).Security
}

// scope is one paragraph, heading, list item or table cell. Its span runs
// from its first text to its last, without surrounding whitespace.
type scope struct {
	start     int // first byte, -1 until known
	lastEnd   int // end of the last text seen
	backticks int
}

func walk(d Doc, events []Event) Result {
	var (
		res      Result
		scopes   []scope
		inCode   int
		inHead   int
		linkDest []string
	)
	for _, ev := range events {
		switch ev.Kind {
		case EvStart:
			switch ev.Tag {
			case TagCodeBlock:
				inCode++
			case TagLink:
				linkDest = append(linkDest, ev.Dest)
			case TagHeading, TagParagraph, TagListItem, TagTableCell:
				if ev.Tag == TagHeading {
					inHead++
				}
				scopes = append(scopes, scope{start: -1, lastEnd: -1})
			}
		case EvEnd:
			switch ev.Tag {
			case TagCodeBlock:
				inCode--
			case TagLink:
				if len(linkDest) > 0 {
					linkDest = linkDest[:len(linkDest)-1]
				}
			case TagHeading, TagParagraph, TagListItem, TagTableCell:
				if ev.Tag == TagHeading {
					inHead--
				}
				if len(scopes) == 0 {
					continue
				}
				sc := scopes[len(scopes)-1]
				scopes = scopes[:len(scopes)-1]
				if sc.backticks%2 == 1 {
					if sp, ok := d.Span(sc.start, sc.lastEnd); ok {
						res.Unbalanced = append(res.Unbalanced, sp)
					}
				}
			}
		case EvText:
			if len(scopes) > 0 && inCode == 0 {
				sc := &scopes[len(scopes)-1]
				if sc.start < 0 && ev.Start >= 0 {
					sc.start = ev.Start + len(ev.Text) - len(strings.TrimLeftFunc(ev.Text, unicode.IsSpace))
				}
				if ev.End >= 0 {
					sc.lastEnd = ev.End - (len(ev.Text) - len(strings.TrimRightFunc(ev.Text, unicode.IsSpace)))
				}
				sc.backticks += strings.Count(ev.Text, "`")
			}
			// <http://example.com> renders as a link whose text is its destination
			if len(linkDest) > 0 && ev.Text == linkDest[len(linkDest)-1] {
				continue
			}
			if inHead > 0 && strings.TrimSpace(ev.Text) == SecurityHeading {
				res.Security = true
			}
		}
	}
	return res
}
