package hir

import (
	"strconv"

	"substrace/internal/source"
)

// AttrStyle distinguishes #[outer] from #![inner] attributes.
type AttrStyle uint8

const (
	AttrOuter AttrStyle = iota
	AttrInner
)

// Attr is a structured attribute such as #[pallet::call_index(3)].
// Raw `#[doc = "..."]` attributes also arrive here with Path ["doc"].
type Attr struct {
	Style AttrStyle
	Path  []string
	Args  []Meta // arguments of the outer list, nil for bare attributes
	Value *Lit   // `#[name = value]`
	Span  source.Span
}

// Is reports whether the attribute path equals segs.
func (a Attr) Is(segs ...string) bool {
	return equalSegments(a.Path, segs)
}

// MetaKind enumerates nested meta item shapes.
type MetaKind uint8

const (
	// MetaWord is a bare path: `test`, `clippy::unwrap_used`.
	MetaWord MetaKind = iota
	// MetaNameValue is `path = lit`.
	MetaNameValue
	// MetaList is `path(nested, ...)`.
	MetaList
	// MetaLit is a bare literal argument: `3` in call_index(3).
	MetaLit
)

// Meta is one nested item of an attribute argument list.
type Meta struct {
	Kind MetaKind
	Path []string
	Lit  *Lit
	List []Meta
	Span source.Span
}

// Is reports whether the meta path equals segs.
func (m Meta) Is(segs ...string) bool {
	return equalSegments(m.Path, segs)
}

// IntValue parses the integer literal carried by a MetaLit or MetaNameValue.
func (m Meta) IntValue(bits int) (uint64, bool) {
	if m.Lit == nil || m.Lit.Kind != LitInt {
		return 0, false
	}
	v, err := strconv.ParseUint(m.Lit.Text, 10, bits)
	if err != nil {
		return 0, false
	}
	return v, true
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DocStyle distinguishes `///` line comments and `/** */` block comments.
type DocStyle uint8

const (
	DocLine DocStyle = iota
	DocBlock
)

// DocComment is one sugared doc comment. Raw is the exact source text
// including its opening and closing delimiters, and Span covers it.
type DocComment struct {
	Style DocStyle
	Inner bool // `//!` or `/*!`
	Raw   string
	Span  source.Span
}

// HasRawDoc reports whether attrs contain an unsugared #[doc = ...] attribute.
func HasRawDoc(attrs []Attr) bool {
	for _, a := range attrs {
		if a.Is("doc") {
			return true
		}
	}
	return false
}
