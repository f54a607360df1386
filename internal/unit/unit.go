// Package unit reads the lowered crates a host extractor writes for
// substrace: one unit per compilation unit, encoded as JSON or msgpack.
//
// A unit carries the source files it points into (by path, or embedded),
// the canonical path table and the item tree with every resolution already
// folded in. Spans are byte offsets into the file content as the host saw
// it; Lower rejects units whose spans do not fit the files it loads.
package unit

// SchemaVersion is the unit format this build reads.
const SchemaVersion = 1

// Unit is the serialized form of one compilation unit.
type Unit struct {
	Version  int       `json:"version" msgpack:"version"`
	Crate    string    `json:"crate" msgpack:"crate"`
	Root     int       `json:"root" msgpack:"root"` // index into Files
	Files    []File    `json:"files" msgpack:"files"`
	Defs     []string  `json:"defs" msgpack:"defs"` // DefID i+1 is Defs[i], "::"-separated
	Attrs    []Attr    `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Docs     []Doc     `json:"docs,omitempty" msgpack:"docs,omitempty"`
	Items    []Item    `json:"items" msgpack:"items"`
	Dispatch *Dispatch `json:"dispatch,omitempty" msgpack:"dispatch,omitempty"`
}

// File names a source file. When Content is set the file is embedded and
// never rewritten; otherwise it is read from Path, relative to the unit.
type File struct {
	Path    string  `json:"path" msgpack:"path"`
	Content *string `json:"content,omitempty" msgpack:"content,omitempty"`
	Size    int     `json:"size,omitempty" msgpack:"size,omitempty"` // byte length the host saw, 0 to skip the check
}

// Span is a half-open byte range in Files[File].
type Span struct {
	File int    `json:"file" msgpack:"file"`
	Lo   uint32 `json:"lo" msgpack:"lo"`
	Hi   uint32 `json:"hi" msgpack:"hi"`
}

// Item kinds.
const (
	KindFn    = "fn"
	KindType  = "type"
	KindImpl  = "impl"
	KindMod   = "mod"
	KindOther = "other"
)

// Item is one declaration. Exactly the payload matching Kind is read.
type Item struct {
	Kind  string `json:"kind" msgpack:"kind"`
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Span  Span   `json:"span" msgpack:"span"`
	Attrs []Attr `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Docs  []Doc  `json:"docs,omitempty" msgpack:"docs,omitempty"`

	Fn     *Fn    `json:"fn,omitempty" msgpack:"fn,omitempty"`
	Target *Type  `json:"target,omitempty" msgpack:"target,omitempty"`   // type alias
	SelfTy *Type  `json:"self_ty,omitempty" msgpack:"self_ty,omitempty"` // impl
	Trait  *Type  `json:"trait,omitempty" msgpack:"trait,omitempty"`     // impl
	Items  []Item `json:"items,omitempty" msgpack:"items,omitempty"`     // impl, mod
}

// Fn is a function signature with an optional body.
type Fn struct {
	Sig    Span  `json:"sig" msgpack:"sig"`
	Method bool  `json:"method,omitempty" msgpack:"method,omitempty"`
	Body   *Expr `json:"body,omitempty" msgpack:"body,omitempty"`
}

// Expression kinds.
const (
	ExprCall       = "call"
	ExprMethodCall = "method_call"
	ExprPath       = "path"
	ExprLit        = "lit"
	ExprBlock      = "block"
	ExprClosure    = "closure"
	ExprOpaque     = "opaque"
)

// Expr is one expression node. Def is the host's resolution: the callee of
// a call, the target of a method call, the declaration of a path.
type Expr struct {
	Kind string `json:"kind" msgpack:"kind"`
	Span Span   `json:"span" msgpack:"span"`
	Def  uint32 `json:"def,omitempty" msgpack:"def,omitempty"`

	Callee   *Expr    `json:"callee,omitempty" msgpack:"callee,omitempty"`
	Receiver *Expr    `json:"receiver,omitempty" msgpack:"receiver,omitempty"`
	Method   string   `json:"method,omitempty" msgpack:"method,omitempty"`
	Args     []Expr   `json:"args,omitempty" msgpack:"args,omitempty"`
	Segments []string `json:"segments,omitempty" msgpack:"segments,omitempty"`
	Lit      *Lit     `json:"lit,omitempty" msgpack:"lit,omitempty"`
	Stmts    []Stmt   `json:"stmts,omitempty" msgpack:"stmts,omitempty"`
	Tail     *Expr    `json:"tail,omitempty" msgpack:"tail,omitempty"`
	Body     *Expr    `json:"body,omitempty" msgpack:"body,omitempty"`
	Label    string   `json:"label,omitempty" msgpack:"label,omitempty"`
	Children []Expr   `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Stmt holds either an expression or a nested item.
type Stmt struct {
	Expr *Expr `json:"expr,omitempty" msgpack:"expr,omitempty"`
	Item *Item `json:"item,omitempty" msgpack:"item,omitempty"`
}

// Type is a type reference.
type Type struct {
	Segments []string `json:"segments,omitempty" msgpack:"segments,omitempty"`
	Def      uint32   `json:"def,omitempty" msgpack:"def,omitempty"`
	Args     []Type   `json:"args,omitempty" msgpack:"args,omitempty"`
	Infer    bool     `json:"infer,omitempty" msgpack:"infer,omitempty"`
	Span     Span     `json:"span" msgpack:"span"`
}

// Lit kinds.
const (
	LitInt   = "int"
	LitStr   = "str"
	LitBool  = "bool"
	LitOther = "other"
)

// Lit is a literal. Text is unquoted for strings and suffix-free for integers.
type Lit struct {
	Kind string `json:"kind" msgpack:"kind"`
	Text string `json:"text" msgpack:"text"`
}

// Attr is a structured attribute; Path is "::"-separated.
type Attr struct {
	Inner bool   `json:"inner,omitempty" msgpack:"inner,omitempty"`
	Path  string `json:"path" msgpack:"path"`
	Args  []Meta `json:"args,omitempty" msgpack:"args,omitempty"`
	Value *Lit   `json:"value,omitempty" msgpack:"value,omitempty"`
	Span  Span   `json:"span" msgpack:"span"`
}

// Meta kinds.
const (
	MetaWord      = "word"
	MetaNameValue = "name_value"
	MetaList      = "list"
	MetaLit       = "lit"
)

// Meta is a nested attribute argument.
type Meta struct {
	Kind string `json:"kind" msgpack:"kind"`
	Path string `json:"path,omitempty" msgpack:"path,omitempty"`
	Lit  *Lit   `json:"lit,omitempty" msgpack:"lit,omitempty"`
	List []Meta `json:"list,omitempty" msgpack:"list,omitempty"`
	Span *Span  `json:"span,omitempty" msgpack:"span,omitempty"`
}

// Doc styles.
const (
	DocLine  = "line"
	DocBlock = "block"
)

// Doc is a sugared doc comment; Raw includes its delimiters.
type Doc struct {
	Style string `json:"style" msgpack:"style"`
	Inner bool   `json:"inner,omitempty" msgpack:"inner,omitempty"`
	Raw   string `json:"raw" msgpack:"raw"`
	Span  Span   `json:"span" msgpack:"span"`
}

// Dispatch is the macro-generated call table of the pallet.
type Dispatch struct {
	Calls    []string  `json:"calls" msgpack:"calls"`
	Variants []Variant `json:"variants" msgpack:"variants"`
}

// Variant is one Call enum variant with its attributes.
type Variant struct {
	Name  string `json:"name" msgpack:"name"`
	Attrs []Attr `json:"attrs,omitempty" msgpack:"attrs,omitempty"`
	Span  *Span  `json:"span,omitempty" msgpack:"span,omitempty"`
}
