// Package testkit builds small lowered crates over real Rust source text so
// lint tests can place spans on the exact bytes a host compiler would.
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fortio.org/safecast"

	"substrace/internal/hir"
	"substrace/internal/paths"
	"substrace/internal/source"
)

// Fixture holds one source file and the definitions interned while building nodes.
type Fixture struct {
	t     testing.TB
	Files *source.FileSet
	File  source.FileID
	Src   string
	Defs  *hir.DefTable
}

// New registers src as a virtual file. Fixes against it are never applied.
func New(t testing.TB, name, src string) *Fixture {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	return &Fixture{t: t, Files: fs, File: id, Src: string(fs.Get(id).Content), Defs: hir.NewDefTable()}
}

// NewOnDisk writes src into a temp dir and loads it, so the fix engine can rewrite it.
func NewOnDisk(t testing.TB, name, src string) (*Fixture, string) {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(src), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(p)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return &Fixture{t: t, Files: fs, File: id, Src: string(fs.Get(id).Content), Defs: hir.NewDefTable()}, p
}

// Span locates the first occurrence of needle.
func (f *Fixture) Span(needle string) source.Span {
	f.t.Helper()
	return f.SpanAt(needle, 0)
}

// SpanAt locates the n-th (0-based) occurrence of needle.
func (f *Fixture) SpanAt(needle string, n int) source.Span {
	f.t.Helper()
	off := 0
	for i := 0; ; i++ {
		j := strings.Index(f.Src[off:], needle)
		if j < 0 {
			f.t.Fatalf("fixture: occurrence %d of %q not found", n, needle)
		}
		if i == n {
			return f.span(off+j, off+j+len(needle))
		}
		off += j + 1
	}
}

func (f *Fixture) span(start, end int) source.Span {
	f.t.Helper()
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		f.t.Fatal(err)
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		f.t.Fatal(err)
	}
	return source.Span{File: f.File, Start: s, End: e}
}

// Def interns a "::"-separated canonical path.
func (f *Fixture) Def(path string) hir.DefID {
	return f.Defs.Intern(paths.Parse(path))
}

// Crate wraps items into a crate rooted at the fixture file.
func (f *Fixture) Crate(items ...*hir.Item) *hir.Crate {
	return &hir.Crate{Name: "fixture", Root: f.File, Items: items, Defs: f.Defs}
}

// Path builds a path expression; its segments are the needle split on "::".
func (f *Fixture) Path(needle, def string) *hir.Expr {
	f.t.Helper()
	return f.pathAt(f.Span(needle), needle, def)
}

func (f *Fixture) pathAt(sp source.Span, text, def string) *hir.Expr {
	var res hir.DefID
	if def != "" {
		res = f.Def(def)
	}
	return &hir.Expr{Kind: hir.ExprPath, Span: sp, Data: hir.PathData{
		Segments: strings.Split(text, "::"),
		Res:      res,
	}}
}

// Call builds `callee(args)` from a needle such as "T::iter()". The callee is
// the text before the first '(' and both the callee and the call resolve to def.
func (f *Fixture) Call(needle, def string, args ...*hir.Expr) *hir.Expr {
	f.t.Helper()
	return f.CallAt(needle, 0, def, args...)
}

// CallAt is Call on the n-th occurrence of needle.
func (f *Fixture) CallAt(needle string, n int, def string, args ...*hir.Expr) *hir.Expr {
	f.t.Helper()
	sp := f.SpanAt(needle, n)
	calleeText := needle
	if i := strings.IndexByte(needle, '('); i >= 0 {
		calleeText = needle[:i]
	}
	calleeSpan := sp
	calleeSpan.End = sp.Start + uint32(len(calleeText)) // #nosec G115 -- bounded by needle
	var res hir.DefID
	if def != "" {
		res = f.Def(def)
	}
	return &hir.Expr{Kind: hir.ExprCall, Span: sp, Data: hir.CallData{
		Callee: f.pathAt(calleeSpan, strings.TrimSpace(calleeText), def),
		Args:   args,
		Def:    res,
	}}
}

// MethodCall builds `recv.method(args)` spanning needle.
func (f *Fixture) MethodCall(needle string, recv *hir.Expr, method, def string, args ...*hir.Expr) *hir.Expr {
	f.t.Helper()
	var res hir.DefID
	if def != "" {
		res = f.Def(def)
	}
	return &hir.Expr{Kind: hir.ExprMethodCall, Span: f.Span(needle), Data: hir.MethodCallData{
		Receiver: recv,
		Method:   method,
		Args:     args,
		Def:      res,
	}}
}

// Int builds an integer literal at needle.
func (f *Fixture) Int(needle string) *hir.Expr {
	f.t.Helper()
	return &hir.Expr{Kind: hir.ExprLit, Span: f.Span(needle), Data: hir.LitData{Lit: hir.Lit{Kind: hir.LitInt, Text: needle}}}
}

// Block builds a block spanning needle. stmts are expression statements.
func (f *Fixture) Block(needle string, tail *hir.Expr, stmts ...*hir.Expr) *hir.Expr {
	f.t.Helper()
	d := hir.BlockData{Tail: tail}
	for _, s := range stmts {
		d.Stmts = append(d.Stmts, hir.Stmt{Expr: s})
	}
	return &hir.Expr{Kind: hir.ExprBlock, Span: f.Span(needle), Data: d}
}

// BlockSpan builds a block over an explicit span.
func (f *Fixture) BlockSpan(sp source.Span, tail *hir.Expr, stmts ...*hir.Expr) *hir.Expr {
	d := hir.BlockData{Tail: tail}
	for _, s := range stmts {
		d.Stmts = append(d.Stmts, hir.Stmt{Expr: s})
	}
	return &hir.Expr{Kind: hir.ExprBlock, Span: sp, Data: d}
}

// Closure builds `|..| body` spanning needle.
func (f *Fixture) Closure(needle string, body *hir.Expr) *hir.Expr {
	f.t.Helper()
	return &hir.Expr{Kind: hir.ExprClosure, Span: f.Span(needle), Data: hir.ClosureData{Body: body}}
}

// Opaque builds an uninterpreted expression with children, e.g. a for loop.
func (f *Fixture) Opaque(needle, label string, children ...*hir.Expr) *hir.Expr {
	f.t.Helper()
	return &hir.Expr{Kind: hir.ExprOpaque, Span: f.Span(needle), Data: hir.OpaqueData{Label: label, Children: children}}
}

// Fn builds a free function. sig is the exact signature text; the item spans
// from the signature to the end of body.
func (f *Fixture) Fn(name, sig string, body *hir.Expr) *hir.Item {
	f.t.Helper()
	return f.fn(name, sig, body, false)
}

// Method builds an associated function of an impl block.
func (f *Fixture) Method(name, sig string, body *hir.Expr) *hir.Item {
	f.t.Helper()
	return f.fn(name, sig, body, true)
}

func (f *Fixture) fn(name, sig string, body *hir.Expr, method bool) *hir.Item {
	f.t.Helper()
	sigSpan := f.Span(sig)
	span := sigSpan
	if body != nil {
		span = span.Cover(body.Span)
	}
	return &hir.Item{
		Kind: hir.ItemFn,
		Name: name,
		Span: span,
		Data: hir.FnData{Func: &hir.Func{Name: name, Sig: sigSpan, Body: body, Method: method}},
	}
}

// Impl builds an inherent impl block spanning needle.
func (f *Fixture) Impl(needle, selfTy string, items ...*hir.Item) *hir.Item {
	f.t.Helper()
	return &hir.Item{
		Kind: hir.ItemImpl,
		Span: f.Span(needle),
		Data: hir.ImplData{SelfTy: hir.TypeRef{Segments: []string{selfTy}}, Items: items},
	}
}

// Mod builds an inline module spanning needle.
func (f *Fixture) Mod(name, needle string, items ...*hir.Item) *hir.Item {
	f.t.Helper()
	return &hir.Item{Kind: hir.ItemMod, Name: name, Span: f.Span(needle), Data: hir.ModData{Items: items}}
}

// TypeAlias builds `type name = target;` spanning needle.
func (f *Fixture) TypeAlias(name, needle string, target hir.TypeRef) *hir.Item {
	f.t.Helper()
	return &hir.Item{Kind: hir.ItemTypeAlias, Name: name, Span: f.Span(needle), Data: hir.TypeAliasData{Target: target}}
}

// Type builds a type reference spanning needle, resolved to def ("" for none).
func (f *Fixture) Type(needle, def string, args ...hir.TypeRef) hir.TypeRef {
	f.t.Helper()
	var res hir.DefID
	if def != "" {
		res = f.Def(def)
	}
	sp := f.Span(needle)
	name := needle
	if i := strings.IndexByte(needle, '<'); i >= 0 {
		name = needle[:i]
	}
	return hir.TypeRef{Segments: strings.Split(name, "::"), Res: res, Args: args, Span: sp}
}

// LineDocs splits needle, a run of `///` or `//!` lines, into one doc comment per line.
func (f *Fixture) LineDocs(needle string) []hir.DocComment {
	f.t.Helper()
	base := f.Span(needle)
	var out []hir.DocComment
	off := 0
	for _, line := range strings.SplitAfter(needle, "\n") {
		body := strings.TrimRight(line, "\n")
		lead := len(body) - len(strings.TrimLeft(body, " \t"))
		text := body[lead:]
		if text != "" {
			sp := base
			sp.Start = base.Start + uint32(off+lead) // #nosec G115 -- bounded by needle
			sp.End = sp.Start + uint32(len(text))    // #nosec G115 -- bounded by needle
			out = append(out, hir.DocComment{
				Style: hir.DocLine,
				Inner: strings.HasPrefix(text, "//!"),
				Raw:   text,
				Span:  sp,
			})
		}
		off += len(line)
	}
	return out
}

// BlockDoc builds one `/** */` or `/*! */` doc comment spanning needle.
func (f *Fixture) BlockDoc(needle string) hir.DocComment {
	f.t.Helper()
	return hir.DocComment{
		Style: hir.DocBlock,
		Inner: strings.HasPrefix(needle, "/*!"),
		Raw:   needle,
		Span:  f.Span(needle),
	}
}

// Attr builds an attribute spanning needle; needles starting with "#!" are inner.
func (f *Fixture) Attr(needle, path string, args ...hir.Meta) hir.Attr {
	f.t.Helper()
	style := hir.AttrOuter
	if strings.HasPrefix(needle, "#!") {
		style = hir.AttrInner
	}
	return hir.Attr{Style: style, Path: paths.Parse(path), Args: args, Span: f.Span(needle)}
}

// Word is a bare path meta item such as `clippy::unwrap_used`.
func Word(path string) hir.Meta {
	return hir.Meta{Kind: hir.MetaWord, Path: paths.Parse(path)}
}

// IntArg is a bare integer argument such as `3` in call_index(3).
func IntArg(text string) hir.Meta {
	return hir.Meta{Kind: hir.MetaLit, Lit: &hir.Lit{Kind: hir.LitInt, Text: text}}
}

// StrValue is `path = "text"`.
func StrValue(path, text string) hir.Meta {
	return hir.Meta{Kind: hir.MetaNameValue, Path: paths.Parse(path), Lit: &hir.Lit{Kind: hir.LitStr, Text: text}}
}

// IntValue is `path = N`.
func IntValue(path, text string) hir.Meta {
	return hir.Meta{Kind: hir.MetaNameValue, Path: paths.Parse(path), Lit: &hir.Lit{Kind: hir.LitInt, Text: text}}
}

// List is `path(items...)`.
func List(path string, items ...hir.Meta) hir.Meta {
	return hir.Meta{Kind: hir.MetaList, Path: paths.Parse(path), List: items}
}

// CallVariant is a Call enum variant carrying #[codec(index = index)].
func CallVariant(name, index string) hir.CallVariant {
	return hir.CallVariant{
		Name: name,
		Attrs: []hir.Attr{{
			Path: []string{"codec"},
			Args: []hir.Meta{IntValue("index", index)},
		}},
	}
}

// Dispatch lists every variant as a dispatchable call.
func Dispatch(variants ...hir.CallVariant) *hir.DispatchTable {
	t := &hir.DispatchTable{Variants: variants}
	for _, v := range variants {
		t.CallNames = append(t.CallNames, v.Name)
	}
	return t
}
