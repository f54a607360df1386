package unit

import (
	"errors"
	"fmt"
	"path/filepath"

	"substrace/internal/hir"
	"substrace/internal/paths"
	"substrace/internal/source"
)

var (
	// ErrBadSpan means a span does not fit its file.
	ErrBadSpan = errors.New("span out of range")
	// ErrBadDef means a DefID is not in the def table.
	ErrBadDef = errors.New("unknown def id")
	// ErrStaleSource means a file on disk differs from what the host saw.
	ErrStaleSource = errors.New("source file changed since extraction")
)

// Lower builds the hir crate of u. Relative file paths are resolved against
// baseDir; files are loaded into a fresh FileSet rooted there.
func Lower(u *Unit, baseDir string) (*hir.Crate, *source.FileSet, error) {
	if u == nil {
		return nil, nil, errors.New("nil unit")
	}
	l := &lowerer{u: u, fs: source.NewFileSetWithBase(baseDir)}
	if err := l.loadFiles(baseDir); err != nil {
		return nil, nil, err
	}
	if u.Root < 0 || u.Root >= len(l.files) {
		return nil, nil, fmt.Errorf("root file index %d out of range", u.Root)
	}

	c := &hir.Crate{Name: u.Crate, Root: l.files[u.Root], Defs: hir.NewDefTable()}
	for _, d := range u.Defs {
		c.Defs.Intern(paths.Parse(d))
	}
	l.ndefs = c.Defs.Len()
	if l.ndefs != len(u.Defs) {
		return nil, nil, errors.New("def table contains duplicate paths")
	}

	var err error
	if c.Attrs, err = l.attrs(u.Attrs); err != nil {
		return nil, nil, fmt.Errorf("crate attributes: %w", err)
	}
	if c.Docs, err = l.docs(u.Docs); err != nil {
		return nil, nil, fmt.Errorf("crate docs: %w", err)
	}
	if c.Items, err = l.items(u.Items); err != nil {
		return nil, nil, err
	}
	if u.Dispatch != nil {
		if c.Dispatch, err = l.dispatch(u.Dispatch); err != nil {
			return nil, nil, fmt.Errorf("dispatch table: %w", err)
		}
	}
	return c, l.fs, nil
}

type lowerer struct {
	u     *Unit
	fs    *source.FileSet
	files []source.FileID
	ndefs int
}

func (l *lowerer) loadFiles(baseDir string) error {
	for i, f := range l.u.Files {
		var id source.FileID
		if f.Content != nil {
			id = l.fs.AddVirtual(f.Path, []byte(*f.Content))
		} else {
			p := f.Path
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			var err error
			if id, err = l.fs.Load(p); err != nil {
				return fmt.Errorf("file %d: %w", i, err)
			}
		}
		file := l.fs.Get(id)
		if file.Flags&(source.FileBOM|source.FileCRLF) != 0 {
			// host offsets are taken after rustc strips BOM and CRLF
			return fmt.Errorf("%s: %w (line endings or BOM differ)", f.Path, ErrStaleSource)
		}
		if f.Size > 0 && f.Size != len(file.Content) {
			return fmt.Errorf("%s: %w (%d bytes, host saw %d)", f.Path, ErrStaleSource, len(file.Content), f.Size)
		}
		l.files = append(l.files, id)
	}
	return nil
}

func (l *lowerer) span(s Span) (source.Span, error) {
	if s.File < 0 || s.File >= len(l.files) {
		return source.Span{}, fmt.Errorf("%w: file index %d", ErrBadSpan, s.File)
	}
	id := l.files[s.File]
	size := len(l.fs.Get(id).Content)
	if s.Lo > s.Hi || int(s.Hi) > size {
		return source.Span{}, fmt.Errorf("%w: %d..%d in %s (%d bytes)", ErrBadSpan, s.Lo, s.Hi, l.fs.Get(id).Path, size)
	}
	return source.Span{File: id, Start: s.Lo, End: s.Hi}, nil
}

func (l *lowerer) def(id uint32) (hir.DefID, error) {
	if id == 0 {
		return hir.NoDefID, nil
	}
	if int(id) > l.ndefs {
		return hir.NoDefID, fmt.Errorf("%w: %d (table has %d)", ErrBadDef, id, l.ndefs)
	}
	return hir.DefID(id), nil
}

func (l *lowerer) items(in []Item) ([]*hir.Item, error) {
	out := make([]*hir.Item, 0, len(in))
	for i := range in {
		it, err := l.item(&in[i])
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (l *lowerer) item(in *Item) (*hir.Item, error) {
	wrap := func(err error) error {
		return fmt.Errorf("%s item %q: %w", in.Kind, in.Name, err)
	}
	sp, err := l.span(in.Span)
	if err != nil {
		return nil, wrap(err)
	}
	it := &hir.Item{Name: in.Name, Span: sp}
	if it.Attrs, err = l.attrs(in.Attrs); err != nil {
		return nil, wrap(err)
	}
	if it.Docs, err = l.docs(in.Docs); err != nil {
		return nil, wrap(err)
	}

	switch in.Kind {
	case KindFn:
		if in.Fn == nil {
			return nil, wrap(errors.New("missing fn payload"))
		}
		fn := &hir.Func{Name: in.Name, Method: in.Fn.Method}
		if fn.Sig, err = l.span(in.Fn.Sig); err != nil {
			return nil, wrap(err)
		}
		if in.Fn.Body != nil {
			if fn.Body, err = l.expr(in.Fn.Body); err != nil {
				return nil, wrap(err)
			}
		}
		it.Kind, it.Data = hir.ItemFn, hir.FnData{Func: fn}
	case KindType:
		if in.Target == nil {
			return nil, wrap(errors.New("missing alias target"))
		}
		target, err := l.typeRef(in.Target)
		if err != nil {
			return nil, wrap(err)
		}
		it.Kind, it.Data = hir.ItemTypeAlias, hir.TypeAliasData{Target: target}
	case KindImpl:
		d := hir.ImplData{}
		if in.SelfTy != nil {
			if d.SelfTy, err = l.typeRef(in.SelfTy); err != nil {
				return nil, wrap(err)
			}
		}
		if in.Trait != nil {
			tr, err := l.typeRef(in.Trait)
			if err != nil {
				return nil, wrap(err)
			}
			d.Trait = &tr
		}
		if d.Items, err = l.items(in.Items); err != nil {
			return nil, wrap(err)
		}
		it.Kind, it.Data = hir.ItemImpl, d
	case KindMod:
		children, err := l.items(in.Items)
		if err != nil {
			return nil, wrap(err)
		}
		it.Kind, it.Data = hir.ItemMod, hir.ModData{Items: children}
	case "struct":
		it.Kind = hir.ItemStruct
	case "enum":
		it.Kind = hir.ItemEnum
	case "const":
		it.Kind = hir.ItemConst
	case "use":
		it.Kind = hir.ItemUse
	case KindOther, "":
		it.Kind = hir.ItemOther
	default:
		return nil, wrap(fmt.Errorf("unknown item kind %q", in.Kind))
	}
	return it, nil
}

func (l *lowerer) exprs(in []Expr) ([]*hir.Expr, error) {
	out := make([]*hir.Expr, 0, len(in))
	for i := range in {
		e, err := l.expr(&in[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (l *lowerer) optExpr(in *Expr) (*hir.Expr, error) {
	if in == nil {
		return nil, nil
	}
	return l.expr(in)
}

func (l *lowerer) expr(in *Expr) (*hir.Expr, error) {
	sp, err := l.span(in.Span)
	if err != nil {
		return nil, fmt.Errorf("%s expression: %w", in.Kind, err)
	}
	def, err := l.def(in.Def)
	if err != nil {
		return nil, fmt.Errorf("%s expression at %d: %w", in.Kind, in.Span.Lo, err)
	}
	e := &hir.Expr{Span: sp}
	switch in.Kind {
	case ExprCall:
		d := hir.CallData{Def: def}
		if d.Callee, err = l.optExpr(in.Callee); err != nil {
			return nil, err
		}
		if d.Args, err = l.exprs(in.Args); err != nil {
			return nil, err
		}
		e.Kind, e.Data = hir.ExprCall, d
	case ExprMethodCall:
		d := hir.MethodCallData{Method: in.Method, Def: def}
		if d.Receiver, err = l.optExpr(in.Receiver); err != nil {
			return nil, err
		}
		if d.Args, err = l.exprs(in.Args); err != nil {
			return nil, err
		}
		e.Kind, e.Data = hir.ExprMethodCall, d
	case ExprPath:
		e.Kind, e.Data = hir.ExprPath, hir.PathData{Segments: in.Segments, Res: def}
	case ExprLit:
		var lit hir.Lit
		if in.Lit != nil {
			if lit, err = lowerLit(in.Lit); err != nil {
				return nil, err
			}
		}
		e.Kind, e.Data = hir.ExprLit, hir.LitData{Lit: lit}
	case ExprBlock:
		d := hir.BlockData{}
		for i := range in.Stmts {
			st, err := l.stmt(&in.Stmts[i])
			if err != nil {
				return nil, err
			}
			d.Stmts = append(d.Stmts, st)
		}
		if d.Tail, err = l.optExpr(in.Tail); err != nil {
			return nil, err
		}
		e.Kind, e.Data = hir.ExprBlock, d
	case ExprClosure:
		body, err := l.optExpr(in.Body)
		if err != nil {
			return nil, err
		}
		e.Kind, e.Data = hir.ExprClosure, hir.ClosureData{Body: body}
	case ExprOpaque, "":
		children, err := l.exprs(in.Children)
		if err != nil {
			return nil, err
		}
		e.Kind, e.Data = hir.ExprOpaque, hir.OpaqueData{Label: in.Label, Children: children}
	default:
		return nil, fmt.Errorf("unknown expression kind %q", in.Kind)
	}
	return e, nil
}

func (l *lowerer) stmt(in *Stmt) (hir.Stmt, error) {
	switch {
	case in.Item != nil && in.Expr != nil:
		return hir.Stmt{}, errors.New("statement holds both an item and an expression")
	case in.Item != nil:
		it, err := l.item(in.Item)
		return hir.Stmt{Item: it}, err
	case in.Expr != nil:
		e, err := l.expr(in.Expr)
		return hir.Stmt{Expr: e}, err
	}
	return hir.Stmt{}, errors.New("empty statement")
}

func (l *lowerer) typeRef(in *Type) (hir.TypeRef, error) {
	t := hir.TypeRef{Segments: in.Segments, Infer: in.Infer}
	var err error
	if t.Span, err = l.span(in.Span); err != nil {
		return t, fmt.Errorf("type: %w", err)
	}
	if t.Res, err = l.def(in.Def); err != nil {
		return t, fmt.Errorf("type: %w", err)
	}
	for i := range in.Args {
		arg, err := l.typeRef(&in.Args[i])
		if err != nil {
			return t, err
		}
		t.Args = append(t.Args, arg)
	}
	return t, nil
}

func (l *lowerer) attrs(in []Attr) ([]hir.Attr, error) {
	out := make([]hir.Attr, 0, len(in))
	for _, a := range in {
		sp, err := l.span(a.Span)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Path, err)
		}
		attr, err := l.attr(a, true)
		if err != nil {
			return nil, err
		}
		attr.Span = sp
		out = append(out, attr)
	}
	return out, nil
}

func (l *lowerer) docs(in []Doc) ([]hir.DocComment, error) {
	out := make([]hir.DocComment, 0, len(in))
	for _, d := range in {
		sp, err := l.span(d.Span)
		if err != nil {
			return nil, fmt.Errorf("doc comment: %w", err)
		}
		dc := hir.DocComment{Inner: d.Inner, Raw: d.Raw, Span: sp}
		switch d.Style {
		case DocLine, "":
			dc.Style = hir.DocLine
		case DocBlock:
			dc.Style = hir.DocBlock
		default:
			return nil, fmt.Errorf("unknown doc style %q", d.Style)
		}
		if text, ok := l.fs.Snippet(sp); !ok || text != d.Raw {
			return nil, fmt.Errorf("doc comment at %d: %w: text does not match the file", d.Span.Lo, ErrStaleSource)
		}
		out = append(out, dc)
	}
	return out, nil
}

// dispatch lowers the call table. Variant attributes come from macro
// expansion and their spans are not checked.
func (l *lowerer) dispatch(in *Dispatch) (*hir.DispatchTable, error) {
	t := &hir.DispatchTable{CallNames: append([]string(nil), in.Calls...)}
	for _, v := range in.Variants {
		cv := hir.CallVariant{Name: v.Name}
		if v.Span != nil {
			if sp, err := l.span(*v.Span); err == nil {
				cv.Span = sp
			}
		}
		for _, a := range v.Attrs {
			attr, err := l.attr(a, false)
			if err != nil {
				return nil, fmt.Errorf("variant %s: %w", v.Name, err)
			}
			cv.Attrs = append(cv.Attrs, attr)
		}
		t.Variants = append(t.Variants, cv)
	}
	return t, nil
}

// attr lowers a without its own span. withSpans controls whether nested
// meta spans are resolved.
func (l *lowerer) attr(a Attr, withSpans bool) (hir.Attr, error) {
	out := hir.Attr{Path: paths.Parse(a.Path)}
	if a.Inner {
		out.Style = hir.AttrInner
	}
	if a.Value != nil {
		v, err := lowerLit(a.Value)
		if err != nil {
			return out, err
		}
		out.Value = &v
	}
	for _, m := range a.Args {
		meta, err := l.meta(m, withSpans)
		if err != nil {
			return out, fmt.Errorf("attribute %s: %w", a.Path, err)
		}
		out.Args = append(out.Args, meta)
	}
	return out, nil
}

func (l *lowerer) meta(m Meta, withSpans bool) (hir.Meta, error) {
	out := hir.Meta{Path: paths.Parse(m.Path)}
	if withSpans && m.Span != nil {
		sp, err := l.span(*m.Span)
		if err != nil {
			return out, err
		}
		out.Span = sp
	}
	switch m.Kind {
	case MetaWord:
		out.Kind = hir.MetaWord
	case MetaNameValue:
		out.Kind = hir.MetaNameValue
	case MetaList:
		out.Kind = hir.MetaList
	case MetaLit:
		out.Kind = hir.MetaLit
	default:
		return out, fmt.Errorf("unknown meta kind %q", m.Kind)
	}
	if m.Lit != nil {
		lit, err := lowerLit(m.Lit)
		if err != nil {
			return out, err
		}
		out.Lit = &lit
	}
	for _, sub := range m.List {
		nested, err := l.meta(sub, withSpans)
		if err != nil {
			return out, err
		}
		out.List = append(out.List, nested)
	}
	return out, nil
}

func lowerLit(in *Lit) (hir.Lit, error) {
	out := hir.Lit{Text: in.Text}
	switch in.Kind {
	case LitInt:
		out.Kind = hir.LitInt
	case LitStr:
		out.Kind = hir.LitStr
	case LitBool:
		out.Kind = hir.LitBool
	case LitOther, "":
		out.Kind = hir.LitOther
	default:
		return out, fmt.Errorf("unknown literal kind %q", in.Kind)
	}
	return out, nil
}
