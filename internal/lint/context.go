package lint

import (
	"substrace/internal/diag"
	"substrace/internal/hir"
	"substrace/internal/paths"
	"substrace/internal/source"
)

// Context is the read-only view passes get in every hook: the crate, its
// sources, resolution queries and the diagnostic sink. The engine owns it.
type Context struct {
	crate    *hir.Crate
	files    *source.FileSet
	reporter diag.Reporter
	base     map[string]Level
	known    map[string]*Lint
	frames   []levelFrame
	items    []*hir.Item
	pass     string
}

// Crate returns the crate under analysis.
func (cx *Context) Crate() *hir.Crate { return cx.crate }

// Files returns the unit's file set.
func (cx *Context) Files() *source.FileSet { return cx.files }

// Item returns the innermost item being visited, or nil at crate level.
func (cx *Context) Item() *hir.Item {
	if len(cx.items) == 0 {
		return nil
	}
	return cx.items[len(cx.items)-1]
}

// DefPath resolves a DefID to its canonical path.
func (cx *Context) DefPath(id hir.DefID) (paths.Path, bool) {
	return cx.crate.DefPath(id)
}

// CalleeDef returns the declaration a call dispatches to. For calls it prefers
// the type-dependent resolution recorded by the host and falls back to the
// callee path; for method calls it uses the resolved method.
func (cx *Context) CalleeDef(e *hir.Expr) (paths.Path, bool) {
	if e == nil {
		return nil, false
	}
	switch d := e.Data.(type) {
	case hir.CallData:
		if d.Def.IsValid() {
			return cx.DefPath(d.Def)
		}
		if d.Callee != nil {
			if p, ok := d.Callee.Data.(hir.PathData); ok && p.Res.IsValid() {
				return cx.DefPath(p.Res)
			}
		}
	case hir.MethodCallData:
		if d.Def.IsValid() {
			return cx.DefPath(d.Def)
		}
	}
	return nil, false
}

// TypeDef resolves a type reference.
func (cx *Context) TypeDef(t hir.TypeRef) (paths.Path, bool) {
	if !t.Res.IsValid() {
		return nil, false
	}
	return cx.DefPath(t.Res)
}

// MatchCall reports whether e is a call whose target is in set.
func (cx *Context) MatchCall(e *hir.Expr, set paths.Set) bool {
	p, ok := cx.CalleeDef(e)
	return ok && set.Contains(p)
}

// Snippet returns the source text under span.
func (cx *Context) Snippet(span source.Span) (string, bool) {
	return cx.files.Snippet(span)
}

// Level returns the effective level of l at the current position.
func (cx *Context) Level(l *Lint) Level {
	base, ok := cx.base[l.Name]
	if !ok {
		base = l.Default
	}
	return resolve(l.Name, base, cx.frames)
}

// Lint starts a diagnostic for l at span. It returns nil when l is allowed
// here; the nil builder accepts the whole chain and emits nothing.
func (cx *Context) Lint(l *Lint, span source.Span, msg string) *diag.ReportBuilder {
	lvl := cx.Level(l)
	if lvl == Allow {
		return nil
	}
	return diag.NewReportBuilder(cx.reporter, lvl.Severity(), l.Code, span, msg).WithLint(l.ID())
}

// Fail wraps err as an AnalysisError attributed to the current pass and item.
func (cx *Context) Fail(span source.Span, err error) error {
	ae := &AnalysisError{Pass: cx.pass, Span: span, Err: err}
	if it := cx.Item(); it != nil {
		ae.Item = it.Name
	}
	return ae
}

func (cx *Context) knownLint(name string) bool {
	_, ok := cx.known[name]
	return ok
}

func (cx *Context) pushItem(it *hir.Item) {
	cx.items = append(cx.items, it)
	cx.frames = append(cx.frames, frameFromAttrs(it.Attrs, cx.knownLint))
}

func (cx *Context) popItem() {
	cx.items = cx.items[:len(cx.items)-1]
	cx.frames = cx.frames[:len(cx.frames)-1]
}
