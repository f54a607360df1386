package lint

import (
	"context"
	"strconv"

	"substrace/internal/diag"
	"substrace/internal/hir"
	"substrace/internal/source"
	"substrace/internal/trace"
)

// Options tune one engine.
type Options struct {
	// Levels overrides lint defaults by name. Attributes in the source still win.
	Levels map[string]Level
}

// Engine walks crates with the passes of a registry. It is safe for
// concurrent use: every Run builds its own passes and context.
type Engine struct {
	reg  *Registry
	opts Options
}

// NewEngine creates an engine over reg.
func NewEngine(reg *Registry, opts Options) *Engine {
	return &Engine{reg: reg, opts: opts}
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry { return e.reg }

// Run analyses one crate and sends diagnostics to r in traversal order.
// A returned error is an *AnalysisError; diagnostics reported before it remain valid.
func (e *Engine) Run(ctx context.Context, c *hir.Crate, fs *source.FileSet, r diag.Reporter) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePhase, "lint", trace.ParentFrom(ctx))
	counted := &countingReporter{next: r}

	known := make(map[string]*Lint)
	for _, l := range e.reg.Lints() {
		known[l.Name] = l
	}
	cx := &Context{
		crate:    c,
		files:    fs,
		reporter: counted,
		base:     e.opts.Levels,
		known:    known,
	}
	cx.frames = append(cx.frames, frameFromAttrs(c.Attrs, cx.knownLint))

	w := &walker{cx: cx, passes: e.reg.Passes(), tracer: tracer, span: span.ID()}
	err := w.crate(c)
	span.Set("diagnostics", strconv.Itoa(counted.n)).End(c.Name)
	return err
}

type countingReporter struct {
	next diag.Reporter
	n    int
}

func (r *countingReporter) Report(d diag.Diagnostic) {
	r.n++
	if r.next != nil {
		r.next.Report(d)
	}
}

type walker struct {
	cx     *Context
	passes []Pass
	tracer trace.Tracer
	span   uint64
}

// call runs one hook with the pass recorded on the context, so Fail and
// wrapped errors name it.
func (w *walker) call(p Pass, hook func() error) error {
	w.cx.pass = p.Name()
	err := hook()
	w.cx.pass = ""
	if err == nil {
		return nil
	}
	if ae, ok := AsAnalysisError(err); ok {
		if ae.Pass == "" {
			ae.Pass = p.Name()
		}
		return ae
	}
	ae := &AnalysisError{Pass: p.Name(), Err: err}
	if it := w.cx.Item(); it != nil {
		ae.Item = it.Name
		ae.Span = it.Span
	}
	return ae
}

func (w *walker) crate(c *hir.Crate) error {
	for _, p := range w.passes {
		if h, ok := p.(CrateEnterer); ok {
			if err := w.call(p, func() error { return h.EnterCrate(w.cx, c) }); err != nil {
				return err
			}
		}
	}
	for _, it := range c.Items {
		if err := w.item(it); err != nil {
			return err
		}
	}
	for _, p := range w.passes {
		if h, ok := p.(CrateExiter); ok {
			if err := w.call(p, func() error { return h.ExitCrate(w.cx, c) }); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) item(it *hir.Item) error {
	if it == nil {
		return nil
	}
	w.cx.pushItem(it)
	defer w.cx.popItem()
	trace.Point(w.tracer, trace.ScopeNode, it.Kind.String()+":"+it.Name, w.span, "")

	for _, p := range w.passes {
		if h, ok := p.(ItemEnterer); ok {
			if err := w.call(p, func() error { return h.EnterItem(w.cx, it) }); err != nil {
				return err
			}
		}
	}
	if fn, ok := it.Func(); ok && fn.Body != nil {
		if err := w.fn(it, fn); err != nil {
			return err
		}
	}
	for _, child := range it.Children() {
		if err := w.item(child); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) fn(it *hir.Item, fn *hir.Func) error {
	for _, p := range w.passes {
		if h, ok := p.(FnEnterer); ok {
			if err := w.call(p, func() error { return h.EnterFn(w.cx, it, fn) }); err != nil {
				return err
			}
		}
	}
	if err := w.expr(fn.Body); err != nil {
		return err
	}
	for _, p := range w.passes {
		if h, ok := p.(FnExiter); ok {
			if err := w.call(p, func() error { return h.ExitFn(w.cx, it, fn) }); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) expr(e *hir.Expr) error {
	if e == nil {
		return nil
	}
	for _, p := range w.passes {
		if h, ok := p.(ExprEnterer); ok {
			if err := w.call(p, func() error { return h.EnterExpr(w.cx, e) }); err != nil {
				return err
			}
		}
	}
	// Blocks interleave statements and nested items in source order.
	if b, ok := e.Data.(hir.BlockData); ok {
		for _, st := range b.Stmts {
			var err error
			if st.Item != nil {
				err = w.item(st.Item)
			} else {
				err = w.expr(st.Expr)
			}
			if err != nil {
				return err
			}
		}
		return w.expr(b.Tail)
	}
	for _, sub := range e.SubExprs() {
		if err := w.expr(sub); err != nil {
			return err
		}
	}
	return nil
}
