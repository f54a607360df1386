package lint

import (
	"substrace/internal/diag"
	"substrace/internal/hir"
)

// ToolName prefixes lint names in attributes: #[allow(substrace::panics)].
const ToolName = "substrace"

// Lint describes one reportable rule.
type Lint struct {
	Name    string // snake_case; the attribute and config key
	Code    diag.Code
	Default Level
	Desc    string // one line for listings
	Explain string // long form for `substrace explain`
}

// ID returns the tool-qualified name.
func (l *Lint) ID() string { return ToolName + "::" + l.Name }

// Pass is a stateful analysis object. The engine creates fresh passes for
// every crate it walks, so no state survives between runs.
//
// A pass implements any subset of the hook interfaces below. Hooks are called
// in registration order; a non-nil error aborts analysis of the crate.
type Pass interface {
	Name() string
	Lints() []*Lint
}

// CrateEnterer is called once before any item.
type CrateEnterer interface {
	EnterCrate(cx *Context, c *hir.Crate) error
}

// ItemEnterer is called for every item in pre-order, including nested ones.
type ItemEnterer interface {
	EnterItem(cx *Context, it *hir.Item) error
}

// FnEnterer is called for every function with a body, after EnterItem.
type FnEnterer interface {
	EnterFn(cx *Context, it *hir.Item, fn *hir.Func) error
}

// ExprEnterer is called for every expression of a body in pre-order.
type ExprEnterer interface {
	EnterExpr(cx *Context, e *hir.Expr) error
}

// FnExiter is called exactly once per EnterFn, even when the body is skipped.
type FnExiter interface {
	ExitFn(cx *Context, it *hir.Item, fn *hir.Func) error
}

// CrateExiter is called once after every item.
type CrateExiter interface {
	ExitCrate(cx *Context, c *hir.Crate) error
}
