package hir

import (
	"substrace/internal/source"
)

// ExprKind enumerates expression kinds the lints distinguish.
// Everything else is kept as ExprOpaque with its sub-expressions.
type ExprKind uint8

const (
	// ExprCall represents `callee(args)`, including `T::iter()` style calls.
	ExprCall ExprKind = iota
	// ExprMethodCall represents `receiver.method(args)`.
	ExprMethodCall
	// ExprPath represents a resolved path such as `Foo::<T>::insert`.
	ExprPath
	// ExprLit represents literals.
	ExprLit
	// ExprBlock represents `{ stmts; tail }`.
	ExprBlock
	// ExprClosure represents `|args| body`. Its body belongs to the enclosing function.
	ExprClosure
	// ExprOpaque represents any other expression (operators, if, match, loops).
	ExprOpaque
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprCall:
		return "Call"
	case ExprMethodCall:
		return "MethodCall"
	case ExprPath:
		return "Path"
	case ExprLit:
		return "Lit"
	case ExprBlock:
		return "Block"
	case ExprClosure:
		return "Closure"
	case ExprOpaque:
		return "Opaque"
	}
	return "Unknown"
}

// Expr represents an expression node.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData // Kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// CallData holds data for ExprCall.
type CallData struct {
	Callee *Expr
	Args   []*Expr
	Def    DefID // type-dependent resolution of the call, if the host recorded one
}

func (CallData) exprData() {}

// MethodCallData holds data for ExprMethodCall.
type MethodCallData struct {
	Receiver *Expr
	Method   string
	Args     []*Expr
	Def      DefID // concrete declaration the method dispatches to
}

func (MethodCallData) exprData() {}

// PathData holds data for ExprPath.
type PathData struct {
	Segments []string // as written
	Res      DefID
}

func (PathData) exprData() {}

// LitKind enumerates literal kinds.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitStr
	LitBool
	LitOther
)

// Lit is a literal value. Text is the unquoted string content for LitStr and
// the digits without suffix for LitInt.
type Lit struct {
	Kind LitKind
	Text string
}

// LitData holds data for ExprLit.
type LitData struct {
	Lit Lit
}

func (LitData) exprData() {}

// Stmt is one statement of a block: either an expression or a nested item.
type Stmt struct {
	Expr *Expr
	Item *Item
}

// BlockData holds data for ExprBlock.
type BlockData struct {
	Stmts []Stmt
	Tail  *Expr // trailing expression without semicolon, nil if none
}

func (BlockData) exprData() {}

// ClosureData holds data for ExprClosure.
type ClosureData struct {
	Body *Expr
}

func (ClosureData) exprData() {}

// OpaqueData holds data for ExprOpaque.
type OpaqueData struct {
	Label    string // host-provided kind name, for dumps only
	Children []*Expr
}

func (OpaqueData) exprData() {}

// SubExprs returns the direct sub-expressions of e in source order.
// Items nested in block statements are not included.
func (e *Expr) SubExprs() []*Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case CallData:
		return prepend(d.Callee, d.Args)
	case MethodCallData:
		return prepend(d.Receiver, d.Args)
	case BlockData:
		out := make([]*Expr, 0, len(d.Stmts)+1)
		for _, st := range d.Stmts {
			if st.Expr != nil {
				out = append(out, st.Expr)
			}
		}
		if d.Tail != nil {
			out = append(out, d.Tail)
		}
		return out
	case ClosureData:
		if d.Body != nil {
			return []*Expr{d.Body}
		}
	case OpaqueData:
		return d.Children
	}
	return nil
}

func prepend(first *Expr, rest []*Expr) []*Expr {
	out := make([]*Expr, 0, len(rest)+1)
	if first != nil {
		out = append(out, first)
	}
	return append(out, rest...)
}

// FinalExpr returns the expression a body evaluates to: the tail of the
// outermost block, following nested blocks. It returns nil for blocks ending
// in a statement.
func FinalExpr(body *Expr) *Expr {
	for body != nil {
		d, ok := body.Data.(BlockData)
		if !ok {
			return body
		}
		body = d.Tail
	}
	return nil
}
