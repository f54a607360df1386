package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"substrace/internal/hir"
	"substrace/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a lowered crate:
// 1) every item span is non-empty and within its file's content
// 2) nested items lie inside their parent impl or module
// 3) every expression lies inside the item that owns its body
// 4) doc comment spans cover exactly their raw text
func CheckSpanInvariants(c *hir.Crate, fs *source.FileSet) error {
	if c == nil || fs == nil {
		return fmt.Errorf("nil crate or file set")
	}
	for _, it := range c.Items {
		if err := checkItem(it, nil, fs); err != nil {
			return err
		}
	}
	return nil
}

func checkItem(it *hir.Item, parent *hir.Item, fs *source.FileSet) error {
	if it == nil {
		return fmt.Errorf("nil item")
	}
	if err := checkBounds(it.Span, fs); err != nil {
		return fmt.Errorf("item %s %q: %w", it.Kind, it.Name, err)
	}
	if it.Span.End <= it.Span.Start {
		return fmt.Errorf("empty item span for %s %q: %v", it.Kind, it.Name, it.Span)
	}
	if parent != nil && !within(it.Span, parent.Span) {
		return fmt.Errorf("item %q span %v is outside parent span %v", it.Name, it.Span, parent.Span)
	}
	for _, d := range it.Docs {
		text, ok := fs.Snippet(d.Span)
		if !ok || text != d.Raw {
			return fmt.Errorf("doc comment span %v does not cover its text %q", d.Span, d.Raw)
		}
	}
	if fn, ok := it.Func(); ok && fn.Body != nil {
		if err := checkExpr(fn.Body, it, fs); err != nil {
			return err
		}
	}
	for _, child := range it.Children() {
		if err := checkItem(child, it, fs); err != nil {
			return err
		}
	}
	return nil
}

func checkExpr(e *hir.Expr, owner *hir.Item, fs *source.FileSet) error {
	if !within(e.Span, owner.Span) {
		return fmt.Errorf("%s expression %v is outside item %q span %v", e.Kind, e.Span, owner.Name, owner.Span)
	}
	if b, ok := e.Data.(hir.BlockData); ok {
		for _, st := range b.Stmts {
			if st.Item != nil {
				if err := checkItem(st.Item, owner, fs); err != nil {
					return err
				}
			}
		}
	}
	for _, sub := range e.SubExprs() {
		if err := checkExpr(sub, owner, fs); err != nil {
			return err
		}
	}
	return nil
}

func checkBounds(sp source.Span, fs *source.FileSet) error {
	f := fs.Get(sp.File)
	if f == nil {
		return fmt.Errorf("span %v points to unknown file", sp)
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}

func within(inner, outer source.Span) bool {
	return inner.File == outer.File && inner.Start >= outer.Start && inner.End <= outer.End
}
