package hir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"substrace/internal/source"
)

type treeNode struct {
	label    string
	children []*treeNode
}

func (n *treeNode) add(label string, children ...*treeNode) *treeNode {
	child := &treeNode{label: label, children: children}
	n.children = append(n.children, child)
	return child
}

// Dump writes the crate as an indented tree. Spans are shown as
// line:col ranges when fs is non-nil.
func Dump(w io.Writer, c *Crate, fs *source.FileSet) error {
	root := &treeNode{label: fmt.Sprintf("Crate %s", c.Name)}
	if fs != nil {
		if f := fs.Get(c.Root); f != nil {
			root.label += " (" + f.FormatPath("auto", fs.BaseDir()) + ")"
		}
	}
	d := dumper{c: c, fs: fs}
	for _, a := range c.Attrs {
		root.children = append(root.children, d.attr(a))
	}
	if len(c.Docs) > 0 {
		root.add(fmt.Sprintf("Docs: %d", len(c.Docs)))
	}
	for i, it := range c.Items {
		root.children = append(root.children, d.item(it, i))
	}
	if c.Dispatch != nil {
		root.children = append(root.children, d.dispatch(c.Dispatch))
	}

	var b strings.Builder
	b.WriteString(root.label)
	b.WriteByte('\n')
	renderTree(&b, root.children, "")
	_, err := io.WriteString(w, b.String())
	return err
}

func renderTree(b *strings.Builder, nodes []*treeNode, prefix string) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(n.label)
		b.WriteByte('\n')
		renderTree(b, n.children, prefix+next)
	}
}

type dumper struct {
	c  *Crate
	fs *source.FileSet
}

func (d dumper) span(sp source.Span) string {
	if d.fs == nil || d.fs.Get(sp.File) == nil {
		return sp.String()
	}
	start, end := d.fs.Resolve(sp)
	return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
}

func (d dumper) def(id DefID) string {
	if !id.IsValid() {
		return ""
	}
	if p, ok := d.c.DefPath(id); ok {
		return " => " + p.String()
	}
	return fmt.Sprintf(" => #%d?", id)
}

func (d dumper) item(it *Item, idx int) *treeNode {
	node := &treeNode{label: fmt.Sprintf("Item[%d]: %s %s (%s)", idx, it.Kind, it.Name, d.span(it.Span))}
	for _, a := range it.Attrs {
		node.children = append(node.children, d.attr(a))
	}
	for _, doc := range it.Docs {
		node.add(fmt.Sprintf("Doc %q (%s)", firstLine(doc.Raw), d.span(doc.Span)))
	}
	switch data := it.Data.(type) {
	case FnData:
		fn := data.Func
		label := "Sig (" + d.span(fn.Sig) + ")"
		if fn.Method {
			label += " method"
		}
		node.add(label)
		if fn.Body == nil {
			node.add("Body: <none>")
		} else {
			node.add("Body", d.expr(fn.Body))
		}
	case TypeAliasData:
		node.add("Target", d.typeRef(data.Target))
	case ImplData:
		node.add("SelfTy", d.typeRef(data.SelfTy))
		if data.Trait != nil {
			node.add("Trait", d.typeRef(*data.Trait))
		}
		for i, child := range data.Items {
			node.children = append(node.children, d.item(child, i))
		}
	case ModData:
		for i, child := range data.Items {
			node.children = append(node.children, d.item(child, i))
		}
	}
	return node
}

func (d dumper) typeRef(t TypeRef) *treeNode {
	label := strings.Join(t.Segments, "::")
	if t.Infer {
		label = "_"
	}
	node := &treeNode{label: label + d.def(t.Res)}
	for _, a := range t.Args {
		node.children = append(node.children, d.typeRef(a))
	}
	return node
}

func (d dumper) expr(e *Expr) *treeNode {
	node := &treeNode{label: fmt.Sprintf("%s (%s)", e.Kind, d.span(e.Span))}
	switch data := e.Data.(type) {
	case CallData:
		node.label += d.def(data.Def)
	case MethodCallData:
		node.label += " ." + data.Method + d.def(data.Def)
	case PathData:
		node.label += " " + strings.Join(data.Segments, "::") + d.def(data.Res)
	case LitData:
		node.label += " " + strconv.Quote(data.Lit.Text)
	case OpaqueData:
		if data.Label != "" {
			node.label += " " + data.Label
		}
	case BlockData:
		for _, st := range data.Stmts {
			if st.Item != nil {
				node.children = append(node.children, d.item(st.Item, 0))
			}
		}
	}
	for _, sub := range e.SubExprs() {
		node.children = append(node.children, d.expr(sub))
	}
	return node
}

func (d dumper) attr(a Attr) *treeNode {
	open := "#["
	if a.Style == AttrInner {
		open = "#!["
	}
	node := &treeNode{label: fmt.Sprintf("Attr %s%s] (%s)", open, strings.Join(a.Path, "::"), d.span(a.Span))}
	for _, m := range a.Args {
		node.children = append(node.children, d.meta(m))
	}
	if a.Value != nil {
		node.add("= " + strconv.Quote(a.Value.Text))
	}
	return node
}

func (d dumper) meta(m Meta) *treeNode {
	label := strings.Join(m.Path, "::")
	if m.Lit != nil {
		if label != "" {
			label += " = "
		}
		label += strconv.Quote(m.Lit.Text)
	}
	node := &treeNode{label: label}
	for _, child := range m.List {
		node.children = append(node.children, d.meta(child))
	}
	return node
}

func (d dumper) dispatch(t *DispatchTable) *treeNode {
	node := &treeNode{label: fmt.Sprintf("Dispatch: %s", strings.Join(t.CallNames, ", "))}
	for _, v := range t.Variants {
		vn := node.add("Variant " + v.Name)
		for _, a := range v.Attrs {
			vn.children = append(vn.children, d.attr(a))
		}
	}
	return node
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "…"
	}
	return s
}
