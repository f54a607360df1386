package lint

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"substrace/internal/diag"
	"substrace/internal/hir"
	"substrace/internal/testkit"
)

const src = `#![deny(substrace::probe)]

mod inner {
    #[allow(probe)]
    fn quiet() {
        a();
    }

    fn loud() {
        b(c());
    }
}
`

var probeLint = &Lint{Name: "probe", Code: diag.StoIterateMutate, Default: Warn, Desc: "test probe"}

// recorder logs every hook and reports one diagnostic per call expression.
type recorder struct {
	tag  string
	log  *[]string
	fail string // item name whose EnterFn errors
}

func (r *recorder) Name() string   { return "recorder-" + r.tag }
func (r *recorder) Lints() []*Lint { return []*Lint{{Name: "probe-" + r.tag}} }

func (r *recorder) add(ev string) { *r.log = append(*r.log, r.tag+":"+ev) }

func (r *recorder) EnterCrate(*Context, *hir.Crate) error { r.add("crate"); return nil }
func (r *recorder) ExitCrate(*Context, *hir.Crate) error  { r.add("/crate"); return nil }
func (r *recorder) EnterItem(_ *Context, it *hir.Item) error {
	r.add("item " + it.Name)
	return nil
}

func (r *recorder) EnterFn(cx *Context, it *hir.Item, _ *hir.Func) error {
	r.add("fn " + it.Name)
	if it.Name == r.fail {
		return cx.Fail(it.Span, errors.New("boom"))
	}
	return nil
}

func (r *recorder) ExitFn(_ *Context, it *hir.Item, _ *hir.Func) error {
	r.add("/fn " + it.Name)
	return nil
}

func (r *recorder) EnterExpr(cx *Context, e *hir.Expr) error {
	if e.Kind == hir.ExprCall {
		p, _ := cx.CalleeDef(e)
		r.add("call " + p.Last())
	}
	return nil
}

type prober struct{}

func (prober) Name() string   { return "prober" }
func (prober) Lints() []*Lint { return []*Lint{probeLint} }
func (prober) EnterExpr(cx *Context, e *hir.Expr) error {
	if e.Kind == hir.ExprCall {
		p, _ := cx.CalleeDef(e)
		cx.Lint(probeLint, e.Span, "call to "+p.Last()).WithHelp("remove it").Emit()
	}
	return nil
}

func fixture(t *testing.T) (*testkit.Fixture, *hir.Crate) {
	f := testkit.New(t, "lib.rs", src)
	quiet := f.Fn("quiet", "fn quiet()", f.Block("{\n        a();\n    }", nil, f.Call("a()", "k::a")))
	quiet.Attrs = []hir.Attr{f.Attr("#[allow(probe)]", "allow", testkit.Word("probe"))}
	loud := f.Fn("loud", "fn loud()", f.Block("{\n        b(c());\n    }", nil,
		f.Call("b(c())", "k::b", f.Call("c()", "k::c"))))
	mod := f.Mod("inner", src[len("#![deny(substrace::probe)]\n\n"):], quiet, loud)
	c := f.Crate(mod)
	c.Attrs = []hir.Attr{f.Attr("#![deny(substrace::probe)]", "deny", testkit.Word("substrace::probe"))}
	if err := testkit.CheckSpanInvariants(c, f.Files); err != nil {
		t.Fatal(err)
	}
	return f, c
}

func TestEngineHookOrder(t *testing.T) {
	f, c := fixture(t)
	var log []string
	reg := NewRegistry()
	reg.MustRegister(func() Pass { return &recorder{tag: "1", log: &log} })
	reg.MustRegister(func() Pass { return &recorder{tag: "2", log: &log} })

	if err := NewEngine(reg, Options{}).Run(context.Background(), c, f.Files, nil); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"1:crate", "2:crate",
		"1:item inner", "2:item inner",
		"1:item quiet", "2:item quiet",
		"1:fn quiet", "2:fn quiet",
		"1:call a", "2:call a",
		"1:/fn quiet", "2:/fn quiet",
		"1:item loud", "2:item loud",
		"1:fn loud", "2:fn loud",
		"1:call b", "2:call b",
		"1:call c", "2:call c",
		"1:/fn loud", "2:/fn loud",
		"1:/crate", "2:/crate",
	}
	if !slices.Equal(log, want) {
		t.Fatalf("hook order:\n got %v\nwant %v", log, want)
	}
}

func TestEngineLevelsFromAttributes(t *testing.T) {
	f, c := fixture(t)
	reg := NewRegistry()
	reg.MustRegister(func() Pass { return prober{} })

	bag := diag.NewBag(10)
	if err := NewEngine(reg, Options{}).Run(context.Background(), c, f.Files, diag.BagReporter{Bag: bag}); err != nil {
		t.Fatal(err)
	}
	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics (quiet is allowed), got %d", len(items))
	}
	for _, d := range items {
		if d.Severity != diag.SevError {
			t.Errorf("crate-level deny must make %q an error", d.Message)
		}
		if d.Lint != "substrace::probe" || d.Help != "remove it" {
			t.Errorf("unexpected lint metadata: %+v", d)
		}
	}
	if items[0].Message != "call to b" || items[1].Message != "call to c" {
		t.Fatalf("diagnostics out of traversal order: %q, %q", items[0].Message, items[1].Message)
	}
}

func TestEngineRunIsIdempotent(t *testing.T) {
	f, c := fixture(t)
	reg := NewRegistry()
	reg.MustRegister(func() Pass { return prober{} })
	eng := NewEngine(reg, Options{Levels: map[string]Level{"probe": Allow}})

	run := func() string {
		bag := diag.NewBag(10)
		if err := eng.Run(context.Background(), c, f.Files, diag.BagReporter{Bag: bag}); err != nil {
			t.Fatal(err)
		}
		return diag.Golden(bag.Items(), f.Files, true)
	}
	first := run()
	if first == "" {
		t.Fatal("expected diagnostics")
	}
	if second := run(); second != first {
		t.Fatalf("second run differs:\n%s\n---\n%s", first, second)
	}
}

func TestEngineAbortsOnAnalysisError(t *testing.T) {
	f, c := fixture(t)
	var log []string
	reg := NewRegistry()
	reg.MustRegister(func() Pass { return &recorder{tag: "1", log: &log, fail: "quiet"} })

	err := NewEngine(reg, Options{}).Run(context.Background(), c, f.Files, nil)
	ae, ok := AsAnalysisError(err)
	if !ok {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
	if ae.Pass != "recorder-1" || ae.Item != "quiet" {
		t.Fatalf("unexpected attribution: %+v", ae)
	}
	if slices.Contains(log, "1:item loud") {
		t.Fatal("traversal continued after abort")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(func() Pass { return prober{} })
	if err := reg.Register(func() Pass { return prober{} }); err == nil {
		t.Fatal("expected duplicate lint error")
	}
	if l, ok := reg.Lookup("substrace::probe"); !ok || l != probeLint {
		t.Fatalf("lookup with prefix failed: %v %v", l, ok)
	}
}

func TestResolveForbidPinsDeny(t *testing.T) {
	frames := []levelFrame{
		{"x": {level: Deny, forbid: true}},
		{"x": {level: Allow}},
	}
	if got := resolve("x", Warn, frames); got != Deny {
		t.Fatalf("forbid overridden: %v", got)
	}
	frames = []levelFrame{{allLints: {level: Allow}}, {"x": {level: Warn}}}
	if got := resolve("x", Deny, frames); got != Warn {
		t.Fatalf("inner frame must win: %v", got)
	}
	if got := resolve("y", Deny, frames); got != Allow {
		t.Fatalf("substrace::all must apply: %v", got)
	}
}

func TestScopedFramesAreIndependent(t *testing.T) {
	var s Scoped[int]
	*s.Push() = 1
	*s.Push() = 2
	if *s.Top() != 2 || s.Depth() != 2 {
		t.Fatal("inner frame not on top")
	}
	if got := s.Pop(); got != 2 || *s.Top() != 1 {
		t.Fatal(fmt.Sprint("outer frame lost, popped ", got))
	}
	s.Pop()
	if s.Top() != nil {
		t.Fatal("stack not empty")
	}
}
