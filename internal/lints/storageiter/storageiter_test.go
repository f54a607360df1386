package storageiter

import (
	"context"
	"strings"
	"testing"

	"substrace/internal/diag"
	"substrace/internal/hir"
	"substrace/internal/lint"
	"substrace/internal/testkit"
)

const (
	mapIter      = "frame_support::storage::IterableStorageMap::iter"
	mapSwap      = "frame_support::storage::StorageMap::swap"
	mapInsert    = "frame_support::storage::StorageMap::insert"
	mapMutate    = "frame_support::storage::StorageMap::mutate"
	dmapIter     = "frame_support::storage::IterableStorageDoubleMap::iter"
	dmapSwap     = "frame_support::storage::StorageDoubleMap::swap"
	dmapIterPref = "frame_support::storage::IterableStorageDoubleMap::iter_prefix"
)

func run(t *testing.T, f *testkit.Fixture, policy Policy, items ...*hir.Item) []diag.Diagnostic {
	t.Helper()
	c := f.Crate(items...)
	if err := testkit.CheckSpanInvariants(c, f.Files); err != nil {
		t.Fatal(err)
	}
	reg := lint.NewRegistry()
	reg.MustRegister(func() lint.Pass { return New(policy) })
	bag := diag.NewBag(100)
	if err := lint.NewEngine(reg, lint.Options{}).Run(context.Background(), c, f.Files, diag.BagReporter{Bag: bag}); err != nil {
		t.Fatal(err)
	}
	return bag.Items()
}

func TestIterateThenSwapOnMap(t *testing.T) {
	src := `fn a() {
    T::iter();
    T::swap(1, 2);
}
`
	f := testkit.New(t, "lib.rs", src)
	swap := f.Call("T::swap(1, 2)", mapSwap)
	body := f.Block("{\n    T::iter();\n    T::swap(1, 2);\n}", nil, f.Call("T::iter()", mapIter), swap)

	got := run(t, f, ReportFirst, f.Fn("a", "fn a()", body))
	if len(got) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(got))
	}
	d := got[0]
	if d.Primary != swap.Span || d.Severity != diag.SevWarning || d.Code != diag.StoIterateMutate {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Message != "iterating and modifying storage has undefined results" {
		t.Fatalf("message %q", d.Message)
	}
	if len(d.Fixes) != 1 || d.Fixes[0].Applicability != diag.FixApplicabilityHasPlaceholders {
		t.Fatalf("expected a placeholder suggestion, got %+v", d.Fixes)
	}
	if len(d.Notes) != 1 {
		t.Fatalf("expected a note pointing at the iteration, got %+v", d.Notes)
	}
	edit := d.Fixes[0].Edits[0]
	if edit.Span.Start != 0 || !strings.HasPrefix(edit.NewText, "#[allow(substrace::storage_iter_insert)]") {
		t.Fatalf("allow should go above the enclosing fn, got %+v", edit)
	}
}

func TestAllowOnFnSilences(t *testing.T) {
	const allow = "#[allow(substrace::storage_iter_insert)]"
	src := allow + `
fn a() {
    T::iter();
    T::swap(1, 2);
}
`
	f := testkit.New(t, "lib.rs", src)
	body := f.Block("{\n    T::iter();\n    T::swap(1, 2);\n}", nil,
		f.Call("T::iter()", mapIter), f.Call("T::swap(1, 2)", mapSwap))
	it := f.Fn("a", "fn a()", body)
	it.Attrs = []hir.Attr{f.Attr(allow, "allow", testkit.Word("substrace::storage_iter_insert"))}
	if got := run(t, f, ReportFirst, it); len(got) != 0 {
		t.Fatalf("allowed lint reported: %+v", got)
	}
}

func TestSwapThenIterateOnDoubleMap(t *testing.T) {
	src := `fn b() {
    T::swap(1, 2, 3, 4);
    T::iter();
}
`
	f := testkit.New(t, "lib.rs", src)
	body := f.Block("{\n    T::swap(1, 2, 3, 4);\n    T::iter();\n}", nil,
		f.Call("T::swap(1, 2, 3, 4)", dmapSwap), f.Call("T::iter()", dmapIter))

	if got := run(t, f, ReportFirst, f.Fn("b", "fn b()", body)); len(got) != 0 {
		t.Fatalf("mutation before iteration must not be flagged, got %d", len(got))
	}
}

const repeated = `fn c() {
    T::iter_prefix(1);
    T::swap(1, 2, 3, 4);
    T::swap(5, 6, 7, 8);
}
`

func repeatedBody(f *testkit.Fixture) *hir.Item {
	body := f.Block(repeated[len("fn c() "):len(repeated)-1], nil,
		f.Call("T::iter_prefix(1)", dmapIterPref),
		f.Call("T::swap(1, 2, 3, 4)", dmapSwap),
		f.Call("T::swap(5, 6, 7, 8)", dmapSwap))
	return f.Fn("c", "fn c()", body)
}

func TestReportPolicy(t *testing.T) {
	f := testkit.New(t, "lib.rs", repeated)
	if got := run(t, f, ReportFirst, repeatedBody(f)); len(got) != 1 {
		t.Fatalf("first policy: expected 1 diagnostic, got %d", len(got))
	}
	f = testkit.New(t, "lib.rs", repeated)
	if got := run(t, f, ReportEvery, repeatedBody(f)); len(got) != 2 {
		t.Fatalf("every policy: expected 2 diagnostics, got %d", len(got))
	}
}

// A map mutation while both kinds are live reports the double map hazard
// again under the every policy, at the same call but with its own note.
const bothKinds = `fn h() {
    A::iter();
    B::iter();
    B::swap(1, 2, 3, 4);
    A::insert(1, 2);
}
`

func bothKindsFn(f *testkit.Fixture) *hir.Item {
	body := f.Block(bothKinds[len("fn h() "):len(bothKinds)-1], nil,
		f.Call("A::iter()", mapIter),
		f.Call("B::iter()", dmapIter),
		f.Call("B::swap(1, 2, 3, 4)", dmapSwap),
		f.Call("A::insert(1, 2)", mapInsert))
	return f.Fn("h", "fn h()", body)
}

func TestOneCallHazardousForBothKinds(t *testing.T) {
	f := testkit.New(t, "lib.rs", bothKinds)
	if got := run(t, f, ReportFirst, bothKindsFn(f)); len(got) != 2 {
		t.Fatalf("first policy: expected 2 diagnostics, got %d", len(got))
	}

	f = testkit.New(t, "lib.rs", bothKinds)
	bag := diag.NewBag(100)
	c := f.Crate(bothKindsFn(f))
	reg := lint.NewRegistry()
	reg.MustRegister(func() lint.Pass { return New(ReportEvery) })
	dedup := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	if err := lint.NewEngine(reg, lint.Options{}).Run(context.Background(), c, f.Files, dedup); err != nil {
		t.Fatal(err)
	}
	got := bag.Items()
	if len(got) != 3 || dedup.Suppressed() != 0 {
		t.Fatalf("every policy: expected 3 diagnostics kept, got %d (suppressed %d)", len(got), dedup.Suppressed())
	}
	insert := f.Span("A::insert(1, 2)")
	if got[1].Primary != insert || got[2].Primary != insert || got[1].Notes[0] == got[2].Notes[0] {
		t.Fatalf("expected two reports at the insert with distinct notes: %+v", got[1:])
	}
}

func TestIterateThenMutateOnMap(t *testing.T) {
	src := `fn m() {
    T::iter();
    T::mutate(1, f);
}
`
	f := testkit.New(t, "lib.rs", src)
	mutate := f.Call("T::mutate(1, f)", mapMutate)
	body := f.Block("{\n    T::iter();\n    T::mutate(1, f);\n}", nil, f.Call("T::iter()", mapIter), mutate)
	got := run(t, f, ReportFirst, f.Fn("m", "fn m()", body))
	if len(got) != 1 || got[0].Primary != mutate.Span {
		t.Fatalf("mutate during map iteration not flagged: %+v", got)
	}
}

func TestKindsAreIndependent(t *testing.T) {
	src := `fn d() {
    A::iter();
    B::swap(1, 2, 3, 4);
}
`
	f := testkit.New(t, "lib.rs", src)
	body := f.Block("{\n    A::iter();\n    B::swap(1, 2, 3, 4);\n}", nil,
		f.Call("A::iter()", mapIter), f.Call("B::swap(1, 2, 3, 4)", dmapSwap))
	if got := run(t, f, ReportFirst, f.Fn("d", "fn d()", body)); len(got) != 0 {
		t.Fatalf("map iteration must not pair with double map mutation, got %d", len(got))
	}
}

func TestStateResetsBetweenBodies(t *testing.T) {
	src := `fn e() {
    T::iter();
}

fn g() {
    T::insert(1, 2);
}
`
	f := testkit.New(t, "lib.rs", src)
	e := f.Fn("e", "fn e()", f.Block("{\n    T::iter();\n}", nil, f.Call("T::iter()", mapIter)))
	g := f.Fn("g", "fn g()", f.Block("{\n    T::insert(1, 2);\n}", nil, f.Call("T::insert(1, 2)", mapInsert)))
	if got := run(t, f, ReportFirst, e, g); len(got) != 0 {
		t.Fatalf("state leaked across bodies, got %d diagnostics", len(got))
	}
}

func TestNestedFnHasOwnState(t *testing.T) {
	src := `fn outer() {
    T::iter();
    fn inner() {
        T::insert(1, 2);
    }
    T::swap(3, 4);
}
`
	f := testkit.New(t, "lib.rs", src)
	inner := f.Fn("inner", "fn inner()", f.Block("{\n        T::insert(1, 2);\n    }", nil, f.Call("T::insert(1, 2)", mapInsert)))
	swap := f.Call("T::swap(3, 4)", mapSwap)
	outerBody := &hir.Expr{
		Kind: hir.ExprBlock,
		Span: f.Span(src[len("fn outer() ") : len(src)-1]),
		Data: hir.BlockData{Stmts: []hir.Stmt{
			{Expr: f.Call("T::iter()", mapIter)},
			{Item: inner},
			{Expr: swap},
		}},
	}
	got := run(t, f, ReportFirst, f.Fn("outer", "fn outer()", outerBody))
	if len(got) != 1 || got[0].Primary != swap.Span {
		t.Fatalf("expected only the outer swap flagged, got %+v", got)
	}
}

func TestIterationInsideClosure(t *testing.T) {
	src := `fn h() {
    T::iter().for_each(|k| T::insert(k, 0));
}
`
	f := testkit.New(t, "lib.rs", src)
	insert := f.Call("T::insert(k, 0)", mapInsert)
	iter := f.Call("T::iter()", mapIter)
	forEach := f.MethodCall("T::iter().for_each(|k| T::insert(k, 0))", iter, "for_each", "core::iter::Iterator::for_each",
		f.Closure("|k| T::insert(k, 0)", insert))
	body := f.Block("{\n    T::iter().for_each(|k| T::insert(k, 0));\n}", nil, forEach)

	got := run(t, f, ReportFirst, f.Fn("h", "fn h()", body))
	if len(got) != 1 || got[0].Primary != insert.Span {
		t.Fatalf("expected insert inside closure flagged, got %+v", got)
	}
}

func TestPolicyUnmarshal(t *testing.T) {
	var p Policy
	if err := p.UnmarshalText([]byte("every")); err != nil || p != ReportEvery {
		t.Fatalf("every -> %v, %v", p, err)
	}
	if err := p.UnmarshalText([]byte("sometimes")); err == nil {
		t.Fatal("expected error")
	}
}
