package testkit

import (
	"testing"

	"substrace/internal/hir"
)

const src = `/// # Security
/// fine
type Foo = StorageMap<Twox64Concat, u32, u32>;

fn a() {
    T::iter();
}
`

func TestFixtureBuildsConsistentCrate(t *testing.T) {
	f := New(t, "lib.rs", src)
	alias := f.TypeAlias("Foo", "type Foo = StorageMap<Twox64Concat, u32, u32>;",
		f.Type("StorageMap<Twox64Concat, u32, u32>", "frame_support::storage::types::map::StorageMap"))
	alias.Docs = f.LineDocs("/// # Security\n/// fine")

	call := f.Call("T::iter()", "frame_support::storage::IterableStorageMap::iter")
	fn := f.Fn("a", "fn a()", f.Block("{\n    T::iter();\n}", nil, call))

	c := f.Crate(alias, fn)
	if err := CheckSpanInvariants(c, f.Files); err != nil {
		t.Fatal(err)
	}
	if len(alias.Docs) != 2 || alias.Docs[1].Raw != "/// fine" {
		t.Fatalf("unexpected docs: %+v", alias.Docs)
	}
	d := call.Data.(hir.CallData)
	if p, ok := c.DefPath(d.Def); !ok || p.Last() != "iter" {
		t.Fatalf("call def = %v, %v", p, ok)
	}
	if got, _ := f.Files.Snippet(d.Callee.Span); got != "T::iter" {
		t.Fatalf("callee span covers %q", got)
	}
}

func TestInvariantsRejectEscapingExpr(t *testing.T) {
	f := New(t, "lib.rs", src)
	outside := f.Call("T::iter()", "x::iter")
	fn := f.Fn("a", "fn a()", nil)
	fn.Data.(hir.FnData).Func.Body = outside
	if err := CheckSpanInvariants(f.Crate(fn), f.Files); err == nil {
		t.Fatal("expected error for body outside item span")
	}
}
