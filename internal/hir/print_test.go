package hir_test

import (
	"strings"
	"testing"

	"substrace/internal/hir"
	"substrace/internal/testkit"
)

func TestDumpShowsResolvedTree(t *testing.T) {
	src := `#![warn(clippy::unwrap_used)]
fn a() {
    T::iter();
}
`
	f := testkit.New(t, "lib.rs", src)
	iter := f.Call("T::iter()", "frame_support::storage::IterableStorageMap::iter")
	body := f.Block("{\n    T::iter();\n}", nil, iter)
	c := f.Crate(f.Fn("a", "fn a()", body))
	inner := f.Attr("#![warn(clippy::unwrap_used)]", "warn", testkit.Word("clippy::unwrap_used"))
	c.Attrs = []hir.Attr{inner}

	var b strings.Builder
	if err := hir.Dump(&b, c, f.Files); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"Crate ",
		"├── Attr #![warn] (1:1-1:30)\n│   └── clippy::unwrap_used\n",
		"└── Item[0]: fn a (2:1-4:2)\n",
		"    ├── Sig (2:1-2:7)\n",
		"    └── Body\n",
		"Call (3:5-3:14) => frame_support::storage::IterableStorageMap::iter",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
