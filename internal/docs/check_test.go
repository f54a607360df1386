package docs

import (
	"testing"

	"substrace/internal/hir"
	"substrace/internal/testkit"
)

func docsOf(t *testing.T, block string) (*testkit.Fixture, []hir.DocComment) {
	t.Helper()
	f := testkit.New(t, "lib.rs", block+"\ntype Foo = u32;\n")
	return f, f.LineDocs(block)
}

func TestSecurityHeadingFound(t *testing.T) {
	_, comments := docsOf(t, "/// # Security\n/// Twox64Concat is allowed because this is a test")
	res := Check(comments, nil, AssumePresent)
	if !res.Security || res.Assumed {
		t.Fatalf("expected real security heading, got %+v", res)
	}
	if len(res.Unbalanced) != 0 {
		t.Fatalf("unexpected unbalanced spans: %v", res.Unbalanced)
	}
}

func TestSecurityHeadingVariants(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want bool
	}{
		{"level two", "/// ## Security\n/// text", true},
		{"setext", "/// Security\n/// ========", true},
		{"case sensitive", "/// # security", false},
		{"extra words", "/// # Security notes", false},
		{"not a heading", "/// Security", false},
		{"inside code block", "/// ```\n/// # Security\n/// ```", false},
		{"later heading", "/// Summary.\n///\n/// # Examples\n/// x\n///\n/// # Security\n/// ok", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, comments := docsOf(t, tc.doc)
			if got := HasSecurity(comments, nil, AssumePresent); got != tc.want {
				t.Fatalf("HasSecurity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBlockHeadingThenLineDoc(t *testing.T) {
	src := "/** # Security */\n/// Twox64Concat is fine here\ntype Foo = u32;\n"
	f := testkit.New(t, "lib.rs", src)
	comments := append([]hir.DocComment{f.BlockDoc("/** # Security */")}, f.LineDocs("/// Twox64Concat is fine here")...)
	if !HasSecurity(comments, nil, AssumePresent) {
		t.Fatalf("heading in a one-line block comment not found in %q", Collect(comments).Text)
	}
}

func TestEmptyDocsAreMissing(t *testing.T) {
	if HasSecurity(nil, nil, AssumePresent) {
		t.Fatal("empty docs must not satisfy the heading check")
	}
}

func TestRawDocAttributes(t *testing.T) {
	src := "/// Summary only\n#[doc = \"# Security\"]\ntype Foo = u32;\n"
	f := testkit.New(t, "lib.rs", src)
	comments := f.LineDocs("/// Summary only")
	attrs := []hir.Attr{f.Attr("#[doc = \"# Security\"]", "doc")}

	if res := Check(comments, attrs, AssumePresent); !res.Security || !res.Assumed {
		t.Fatalf("raw docs must be assumed to satisfy the check: %+v", res)
	}
	if HasSecurity(comments, attrs, Analyze) {
		t.Fatal("analyze mode must look only at sugared comments")
	}
}

func TestUnbalancedBackticks(t *testing.T) {
	f, comments := docsOf(t, "/// Fine `code` here.\n///\n/// Broken `code\n/// continues here.\n///\n/// ```\n/// let odd = '`';\n/// ```")
	res := Check(comments, nil, AssumePresent)
	if len(res.Unbalanced) != 1 {
		t.Fatalf("expected exactly one unbalanced paragraph, got %v", res.Unbalanced)
	}
	got, _ := f.Files.Snippet(res.Unbalanced[0])
	if got != "Broken `code\n/// continues here." {
		t.Fatalf("unbalanced span covers %q", got)
	}
}

func TestUnbalancedInListItemAndHeading(t *testing.T) {
	_, comments := docsOf(t, "/// # Head `x\n///\n/// - item `one\n/// - item two")
	res := Check(comments, nil, AssumePresent)
	if len(res.Unbalanced) != 2 {
		t.Fatalf("expected heading and list item flagged, got %v", res.Unbalanced)
	}
}

func TestIntraDocLinksAreTolerated(t *testing.T) {
	_, comments := docsOf(t, "/// See [`Pallet::transfer`] and [Config].\n///\n/// # Security\n/// ok")
	res := Check(comments, nil, AssumePresent)
	if !res.Security || len(res.Unbalanced) != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEventsCoalesceText(t *testing.T) {
	evs := Events([]byte("a *b* c\n"))
	texts := 0
	for _, ev := range evs {
		if ev.Kind == EvText {
			texts++
		}
	}
	// "a ", "b" (inside emphasis, no event boundary), " c" coalesce into one run
	if texts != 1 {
		t.Fatalf("expected coalesced text, got %d text events: %+v", texts, evs)
	}
}
