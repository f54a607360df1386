// Package benchmarks flags benchmark code that is compiled only for the
// runtime-benchmarks feature and therefore never runs under `cargo test`.
package benchmarks

import (
	"strings"

	"substrace/internal/diag"
	"substrace/internal/fix"
	"substrace/internal/hir"
	"substrace/internal/lint"
)

// EnableSinglepass asks for benchmarks to also build in test configuration.
var EnableSinglepass = &lint.Lint{
	Name:    "enable_singlepass_benchmarks",
	Code:    diag.RtmSinglepassBenchmarks,
	Default: lint.Warn,
	Desc:    "benchmarks should also be compiled for tests so they run once in single-pass mode",
	Explain: `Benchmarks gated on the runtime-benchmarks feature alone are only built
by the benchmarking CLI, so a broken benchmark goes unnoticed until weights
are regenerated. Adding test to the cfg runs every benchmark once as part of
the test suite:

    #[cfg(any(test, feature = "runtime-benchmarks"))]
    mod benchmarking;`,
}

const feature = "runtime-benchmarks"

// Pass inspects cfg attributes on the crate and on every item.
type Pass struct{}

// New creates the pass.
func New() *Pass { return &Pass{} }

func (*Pass) Name() string         { return "benchmarks" }
func (*Pass) Lints() []*lint.Lint { return []*lint.Lint{EnableSinglepass} }

func (p *Pass) EnterCrate(cx *lint.Context, c *hir.Crate) error {
	p.check(cx, c.Attrs)
	return nil
}

func (p *Pass) EnterItem(cx *lint.Context, it *hir.Item) error {
	p.check(cx, it.Attrs)
	return nil
}

func (p *Pass) check(cx *lint.Context, attrs []hir.Attr) {
	for _, a := range attrs {
		if !a.Is("cfg") || len(a.Args) != 1 {
			continue
		}
		text, ok := cx.Snippet(a.Span)
		if !ok {
			continue
		}
		suggested, ok := Suggest(a, text)
		if !ok {
			continue
		}
		cx.Lint(EnableSinglepass, a.Span, "benchmarks not run in tests").
			WithHelp("compile the benchmarks for tests as well: `" + suggested + "`").
			WithFixSuggestion(fix.ReplaceSpan("add `test` to the cfg", a.Span, suggested, text)).
			Emit()
	}
}

// Suggest returns the replacement for a cfg attribute that enables the
// benchmarks feature without test. text is the attribute's source.
func Suggest(a hir.Attr, text string) (string, bool) {
	arg := a.Args[0]
	switch {
	case isFeature(arg):
		open := "#["
		if a.Style == hir.AttrInner {
			open = "#!["
		}
		return open + `cfg(any(test, feature = "` + feature + `"))]`, true
	case arg.Kind == hir.MetaList && arg.Is("any"):
		hasFeature := false
		for _, m := range arg.List {
			if m.Kind == hir.MetaWord && m.Is("test") {
				return "", false
			}
			hasFeature = hasFeature || isFeature(m)
		}
		if !hasFeature || !strings.Contains(text, "any(") {
			return "", false
		}
		return strings.Replace(text, "any(", "any(test, ", 1), true
	}
	return "", false
}

func isFeature(m hir.Meta) bool {
	return m.Kind == hir.MetaNameValue && m.Is("feature") &&
		m.Lit != nil && m.Lit.Kind == hir.LitStr && m.Lit.Text == feature
}
