// Package nopanics requires runtime crates to turn on the clippy lints that
// catch panicking code.
package nopanics

import (
	"slices"
	"strings"

	"substrace/internal/diag"
	"substrace/internal/fix"
	"substrace/internal/hir"
	"substrace/internal/lint"
	"substrace/internal/source"
)

// Panics flags crate roots that do not warn or deny about panicking code.
var Panics = &lint.Lint{
	Name:    "panics",
	Code:    diag.RtmMissingPanicLints,
	Default: lint.Warn,
	Desc:    "any type of panicking code may not be present in the runtime",
	Explain: `A panic inside the runtime aborts block production, so runtime and
pallet crates should have clippy reject every construct that can panic.
The crate root must carry, at warn, deny or forbid level:

    #![warn(
        clippy::disallowed_methods,
        clippy::indexing_slicing,
        clippy::todo,
        clippy::unwrap_used,
        clippy::panic,
    )]

The list can be changed with [panics] required in substrace.toml.`,
}

// DefaultRequired lists the clippy lints a runtime crate must enable.
var DefaultRequired = []string{"disallowed_methods", "indexing_slicing", "todo", "unwrap_used", "panic"}

// Pass checks the crate root attributes once per crate.
type Pass struct {
	required []string
}

// New creates the pass. An empty list means DefaultRequired.
func New(required []string) *Pass {
	if len(required) == 0 {
		required = DefaultRequired
	}
	return &Pass{required: required}
}

func (*Pass) Name() string         { return "no-panics" }
func (*Pass) Lints() []*lint.Lint { return []*lint.Lint{Panics} }

func (p *Pass) ExitCrate(cx *lint.Context, c *hir.Crate) error {
	missing := p.Missing(c.Attrs)
	if len(missing) == 0 {
		return nil
	}
	at := source.Span{File: c.Root, Start: 0, End: 1}
	if _, ok := cx.Snippet(at); !ok {
		return nil
	}
	var b strings.Builder
	b.WriteString("#![warn(\n")
	for _, name := range missing {
		b.WriteString("    clippy::" + name + ",\n")
	}
	b.WriteString(")]\n")

	cx.Lint(Panics, at, "clippy must be configured to warn or deny about any panicking code").
		WithHelp("insert attributes at the root of the crate").
		WithFixSuggestion(fix.InsertText("enable the panic lints", at, b.String(), "")).
		Emit()
	return nil
}

// Missing returns the required lints that no warn, deny or forbid attribute
// in attrs enables, in the configured order.
func (p *Pass) Missing(attrs []hir.Attr) []string {
	seen := make(map[string]bool)
	for _, a := range attrs {
		if !a.Is("warn") && !a.Is("deny") && !a.Is("forbid") {
			continue
		}
		for _, m := range a.Args {
			if m.Kind == hir.MetaWord && len(m.Path) > 1 && m.Path[0] == "clippy" {
				seen[m.Path[len(m.Path)-1]] = true
			}
		}
	}
	var out []string
	for _, name := range p.required {
		if !seen[name] && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
