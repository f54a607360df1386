// Package storageiter flags storage maps that are mutated while an
// iteration over them may still be live in the same body.
package storageiter

import (
	"fmt"

	"substrace/internal/diag"
	"substrace/internal/fix"
	"substrace/internal/hir"
	"substrace/internal/lint"
	"substrace/internal/paths"
	"substrace/internal/source"
)

// StorageIterInsert is the lint this pass reports.
var StorageIterInsert = &lint.Lint{
	Name:    "storage_iter_insert",
	Code:    diag.StoIterateMutate,
	Default: lint.Warn,
	Desc:    "iterating over storage and mutating it at the same time causes undefined results",
	Explain: `Iterating a StorageMap or StorageDoubleMap while inserting, removing or
mutating entries of the same map kind has undefined results: the iterator
walks the trie in key-hash order and may skip or revisit entries.

A mutation that happens before the first iteration call of a body is
forgotten when the iteration starts. Mutating after iteration began is flagged.

    for (k, v) = <Balances<T>>::iter() {
        <Balances<T>>::insert(k, v + 1); // flagged
    }

Collect the keys first, or silence the lint on the enclosing function with
an explanation. Allow attributes on statements are not read:

    #[allow(substrace::storage_iter_insert)] // iterator is drained before insert
    fn rebalance() { ... }`,
}

// Policy selects how often one hazardous body is reported.
type Policy uint8

const (
	// ReportFirst reports once per body and map kind.
	ReportFirst Policy = iota
	// ReportEvery reports every matching call after the hazard is reached.
	ReportEvery
)

func (p Policy) String() string {
	if p == ReportEvery {
		return "every"
	}
	return "first"
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "first":
		*p = ReportFirst
	case "every":
		*p = ReportEvery
	default:
		return fmt.Errorf("invalid report policy %q (expected first|every)", text)
	}
	return nil
}

// kind is one storage container family with its operations.
type kind struct {
	name    string
	iterate paths.Set
	mutate  paths.Set
}

var kinds = [...]kind{
	{name: "StorageMap", iterate: paths.MapIteration, mutate: paths.MapMutation},
	{name: "StorageDoubleMap", iterate: paths.DoubleMapIteration, mutate: paths.DoubleMapMutation},
}

type kindState struct {
	iterating bool
	mutated   bool
	reported  bool
	iterAt    source.Span // first iteration call of the live cursor
}

type bodyState [len(kinds)]kindState

// Pass tracks iteration and mutation per body.
type Pass struct {
	policy Policy
	bodies lint.Scoped[bodyState]
}

// New creates the pass.
func New(policy Policy) *Pass { return &Pass{policy: policy} }

func (*Pass) Name() string        { return "storage-iter" }
func (*Pass) Lints() []*lint.Lint { return []*lint.Lint{StorageIterInsert} }

func (p *Pass) EnterFn(*lint.Context, *hir.Item, *hir.Func) error {
	p.bodies.Push()
	return nil
}

func (p *Pass) ExitFn(*lint.Context, *hir.Item, *hir.Func) error {
	p.bodies.Pop()
	return nil
}

func (p *Pass) EnterExpr(cx *lint.Context, e *hir.Expr) error {
	st := p.bodies.Top()
	if st == nil || (e.Kind != hir.ExprCall && e.Kind != hir.ExprMethodCall) {
		return nil
	}
	def, ok := cx.CalleeDef(e)
	if !ok || !p.transition(st, def, e.Span) {
		return nil
	}
	for i := range st {
		ks := &st[i]
		if !ks.iterating || !ks.mutated {
			continue
		}
		if p.policy == ReportFirst && ks.reported {
			continue
		}
		ks.reported = true
		cx.Lint(StorageIterInsert, e.Span, "iterating and modifying storage has undefined results").
			WithHelp("restructure code, or specifically describe why this isn't undefined behaviour").
			WithNote(ks.iterAt, fmt.Sprintf("%s iteration starts here", kinds[i].name)).
			WithFixSuggestion(allowFix(cx, e.Span)).
			Emit()
	}
	return nil
}

// allowFix suggests an acknowledged allow on the enclosing function.
func allowFix(cx *lint.Context, at source.Span) diag.Fix {
	anchor := at
	if it := cx.Item(); it != nil {
		anchor = it.Span
	}
	return fix.InsertAbove(cx.Files(), "#[allow(storage_iter_insert)]...", anchor,
		[]string{"#[allow(substrace::storage_iter_insert)] // <describe why this isn't undefined behaviour>"},
		fix.WithApplicability(diag.FixApplicabilityHasPlaceholders))
}

// transition applies one call to the state. The first kind that recognises
// the call consumes it, and iteration wins over mutation.
func (p *Pass) transition(st *bodyState, def paths.Path, at source.Span) bool {
	for i, k := range kinds {
		ks := &st[i]
		switch {
		case k.iterate.Contains(def):
			if !ks.iterating {
				ks.mutated = false
				ks.iterAt = at
			}
			ks.iterating = true
			return true
		case k.mutate.Contains(def):
			ks.mutated = true
			return true
		}
	}
	return false
}
