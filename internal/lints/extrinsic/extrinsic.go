// Package extrinsic checks the dispatchable calls of a pallet: each must pin
// its call index with #[pallet::call_index(N)] matching the generated Call
// enum, and each body must run inside a storage transaction.
package extrinsic

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"substrace/internal/diag"
	"substrace/internal/fix"
	"substrace/internal/hir"
	"substrace/internal/lint"
	"substrace/internal/paths"
	"substrace/internal/source"
)

// MustBeTagged requires an explicit call index on every extrinsic.
var MustBeTagged = &lint.Lint{
	Name:    "extrinsics_must_be_tagged",
	Code:    diag.ExtCallIndex,
	Default: lint.Deny,
	Desc:    "extrinsics need to be tagged using the pallet::call_index macro to prevent accidental reordering",
	Explain: `Without #[pallet::call_index(N)] the index of a call is its position in
the impl block. Reordering or inserting a call silently changes the encoding
of every call after it, and transactions signed against the old metadata
then dispatch to the wrong function.

    #[pallet::call_index(2)]
    #[pallet::weight(10_000)]
    pub fn transfer(origin: OriginFor<T>, ...) -> DispatchResult

The suggested index is the one the Call enum currently carries, so applying
the fix keeps the encoding stable.`,
}

// MissingTransactional requires extrinsic bodies to end in with_transaction.
var MissingTransactional = &lint.Lint{
	Name:    "missing_transactional",
	Code:    diag.ExtMissingTransactional,
	Default: lint.Deny,
	Desc:    "all extrinsics must use the #[transactional] macro",
	Explain: `An extrinsic that fails halfway keeps every storage write it made
before the error unless the body runs inside a storage transaction.
#[transactional] expands to a with_transaction call wrapping the body.`,
}

const callIndexMarker = "#[pallet::call_index("

// Pass checks associated functions that the pallet exposes as calls.
type Pass struct{}

// New creates the pass.
func New() *Pass { return &Pass{} }

func (*Pass) Name() string { return "extrinsic" }
func (*Pass) Lints() []*lint.Lint {
	return []*lint.Lint{MustBeTagged, MissingTransactional}
}

func (p *Pass) EnterFn(cx *lint.Context, it *hir.Item, fn *hir.Func) error {
	dispatch := cx.Crate().Dispatch
	if !fn.Method || !dispatch.Exposes(fn.Name) {
		return nil
	}
	if cx.Level(MustBeTagged) != lint.Allow {
		if err := p.checkIndex(cx, fn, dispatch); err != nil {
			return err
		}
	}
	p.checkTransactional(cx, fn)
	return nil
}

func (p *Pass) checkIndex(cx *lint.Context, fn *hir.Func, dispatch *hir.DispatchTable) error {
	index, ok, err := dispatch.Lookup(fn.Name)
	if err != nil {
		return cx.Fail(fn.Sig, err)
	}
	if !ok {
		return nil
	}
	fs := cx.Files()
	tag, found := findTag(fs, fn.Sig)
	want := strconv.FormatUint(uint64(index), 10)
	switch {
	case !found:
		attr := callIndexMarker + want + ")]"
		cx.Lint(MustBeTagged, fn.Sig, "Extrinsic not tagged").
			WithHelp("Add the #[pallet::call_index(...)] macro to the top of your extrinsic definition").
			WithFixSuggestion(fix.InsertAbove(fs, attr, fn.Sig, []string{attr})).
			Emit()
	case !tag.parsed:
		// not a plain integer (a constant, an expression): nothing to compare against
	case tag.index != index:
		cx.Lint(MustBeTagged, fn.Sig,
			fmt.Sprintf("Extrinsic tagged with call index %d, but the call enum assigns %d", tag.index, index)).
			WithHelp("Add the #[pallet::call_index(...)] macro to the top of your extrinsic definition").
			WithNote(tag.arg, "declared here").
			WithFixSuggestion(fix.ReplaceSpan("use call index "+want, tag.arg, want, tag.text)).
			Emit()
	}
	return nil
}

func (p *Pass) checkTransactional(cx *lint.Context, fn *hir.Func) {
	if last := hir.FinalExpr(fn.Body); last != nil && last.Kind == hir.ExprCall {
		if target, ok := cx.CalleeDef(last); ok && paths.Match(target, paths.WithTransaction) {
			return
		}
	}
	fs := cx.Files()
	cx.Lint(MissingTransactional, fn.Sig, "Missing #[transactional] on extrinsic").
		WithHelp("Add the #[transactional] macro to the top of your extrinsic definition").
		WithFixSuggestion(fix.InsertAbove(fs, "#[transactional]", fn.Sig, []string{"#[transactional]"})).
		Emit()
}

type callIndexTag struct {
	arg    source.Span // trimmed argument text
	text   string
	index  uint8
	parsed bool
}

// findTag locates the closest #[pallet::call_index(..)] above sig, skipping
// commented-out lines.
func findTag(fs *source.FileSet, sig source.Span) (callIndexTag, bool) {
	region, ok := fs.LeadingRegion(sig)
	if !ok {
		return callIndexTag{}, false
	}
	text, ok := fs.Snippet(region)
	if !ok {
		return callIndexTag{}, false
	}

	var (
		tag   callIndexTag
		found bool
	)
	off := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "//") {
			if i := strings.LastIndex(line, callIndexMarker); i >= 0 {
				if t, ok := parseTag(region, off+i+len(callIndexMarker), line[i+len(callIndexMarker):]); ok {
					tag, found = t, true
				}
			}
		}
		off += len(line)
	}
	return tag, found
}

func parseTag(region source.Span, at int, rest string) (callIndexTag, bool) {
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return callIndexTag{}, false
	}
	raw := rest[:end]
	arg := strings.TrimSpace(raw)
	lead := len(raw) - len(strings.TrimLeft(raw, " \t"))

	start, err := safecast.Conv[uint32](at + lead)
	if err != nil {
		return callIndexTag{}, false
	}
	length, err := safecast.Conv[uint32](len(arg))
	if err != nil {
		return callIndexTag{}, false
	}
	tag := callIndexTag{
		arg:  source.Span{File: region.File, Start: region.Start + start, End: region.Start + start + length},
		text: arg,
	}
	if v, err := strconv.ParseUint(arg, 10, 8); err == nil {
		tag.index = uint8(v) // #nosec G115 -- parsed with bitSize 8
		tag.parsed = true
	}
	return tag, true
}
