package hir

import (
	"errors"
	"fmt"
	"slices"

	"substrace/internal/source"
)

// ErrCallIndexMissing reports a dispatch table that lists an extrinsic name
// without a variant carrying its ordinal.
var ErrCallIndexMissing = errors.New("call index not present in expansion")

// DispatchTable is the view of the macro-generated call dispatch: the call
// names the pallet exposes and the Call enum variants with their codec attributes.
type DispatchTable struct {
	CallNames []string
	Variants  []CallVariant
}

// CallVariant is one variant of the generated Call enum.
type CallVariant struct {
	Name  string
	Attrs []Attr
	Span  source.Span
}

// Exposes reports whether name is listed as a dispatchable call.
func (t *DispatchTable) Exposes(name string) bool {
	return t != nil && slices.Contains(t.CallNames, name)
}

// Lookup returns the ordinal of an extrinsic. ok is false when name is not a
// dispatchable call. A listed name whose ordinal cannot be found yields an
// error wrapping ErrCallIndexMissing.
func (t *DispatchTable) Lookup(name string) (index uint8, ok bool, err error) {
	if !t.Exposes(name) {
		return 0, false, nil
	}
	for _, v := range t.Variants {
		if v.Name != name {
			continue
		}
		if idx, found := codecIndex(v.Attrs); found {
			return idx, true, nil
		}
	}
	return 0, true, fmt.Errorf("%w: %s", ErrCallIndexMissing, name)
}

// codecIndex reads #[codec(index = N)].
func codecIndex(attrs []Attr) (uint8, bool) {
	for _, a := range attrs {
		if !a.Is("codec") {
			continue
		}
		for _, m := range a.Args {
			if m.Kind != MetaNameValue || !m.Is("index") {
				continue
			}
			if v, ok := m.IntValue(8); ok {
				return uint8(v), true // #nosec G115 -- parsed with bitSize 8
			}
		}
	}
	return 0, false
}
