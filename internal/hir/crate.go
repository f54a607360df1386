package hir

import (
	"fmt"

	"fortio.org/safecast"

	"substrace/internal/paths"
	"substrace/internal/source"
)

// Crate is one compilation unit handed over by the host.
type Crate struct {
	Name     string
	Root     source.FileID // file holding the crate root
	Attrs    []Attr        // inner attributes, #![...]
	Docs     []DocComment  // inner doc comments, //! and /*! */
	Items    []*Item
	Defs     *DefTable
	Dispatch *DispatchTable // nil when the crate declares no dispatchable calls
}

// DefTable maps DefIDs to canonical qualified paths.
type DefTable struct {
	paths []paths.Path
	index map[string]DefID
}

// NewDefTable creates an empty table.
func NewDefTable() *DefTable {
	return &DefTable{index: make(map[string]DefID)}
}

// Intern returns the DefID for p, adding it when unseen.
func (t *DefTable) Intern(p paths.Path) DefID {
	key := p.String()
	if id, ok := t.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(t.paths) + 1)
	if err != nil {
		panic(fmt.Errorf("def table overflow: %w", err))
	}
	id := DefID(n)
	t.paths = append(t.paths, append(paths.Path(nil), p...))
	t.index[key] = id
	return id
}

// Path returns the canonical path of id.
func (t *DefTable) Path(id DefID) (paths.Path, bool) {
	if t == nil || !id.IsValid() || int(id) > len(t.paths) {
		return nil, false
	}
	return t.paths[id-1], true
}

// Len returns the number of interned paths.
func (t *DefTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.paths)
}

// DefPath resolves id through the crate's table.
func (c *Crate) DefPath(id DefID) (paths.Path, bool) {
	return c.Defs.Path(id)
}
