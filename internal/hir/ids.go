// Package hir is the semantic tree the lint engine walks.
//
// The host toolchain (compiler plugin or extractor) type-checks a crate and
// hands over a lowered view: items in source order, function bodies as
// expression trees, attributes and doc comments, plus the results of its
// resolution queries folded into the tree:
//
//   - every path expression and type reference carries the DefID it resolves to;
//   - every call and method call carries the DefID of the declaration it dispatches
//     to, after generic and trait resolution;
//   - DefTable maps each DefID to its canonical qualified path.
//
// The tree is read-only for passes. Invariants a constructor must keep: DefIDs
// index into the crate's DefTable, spans point into the unit's FileSet, and
// Expr.Data always matches Expr.Kind.
package hir

// DefID identifies a declaration in the crate's DefTable (zero is sentinel).
type DefID uint32

// NoDefID marks an unresolved reference.
const NoDefID DefID = 0

// IsValid returns true if the ID is valid (non-zero).
func (id DefID) IsValid() bool { return id != NoDefID }
