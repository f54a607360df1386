// Package lint is the pass framework: lint declarations, levels, the
// registry and the engine that walks a lowered crate.
//
// Traversal is a single depth-first pre-order walk. For each crate the engine
// calls, in pass registration order:
//
//	EnterCrate
//	  EnterItem                  every item, nested ones included
//	    EnterFn                  functions with a body
//	      EnterExpr              every expression, pre-order
//	    ExitFn                   once per EnterFn
//	ExitCrate
//
// Lint levels come from the lint default, then Options.Levels, then
// allow/warn/deny/forbid attributes from the crate inwards.
package lint
