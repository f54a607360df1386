package lint

import (
	"errors"
	"fmt"

	"substrace/internal/source"
)

// AnalysisError means a pass found its input inconsistent and could not
// finish the crate. Diagnostics emitted before it stay valid.
type AnalysisError struct {
	Pass string
	Item string      // innermost item being visited, if any
	Span source.Span // where the inconsistency was observed
	Err  error
}

func (e *AnalysisError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("%s: analysis of %q could not complete: %v", e.Pass, e.Item, e.Err)
	}
	return fmt.Sprintf("%s: analysis could not complete: %v", e.Pass, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// AsAnalysisError extracts an AnalysisError from err.
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
