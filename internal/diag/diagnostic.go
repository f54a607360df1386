package diag

import (
	"fmt"

	"substrace/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the bytes under Span with NewText.
// OldText, when set, must match the current content before the edit applies.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixKind classifies a fix for UI listings.
type FixKind uint8

const (
	FixKindQuickFix FixKind = iota
	FixKindRefactor
	FixKindRefactorRewrite
	FixKindSourceAction
)

func (k FixKind) String() string {
	switch k {
	case FixKindQuickFix:
		return "quickfix"
	case FixKindRefactor:
		return "refactor"
	case FixKindRefactorRewrite:
		return "refactor.rewrite"
	case FixKindSourceAction:
		return "source"
	}
	return "unknown"
}

// FixApplicability is the confidence tier of a suggestion.
// Only FixApplicabilityAlwaysSafe fixes may be applied without a human.
type FixApplicability uint8

const (
	// FixApplicabilityAlwaysSafe fixes can be applied mechanically.
	FixApplicabilityAlwaysSafe FixApplicability = iota
	// FixApplicabilityHasPlaceholders fixes contain text the user must edit.
	FixApplicabilityHasPlaceholders
	// FixApplicabilityUnspecified fixes carry no confidence claim.
	FixApplicabilityUnspecified
)

func (a FixApplicability) String() string {
	switch a {
	case FixApplicabilityAlwaysSafe:
		return "always-safe"
	case FixApplicabilityHasPlaceholders:
		return "has-placeholders"
	case FixApplicabilityUnspecified:
		return "unspecified"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (a FixApplicability) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *FixApplicability) UnmarshalText(text []byte) error {
	switch string(text) {
	case "always-safe":
		*a = FixApplicabilityAlwaysSafe
	case "has-placeholders":
		*a = FixApplicabilityHasPlaceholders
	case "unspecified":
		*a = FixApplicabilityUnspecified
	default:
		return fmt.Errorf("unknown fix applicability %q", text)
	}
	return nil
}

type Fix struct {
	ID            string
	Title         string
	Kind          FixKind
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Lint     string // lint name that produced the diagnostic, empty for driver errors
	Message  string
	Help     string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// UnitLevel reports diagnostics about the unit as a whole. Their Primary
// span is meaningless and renderers print them without a location.
func (d *Diagnostic) UnitLevel() bool {
	switch d.Code {
	case IOLoadError, IOInvalidUnit, EngTimings:
		return true
	}
	return false
}
