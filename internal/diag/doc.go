// Package diag defines the core diagnostic model shared by all lint passes.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the lint engine over an analysis unit.
//   - Offer light-weight utilities (Reporter, Bag) that let passes emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model fix suggestions as structured edits that the CLI can render and,
//     for the always-safe tier, apply.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in internal/diagfmt,
// whereas application of fixes lives in internal/fix.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – Info, Warning (advisory) or Error (must fix).
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//   - Fixes – optional Fix records describing how to address the problem.
//
// # Fix suggestions
//
// Fix carries a Title (rendered as help text), a Kind, an Applicability tier
// and the concrete TextEdits. Applicability is one of:
//
//   - AlwaysSafe – the edit can be applied without review.
//   - HasPlaceholders – the replacement contains text the author must fill in.
//   - Unspecified – no claim is made.
//
// TextEdit spans are in source coordinates; OldText acts as an optional guard
// that the fix engine uses to validate the context before applying edits.
//
// # Emitting diagnostics
//
// Passes go through a diag.Reporter. ReportBuilder (ReportError/ReportWarning)
// chains WithNote / WithFixSuggestion before calling Emit. BagReporter
// aggregates into a Bag, which supports sorting, deduplication and limits.
package diag
