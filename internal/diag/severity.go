package diag

// Severity orders diagnostics by importance. Lints report advisories as
// SevWarning and must-fix findings as SevError.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]struct{ upper, lower, sarif string }{
	SevInfo:    {"INFO", "info", "note"},
	SevWarning: {"WARNING", "warning", "warning"},
	SevError:   {"ERROR", "error", "error"},
}

func (s Severity) valid() bool { return int(s) < len(severityNames) }

// String is the label used in human output.
func (s Severity) String() string {
	if !s.valid() {
		return "UNKNOWN"
	}
	return severityNames[s].upper
}

// Label is the lower-case form used in golden files.
func (s Severity) Label() string {
	if !s.valid() {
		return "unknown"
	}
	return severityNames[s].lower
}

// SarifLevel maps the severity onto SARIF result levels.
func (s Severity) SarifLevel() string {
	if !s.valid() {
		return "none"
	}
	return severityNames[s].sarif
}
