package lint

import (
	"fmt"
	"strings"

	"substrace/internal/diag"
)

// Level is how loudly a lint reports.
type Level uint8

const (
	Allow Level = iota
	Warn
	Deny
)

func (l Level) String() string {
	switch l {
	case Allow:
		return "allow"
	case Warn:
		return "warn"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// ParseLevel accepts allow|warn|deny and the attribute spelling forbid (= deny).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "allow":
		return Allow, nil
	case "warn":
		return Warn, nil
	case "deny", "forbid":
		return Deny, nil
	}
	return Allow, fmt.Errorf("invalid lint level %q (expected allow|warn|deny)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for config files.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Severity maps a reporting level to a diagnostic severity.
// Allow has no severity; callers must not report at Allow.
func (l Level) Severity() diag.Severity {
	if l == Deny {
		return diag.SevError
	}
	return diag.SevWarning
}
