// Package paths models canonical qualified definition paths and the exact
// matcher the lints use to recognise framework APIs.
//
// A Path has the crate name first and the item name last, for example
// frame_support::storage::types::map::StorageMap. Paths are produced by the
// host's resolution queries and never contain generic arguments, so two calls
// to the same declaration with different instantiations share one Path.
package paths

import (
	"strings"
)

// Path is a canonical qualified definition path.
type Path []string

// New builds a Path from its segments.
func New(segments ...string) Path {
	return Path(segments)
}

// Parse splits a "::"-separated path. Leading "::" is ignored.
func Parse(s string) Path {
	s = strings.TrimPrefix(strings.TrimSpace(s), "::")
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "::"))
}

func (p Path) String() string {
	return strings.Join(p, "::")
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Child returns a new path with name appended.
func (p Path) Child(name string) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	return append(out, name)
}

// Match reports whether p is exactly pattern: same length, same segments in order.
// There are no wildcards and no prefix matching.
func Match(p, pattern Path) bool {
	if len(p) != len(pattern) {
		return false
	}
	for i := range p {
		if p[i] != pattern[i] {
			return false
		}
	}
	return true
}

// Set is a named group of patterns.
type Set struct {
	Name     string
	Patterns []Path
}

// NewSet returns a set matching any of the patterns.
func NewSet(name string, patterns ...Path) Set {
	return Set{Name: name, Patterns: patterns}
}

// Match returns the pattern equal to p, if any.
func (s Set) Match(p Path) (Path, bool) {
	for _, pat := range s.Patterns {
		if Match(p, pat) {
			return pat, true
		}
	}
	return nil, false
}

// Contains reports whether p equals one of the patterns.
func (s Set) Contains(p Path) bool {
	_, ok := s.Match(p)
	return ok
}

// Methods builds one pattern per method name under owner.
func Methods(owner Path, names ...string) []Path {
	out := make([]Path, 0, len(names))
	for _, n := range names {
		out = append(out, owner.Child(n))
	}
	return out
}
