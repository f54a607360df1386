package lint

import (
	"substrace/internal/hir"
)

const allLints = "all"

type levelSetting struct {
	level  Level
	forbid bool
}

// levelFrame holds the lint level attributes of one crate or item.
type levelFrame map[string]levelSetting

// frameFromAttrs reads allow/warn/deny/forbid attributes naming our lints.
// Both `panics` and `substrace::panics` spellings are accepted; `substrace::all`
// targets every lint. Other tools' lints are ignored.
func frameFromAttrs(attrs []hir.Attr, known func(string) bool) levelFrame {
	var f levelFrame
	for _, a := range attrs {
		if len(a.Path) != 1 {
			continue
		}
		forbid := false
		var lvl Level
		switch a.Path[0] {
		case "allow", "expect":
			lvl = Allow
		case "warn":
			lvl = Warn
		case "deny":
			lvl = Deny
		case "forbid":
			lvl, forbid = Deny, true
		default:
			continue
		}
		for _, m := range a.Args {
			if m.Kind != hir.MetaWord {
				continue
			}
			name, ok := lintNameOf(m.Path, known)
			if !ok {
				continue
			}
			if f == nil {
				f = make(levelFrame)
			}
			f[name] = levelSetting{level: lvl, forbid: forbid}
		}
	}
	return f
}

func lintNameOf(path []string, known func(string) bool) (string, bool) {
	switch len(path) {
	case 1:
		return path[0], known(path[0])
	case 2:
		if path[0] != ToolName {
			return "", false
		}
		if path[1] == allLints {
			return allLints, true
		}
		return path[1], known(path[1])
	}
	return "", false
}

// resolve computes the level of name: base, then frames from the crate
// outwards in. Forbid pins Deny for everything nested below it.
func resolve(name string, base Level, frames []levelFrame) Level {
	lvl := base
	forbidden := false
	for _, f := range frames {
		if f == nil || forbidden {
			continue
		}
		s, ok := f[name]
		if !ok {
			s, ok = f[allLints]
		}
		if !ok {
			continue
		}
		lvl = s.level
		forbidden = s.forbid
	}
	return lvl
}
