package diagfmt

import (
	"substrace/internal/diag"
	"substrace/internal/source"
)

// located reports whether d points into a file of fs. Input and timing
// diagnostics have no meaningful span.
func located(d *diag.Diagnostic, fs *source.FileSet) bool {
	return !d.UnitLevel() && fs != nil && fs.Get(d.Primary.File) != nil
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	case PathModeAuto:
		return f.FormatPath("auto", "")
	}
	return f.Path
}
