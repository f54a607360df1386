package diagfmt

import (
	"fmt"
	"io"

	"substrace/internal/diag"
	"substrace/internal/source"
)

// Short prints one line per diagnostic, grep-friendly:
// <path>:<line>:<col>: <severity> <CODE>: <message>
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, unitPath string) {
	for i := range bag.Items() {
		d := &bag.Items()[i]
		if d.Code == diag.EngTimings {
			continue
		}
		loc := unitPath
		if located(d, fs) {
			start, _ := fs.Resolve(d.Primary)
			loc = fmt.Sprintf("%s:%d:%d", formatPath(fs.Get(d.Primary.File), fs, mode), start.Line, start.Col)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n", loc, d.Severity, d.Code.ID(), d.Message)
	}
}
