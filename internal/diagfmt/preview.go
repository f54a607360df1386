package diagfmt

import (
	"bytes"
	"fmt"
	"strings"

	"substrace/internal/diag"
	"substrace/internal/source"
)

// editPreview is the block of whole lines an edit touches, before and
// after applying it.
type editPreview struct {
	before []string
	after  []string
}

func previewEdit(fs *source.FileSet, edit diag.TextEdit) (editPreview, error) {
	f := fs.Get(edit.Span.File)
	if f == nil {
		return editPreview{}, fmt.Errorf("file %d not in set", edit.Span.File)
	}
	content := f.Content
	start, end := int(edit.Span.Start), int(edit.Span.End)
	if start > end || end > len(content) {
		return editPreview{}, fmt.Errorf("edit %d..%d outside %s", start, end, f.Path)
	}

	// расширяем до границ строк
	lo := bytes.LastIndexByte(content[:start], '\n') + 1
	hi := len(content)
	if i := bytes.IndexByte(content[end:], '\n'); i >= 0 {
		hi = end + i
	}

	var after strings.Builder
	after.Write(content[lo:start])
	after.WriteString(edit.NewText)
	after.Write(content[end:hi])

	return editPreview{
		before: previewLines(string(content[lo:hi])),
		after:  previewLines(after.String()),
	}, nil
}

func previewLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
