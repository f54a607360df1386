package diagfmt

import (
	"strings"

	"substrace/internal/diag"
	"substrace/internal/source"
)

const src = "fn a() {\n    T::iter();\n    T::swap(1, 2);\n}\n"

func spanOf(file source.FileID, needle string) source.Span {
	i := strings.Index(src, needle)
	if i < 0 {
		panic("needle not found: " + needle)
	}
	return source.Span{File: file, Start: uint32(i), End: uint32(i + len(needle))} // #nosec G115 -- test fixture
}

// sample builds a bag with one storage warning (note + fix) and one unit-level error.
func sample(path string) (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(src))
	swap := spanOf(id, "T::swap(1, 2)")
	line := source.Span{File: id, Start: swap.Start - 4, End: swap.Start - 4}

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.StoIterateMutate,
		Lint:     "storage_iter_insert",
		Message:  "iterating and modifying storage has undefined results",
		Help:     "consider collecting the keys first",
		Primary:  swap,
		Notes:    []diag.Note{{Span: spanOf(id, "T::iter()"), Msg: "StorageMap iteration starts here"}},
		Fixes: []diag.Fix{{
			ID:            "STO1001-0-28-0",
			Title:         "allow storage_iter_insert",
			Applicability: diag.FixApplicabilityHasPlaceholders,
			Edits:         []diag.TextEdit{{Span: line, NewText: "    #[allow(substrace::storage_iter_insert)]\n"}},
		}},
	})
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.IOInvalidUnit,
		Message:  "invalid unit: unit has no schema version",
	})
	return bag, fs
}
