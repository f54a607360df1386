package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("lib.rs", []byte("mod a;"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("./lib.rs", []byte("mod b;"), 0)
	if id2 == id1 {
		t.Fatal("Expected a new FileID for the second Add")
	}

	// Lookup всегда указывает на последнюю версию
	f, ok := fs.Lookup("lib.rs")
	if !ok || f.ID != id2 {
		t.Fatalf("Lookup = %+v, %v; want id %d", f, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "mod a;" {
		t.Errorf("old version content = %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Len = %d, want 2", fs.Len())
	}
}

func TestContentKeptVerbatim(t *testing.T) {
	fs := NewFileSet()
	raw := "\xEF\xBB\xBFa\r\nb\n"
	f := fs.Get(fs.AddVirtual("a.rs", []byte(raw)))

	if string(f.Content) != raw {
		t.Fatalf("content rewritten: %q", f.Content)
	}
	if f.Flags != FileVirtual|FileBOM|FileCRLF {
		t.Errorf("flags = %b", f.Flags)
	}
	if got := f.Line(1); got != "\xEF\xBB\xBFa" {
		t.Errorf("Line(1) = %q, \\r must be stripped", got)
	}
	if f.LineCount() != 3 {
		t.Errorf("LineCount = %d, want 3", f.LineCount())
	}
}

func TestGetUnknownID(t *testing.T) {
	fs := NewFileSet()
	if fs.Get(3) != nil {
		t.Fatal("Get on unknown id must return nil")
	}
	if start, end := fs.Resolve(Span{File: 3}); start != (LineCol{}) || end != (LineCol{}) {
		t.Fatalf("Resolve on unknown file = %v %v", start, end)
	}
	var nilSet *FileSet
	if nilSet.Has(0) {
		t.Fatal("nil set must be empty")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lib.rs", []byte("fn a() {}\nfn b() {}\n"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{9, LineCol{Line: 1, Col: 10}}, // сам \n принадлежит первой строке
		{10, LineCol{Line: 2, Col: 1}},
		{13, LineCol{Line: 2, Col: 4}},
		{20, LineCol{Line: 3, Col: 1}},
		{99, LineCol{Line: 3, Col: 1}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestResolveCountsBytes(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.rs", []byte("α\n"))

	start, end := fs.Resolve(Span{File: id, Start: 0, End: 2})
	if start != (LineCol{Line: 1, Col: 1}) {
		t.Errorf("start = %+v", start)
	}
	if end != (LineCol{Line: 1, Col: 3}) {
		t.Errorf("end = %+v", end)
	}
}

func TestLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("x.rs", []byte("one\ntwo\nthree")))
	for n, want := range map[uint32]string{0: "", 1: "one", 2: "two", 3: "three", 4: ""} {
		if got := f.Line(n); got != want {
			t.Errorf("Line(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.rs")
	if err := os.WriteFile(path, []byte("a\r\nb\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\r\nb\r\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags != FileCRLF {
		t.Errorf("flags = %b, want only CRLF", f.Flags)
	}
	if _, err := fs.Load(filepath.Join(t.TempDir(), "nope.rs")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFormatPath(t *testing.T) {
	base := t.TempDir()
	inside := filepath.Join(base, "nested", "lib.rs")
	outside := filepath.Join(filepath.Dir(base), "elsewhere", "lib.rs")

	fs := NewFileSet()
	in := fs.Get(fs.Add(inside, nil, 0))
	out := fs.Get(fs.Add(outside, nil, 0))

	if got := in.FormatPath("relative", base); got != "nested/lib.rs" {
		t.Errorf("relative inside base = %q", got)
	}
	if got := out.FormatPath("relative", base); got != normalizePath(outside) {
		t.Errorf("relative outside base = %q, want absolute fallback", got)
	}
	if got := in.FormatPath("basename", ""); got != "lib.rs" {
		t.Errorf("basename = %q", got)
	}
	if got := fs.Get(fs.Add("src/lib.rs", nil, 0)).FormatPath("auto", ""); got != "src/lib.rs" {
		t.Errorf("auto on short path = %q", got)
	}
}
