package source

import (
	"crypto/sha256"
	"fmt"
	"math"
	"os"
)

// FileSet holds the files of one analysis unit. It is not safe for
// concurrent mutation; the driver builds one per unit.
type FileSet struct {
	files   []File
	byPath  map[string]FileID
	baseDir string // для относительных путей
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// NewFileSetWithBase resolves relative output paths against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

func (fileSet *FileSet) SetBaseDir(dir string) { fileSet.baseDir = dir }

// BaseDir falls back to the working directory when unset.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// Add registers content under path and returns a fresh id, even when the
// path is already known; Lookup then answers with the newest one.
// Content over 4 GiB cannot be addressed by a Span and panics.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if len(content) > math.MaxUint32 || len(fileSet.files) >= math.MaxUint32 {
		panic(fmt.Sprintf("source: %s does not fit 32-bit offsets", path))
	}
	id := FileID(len(fileSet.files)) // #nosec G115 -- checked above
	p := normalizePath(path)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    p,
		Content: content,
		Hash:    sha256.Sum256(content),
		Flags:   flags | scanFlags(content),
		lines:   lineStarts(content),
	})
	fileSet.byPath[p] = id
	return id
}

// Load reads path from disk as is.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path comes from the unit or the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.Add(path, content, 0), nil
}

// AddVirtual registers in-memory content; fixes will not touch it.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

func (fileSet *FileSet) Len() int { return len(fileSet.files) }

// Has reports whether id names a registered file. A nil set has none.
func (fileSet *FileSet) Has(id FileID) bool {
	return fileSet != nil && int(id) < len(fileSet.files)
}

// Get returns nil for unknown ids.
func (fileSet *FileSet) Get(id FileID) *File {
	if !fileSet.Has(id) {
		return nil
	}
	return &fileSet.files[id]
}

// Lookup returns the newest file added under path.
func (fileSet *FileSet) Lookup(path string) (*File, bool) {
	id, ok := fileSet.byPath[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return &fileSet.files[id], true
}

// Resolve converts a span into positions; unknown files give zero values.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}
