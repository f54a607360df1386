package source

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
)

type (
	// FileID indexes a file inside its FileSet, starting at 0.
	FileID uint32
	// FileFlags describe where a file came from and what its bytes look like.
	FileFlags uint8
)

const (
	// FileVirtual marks content embedded in a unit or built in memory.
	// Fixes never write virtual files.
	FileVirtual FileFlags = 1 << iota
	// FileBOM: content starts with a UTF-8 byte order mark.
	FileBOM
	// FileCRLF: at least one line ends in \r\n.
	FileCRLF
)

// File is one source file exactly as read. Content is never rewritten, so
// host byte offsets and fix output stay faithful to disk.
type File struct {
	ID      FileID
	Path    string // slash-separated, cleaned
	Content []byte
	Hash    [32]byte
	Flags   FileFlags

	lines []uint32 // offset of each line start; lines[0] == 0
}

// LineCol is a 1-based position. Col counts bytes.
type LineCol struct {
	Line uint32
	Col  uint32
}

var bom = []byte{0xEF, 0xBB, 0xBF}

func scanFlags(content []byte) FileFlags {
	var fl FileFlags
	if bytes.HasPrefix(content, bom) {
		fl |= FileBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		fl |= FileCRLF
	}
	return fl
}

func lineStarts(content []byte) []uint32 {
	starts := make([]uint32, 1, bytes.Count(content, []byte{'\n'})+1)
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint32(i+1)) // #nosec G115 -- size checked in Add
		}
	}
	return starts
}

// LineCount is the number of lines; a trailing newline opens an empty last line.
func (f *File) LineCount() uint32 {
	return uint32(len(f.lines)) // #nosec G115 -- bounded by content size
}

// Position converts a byte offset. Offsets past the end clamp to it.
func (f *File) Position(off uint32) LineCol {
	off = min(off, uint32(len(f.Content))) // #nosec G115 -- size checked in Add
	i, found := slices.BinarySearch(f.lines, off)
	if !found {
		i--
	}
	return LineCol{Line: uint32(i + 1), Col: off - f.lines[i] + 1} // #nosec G115 -- i < len(lines)
}

// Line returns line n (1-based) without its terminator, "" when out of range.
func (f *File) Line(n uint32) string {
	if n == 0 || n > f.LineCount() {
		return ""
	}
	start := f.lines[n-1]
	end := uint32(len(f.Content)) // #nosec G115 -- size checked in Add
	if n < f.LineCount() {
		end = f.lines[n] - 1
	}
	return string(bytes.TrimSuffix(f.Content[start:end], []byte{'\r'}))
}

// lineStartOf returns the offset of the first byte of the line holding off.
func (f *File) lineStartOf(off uint32) uint32 {
	return f.lines[f.Position(off).Line-1]
}

// FormatPath renders Path for output.
// mode: "absolute", "relative" (to baseDir, or the working directory),
// "basename", "auto" (as stored unless long and absolute).
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return BaseName(f.Path)
	case "auto":
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return BaseName(f.Path)
		}
	}
	return f.Path
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
