package unit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the wire encoding of a unit.
type Format uint8

const (
	FormatAuto Format = iota
	FormatJSON
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "auto"
	}
}

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return FormatAuto, fmt.Errorf("unknown unit format %q (want auto, json or msgpack)", s)
}

// Extensions recognised when scanning directories.
var Extensions = []string{".json", ".msgpack", ".mp"}

// IsUnitPath reports whether path has a unit file extension.
func IsUnitPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FormatForPath guesses the format from the file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".msgpack", ".mp":
		return FormatMsgpack
	}
	return FormatAuto
}

var (
	// ErrVersionMissing means the unit carries no schema version.
	ErrVersionMissing = errors.New("unit has no schema version")
	// ErrVersionUnsupported means the unit was written by a newer extractor.
	ErrVersionUnsupported = errors.New("unsupported unit schema version")
)

// Decode parses data. FormatAuto sniffs JSON by its first non-space byte.
func Decode(data []byte, f Format) (*Unit, error) {
	if f == FormatAuto {
		f = FormatMsgpack
		if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
			f = FormatJSON
		}
	}
	var u Unit
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("decode json unit: %w", err)
		}
	default:
		if err := msgpack.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("decode msgpack unit: %w", err)
		}
	}
	switch {
	case u.Version == 0:
		return nil, ErrVersionMissing
	case u.Version > SchemaVersion:
		return nil, fmt.Errorf("%w: %d (this build reads %d)", ErrVersionUnsupported, u.Version, SchemaVersion)
	}
	return &u, nil
}

// ReadFile reads and decodes the unit at path.
func ReadFile(path string) (*Unit, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return u, nil
}

// Encode writes u. FormatAuto is written as JSON.
func Encode(w io.Writer, u *Unit, f Format) error {
	if f == FormatMsgpack {
		return msgpack.NewEncoder(w).Encode(u)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(u)
}
