package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"substrace/internal/diag"
	"substrace/internal/project"
)

// bump when DiskPayload changes shape
const diskCacheSchema uint16 = 1

// DiskCache keeps the diagnostics of analysed units on disk, keyed by a
// digest of the unit bytes, its sources, the effective levels and the tool
// version (see cacheKey). Entries are written to a temp file and renamed,
// so concurrent workers need no locking.
type DiskCache struct {
	dir string
}

// DiskPayload is one cache entry.
type DiskPayload struct {
	Schema      uint16
	Crate       string
	Diagnostics []diag.Diagnostic
}

// OpenDiskCache uses <user cache dir>/<app>, which honours XDG_CACHE_HOME.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// units/ab/abcdef....mp
func (c *DiskCache) pathFor(key project.Digest) string {
	name := key.String()
	return filepath.Join(c.dir, "units", name[:2], name+".mp")
}

// Put stores payload under key, replacing any older entry.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchema
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get fills out and reports a hit. Entries that fail to decode or carry
// another schema are misses; unreadable ones are removed.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	p := c.pathFor(key)
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		_ = os.Remove(p)
		return false, nil
	}
	return out.Schema == diskCacheSchema, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	return os.RemoveAll(filepath.Join(c.dir, "units"))
}
