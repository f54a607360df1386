package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"substrace/internal/diag"
	"substrace/internal/project"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := project.Digest{0xab, 0xcd}
	in := &DiskPayload{Crate: "pallet_x", Diagnostics: []diag.Diagnostic{{Code: diag.StoIterateMutate, Message: "m"}}}
	if err := cache.Put(key, in); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cache.dir, "units", "ab", key.String()+".mp")); err != nil {
		t.Fatalf("entry not fanned out: %v", err)
	}
	var out DiskPayload
	ok, err := cache.Get(key, &out)
	if err != nil || !ok || out.Crate != "pallet_x" || len(out.Diagnostics) != 1 {
		t.Fatalf("Get = %v, %v, %+v", ok, err, out)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := cache.Get(key, &out); ok {
		t.Fatal("entry survived DropAll")
	}
}

func TestDiskCacheBadEntriesMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	corrupt, stale := project.Digest{1}, project.Digest{2}

	p := cache.pathFor(corrupt)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte{0xc1, 0xff}, 0o600); err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	if ok, err := cache.Get(corrupt, &out); ok || err != nil {
		t.Fatalf("corrupt entry: %v, %v", ok, err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatal("corrupt entry not removed")
	}

	old, err := msgpack.Marshal(&DiskPayload{Schema: diskCacheSchema + 1, Crate: "x"})
	if err != nil {
		t.Fatal(err)
	}
	p = cache.pathFor(stale)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, old, 0o600); err != nil {
		t.Fatal(err)
	}
	if ok, err := cache.Get(stale, &out); ok || err != nil {
		t.Fatalf("stale schema: %v, %v", ok, err)
	}

	var nilCache *DiskCache
	if ok, err := nilCache.Get(stale, &out); ok || err != nil {
		t.Fatal("nil cache must miss")
	}
}
