package driver

import (
	"context"
	"os"
	"testing"

	"keel/internal/diag"
	"keel/internal/project"
	"keel/internal/source"
)

func TestCacheReplaysStoredDiagnostics(t *testing.T) {
	cache, err := OpenCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}

	fs := source.NewFileSet()
	id := fs.AddVirtual("leak.kir", []byte(illegalProgram))
	file := fs.Get(id)

	bag := diag.NewBag(16)
	d := diag.NewError(diag.VerIllegalOperand,
		source.Span{File: id, Start: 10, End: 20}, "operand has wrong ownership")
	d = d.WithNote(source.Span{File: id, Start: 3, End: 6}, "defined here")
	bag.Add(d)
	cache.Store(file, bag)

	// Same content under a fresh FileID: spans must be rebased.
	fs2 := source.NewFileSet()
	fs2.AddVirtual("pad.kir", []byte("x"))
	id2 := fs2.AddVirtual("leak.kir", []byte(illegalProgram))

	got, hit := cache.Lookup(fs2.Get(id2), 16)
	if !hit {
		t.Fatalf("expected cache hit")
	}
	if got.Len() != 1 {
		t.Fatalf("got %d diagnostics, want 1", got.Len())
	}
	gd := got.Items()[0]
	if gd.Code != diag.VerIllegalOperand || gd.Message != "operand has wrong ownership" {
		t.Errorf("unexpected diagnostic: %+v", gd)
	}
	if gd.Primary.File != id2 || gd.Primary.Start != 10 || gd.Primary.End != 20 {
		t.Errorf("span not rebased: %+v", gd.Primary)
	}
	if len(gd.Notes) != 1 || gd.Notes[0].Msg != "defined here" || gd.Notes[0].Span.File != id2 {
		t.Errorf("notes not replayed: %+v", gd.Notes)
	}
}

func TestCacheMissOnChangedContent(t *testing.T) {
	cache, err := OpenCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.kir", []byte(cleanProgram)))
	cache.Store(file, diag.NewBag(4))

	edited := fs.Get(fs.AddVirtual("a.kir", []byte(cleanProgram+"\n// edited\n")))
	if _, hit := cache.Lookup(edited, 4); hit {
		t.Fatalf("edited content must miss")
	}
}

func TestCacheMissOnCorruptEntry(t *testing.T) {
	cache, err := OpenCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.kir", []byte(cleanProgram)))
	cache.Store(file, diag.NewBag(4))

	if err := os.WriteFile(cache.pathFor(project.Digest(file.Hash)), []byte("not msgpack"), 0o600); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}
	if _, hit := cache.Lookup(file, 4); hit {
		t.Fatalf("corrupt entry must be a silent miss")
	}
}

func TestVerifyFileUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leak.kir", illegalProgram)
	cache, err := OpenCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}
	opts := Options{Cache: cache}

	fs := source.NewFileSetWithBase(dir)
	first, err := VerifyFile(context.Background(), fs, path, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first run cannot be cached")
	}

	fs2 := source.NewFileSetWithBase(dir)
	second, err := VerifyFile(context.Background(), fs2, path, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second run should replay the cache")
	}
	if second.Bag.Len() != first.Bag.Len() {
		t.Errorf("replayed %d diagnostics, want %d", second.Bag.Len(), first.Bag.Len())
	}
}

func TestCacheDrop(t *testing.T) {
	cache, err := OpenCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheAt: %v", err)
	}

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.kir", []byte(cleanProgram)))
	cache.Store(file, diag.NewBag(4))
	if _, hit := cache.Lookup(file, 4); !hit {
		t.Fatalf("expected hit before drop")
	}
	if err := cache.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if _, hit := cache.Lookup(file, 4); hit {
		t.Fatalf("expected miss after drop")
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var c *Cache
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("a.kir", []byte(cleanProgram)))
	c.Store(file, diag.NewBag(1))
	if _, hit := c.Lookup(file, 1); hit {
		t.Fatalf("nil cache must always miss")
	}
	if err := c.Drop(); err != nil {
		t.Fatalf("nil Drop: %v", err)
	}
}
