package pkgcache

import (
	"testing"
)

func TestPutGetRoundtrip(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	info := &PackageInfo{
		Dir:        "/src/mylib",
		Name:       "mylib",
		Backend:    "c",
		Includes:   []string{"stdio.h", "math.h"},
		SourceHash: "abc123",
	}
	if err := cache.Put(info); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.EntryID == "" {
		t.Error("Put must stamp an entry id")
	}

	got, ok := cache.Get("/src/mylib")
	if !ok {
		t.Fatal("Get: record missing")
	}
	if got.Name != "mylib" || got.SourceHash != "abc123" {
		t.Errorf("got %+v", got)
	}
	if len(got.Includes) != 2 || got.Includes[1] != "math.h" {
		t.Errorf("includes = %v", got.Includes)
	}
}

func TestPutOverwrites(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	first := &PackageInfo{Dir: "/p", Name: "a", Backend: "c", SourceHash: "h1"}
	if err := cache.Put(first); err != nil {
		t.Fatal(err)
	}
	second := &PackageInfo{Dir: "/p", Name: "a", Backend: "c", SourceHash: "h2"}
	if err := cache.Put(second); err != nil {
		t.Fatal(err)
	}

	got, ok := cache.Get("/p")
	if !ok || got.SourceHash != "h2" {
		t.Errorf("upsert failed: %+v", got)
	}
	if got.EntryID == first.EntryID {
		t.Error("entry id must be restamped on overwrite")
	}
}

func TestGetMissing(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Get("/nope"); ok {
		t.Error("missing record reported as present")
	}
}

func TestInvalidate(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	if err := cache.Put(&PackageInfo{Dir: "/p", Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Invalidate("/p"); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Get("/p"); ok {
		t.Error("record survived invalidation")
	}
}
