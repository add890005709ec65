package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWalksNestedDirs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.html":       "<h1>Home</h1>",
		"guide/index.html": "<h1>Guide</h1>",
		"assets/logo.png":  "\x89PNG",
	}
	for p, c := range files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(c), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	tree, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tree.Len() != 3 {
		t.Fatalf("expected 3 files, got %d", tree.Len())
	}

	f := tree.Get("guide/index.html")
	if f == nil {
		t.Fatal("guide/index.html missing from tree")
	}
	if string(f.Data) != "<h1>Guide</h1>" {
		t.Fatalf("content mismatch: %q", f.Data)
	}
	if !strings.HasPrefix(f.ContentType, "text/html") {
		t.Fatalf("content type = %q", f.ContentType)
	}
	if f.ETag != ETag([]byte("<h1>Guide</h1>")) {
		t.Fatal("etag mismatch")
	}
}

func TestPathsSorted(t *testing.T) {
	tree := NewTree()
	tree.Add("b.html", []byte("b"))
	tree.Add("a.html", []byte("a"))
	paths := tree.Paths()
	if paths[0] != "a.html" || paths[1] != "b.html" {
		t.Fatalf("paths not sorted: %v", paths)
	}
}

func TestTypeByPath(t *testing.T) {
	cases := map[string]string{
		"index.html":   "text/html",
		"style.css":    "text/css",
		"data.json":    "application/json",
		"binary.weird": "application/octet-stream",
	}
	for path, want := range cases {
		if got := TypeByPath(path); !strings.HasPrefix(got, want) {
			t.Fatalf("TypeByPath(%q) = %q, want prefix %q", path, got, want)
		}
	}
}
