package shared

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jsonl"), "one")
	writeFile(t, filepath.Join(root, "nested", "deep", "b.jsonl"), "two")
	writeFile(t, filepath.Join(root, "nested", "c.json"), "wrong ext")
	writeFile(t, filepath.Join(root, "d.txt"), "wrong ext")

	files := DiscoverFiles([]string{root, filepath.Join(root, "does-not-exist")}, "jsonl")
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}

	names := []string{filepath.Base(files[0].Path), filepath.Base(files[1].Path)}
	sort.Strings(names)
	if names[0] != "a.jsonl" || names[1] != "b.jsonl" {
		t.Errorf("unexpected files: %v", names)
	}
	for _, f := range files {
		if f.Size == 0 || f.Mtime == 0 {
			t.Errorf("missing fingerprint for %s: %+v", f.Path, f)
		}
	}
}

func TestDiscoverFiles_MissingRoots(t *testing.T) {
	if files := DiscoverFiles([]string{"/no/such/dir"}, "jsonl"); files != nil {
		t.Fatalf("expected nil for missing roots, got %v", files)
	}
}

func TestStatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	writeFile(t, path, "hello")

	f, ok := StatFile(path)
	if !ok {
		t.Fatal("expected stat to succeed")
	}
	if f.Path != path || f.Size != 5 {
		t.Errorf("unexpected fingerprint: %+v", f)
	}

	if _, ok := StatFile(filepath.Join(dir, "missing.json")); ok {
		t.Error("expected stat of missing file to fail")
	}
	if _, ok := StatFile(dir); ok {
		t.Error("expected stat of a directory to fail")
	}
}
