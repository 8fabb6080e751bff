package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestListDocumentsAndChangedSince(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.md", "a.txt", "skip.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	built := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(dir, "a.txt"), built, built.Add(900*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(filepath.Join(dir, "b.md"), built, built.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	files, err := listDocuments(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || files[0].Name != "a.txt" || files[1].Name != "b.md" {
		t.Fatalf("unexpected listing: %+v", files)
	}

	// a.txt falls within the same second as the build time.
	stale := changedSince(files, built)
	if len(stale) != 1 || stale[0] != "b.md" {
		t.Fatalf("unexpected stale set: %v", stale)
	}
}

func TestImportTag(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "handbook")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "policy.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := importTag(dir + string(os.PathSeparator)); got != "handbook" {
		t.Fatalf("dir tag = %q", got)
	}
	if got := importTag(file); got != "handbook" {
		t.Fatalf("file tag = %q", got)
	}
}
