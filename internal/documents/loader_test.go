package documents

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDir_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.txt":     "second",
		"a.md":      "first",
		"notes.csv": "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Filename != "a.md" || docs[1].Filename != "b.txt" {
		t.Fatalf("unexpected order: %q, %q", docs[0].Filename, docs[1].Filename)
	}
	if docs[0].Content != "first" {
		t.Fatalf("unexpected content: %q", docs[0].Content)
	}
}

func TestLoadDir_SkipsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.txt"), []byte{0xff, 0xfe, 0xfd}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "good.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 || docs[0].Filename != "good.txt" {
		t.Fatalf("expected only good.txt, got %+v", docs)
	}
}

func TestLoadDir_StripsBOM(t *testing.T) {
	dir := t.TempDir()
	body := append([]byte{0xef, 0xbb, 0xbf}, []byte("policy")...)
	if err := os.WriteFile(filepath.Join(dir, "bom.txt"), body, 0o644); err != nil {
		t.Fatal(err)
	}
	docs, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if docs[0].Content != "policy" {
		t.Fatalf("BOM not stripped: %q", docs[0].Content)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestIsSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.TXT":  true,
		"b.pdf":  true,
		"c.md":   true,
		"d.docx": false,
		"noext":  false,
	} {
		if got := IsSupported(name); got != want {
			t.Fatalf("IsSupported(%q) = %v, want %v", name, got, want)
		}
	}
}
