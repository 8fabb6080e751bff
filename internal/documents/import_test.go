package documents

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImport_DirectoryWithConflicts(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "incoming")
	docs := filepath.Join(tmp, "documents")

	writeFile(t, docs, "policy.md", "old policy")
	writeFile(t, docs, "faq.txt", "same faq")

	writeFile(t, src, "policy.md", "new policy")
	writeFile(t, src, "faq.txt", "same faq")
	writeFile(t, src, "nested/guide.txt", "guide")
	writeFile(t, src, "image.png", "binary")
	writeFile(t, src, ".hidden/secret.md", "skip me")

	res, err := Import(src, docs, "incoming")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Imported) != 1 || res.Imported[0] != "guide.txt" {
		t.Fatalf("unexpected imports: %v", res.Imported)
	}
	if res.Skipped != 1 {
		t.Fatalf("want 1 identical skip, got %d", res.Skipped)
	}
	if res.Unsupported != 1 {
		t.Fatalf("want 1 unsupported file, got %d", res.Unsupported)
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("want 1 conflict, got %d", len(res.Conflicts))
	}

	b, err := os.ReadFile(filepath.Join(docs, "policy.md"))
	if err != nil || string(b) != "old policy" {
		t.Fatalf("existing file must not be overwritten: %q %v", b, err)
	}
	b, err = os.ReadFile(filepath.Join(docs, "policy.conflict-incoming.md"))
	if err != nil || string(b) != "new policy" {
		t.Fatalf("conflict copy missing: %q %v", b, err)
	}
	if _, err := os.Stat(filepath.Join(docs, "secret.md")); !os.IsNotExist(err) {
		t.Fatal("hidden directories must be skipped")
	}
}

func TestImport_SingleFile(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "notes.txt", "hello")
	docs := filepath.Join(tmp, "docs")

	res, err := Import(filepath.Join(tmp, "notes.txt"), docs, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Imported) != 1 {
		t.Fatalf("expected 1 import, got %v", res.Imported)
	}
	loaded, err := LoadDir(docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].Content != "hello" {
		t.Fatalf("unexpected corpus: %+v", loaded)
	}
}

func TestConflictPath(t *testing.T) {
	if got := conflictPath("/d/handbook.md", "backup"); got != "/d/handbook.conflict-backup.md" {
		t.Fatalf("unexpected conflict path %s", got)
	}
	if got := conflictPath("/d/a.prompt.txt", "x"); got != "/d/a.prompt.conflict-x.txt" {
		t.Fatalf("unexpected conflict path %s", got)
	}
}

func TestImport_MissingSource(t *testing.T) {
	if _, err := Import(filepath.Join(t.TempDir(), "nope"), t.TempDir(), "x"); err == nil {
		t.Fatal("expected error for missing source")
	}
}
