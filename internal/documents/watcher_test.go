package documents

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_CoalescesSupportedChanges(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	for _, name := range []string{"a.txt", "b.md", "ignored.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("hi"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case ch := <-changes:
		for _, p := range ch.Paths {
			if filepath.Ext(p) == ".json" {
				t.Fatalf("unsupported file reported: %v", ch.Paths)
			}
		}
		if len(ch.Paths) == 0 {
			t.Fatal("empty change batch")
		}
	case <-ctx.Done():
		t.Fatal("timeout waiting for change")
	}
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	w, err := NewWatcher(0)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := w.Watch(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	cancel()

	select {
	case _, ok := <-changes:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(0)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if _, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
