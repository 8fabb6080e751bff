package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/kamusis/minirag/internal/config"
)

func TestRunSearchKeyword_NoIndex(t *testing.T) {
	cfg := &config.Config{IndexDir: filepath.Join(t.TempDir(), "index"), DefaultTopK: 5}
	if err := runSearchKeyword(cfg, "anything"); !errors.Is(err, errNoIndex) {
		t.Fatalf("expected errNoIndex, got %v", err)
	}
}
