package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Conflict records an incoming file whose name was taken by different content.
type Conflict struct {
	Existing string // file already in the documents directory
	Stored   string // where the incoming version was written
}

// ImportResult is returned by Import.
type ImportResult struct {
	Imported    []string
	Skipped     int // identical duplicates
	Unsupported int
	Conflicts   []Conflict
}

// Import copies supported files from src (a file or a directory tree) into
// dstDir, flattening them to their base names.
//
// A file identical to the one already present is skipped. A different file
// with a taken name is stored as <name>.conflict-<tag><ext> so nothing in
// dstDir is overwritten.
func Import(src, dstDir, tag string) (*ImportResult, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", src, err)
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create documents directory %s: %w", dstDir, err)
	}
	if tag == "" {
		tag = "import"
	}

	result := &ImportResult{}
	if !info.IsDir() {
		return result, importFile(src, dstDir, tag, result)
	}
	err = filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != src && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		return importFile(path, dstDir, tag, result)
	})
	return result, err
}

func importFile(path, dstDir, tag string, result *ImportResult) error {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !IsSupported(name) {
		result.Unsupported++
		return nil
	}

	dst := filepath.Join(dstDir, name)
	if _, err := os.Stat(dst); err == nil {
		same, err := sameContent(path, dst)
		if err != nil {
			return err
		}
		if same {
			result.Skipped++
			return nil
		}
		stored := conflictPath(dst, tag)
		if err := copyFile(path, stored); err != nil {
			return fmt.Errorf("conflict copy %s → %s: %w", path, stored, err)
		}
		result.Conflicts = append(result.Conflicts, Conflict{Existing: dst, Stored: stored})
		return nil
	}

	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("copy %s → %s: %w", path, dst, err)
	}
	result.Imported = append(result.Imported, name)
	return nil
}

// conflictPath inserts .conflict-<tag> before the final extension:
//
//	handbook.md → handbook.conflict-backup.md
func conflictPath(original, tag string) string {
	ext := filepath.Ext(original)
	return strings.TrimSuffix(original, ext) + ".conflict-" + tag + ext
}

func sameContent(a, b string) (bool, error) {
	ha, err := fileDigest(a)
	if err != nil {
		return false, err
	}
	hb, err := fileDigest(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
