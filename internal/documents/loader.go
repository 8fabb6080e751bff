package documents

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kamusis/minirag/internal/logging"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyCorpus is returned when the documents directory holds no loadable files.
var ErrEmptyCorpus = errors.New("no documents found")

// Document is one source file read into memory.
type Document struct {
	Filename string
	Content  string
}

// SupportedExtensions lists the file extensions LoadDir picks up.
var SupportedExtensions = []string{".txt", ".md", ".pdf"}

// LoadDir reads every supported file directly under dir.
//
// A file that cannot be read or decoded is skipped with a warning; the rest
// of the corpus still loads. Documents are returned sorted by filename.
func LoadDir(dir string) ([]Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("documents directory not found: %s", dir)
		}
		return nil, fmt.Errorf("cannot stat documents directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("documents path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list documents directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s (supported: %s)", ErrEmptyCorpus, dir, strings.Join(SupportedExtensions, ", "))
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		text, err := readDocument(filepath.Join(dir, name))
		if err != nil {
			logging.LogWarn("skipping document %s: %v", name, err)
			continue
		}
		docs = append(docs, Document{Filename: name, Content: text})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: every file in %s failed to load", ErrEmptyCorpus, dir)
	}
	return docs, nil
}

// IsSupported reports whether name has one of SupportedExtensions.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func readDocument(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDF(path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decodeText(b)
}

// decodeText strips a UTF-8 BOM, rejects invalid UTF-8 and normalizes to NFC
// so the same text always tokenizes the same way.
func decodeText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New("not valid UTF-8")
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return "", fmt.Errorf("cannot decode: %w", err)
	}
	return norm.NFC.String(string(out)), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("cannot extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("cannot read pdf text: %w", err)
	}
	return decodeText(buf.Bytes())
}
