package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

const metadataSchema = `{
  "type": "object",
  "required": ["text", "source", "chunk_id"],
  "properties": {
    "text": {"type": "string"},
    "source": {"type": "string"},
    "chunk_id": {"type": "integer", "minimum": 0},
    "text_hash": {"type": "string"}
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(metadataSchema))
})

// Load reads the index in dir. Every failure (missing file, bad header,
// size or count disagreement, invalid metadata) is reported as ErrNotFound
// wrapped with the reason.
func Load(dir string) (*Snapshot, error) {
	m, rows, err := loadVectors(filepath.Join(dir, VectorFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	entries, err := loadMetadata(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if len(entries) != m.Count {
		return nil, fmt.Errorf("%w: vectors file has %d rows but metadata has %d records", ErrNotFound, m.Count, len(entries))
	}
	return &Snapshot{
		Manifest: m,
		Index:    &Flat{dim: m.Dim, rows: rows},
		Entries:  entries,
	}, nil
}

// ReadManifest reads only the vectors.idx header in dir.
func ReadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, VectorFile)
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: cannot open vector file %s: %w", ErrNotFound, path, err)
	}
	defer f.Close()
	m, err := readHeader(f, path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return m, nil
}

func readHeader(r io.Reader, path string) (Manifest, error) {
	var got [8]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return Manifest{}, fmt.Errorf("cannot read vector file magic %s: %w", path, err)
	}
	if got != magic {
		return Manifest{}, fmt.Errorf("%s is not a minirag vector file", path)
	}
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Manifest{}, fmt.Errorf("cannot read vector file header %s: %w", path, err)
	}
	if h.Version != FormatVersion {
		return Manifest{}, fmt.Errorf("unsupported vector file version %d in %s", h.Version, path)
	}
	if h.Dim == 0 {
		return Manifest{}, fmt.Errorf("invalid dim in %s: 0", path)
	}
	if h.ModelLen > 1024 {
		return Manifest{}, fmt.Errorf("invalid model id length in %s: %d", path, h.ModelLen)
	}
	model := make([]byte, h.ModelLen)
	if _, err := io.ReadFull(r, model); err != nil {
		return Manifest{}, fmt.Errorf("cannot read model id from %s: %w", path, err)
	}
	return Manifest{
		Version:   int(h.Version),
		ModelID:   string(model),
		Dim:       int(h.Dim),
		Count:     int(h.Count),
		CreatedAt: time.Unix(h.CreatedAt, 0).UTC(),
	}, nil
}

func loadVectors(path string) (Manifest, []float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	m, err := readHeader(br, path)
	if err != nil {
		return Manifest{}, nil, err
	}

	// Bound the header's count by the bytes on disk before multiplying.
	avail := st.Size() - int64(headerSize) - int64(len(m.ModelID))
	rowBytes := int64(m.Dim) * 4
	if m.Count < 0 || avail < 0 || int64(m.Count) > avail/rowBytes {
		return Manifest{}, nil, fmt.Errorf("vector file header claims %d rows of dim %d but only %d payload bytes follow", m.Count, m.Dim, max(avail, 0))
	}
	payload := int64(m.Count) * rowBytes
	expected := int64(headerSize) + int64(len(m.ModelID)) + payload
	if expected != st.Size() {
		return Manifest{}, nil, fmt.Errorf("vector file size mismatch: got %d want %d (count=%d dim=%d)", st.Size(), expected, m.Count, m.Dim)
	}

	out := make([]float32, m.Count*m.Dim)
	if err := binary.Read(io.LimitReader(br, payload), binary.LittleEndian, out); err != nil {
		return Manifest{}, nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return m, out, nil
}

func loadMetadata(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open metadata file %s: %w", path, err)
	}
	defer f.Close()

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("invalid metadata schema: %w", err)
	}

	var out []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		res, err := schema.Validate(gojsonschema.NewBytesLoader(b))
		if err != nil {
			return nil, fmt.Errorf("invalid metadata JSONL %s line %d: %w", path, line, err)
		}
		if !res.Valid() {
			var msgs []string
			for _, e := range res.Errors() {
				msgs = append(msgs, e.String())
			}
			return nil, fmt.Errorf("invalid metadata record %s line %d: %s", path, line, strings.Join(msgs, "; "))
		}
		var e Entry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("invalid metadata JSONL %s line %d: %w", path, line, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read metadata file %s: %w", path, err)
	}
	return out, nil
}
