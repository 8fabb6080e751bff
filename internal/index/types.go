package index

import (
	"fmt"
	"time"
)

// FormatVersion is the vectors.idx layout written by this package.
const FormatVersion = 1

// File names inside an index directory.
const (
	VectorFile   = "vectors.idx"
	MetadataFile = "metadata.jsonl"
)

// Manifest describes a persisted index. It is stored in the vectors.idx header.
type Manifest struct {
	Version   int
	ModelID   string
	Dim       int
	Count     int
	CreatedAt time.Time
}

// Entry is the metadata record paired with one index row.
type Entry struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	ChunkID  int    `json:"chunk_id"`
	TextHash string `json:"text_hash,omitempty"`
}

// Snapshot is an immutable index paired with its metadata. Row i of Index
// belongs to Entries[i].
type Snapshot struct {
	Manifest Manifest
	Index    *Flat
	Entries  []Entry
}

// NewSnapshot pairs idx with entries, which must have one entry per row.
func NewSnapshot(modelID string, idx *Flat, entries []Entry) (*Snapshot, error) {
	if idx == nil {
		return nil, fmt.Errorf("index is nil")
	}
	if idx.Len() != len(entries) {
		return nil, fmt.Errorf("index has %d rows but %d metadata entries", idx.Len(), len(entries))
	}
	return &Snapshot{
		Manifest: Manifest{
			Version:   FormatVersion,
			ModelID:   modelID,
			Dim:       idx.Dim(),
			Count:     len(entries),
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		},
		Index:   idx,
		Entries: entries,
	}, nil
}

// Len returns the number of indexed chunks.
func (s *Snapshot) Len() int { return len(s.Entries) }

// Sources returns the distinct entry sources in first-seen order.
func (s *Snapshot) Sources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.Entries {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	return out
}

// VectorsByHash returns the stored row for each entry text hash. Entries
// without a hash are skipped.
func (s *Snapshot) VectorsByHash() map[string][]float32 {
	out := make(map[string][]float32, len(s.Entries))
	for i, e := range s.Entries {
		if e.TextHash == "" {
			continue
		}
		out[e.TextHash] = s.Index.Row(i)
	}
	return out
}
