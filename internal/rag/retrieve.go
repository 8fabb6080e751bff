package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamusis/minirag/internal/embeddings"
)

// Retrieve returns up to topK chunks most similar to query, best first.
// topK <= 0 uses the configured default.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) ([]RetrievedChunk, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}

	vecs, err := embeddings.EmbedAll(ctx, e.embedder, []string{query}, 1)
	if err != nil {
		return nil, fmt.Errorf("cannot embed query: %w", err)
	}
	hits, err := snap.Index.Search(vecs[0], topK)
	if err != nil {
		return nil, err
	}

	out := make([]RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.Ordinal < 0 || h.Ordinal >= len(snap.Entries) {
			continue
		}
		entry := snap.Entries[h.Ordinal]
		out = append(out, RetrievedChunk{
			Text:          entry.Text,
			Source:        entry.Source,
			ChunkID:       entry.ChunkID,
			Score:         h.Score,
			OriginalScore: h.Score,
		})
	}
	return out, nil
}
