package rag

import (
	"sort"
	"strings"

	"github.com/kamusis/minirag/internal/index"
)

// KeywordSearch matches query tokens case-insensitively against chunk text
// without calling the embeddings API. All tokens must match (AND semantics).
// Score is the total number of token occurrences; ties are broken by source
// then chunk id.
func KeywordSearch(entries []index.Entry, query string, limit int) []RetrievedChunk {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []RetrievedChunk{}
	}

	out := []RetrievedChunk{}
	for _, e := range entries {
		blob := strings.ToLower(e.Text)
		hits := 0
		for _, tok := range tokens {
			n := strings.Count(blob, tok)
			if n == 0 {
				hits = 0
				break
			}
			hits += n
		}
		if hits == 0 {
			continue
		}
		out = append(out, RetrievedChunk{
			Text:          e.Text,
			Source:        e.Source,
			ChunkID:       e.ChunkID,
			Score:         float64(hits),
			OriginalScore: float64(hits),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].ChunkID < out[j].ChunkID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func tokenize(q string) []string {
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(p))
	}
	return out
}
