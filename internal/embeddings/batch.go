package embeddings

import (
	"context"
	"fmt"
)

// DefaultBatchSize is the number of texts sent per embeddings request.
const DefaultBatchSize = 100

// EmbedAll embeds texts in batches of batchSize (DefaultBatchSize when <= 0),
// one request per batch, and returns the vectors in input order.
//
// A failed batch fails the whole call; no partial result is returned. Every
// vector must have the dimension of the first one.
func EmbedAll(ctx context.Context, p Provider, texts []string, batchSize int) ([][]float32, error) {
	if p == nil {
		return nil, fmt.Errorf("embeddings provider is nil")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	out := make([][]float32, 0, len(texts))
	dim := 0
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end-1, err)
		}
		vecs, err := p.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors for %d texts", start, end-1, len(vecs), end-start)
		}
		for i, v := range vecs {
			if dim == 0 {
				dim = len(v)
			}
			if len(v) == 0 || len(v) != dim {
				return nil, fmt.Errorf("embedding batch %d-%d: vector %d has dimension %d, want %d", start, end-1, start+i, len(v), dim)
			}
		}
		out = append(out, vecs...)
	}
	return out, nil
}
