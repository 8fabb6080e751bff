package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kamusis/minirag/internal/llm"
	"github.com/kamusis/minirag/internal/logging"
)

// Relevance scores live on a 0..10 scale.
const (
	minRelevance = 0
	maxRelevance = 10
)

// Rerank scores every candidate against query with the chat model and
// returns the best min(topK, len(candidates)), highest score first with ties
// broken by ChunkID. topK <= 0 uses the configured rerank_top_k.
//
// A candidate whose scoring request or reply fails keeps its similarity
// score rescaled to 0..10 and stays in the ranking. A cancelled or expired
// ctx fails the whole call.
func (e *Engine) Rerank(ctx context.Context, query string, candidates []RetrievedChunk, topK int) ([]RetrievedChunk, error) {
	if e.chat == nil {
		return nil, fmt.Errorf("chat model is not configured")
	}
	if topK <= 0 {
		topK = e.cfg.RerankTopK
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	scored := make([]RetrievedChunk, len(candidates))
	copy(scored, candidates)

	g := new(errgroup.Group)
	g.SetLimit(max(e.cfg.RerankConcurrency, 1))
	for i := range scored {
		g.Go(func() error {
			c := &scored[i]
			score, err := e.relevance(ctx, query, c.Text)
			if err != nil {
				score = clampRelevance(c.Score * maxRelevance)
				logging.LogWarn("rerank fallback for chunk %d (%s): %v", c.ChunkID, c.Source, err)
			}
			c.OriginalScore = c.Score
			c.Score = score
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rerank interrupted: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ChunkID < scored[j].ChunkID
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

func (e *Engine) relevance(ctx context.Context, query, text string) (float64, error) {
	reply, err := e.chat.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: rerankSystemPrompt},
			{Role: llm.RoleUser, Content: rerankUserPrompt(query, text)},
		},
		Temperature: rerankTemperature,
		MaxTokens:   rerankMaxTokens,
	})
	if err != nil {
		return 0, err
	}
	return ParseRelevance(reply)
}

// ParseRelevance parses a model reply as a relevance score clamped to 0..10.
func ParseRelevance(reply string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse relevance %q: %w", reply, err)
	}
	if math.IsNaN(v) {
		return 0, fmt.Errorf("relevance is not a number: %q", reply)
	}
	return clampRelevance(v), nil
}

func clampRelevance(v float64) float64 {
	if math.IsNaN(v) {
		return minRelevance
	}
	return math.Max(minRelevance, math.Min(maxRelevance, v))
}
