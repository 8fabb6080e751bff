package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamusis/minirag/internal/llm"
)

// GenerateAnswer asks the chat model to answer query from chunks only and
// returns its raw reply.
func (e *Engine) GenerateAnswer(ctx context.Context, query string, chunks []RetrievedChunk) (string, error) {
	if e.chat == nil {
		return "", fmt.Errorf("chat model is not configured")
	}
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("query is empty")
	}
	answer, err := e.chat.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: answerUserPrompt(query, BuildContext(chunks))},
		},
		Temperature: e.cfg.AnswerTemperature,
		MaxTokens:   e.cfg.AnswerMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation failed: %w", err)
	}
	return answer, nil
}

// AskOptions controls Ask.
type AskOptions struct {
	// TopK is the number of chunks used as context. Zero uses default_top_k,
	// or rerank_top_k when re-ranking.
	TopK   int
	Rerank bool
}

// Answer is the result of Ask.
type Answer struct {
	Text   string
	Chunks []RetrievedChunk
}

// Ask retrieves context for query, optionally re-ranks it and generates an
// answer.
func (e *Engine) Ask(ctx context.Context, query string, opts AskOptions) (*Answer, error) {
	var (
		chunks []RetrievedChunk
		err    error
	)
	if opts.Rerank {
		topK := opts.TopK
		if topK <= 0 {
			topK = e.cfg.RerankTopK
		}
		initial := max(e.cfg.RerankInitialK, topK)
		candidates, err := e.Retrieve(ctx, query, initial)
		if err != nil {
			return nil, err
		}
		chunks, err = e.Rerank(ctx, query, candidates, topK)
		if err != nil {
			return nil, err
		}
	} else {
		chunks, err = e.Retrieve(ctx, query, opts.TopK)
		if err != nil {
			return nil, err
		}
	}

	text, err := e.GenerateAnswer(ctx, query, chunks)
	if err != nil {
		return nil, err
	}
	return &Answer{Text: text, Chunks: chunks}, nil
}
