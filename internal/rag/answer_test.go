package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kamusis/minirag/internal/llm"
)

func TestBuildContext(t *testing.T) {
	got := BuildContext([]RetrievedChunk{
		{Text: "first text", Source: "a.txt"},
		{Text: "second text", Source: "b.md"},
	})
	want := "[Source: a.txt]\nfirst text\n\n[Source: b.md]\nsecond text"
	if got != want {
		t.Fatalf("unexpected context:\n%q\nwant\n%q", got, want)
	}
	if BuildContext(nil) != "" {
		t.Fatal("expected empty context for no chunks")
	}
}

func TestGenerateAnswer_Prompt(t *testing.T) {
	chat := &fakeChat{reply: func(llm.Request) (string, error) { return "  The answer.  ", nil }}
	e := newTestEngine(t, testConfig(t), &bowEmbedder{}, chat)

	got, err := e.GenerateAnswer(context.Background(), "What is it?", []RetrievedChunk{
		{Text: "It is a thing.", Source: "doc.txt"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got != "  The answer.  " {
		t.Fatalf("reply should be returned as-is, got %q", got)
	}

	req := chat.requests[0]
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleSystem || req.Messages[0].Content != answerSystemPrompt {
		t.Fatalf("unexpected system message: %+v", req.Messages[0])
	}
	wantUser := "Context:\n[Source: doc.txt]\nIt is a thing.\n\nQuestion: What is it?\n\nAnswer:"
	if req.Messages[1].Role != llm.RoleUser || req.Messages[1].Content != wantUser {
		t.Fatalf("unexpected user message:\n%q", req.Messages[1].Content)
	}
	if req.Temperature != 0.7 || req.MaxTokens != 500 {
		t.Fatalf("unexpected generation parameters: %+v", req)
	}
}

func TestGenerateAnswer_Errors(t *testing.T) {
	chat := &fakeChat{reply: func(llm.Request) (string, error) { return "", errors.New("down") }}
	e := newTestEngine(t, testConfig(t), &bowEmbedder{}, chat)
	if _, err := e.GenerateAnswer(context.Background(), "q", nil); err == nil {
		t.Fatal("expected chat failure to propagate")
	}
	if _, err := e.GenerateAnswer(context.Background(), "", nil); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestAsk_WithAndWithoutRerank(t *testing.T) {
	chat := &fakeChat{reply: func(req llm.Request) (string, error) {
		if req.Messages[0].Content == rerankSystemPrompt {
			return "5", nil
		}
		return "answer", nil
	}}
	cfg := testConfig(t)
	cfg.ChunkSize = 100
	cfg.ChunkOverlap = 10
	e := newTestEngine(t, cfg, &bowEmbedder{}, chat)

	if _, err := e.Ask(context.Background(), "alpha1", AskOptions{}); !errors.Is(err, ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady before indexing, got %v", err)
	}
	if _, err := e.Rebuild(context.Background(), twoDocs(), RebuildOptions{}); err != nil {
		t.Fatal(err)
	}

	plain, err := e.Ask(context.Background(), "alpha1", AskOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if plain.Text != "answer" || len(plain.Chunks) != cfg.DefaultTopK {
		t.Fatalf("unexpected plain answer: %q with %d chunks", plain.Text, len(plain.Chunks))
	}

	chat.requests = nil
	ranked, err := e.Ask(context.Background(), "alpha1", AskOptions{Rerank: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked.Chunks) != cfg.RerankTopK {
		t.Fatalf("expected %d re-ranked chunks, got %d", cfg.RerankTopK, len(ranked.Chunks))
	}
	scoring := 0
	for _, r := range chat.requests {
		if r.Messages[0].Content == rerankSystemPrompt {
			scoring++
		}
	}
	if scoring != cfg.RerankInitialK {
		t.Fatalf("expected %d scoring requests, got %d", cfg.RerankInitialK, scoring)
	}
	last := chat.requests[len(chat.requests)-1].Messages[1].Content
	if strings.Count(last, "[Source: ") != cfg.RerankTopK {
		t.Fatalf("answer prompt should carry the re-ranked chunks:\n%s", last)
	}
}
