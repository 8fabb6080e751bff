package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kamusis/minirag/internal/chunker"
	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/embeddings"
	"github.com/kamusis/minirag/internal/llm"
	"github.com/kamusis/minirag/internal/rag"
)

// newEngine wires a rag.Engine from cfg. The chat client is only built when
// withChat is set so indexing works without touching the chat model.
func newEngine(cfg *config.Config, withChat bool) (*rag.Engine, error) {
	tok, err := chunker.NewTiktoken(cfg.TokenizerModel)
	if err != nil {
		return nil, err
	}
	ch, err := chunker.New(tok, cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	embCfg, err := embeddings.LoadConfig(cfg)
	if err != nil {
		return nil, err
	}
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return nil, err
	}

	var chat llm.Chat
	if withChat {
		chatCfg, err := llm.LoadConfig(cfg)
		if err != nil {
			return nil, err
		}
		chat, err = llm.NewOpenAI(chatCfg)
		if err != nil {
			return nil, err
		}
	}

	return rag.New(rag.Options{Config: cfg, Chunker: ch, Embedder: prov, Chat: chat})
}

// errNoIndex is reported when a query runs before any index exists.
var errNoIndex = errors.New("no index yet; run 'minirag index' first")

// loadEngine builds an engine and loads the persisted index.
func loadEngine(cfg *config.Config, withChat bool) (*rag.Engine, error) {
	e, err := newEngine(cfg, withChat)
	if err != nil {
		return nil, err
	}
	if !e.LoadIndex() {
		return nil, fmt.Errorf("%w (index dir: %s)", errNoIndex, cfg.IndexDir)
	}
	return e, nil
}

// commandContext returns a context bounded by request_timeout, for commands
// that make a handful of requests.
func commandContext(cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.RequestTimeout)
}

// buildContext returns a context for index builds. It has no overall
// deadline and is cancelled on SIGINT or SIGTERM; each embeddings request is
// still bounded by request_timeout in the client.
func buildContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
