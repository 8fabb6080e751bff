// Package rag ties chunking, embeddings, the vector index and the chat model
// into a retrieval-augmented question answering engine.
package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kamusis/minirag/internal/chunker"
	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/documents"
	"github.com/kamusis/minirag/internal/embeddings"
	"github.com/kamusis/minirag/internal/index"
	"github.com/kamusis/minirag/internal/llm"
	"github.com/kamusis/minirag/internal/logging"
)

// LockTimeout bounds how long SaveIndex waits for another writer.
const LockTimeout = 10 * time.Second

// Options wires an Engine. Chat may be nil when only indexing and retrieval
// are needed.
type Options struct {
	Config   *config.Config
	Chunker  *chunker.Chunker
	Embedder embeddings.Provider
	Chat     llm.Chat
}

// Engine owns the current index state and runs build and query operations.
type Engine struct {
	cfg      *config.Config
	chunker  *chunker.Chunker
	embedder embeddings.Provider
	chat     llm.Chat

	mu    sync.Mutex
	state State
}

// New returns an Engine in the Unloaded state.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if opts.Chunker == nil {
		return nil, fmt.Errorf("chunker is nil")
	}
	if opts.Embedder == nil {
		return nil, fmt.Errorf("embeddings provider is nil")
	}
	return &Engine{
		cfg:      opts.Config,
		chunker:  opts.Chunker,
		embedder: opts.Embedder,
		chat:     opts.Chat,
		state:    Unloaded{},
	}, nil
}

// State returns the current index state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) snapshot() (*index.Snapshot, error) {
	if l, ok := e.State().(Loaded); ok && l.Snapshot != nil {
		return l.Snapshot, nil
	}
	return nil, ErrIndexNotReady
}

// Use installs snap for queries. A nil snapshot unloads the engine.
func (e *Engine) Use(snap *index.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if snap == nil {
		e.state = Unloaded{}
		return
	}
	e.state = Loaded{Snapshot: snap}
}

// LoadIndex loads the persisted index from the configured directory and
// installs it. It reports false, leaving the engine Unloaded, when no usable
// index exists or it was built with a different embedding model.
func (e *Engine) LoadIndex() bool {
	snap, err := index.Load(e.cfg.IndexDir)
	if err != nil {
		logging.LogWarn("cannot load index from %s: %v", e.cfg.IndexDir, err)
		e.Use(nil)
		return false
	}
	if err := e.checkCompatible(snap.Manifest); err != nil {
		logging.LogWarn("index in %s is unusable: %v", e.cfg.IndexDir, err)
		e.Use(nil)
		return false
	}
	e.Use(snap)
	logging.LogEvent("loaded index from %s: %d chunks, model %s", e.cfg.IndexDir, snap.Len(), snap.Manifest.ModelID)
	return true
}

func (e *Engine) checkCompatible(m index.Manifest) error {
	if m.ModelID != e.embedder.ModelID() {
		return fmt.Errorf("index built with %s but %s is configured", m.ModelID, e.embedder.ModelID())
	}
	if want := e.cfg.EmbeddingDimension; want > 0 && m.Dim != want {
		return fmt.Errorf("index dimension %d does not match configured %d", m.Dim, want)
	}
	return nil
}

// CreateIndex embeds every chunk and returns a new snapshot. Nothing is
// installed or persisted.
func (e *Engine) CreateIndex(ctx context.Context, chunks []chunker.Chunk) (*index.Snapshot, error) {
	return e.createIndex(ctx, chunks, nil)
}

// createIndex embeds chunks, taking vectors from reuse for chunk texts whose
// hash it contains.
func (e *Engine) createIndex(ctx context.Context, chunks []chunker.Chunk, reuse map[string][]float32) (*index.Snapshot, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index: %w", documents.ErrEmptyCorpus)
	}

	entries := make([]index.Entry, len(chunks))
	vectors := make([][]float32, len(chunks))
	var (
		pending []string
		slots   []int
	)
	for i, c := range chunks {
		h := index.TextHash(c.Text)
		entries[i] = index.Entry{Text: c.Text, Source: c.Source, ChunkID: c.ChunkID, TextHash: h}
		if v, ok := reuse[h]; ok {
			vectors[i] = v
			continue
		}
		pending = append(pending, c.Text)
		slots = append(slots, i)
	}

	if len(pending) > 0 {
		embedded, err := embeddings.EmbedAll(ctx, e.embedder, pending, e.cfg.EmbeddingBatchSize)
		if err != nil {
			return nil, err
		}
		for j, v := range embedded {
			vectors[slots[j]] = v
		}
	}
	logging.LogEvent("embedded %d chunks, reused %d", len(pending), len(chunks)-len(pending))

	dim := len(vectors[0])
	if want := e.cfg.EmbeddingDimension; want > 0 && dim != want {
		return nil, fmt.Errorf("embedding dimension %d does not match configured %d", dim, want)
	}
	flat, err := index.NewFlat(dim)
	if err != nil {
		return nil, err
	}
	if err := flat.Add(vectors); err != nil {
		return nil, err
	}
	return index.NewSnapshot(e.embedder.ModelID(), flat, entries)
}

// SaveIndex persists snap to the configured directory.
func (e *Engine) SaveIndex(snap *index.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if err := index.Save(e.cfg.IndexDir, snap, LockTimeout); err != nil {
		return err
	}
	logging.LogEvent("saved index to %s: %d chunks", e.cfg.IndexDir, snap.Len())
	return nil
}

// RebuildOptions controls Rebuild.
type RebuildOptions struct {
	// Force re-embeds every chunk instead of reusing vectors of unchanged
	// chunks from the loaded index.
	Force bool
}

// Rebuild chunks docs, creates and saves a new index and installs it. On
// failure nothing is installed or persisted and the previous state stays.
func (e *Engine) Rebuild(ctx context.Context, docs []documents.Document, opts RebuildOptions) (*index.Snapshot, error) {
	chunks := e.chunker.Chunk(docs)
	if len(chunks) == 0 {
		return nil, documents.ErrEmptyCorpus
	}

	var reuse map[string][]float32
	if !opts.Force {
		if prev, err := e.snapshot(); err == nil && prev.Manifest.ModelID == e.embedder.ModelID() {
			reuse = prev.VectorsByHash()
		}
	}

	snap, err := e.createIndex(ctx, chunks, reuse)
	if err != nil {
		return nil, fmt.Errorf("index build failed: %w", err)
	}
	if err := e.SaveIndex(snap); err != nil {
		return nil, err
	}
	e.Use(snap)
	return snap, nil
}

// IsNotReady reports whether err means no index is loaded or persisted.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrIndexNotReady) || errors.Is(err, index.ErrNotFound)
}
