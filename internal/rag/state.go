package rag

import (
	"errors"

	"github.com/kamusis/minirag/internal/index"
)

// ErrIndexNotReady is returned by query operations while no index is loaded.
var ErrIndexNotReady = errors.New("index not ready")

// State is the engine's index state: Unloaded or Loaded.
type State interface {
	isState()
}

// Unloaded means no index is available for queries.
type Unloaded struct{}

// Loaded holds the snapshot queries run against.
type Loaded struct {
	Snapshot *index.Snapshot
}

func (Unloaded) isState() {}
func (Loaded) isState()   {}

// RetrievedChunk is one query result. After re-ranking Score holds the
// relevance score and OriginalScore the similarity it replaced.
type RetrievedChunk struct {
	Text          string
	Source        string
	ChunkID       int
	Score         float64
	OriginalScore float64
}
