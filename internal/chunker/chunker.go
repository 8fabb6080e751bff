package chunker

import (
	"fmt"

	"github.com/kamusis/minirag/internal/documents"
)

// Tokenizer converts between text and model token ids.
//
// Decode(Encode(s)) must round-trip, and both must be deterministic.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Chunk is a token-bounded window of one document.
type Chunk struct {
	Text       string
	Source     string
	ChunkID    int
	TokenCount int
	// Offset is the token position of the window within its document.
	Offset int
}

// Chunker slides a fixed-size token window over documents.
type Chunker struct {
	tok     Tokenizer
	size    int
	overlap int
}

// New returns a Chunker emitting windows of size tokens that overlap their
// predecessor by overlap tokens.
func New(tok Tokenizer, size, overlap int) (*Chunker, error) {
	if tok == nil {
		return nil, fmt.Errorf("tokenizer is nil")
	}
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be greater than zero, got %d", size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be zero or greater, got %d", overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, size)
	}
	return &Chunker{tok: tok, size: size, overlap: overlap}, nil
}

// Size returns the window length in tokens.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of tokens shared by neighbouring windows.
func (c *Chunker) Overlap() int { return c.overlap }

// CountTokens returns the number of tokens in text.
func (c *Chunker) CountTokens(text string) int {
	return len(c.tok.Encode(text))
}

// Chunk splits docs into chunks. ChunkIDs increase across all documents of
// the call starting at zero; no chunk spans two documents. A document with no
// tokens produces no chunks.
func (c *Chunker) Chunk(docs []documents.Document) []Chunk {
	var out []Chunk
	id := 0
	stride := c.size - c.overlap
	for _, d := range docs {
		tokens := c.tok.Encode(d.Content)
		total := len(tokens)
		for start := 0; start < total; start += stride {
			end := min(start+c.size, total)
			window := tokens[start:end]
			out = append(out, Chunk{
				Text:       c.tok.Decode(window),
				Source:     d.Filename,
				ChunkID:    id,
				TokenCount: len(window),
				Offset:     start,
			})
			id++
		}
	}
	return out
}
