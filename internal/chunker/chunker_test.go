package chunker

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/kamusis/minirag/internal/documents"
)

// wordTokenizer maps each whitespace-separated word "wN" to token N.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string) []int {
	fields := strings.Fields(text)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimPrefix(f, "w"))
		if err != nil {
			n = -1
		}
		out = append(out, n)
	}
	return out
}

func (wordTokenizer) Decode(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = fmt.Sprintf("w%d", t)
	}
	return strings.Join(parts, " ")
}

func words(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", from+i)
	}
	return strings.Join(parts, " ")
}

func TestNew_RejectsBadWindow(t *testing.T) {
	cases := []struct{ size, overlap int }{
		{0, 0},
		{-1, 0},
		{10, -1},
		{10, 10},
		{10, 11},
	}
	for _, tc := range cases {
		if _, err := New(wordTokenizer{}, tc.size, tc.overlap); err == nil {
			t.Fatalf("expected error for size=%d overlap=%d", tc.size, tc.overlap)
		}
	}
	if _, err := New(nil, 10, 1); err == nil {
		t.Fatal("expected error for nil tokenizer")
	}
}

func TestChunk_TwoThousandTokenCorpus(t *testing.T) {
	c, err := New(wordTokenizer{}, 400, 50)
	if err != nil {
		t.Fatal(err)
	}
	docs := []documents.Document{
		{Filename: "one.txt", Content: words(0, 1000)},
		{Filename: "two.txt", Content: words(5000, 1000)},
	}

	chunks := c.Chunk(docs)
	if len(chunks) != 6 {
		t.Fatalf("expected 6 chunks, got %d", len(chunks))
	}
	wantOffsets := []int{0, 350, 700, 0, 350, 700}
	wantCounts := []int{400, 400, 300, 400, 400, 300}
	for i, ch := range chunks {
		if ch.ChunkID != i {
			t.Fatalf("chunk %d has id %d", i, ch.ChunkID)
		}
		if ch.Offset != wantOffsets[i] {
			t.Fatalf("chunk %d offset = %d, want %d", i, ch.Offset, wantOffsets[i])
		}
		if ch.TokenCount != wantCounts[i] {
			t.Fatalf("chunk %d token count = %d, want %d", i, ch.TokenCount, wantCounts[i])
		}
		wantSource := "one.txt"
		if i >= 3 {
			wantSource = "two.txt"
		}
		if ch.Source != wantSource {
			t.Fatalf("chunk %d source = %q, want %q", i, ch.Source, wantSource)
		}
	}
	if chunks[1].Text != words(350, 400) {
		t.Fatalf("unexpected text for chunk 1")
	}
}

func TestChunk_TokenSumMatchesWindowFormula(t *testing.T) {
	c, err := New(wordTokenizer{}, 100, 20)
	if err != nil {
		t.Fatal(err)
	}
	for _, total := range []int{1, 80, 100, 101, 180, 181, 555, 1000} {
		chunks := c.Chunk([]documents.Document{{Filename: "d", Content: words(0, total)}})
		sum := 0
		for _, ch := range chunks {
			if ch.TokenCount > c.Size() {
				t.Fatalf("total=%d: chunk exceeds size: %d", total, ch.TokenCount)
			}
			sum += ch.TokenCount
		}
		want := total + c.Overlap()*(len(chunks)-1)
		if sum != want {
			t.Fatalf("total=%d: token sum %d, want %d (%d chunks)", total, sum, want, len(chunks))
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c, err := New(wordTokenizer{}, 64, 8)
	if err != nil {
		t.Fatal(err)
	}
	docs := []documents.Document{
		{Filename: "a", Content: words(0, 300)},
		{Filename: "b", Content: words(900, 77)},
	}
	first := c.Chunk(docs)
	second := c.Chunk(docs)
	if len(first) != len(second) {
		t.Fatalf("chunk count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestChunk_EmptyDocument(t *testing.T) {
	c, err := New(wordTokenizer{}, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	chunks := c.Chunk([]documents.Document{
		{Filename: "empty", Content: "   "},
		{Filename: "full", Content: words(0, 5)},
	})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Source != "full" || chunks[0].ChunkID != 0 {
		t.Fatalf("unexpected chunk: %+v", chunks[0])
	}
}
