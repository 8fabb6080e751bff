package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/kamusis/minirag/internal/index"
	"github.com/kamusis/minirag/internal/rag"
)

// sourceCount is the number of chunks produced from one document.
type sourceCount struct {
	Source string
	Chunks int
}

// countBySource groups index entries by source, sorted by source name.
func countBySource(entries []index.Entry) []sourceCount {
	counts := map[string]int{}
	for _, c := range entries {
		counts[c.Source]++
	}
	out := make([]sourceCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, sourceCount{Source: s, Chunks: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// preview collapses whitespace in text and truncates it to n runes.
func preview(text string, n int) string {
	s := strings.Join(strings.Fields(text), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// writeResults prints retrieved chunks as a table. When reranked, both the
// relevance and the original similarity are shown.
func writeResults(w io.Writer, chunks []rag.RetrievedChunk, reranked bool) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if reranked {
		fmt.Fprintln(tw, "#\tRELEVANCE\tSIMILARITY\tSOURCE\tCHUNK\tPREVIEW")
	} else {
		fmt.Fprintln(tw, "#\tSCORE\tSOURCE\tCHUNK\tPREVIEW")
	}
	for i, c := range chunks {
		if reranked {
			fmt.Fprintf(tw, "%d\t%.1f\t%.3f\t%s\t%d\t%s\n", i+1, c.Score, c.OriginalScore, c.Source, c.ChunkID, preview(c.Text, 60))
		} else {
			fmt.Fprintf(tw, "%d\t%.3f\t%s\t%d\t%s\n", i+1, c.Score, c.Source, c.ChunkID, preview(c.Text, 60))
		}
	}
	_ = tw.Flush()
}
