package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/index"
	"github.com/kamusis/minirag/internal/rag"
)

var (
	flagSearchK        int
	flagSearchRerank   bool
	flagSearchMinScore float64
	flagSearchKeyword  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the chunks most similar to a query",
	Long: `Retrieve the chunks most similar to the query without generating an
answer. With --rerank, rerank_initial_k candidates are scored by the chat
model and the best --k (default rerank_top_k) are shown. With --keyword,
chunks are matched by their words alone and no API call is made.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchK, "k", 0, "Number of results to show (default from config)")
	searchCmd.Flags().BoolVar(&flagSearchRerank, "rerank", false, "Re-rank candidates with the chat model")
	searchCmd.Flags().Float64Var(&flagSearchMinScore, "min-score", 0, "Minimum similarity score to include (without --rerank)")
	searchCmd.Flags().BoolVar(&flagSearchKeyword, "keyword", false, "Keyword search only (offline)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")

	if flagSearchKeyword {
		return runSearchKeyword(cfg, query)
	}

	e, err := loadEngine(cfg, flagSearchRerank)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cfg)
	defer cancel()

	if flagSearchRerank {
		topK := flagSearchK
		if topK <= 0 {
			topK = cfg.RerankTopK
		}
		candidates, err := e.Retrieve(ctx, query, max(cfg.RerankInitialK, topK))
		if err != nil {
			return err
		}
		ranked, err := e.Rerank(ctx, query, candidates, topK)
		if err != nil {
			return err
		}
		printInfo("", fmt.Sprintf("re-ranked %d candidates", len(candidates)))
		writeResults(os.Stdout, ranked, true)
		return nil
	}

	results, err := e.Retrieve(ctx, query, flagSearchK)
	if err != nil {
		return err
	}
	kept := results[:0]
	for _, r := range results {
		if r.Score >= flagSearchMinScore {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		printMiss("", "no chunks matched")
		return nil
	}
	writeResults(os.Stdout, kept, false)
	return nil
}

func runSearchKeyword(cfg *config.Config, query string) error {
	snap, err := index.Load(cfg.IndexDir)
	if rag.IsNotReady(err) {
		return fmt.Errorf("%w (index dir: %s): %w", errNoIndex, cfg.IndexDir, err)
	}
	if err != nil {
		return err
	}
	k := flagSearchK
	if k <= 0 {
		k = cfg.DefaultTopK
	}
	results := rag.KeywordSearch(snap.Entries, query, k)
	if len(results) == 0 {
		printMiss("", "no chunks matched")
		return nil
	}
	writeResults(os.Stdout, results, false)
	return nil
}
