package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/documents"
	"github.com/kamusis/minirag/internal/rag"
)

var (
	flagIndexForce  bool
	flagIndexWatch  bool
	flagIndexVerify string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the documents directory",
	Long: `Chunk every document in the documents directory, embed the chunks and
install the new index. The previous index stays in place if anything fails.

Chunks whose text is unchanged reuse their stored vectors unless --force is
given. With --watch, the index is rebuilt whenever a document changes.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "Re-embed every chunk instead of reusing unchanged ones")
	indexCmd.Flags().BoolVar(&flagIndexWatch, "watch", false, "Keep running and rebuild when documents change")
	indexCmd.Flags().StringVar(&flagIndexVerify, "verify", "", "Run a test query against the new index")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, err := newEngine(cfg, false)
	if err != nil {
		return err
	}
	if !flagIndexForce && e.LoadIndex() {
		printInfo("", "existing index loaded; unchanged chunks will be reused")
	}

	ctx, stop := buildContext(context.Background())
	defer stop()

	if err := buildIndex(ctx, cfg, e, flagIndexForce); err != nil {
		if !flagIndexWatch {
			return err
		}
		printErr("", err.Error())
	}
	if !flagIndexWatch {
		return nil
	}
	return watchAndRebuild(ctx, cfg, e)
}

// buildIndex runs one full load → chunk → embed → save cycle.
func buildIndex(ctx context.Context, cfg *config.Config, e *rag.Engine, force bool) error {
	printSection("Index")

	docs, err := documents.LoadDir(cfg.DocumentsDir)
	if err != nil {
		if errors.Is(err, documents.ErrEmptyCorpus) {
			return fmt.Errorf("%w\nAdd files with 'minirag add <path>'.", err)
		}
		return err
	}
	printOK("", fmt.Sprintf("loaded %d document(s) from %s", len(docs), cfg.DocumentsDir))

	printInfo("", fmt.Sprintf("chunking (%d/%d tokens) and embedding with %s", cfg.ChunkSize, cfg.ChunkOverlap, cfg.EmbeddingModel))
	snap, err := e.Rebuild(ctx, docs, rag.RebuildOptions{Force: force})
	if err != nil {
		return err
	}

	printBullet("Chunks per document:")
	for _, sc := range countBySource(snap.Entries) {
		fmt.Printf("  -  %s: %d\n", sc.Source, sc.Chunks)
	}
	fmt.Println()
	printOK("", fmt.Sprintf("index written: %s (%d chunks, dim %d)", cfg.IndexDir, snap.Len(), snap.Manifest.Dim))

	if flagIndexVerify != "" {
		results, err := e.Retrieve(ctx, flagIndexVerify, 3)
		if err != nil {
			return fmt.Errorf("verification query failed: %w", err)
		}
		printBullet(fmt.Sprintf("Test query %q:", flagIndexVerify))
		writeResults(os.Stdout, results, false)
	}
	return nil
}

func watchAndRebuild(ctx context.Context, cfg *config.Config, e *rag.Engine) error {
	w, err := documents.NewWatcher(0)
	if err != nil {
		return err
	}
	defer w.Close()

	changes, err := w.Watch(ctx, cfg.DocumentsDir)
	if err != nil {
		return err
	}
	fmt.Println()
	printInfo("", fmt.Sprintf("watching %s for changes (Ctrl-C to stop)", cfg.DocumentsDir))

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			printInfo("", "stopped watching")
			return nil
		case ch, ok := <-changes:
			if !ok {
				return nil
			}
			printInfo("", fmt.Sprintf("%d file(s) changed, rebuilding", len(ch.Paths)))
			if err := buildIndex(ctx, cfg, e, false); err != nil {
				printErr("", err.Error())
			}
		}
	}
}
