package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/documents"
	"github.com/kamusis/minirag/internal/embeddings"
	"github.com/kamusis/minirag/internal/index"
	"github.com/kamusis/minirag/internal/rag"
)

var flagStatusDebug bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the documents directory and index state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagStatusDebug, "debug", false, "Dump the effective configuration")
	rootCmd.AddCommand(statusCmd)
}

// docFile is a supported file in the documents directory.
type docFile struct {
	Name    string
	ModTime time.Time
}

// listDocuments returns the supported files directly under dir, sorted by name.
func listDocuments(dir string) ([]docFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []docFile
	for _, e := range entries {
		if e.IsDir() || !documents.IsSupported(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, docFile{Name: e.Name(), ModTime: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// changedSince returns the files modified after t, compared at the
// one-second precision of the index header.
func changedSince(files []docFile, t time.Time) []string {
	var out []string
	for _, f := range files {
		if f.ModTime.Truncate(time.Second).After(t) {
			out = append(out, f.Name)
		}
	}
	return out
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagStatusDebug {
		pp.Println(cfg)
	}

	fmt.Println("=== Documents ===")
	files, docErr := listDocuments(cfg.DocumentsDir)
	switch {
	case os.IsNotExist(docErr):
		printMiss("", fmt.Sprintf("documents directory not found: %s (run 'minirag init')", cfg.DocumentsDir))
	case docErr != nil:
		printErr("", fmt.Sprintf("cannot list %s: %v", cfg.DocumentsDir, docErr))
	case len(files) == 0:
		printMiss("", fmt.Sprintf("no documents in %s (run 'minirag add <path>')", cfg.DocumentsDir))
	default:
		printOK("", fmt.Sprintf("%d document(s) in %s", len(files), cfg.DocumentsDir))
		for _, f := range files {
			fmt.Printf("     %s\n", f.Name)
		}
	}

	fmt.Println("\n=== Index ===")
	m, err := index.ReadManifest(cfg.IndexDir)
	if err != nil {
		if rag.IsNotReady(err) {
			printMiss("", fmt.Sprintf("no index yet in %s (run 'minirag index')", cfg.IndexDir))
			return nil
		}
		return err
	}
	printOK("", fmt.Sprintf("%d chunks, dim %d, built %s", m.Count, m.Dim, m.CreatedAt.Local().Format(time.DateTime)))
	printInfo("", fmt.Sprintf("location: %s", filepath.Join(cfg.IndexDir, index.VectorFile)))

	want := embeddings.ModelID("openai", cfg.EmbeddingModel)
	if m.ModelID != want {
		printWarn("", fmt.Sprintf("built with %s but %s is configured; run 'minirag index --force'", m.ModelID, want))
	} else {
		printOK("", fmt.Sprintf("embedding model: %s", m.ModelID))
	}

	if docErr == nil {
		if stale := changedSince(files, m.CreatedAt); len(stale) > 0 {
			printWarn("", fmt.Sprintf("%d document(s) changed since the index was built; run 'minirag index'", len(stale)))
			for _, s := range stale {
				fmt.Printf("     %s\n", s)
			}
		} else {
			printSkip("", "index is up to date with the documents directory")
		}
	}
	return nil
}

// configSummary is a one-line description of the chunking setup.
func configSummary(cfg *config.Config) string {
	return fmt.Sprintf("chunks of %d tokens (%d overlap), top-k %d, rerank %d of %d",
		cfg.ChunkSize, cfg.ChunkOverlap, cfg.DefaultTopK, cfg.RerankTopK, cfg.RerankInitialK)
}
