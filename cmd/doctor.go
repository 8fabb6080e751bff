package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/chunker"
	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/documents"
	"github.com/kamusis/minirag/internal/embeddings"
	"github.com/kamusis/minirag/internal/index"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that minirag's configuration, credentials, documents and index are
usable. Run this command when something seems wrong, or before filing a bug report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("minirag doctor")
	fmt.Println()

	// ── Check 1: config file ─────────────────────────────────────────────────
	fmt.Println("[ config ]")
	cfgPath, err := configPath()
	if err != nil {
		failD("cannot determine config path: %v", err)
	} else if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", fmt.Sprintf("%s not found, using defaults (run 'minirag init' to write one)", cfgPath))
	} else {
		printOK("", fmt.Sprintf("config file: %s", cfgPath))
	}
	cfg, loadErr := config.Load(flagConfigPath)
	if loadErr != nil {
		failD("cannot load config: %v", loadErr)
	} else if err := cfg.Validate(); err != nil {
		failD("invalid config: %v", err)
		loadErr = err
	} else {
		printOK("", configSummary(cfg))
	}
	fmt.Println()

	// ── Check 2: API key ─────────────────────────────────────────────────────
	fmt.Println("[ credentials ]")
	if _, err := config.APIKey(); err != nil {
		failD("%v", err)
	} else {
		printOK("", fmt.Sprintf("%s is set", config.APIKeyEnv))
	}
	fmt.Println()

	if loadErr != nil {
		fmt.Println("[ documents ]")
		printSkip("", "skipped (config not loaded)")
		fmt.Println()
		fmt.Println("[ tokenizer ]")
		printSkip("", "skipped (config not loaded)")
		fmt.Println()
		fmt.Println("[ index ]")
		printSkip("", "skipped (config not loaded)")
		fmt.Println()
		return doctorSummary(false)
	}

	// ── Check 3: documents ───────────────────────────────────────────────────
	fmt.Println("[ documents ]")
	docs, err := documents.LoadDir(cfg.DocumentsDir)
	switch {
	case errors.Is(err, documents.ErrEmptyCorpus):
		printWarn("", fmt.Sprintf("%v; add files with 'minirag add <path>'", err))
	case err != nil:
		failD("%v", err)
	default:
		printOK("", fmt.Sprintf("%d loadable document(s) in %s", len(docs), cfg.DocumentsDir))
	}
	fmt.Println()

	// ── Check 4: tokenizer ───────────────────────────────────────────────────
	fmt.Println("[ tokenizer ]")
	if tok, err := chunker.NewTiktoken(cfg.TokenizerModel); err != nil {
		failD("%v", err)
	} else {
		ch, err := chunker.New(tok, cfg.ChunkSize, cfg.ChunkOverlap)
		if err != nil {
			failD("%v", err)
		} else {
			total := 0
			for _, d := range docs {
				total += ch.CountTokens(d.Content)
			}
			printOK("", fmt.Sprintf("%s encoding ready (%d tokens in corpus)", cfg.TokenizerModel, total))
		}
	}
	fmt.Println()

	// ── Check 5: index ───────────────────────────────────────────────────────
	fmt.Println("[ index ]")
	snap, err := index.Load(cfg.IndexDir)
	switch {
	case err != nil && !hasIndexFiles(cfg.IndexDir):
		printMiss("", fmt.Sprintf("no index yet in %s (run 'minirag index')", cfg.IndexDir))
	case err != nil:
		failD("index in %s is unreadable: %v (run 'minirag index --force')", cfg.IndexDir, err)
	default:
		want := embeddings.ModelID("openai", cfg.EmbeddingModel)
		if snap.Manifest.ModelID != want {
			failD("index built with %s but %s is configured (run 'minirag index --force')", snap.Manifest.ModelID, want)
		} else {
			printOK("", fmt.Sprintf("%d chunks from %d document(s)", snap.Len(), len(snap.Sources())))
		}
	}
	fmt.Println()

	return doctorSummary(allOK)
}

// hasIndexFiles reports whether either index artifact exists in dir.
func hasIndexFiles(dir string) bool {
	for _, name := range []string{index.VectorFile, index.MetadataFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func doctorSummary(allOK bool) error {
	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. minirag is ready to use.")
		return nil
	}
	fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
	return fmt.Errorf("doctor found issues")
}
