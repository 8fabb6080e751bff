package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the minirag config, documents directory and .env template",
	Long: `Initialize minirag under ~/.minirag/.

Writes config.yaml with defaults (unless it exists), an .env template for
OPENAI_API_KEY, and creates the documents directory. Existing files are
never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.minirag directory ───────────────────────────────────────
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfgPath, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("minirag directory ready: %s", dir))

	// ── 2. Write config.yaml if missing ──────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg, cfgPath); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 3. .env template ─────────────────────────────────────────────────────
	envPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(envPath); os.IsNotExist(statErr) {
		if err := config.EnsureDotEnvTemplate(); err != nil {
			return err
		}
		printOK("", fmt.Sprintf(".env template written: %s (fill in %s)", envPath, config.APIKeyEnv))
	} else {
		printSkip("", fmt.Sprintf(".env already exists: %s", envPath))
	}

	// ── 4. Documents directory from the final config ─────────────────────────
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DocumentsDir, 0o755); err != nil {
		return fmt.Errorf("cannot create documents directory %s: %w", cfg.DocumentsDir, err)
	}
	printOK("", fmt.Sprintf("Documents directory ready: %s", cfg.DocumentsDir))

	fmt.Println()
	fmt.Println("  Next steps:")
	fmt.Println("    minirag add <file-or-dir>   copy documents in")
	fmt.Println("    minirag index               build the vector index")
	fmt.Println("    minirag ask \"<question>\"    ask about them")
	return nil
}
