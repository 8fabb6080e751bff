package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/logging"
)

var flagConfigPath string

var rootCmd = &cobra.Command{
	Use:          "minirag",
	Short:        "minirag — ask questions about your own documents",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `minirag indexes a directory of text, Markdown and PDF documents into a
local vector index and answers questions from it with an OpenAI model.

Typical flow:
  minirag init
  minirag add ~/handbook
  minirag index
  minirag ask "What is the vacation policy?"`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default ~/.minirag/config.yaml)")
}

// loadConfig resolves and validates the effective config and routes logging
// to its log file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'minirag init' first.", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logging.Init(cfg.LogFile); err != nil {
		printWarn("", fmt.Sprintf("cannot open log file %s: %v", cfg.LogFile, err))
	}
	return cfg, nil
}

// configPath returns the config file path in effect.
func configPath() (string, error) {
	if flagConfigPath != "" {
		return flagConfigPath, nil
	}
	return config.ConfigPath()
}

// Execute is called by main.go.
func Execute() {
	err := rootCmd.Execute()
	_ = logging.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
