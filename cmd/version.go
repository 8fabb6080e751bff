package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/config"
	"github.com/kamusis/minirag/internal/embeddings"
	"github.com/kamusis/minirag/internal/index"
)

// Set via -ldflags at release time.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show minirag version, build and index format information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	v, rev := buildVersion()
	fmt.Printf("Version:       %s\n", v)
	fmt.Printf("Commit:        %s\n", orNA(rev))
	fmt.Printf("Build Date:    %s\n", orNA(buildDate))
	fmt.Printf("Go:            %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Printf("Index Format:  v%d (%s + %s)\n", index.FormatVersion, index.VectorFile, index.MetadataFile)

	// Best effort: version must work without a config.
	if cfg, err := config.Load(flagConfigPath); err == nil {
		fmt.Printf("Embeddings:    %s\n", embeddings.ModelID("openai", cfg.EmbeddingModel))
		fmt.Printf("Chat Model:    %s\n", cfg.LLMModel)
	}
	return nil
}

// buildVersion falls back to the module build info for `go install` builds.
func buildVersion() (string, string) {
	v, rev := version, commit
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, rev
	}
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	if rev == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				rev = s.Value
			}
		}
	}
	return v, rev
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
