package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/documents"
)

var addCmd = &cobra.Command{
	Use:   "add <file-or-dir>...",
	Short: "Copy documents into the documents directory",
	Long: `Copy .txt, .md and .pdf files into the configured documents directory.

Directories are walked recursively and flattened. An identical file already
present is skipped; a different file with the same name is stored as
<name>.conflict-<source-dir><ext>. Run 'minirag index' afterwards.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	printSection("Add documents")
	var imported, failed int
	for _, src := range args {
		res, err := documents.Import(src, cfg.DocumentsDir, importTag(src))
		if err != nil {
			printErr(src, err.Error())
			failed++
			continue
		}
		for _, name := range res.Imported {
			printOK("", name)
		}
		for _, c := range res.Conflicts {
			printWarn("", fmt.Sprintf("%s exists with different content, stored as %s", filepath.Base(c.Existing), filepath.Base(c.Stored)))
		}
		if res.Skipped > 0 {
			printSkip(src, fmt.Sprintf("%d identical file(s) already present", res.Skipped))
		}
		if res.Unsupported > 0 {
			printSkip(src, fmt.Sprintf("%d unsupported file(s) ignored", res.Unsupported))
		}
		imported += len(res.Imported) + len(res.Conflicts)
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d source(s) could not be imported", failed)
	}
	if imported > 0 {
		printInfo("", "run 'minirag index' to update the index")
	}
	return nil
}

// importTag names the origin of src for conflict file names: the directory
// itself, or the parent directory of a single file.
func importTag(src string) string {
	p := filepath.Clean(src)
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		p = filepath.Dir(p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Base(p)
}
