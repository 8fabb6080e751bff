package cmd

import (
	"fmt"
	"strings"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"

	"github.com/kamusis/minirag/internal/rag"
)

var (
	flagAskK      int
	flagAskRerank bool
	flagAskDebug  bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().IntVar(&flagAskK, "k", 0, "Number of chunks used as context (default from config)")
	askCmd.Flags().BoolVar(&flagAskRerank, "rerank", false, "Re-rank retrieved chunks with the chat model (slower, better quality)")
	askCmd.Flags().BoolVar(&flagAskDebug, "debug", false, "Dump the retrieved chunks")
	rootCmd.AddCommand(askCmd)
}

func runAsk(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")

	e, err := loadEngine(cfg, true)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cfg)
	defer cancel()

	answer, err := e.Ask(ctx, query, rag.AskOptions{TopK: flagAskK, Rerank: flagAskRerank})
	if err != nil {
		return err
	}
	if flagAskDebug {
		pp.Println(answer.Chunks)
	}

	printSection("Answer")
	fmt.Println(strings.TrimSpace(answer.Text))

	printSection("Sources")
	if flagAskRerank {
		printInfo("", "re-ranking applied")
	}
	for i, c := range answer.Chunks {
		score := fmt.Sprintf("score %.3f", c.Score)
		if flagAskRerank {
			score = fmt.Sprintf("relevance %.1f, similarity %.3f", c.Score, c.OriginalScore)
		}
		fmt.Printf("  %d. %s (%s)\n", i+1, c.Source, score)
		fmt.Printf("     %s\n", preview(c.Text, 150))
	}
	return nil
}
