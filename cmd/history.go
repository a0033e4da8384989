package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"urlembed/internal/ui"
)

var (
	flagHistoryLimit int
	flagHistoryJSON  bool
	flagHistoryClear bool
	flagHistoryDrop  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently resolved URLs",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0: all)")
	historyCmd.Flags().BoolVarP(&flagHistoryJSON, "json", "j", false, "Output entries as JSON")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete all history entries")
	historyCmd.Flags().StringVar(&flagHistoryDrop, "remove", "", "Delete the entry for one URL")
}

func historyRun(cmd *cobra.Command, args []string) error {
	if !cfg.History {
		return fmt.Errorf("history is disabled")
	}

	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if flagHistoryClear {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	}

	if flagHistoryDrop != "" {
		return store.Remove(ctx, flagHistoryDrop)
	}

	entries, err := store.Recent(ctx, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if flagHistoryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	fmt.Print(ui.RenderHistory(entries))
	return nil
}
