package main

import (
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := readConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initDocStore(ctx, cfg, false)
	if err != nil {
		return err
	}

	results, err := store.Search(ctx, args[0])
	if err != nil {
		return err
	}

	for _, r := range results {
		cmd.Printf("[%.3f] %s\n%s\n\n", r.Score, r.File, r.Text)
	}
	cmd.Println(FormatCitations(results, cfg.ExcerptLen))

	return nil
}
