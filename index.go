package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avrillon/normrag/state"
)

var (
	indexForce   bool
	indexPrune   bool
	indexWatch   bool
	indexDataDir string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index documents from the data directory",
	Long: `Walks the data directory, parses every supported document and stores its
chunks in the vector database. Unchanged documents are skipped unless --force
is set.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "reindex every document regardless of stored hashes")
	indexCmd.Flags().BoolVar(&indexPrune, "prune", false, "forget documents removed from the data directory")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep running and reindex on file changes")
	indexCmd.Flags().StringVar(&indexDataDir, "data-dir", "", "override the configured data directory")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := readConfig(cfgPath)
	if err != nil {
		return err
	}
	if indexDataDir != "" {
		cfg.DataDir = indexDataDir
	}

	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx := cmd.Context()
	store, err := initDocStore(ctx, cfg, false)
	if err != nil {
		return err
	}

	records, err := state.Open(cfg.StateDB)
	if err != nil {
		return err
	}
	defer records.Close()

	ix := NewIndexer(cfg, logger, store, records)

	opts := Options{Force: indexForce, Prune: indexPrune}
	sum, err := ix.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d, skipped %d, failed %d, pruned %d documents.\n",
		sum.Indexed, sum.Skipped, sum.Failed, sum.Pruned)
	for _, f := range sum.Failures {
		cmd.Printf("  failed: %s: %v\n", f.File, f.Err)
	}

	if !indexWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes...\n", cfg.DataDir)
	return ix.Watch(ctx, Options{Prune: indexPrune})
}
