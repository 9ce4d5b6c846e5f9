package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var serveReset bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve document search over MCP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveReset, "reset", false, "reinitialize the collection from scratch")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := readConfig(cfgPath)
	if err != nil {
		return err
	}

	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	store, err := initDocStore(cmd.Context(), cfg, serveReset)
	if err != nil {
		return err
	}

	srv := NewRagServer(store, logger, cfg.ExcerptLen)
	sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))

	cmd.Printf("Serving on %s\n", cfg.ServerAddr)
	return sse.Start(cfg.ServerAddr)
}
