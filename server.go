package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/avrillon/normrag/docstore"
)

type docRetriever interface {
	Search(ctx context.Context, query string) ([]docstore.SearchResult, error)
}

// NewRagServer exposes document search as an MCP tool. Results carry one JSON
// line per matched chunk followed by the rendered source citations.
func NewRagServer(retriever docRetriever, log *slog.Logger, excerptLen int) *server.MCPServer {
	tool := mcp.NewTool("search_documents",
		mcp.WithDescription("Searches the indexed ISO/HR document base and returns matching passages with source citations"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		))

	srv := server.NewMCPServer("normrag", "0.1.0", server.WithToolCapabilities(false))
	srv.AddTool(tool, searchHandler(retriever, log, excerptLen))

	return srv
}

func searchHandler(retriever docRetriever, log *slog.Logger, excerptLen int) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		res, err := retriever.Search(ctx, q)
		if err != nil {
			log.Error("search failed", "query", q, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		log.Info("search", "query", q, "results", len(res))

		var b strings.Builder
		for _, r := range res {
			raw, err := json.Marshal(struct {
				Score     float32  `json:"score"`
				File      string   `json:"file"`
				Category  string   `json:"category"`
				Locations []string `json:"locations"`
				Text      string   `json:"text"`
			}{
				Score:     r.Score,
				File:      r.File,
				Category:  r.Category,
				Locations: r.Locations,
				Text:      r.Text,
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			fmt.Fprintf(&b, "%s\n", string(raw))
		}

		b.WriteString("\n")
		b.WriteString(FormatCitations(res, excerptLen))

		return mcp.NewToolResultText(b.String()), nil
	}
}
