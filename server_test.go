package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrillon/normrag/docstore"
)

type fakeRetriever struct {
	results []docstore.SearchResult
	err     error
}

func (f *fakeRetriever) Search(_ context.Context, _ string) ([]docstore.SearchResult, error) {
	return f.results, f.err
}

func searchRequest(query string) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = "search_documents"
	req.Params.Arguments = map[string]any{"query": query}
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func Test_searchHandler(t *testing.T) {
	retriever := &fakeRetriever{results: []docstore.SearchResult{
		{Text: "annual leave is 25 days", File: "docs/leave.pdf", Category: "HR", Locations: []string{"Page 2"}, Score: 0.9},
	}}

	var logBuf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := searchHandler(retriever, log, 200)
	res, err := handler(context.Background(), searchRequest("leave policy"))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, `"file":"docs/leave.pdf"`)
	assert.Contains(t, text, `"locations":["Page 2"]`)
	assert.Contains(t, text, "1. leave.pdf (HR)")

	assert.Contains(t, logBuf.String(), "leave policy")
}

func Test_searchHandler_RetrieverError(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("collection unavailable")}

	var logBuf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := searchHandler(retriever, log, 200)
	res, err := handler(context.Background(), searchRequest("leave policy"))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	assert.Contains(t, logBuf.String(), "search failed")
	assert.Contains(t, logBuf.String(), "collection unavailable")
}

func Test_searchHandler_MissingQuery(t *testing.T) {
	var req mcp.CallToolRequest
	req.Params.Name = "search_documents"

	handler := searchHandler(&fakeRetriever{}, slog.New(slog.DiscardHandler), 200)
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
