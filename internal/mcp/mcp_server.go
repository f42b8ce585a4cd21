// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the benchtrack MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.HistoryStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Benchtrack History Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
	}

	// --- 1. Tool: get_history_summary ---
	s.AddTool(mcp.NewTool("get_history_summary",
		mcp.WithDescription("Describe the benchmark history store and compare the latest run with the one before it."),
	), h.handleGetHistorySummary)

	// --- 2. Tool: compare_runs ---
	s.AddTool(mcp.NewTool("compare_runs",
		mcp.WithDescription("Compare two recorded benchmark runs. Negative indexes count from the most recent run."),
		mcp.WithNumber("base_index", mcp.Description("Index of the baseline run. Defaults to -2, the run before the latest.")),
		mcp.WithNumber("target_index", mcp.Description("Index of the run to compare. Defaults to -1, the latest run.")),
	), h.handleCompareRuns)

	// --- 3. Tool: signed_rank_test ---
	s.AddTool(mcp.NewTool("signed_rank_test",
		mcp.WithDescription("Run the Wilcoxon signed-rank test on two paired sample sequences of equal length."),
		mcp.WithArray("baseline", mcp.Description("Baseline timing samples in seconds."), mcp.Required(), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithArray("current", mcp.Description("Current timing samples in seconds, paired by index."), mcp.Required(), mcp.Items(map[string]any{"type": "number"})),
	), h.handleSignedRankTest)

	return s
}

// StartMCPServer starts the benchtrack MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.HistoryStore) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
