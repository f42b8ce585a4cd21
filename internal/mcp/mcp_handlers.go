package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/benchtrack/core"
	"github.com/huangsam/benchtrack/core/agg"
	"github.com/huangsam/benchtrack/core/algo"
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.HistoryStore
}

// historySummary is the payload of get_history_summary.
type historySummary struct {
	Status schema.HistoryStatus `json:"status"`
	Latest *schema.RunReport    `json:"latest,omitempty"`
}

// signedRankResult is the payload of signed_rank_test.
type signedRankResult struct {
	Significant bool    `json:"significant"`
	N           int     `json:"n"`
	W           float64 `json:"w"`
	Z           float64 `json:"z,omitempty"`
	PValue      float64 `json:"p_value,omitempty"`
	Alpha       float64 `json:"alpha,omitempty"`
	Baseline    float64 `json:"baseline_mean"`
	Current     float64 `json:"current_mean"`
	Change      float64 `json:"percent_change,omitempty"`
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetHistorySummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.store.Status()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get history status: %v", err)), nil
	}
	entries, err := h.store.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load history: %v", err)), nil
	}

	summary := historySummary{Status: status}
	if n := len(entries); n > 0 {
		var base *schema.HistoryEntry
		if n > 1 {
			base = &entries[n-2]
		}
		report := core.CompareEntries(base, entries[n-1])
		summary.Latest = &report
	}
	return jsonResult(summary), nil
}

func (h *toolHandler) handleCompareRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseIdx := request.GetInt("base_index", -2)
	targetIdx := request.GetInt("target_index", -1)

	report, err := core.CompareHistory(ctx, h.store, baseIdx, targetIdx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

func (h *toolHandler) handleSignedRankTest(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	baseline, err := floatsArg(args, "baseline")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	current, err := floatsArg(args, "current")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}

	sig, err := algo.SignedRankTest(baseline, current)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("signed-rank test failed: %v", err)), nil
	}

	baseStats, err := agg.Aggregate(baseline)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	currentStats, err := agg.Aggregate(current)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := signedRankResult{
		Significant: sig.Significant(),
		N:           sig.N,
		W:           sig.W,
		Z:           sig.Z,
		PValue:      sig.PValue,
		Alpha:       sig.Alpha,
		Baseline:    baseStats.Mean,
		Current:     currentStats.Mean,
	}
	if change := core.PercentChange(result.Baseline, result.Current); change != nil {
		result.Change = *change
	}
	return jsonResult(result), nil
}

// floatsArg reads a required, non-empty array of numbers.
func floatsArg(args map[string]any, name string) ([]float64, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is required", name)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an array of numbers", name)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s must not be empty", name)
	}
	values := make([]float64, len(list))
	for i, v := range list {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not a number", name, i)
		}
		values[i] = f
	}
	return values, nil
}
