package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/readmill/readmill-api/client"
)

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError reports a client failure with its kind so the model can tell a
// bad argument from an unreachable service.
func toolError(action string, err error) *mcp.CallToolResult {
	kind := "error"
	if k := client.KindOf(err); k != 0 {
		kind = k.String()
	}
	msg := fmt.Sprintf("%s failed (%s): %v", action, kind, err)
	if client.IsRetryable(err) {
		msg += " (retryable)"
	}
	return mcp.NewToolResultError(msg)
}

// requireID reads a positive integer id argument. MCP numbers arrive as
// float64.
func requireID(req mcp.CallToolRequest, key string) (uint64, error) {
	v, err := req.RequireFloat(key)
	if err != nil {
		return 0, err
	}
	if v < 1 || v != math.Trunc(v) || v > 1<<53 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return uint64(v), nil
}

// optionalID is like requireID but returns 0 when the argument is absent.
func optionalID(req mcp.CallToolRequest, key string) (uint64, error) {
	if _, ok := req.GetArguments()[key]; !ok {
		return 0, nil
	}
	return requireID(req, key)
}
