package mcpserver

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"vibemcp/internal/vibeerr"
)

// toolError renders err as an MCP tool error result, including the
// vibeerr kind when available so callers can branch on it.
func toolError(err error) (*mcp.CallToolResult, error) {
	if e, ok := err.(*vibeerr.Error); ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", e.Kind, e.Message)), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}
