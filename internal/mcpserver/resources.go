package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/assembler"
)

// registerResources exposes the projects list as a static MCP resource.
// Per-project detail and file reads take a parameter, so they are
// exposed as tools (get_project, read_file) instead.
func registerResources(s *server.MCPServer, asm *assembler.Assembler) {
	s.AddResource(
		mcp.NewResource("vibe://projects", "Projects",
			mcp.WithResourceDescription("Summary of every indexed project: open task count, last activity, folder counts."),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			summaries, err := asm.ProjectsList(ctx)
			if err != nil {
				return nil, err
			}
			encoded, err := json.Marshal(summaries)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{URI: request.Params.URI, MIMEType: "application/json", Text: string(encoded)},
			}, nil
		},
	)
}
