package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/writer"
)

func registerProjectTools(s *server.MCPServer, w *writer.Writer) {
	s.AddTool(
		mcp.NewTool("init_project",
			mcp.WithDescription("Create a new project with the standard folder layout and a seed status.md."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}

			result, err := w.InitProject(ctx, project)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s: %s", result.Project, strings.Join(result.Folders, ", "))), nil
		},
	)

	s.AddTool(
		mcp.NewTool("reindex",
			mcp.WithDescription("Force a full rebuild of the index from the filesystem."),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			count, err := w.Reindex(ctx)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("reindexed %d documents", count)), nil
		},
	)
}
