package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/writer"
)

func registerPlanAndSessionTools(s *server.MCPServer, w *writer.Writer) {
	s.AddTool(
		mcp.NewTool("create_plan",
			mcp.WithDescription("Write or overwrite a plan file under plans/ (defaults to execution-plan.md)."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Plan content")),
			mcp.WithString("filename", mcp.Description("Plan filename, defaults to execution-plan.md")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}
			content, err := requireString(args, "content")
			if err != nil {
				return toolError(err)
			}
			filename := optionalString(args, "filename", "")

			result, err := w.CreatePlan(ctx, project, content, filename)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s %s", result.Action, result.RelPath)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("log_session",
			mcp.WithDescription("Append to (or create) today's session log under sessions/."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Session log entry content")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}
			content, err := requireString(args, "content")
			if err != nil {
				return toolError(err)
			}

			result, err := w.LogSession(ctx, project, content)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s %s", result.Action, result.RelPath)), nil
		},
	)
}
