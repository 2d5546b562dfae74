package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/writer"
)

func registerTaskTools(s *server.MCPServer, w *writer.Writer) {
	s.AddTool(
		mcp.NewTool("create_task",
			mcp.WithDescription("Create a new task file under tasks/, auto-numbered and slugified from the title."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("objective", mcp.Required(), mcp.Description("Task objective")),
			mcp.WithArray("steps", mcp.Description("Ordered list of step descriptions")),
			mcp.WithString("feature", mcp.Description("Feature name, stored in frontmatter if set")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}
			title, err := requireString(args, "title")
			if err != nil {
				return toolError(err)
			}
			objective, err := requireString(args, "objective")
			if err != nil {
				return toolError(err)
			}
			steps := optionalStringSlice(args, "steps")
			feature := optionalString(args, "feature", "")

			result, err := w.CreateTask(ctx, project, title, objective, steps, feature)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("%03d %s", result.TaskNumber, result.RelPath)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("update_task_status",
			mcp.WithDescription("Update a task's status line (pending, in-progress, done, blocked)."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("task_file", mcp.Required(), mcp.Description("Task filename under tasks/")),
			mcp.WithString("status", mcp.Required(), mcp.Description("New status: pending, in-progress, done, or blocked")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}
			taskFile, err := requireString(args, "task_file")
			if err != nil {
				return toolError(err)
			}
			status, err := requireString(args, "status")
			if err != nil {
				return toolError(err)
			}

			result, err := w.UpdateTaskStatus(ctx, project, taskFile, status)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(fmt.Sprintf("%s -> %s", result.RelPath, result.NewStatus)), nil
		},
	)
}
