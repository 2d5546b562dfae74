package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/assembler"
)

func registerReadTools(s *server.MCPServer, asm *assembler.Assembler) {
	s.AddTool(
		mcp.NewTool("list_projects",
			mcp.WithDescription("Summary of every indexed project: open task count, last activity, folder counts."),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			summaries, err := asm.ProjectsList(ctx)
			if err != nil {
				return toolError(err)
			}
			encoded, err := json.Marshal(summaries)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(string(encoded)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("get_project",
			mcp.WithDescription("Folder and task-status breakdown for a single project."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}

			detail, err := asm.ProjectDetail(ctx, project)
			if err != nil {
				return toolError(err)
			}
			encoded, err := json.Marshal(detail)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(string(encoded)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("read_file",
			mcp.WithDescription("Read a single file's raw content and indexed metadata."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("folder", mcp.Required(), mcp.Description("Folder within the project")),
			mcp.WithString("filename", mcp.Required(), mcp.Description("File name")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}
			folder, err := requireString(args, "folder")
			if err != nil {
				return toolError(err)
			}
			filename, err := requireString(args, "filename")
			if err != nil {
				return toolError(err)
			}

			view, err := asm.ReadFile(ctx, project, folder, filename)
			if err != nil {
				return toolError(err)
			}
			encoded, err := json.Marshal(view)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(string(encoded)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("get_plan",
			mcp.WithDescription("Read a project's execution plan. Defaults to plans/execution-plan.md."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("filename", mcp.Description(`Plan file name (default: "execution-plan.md")`)),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}
			filename := optionalString(args, "filename", "execution-plan.md")

			view, err := asm.ReadFile(ctx, project, "plans", filename)
			if err != nil {
				return toolError(err)
			}
			encoded, err := json.Marshal(view)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(string(encoded)), nil
		},
	)
}
