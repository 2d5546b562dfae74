package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/writer"
)

func registerDocumentTools(s *server.MCPServer, w *writer.Writer) {
	s.AddTool(
		mcp.NewTool("create_doc",
			mcp.WithDescription("Create a new markdown document in a project folder (references, reports, scratch, assets)."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("folder", mcp.Required(), mcp.Description("Folder within the project, e.g. references")),
			mcp.WithString("filename", mcp.Required(), mcp.Description("File name, .md appended if absent")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content")),
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
			content, err := requireString(args, "content")
			if err != nil {
				return toolError(err)
			}

			result, err := w.CreateDocument(ctx, project, folder, filename, content)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(result.RelPath), nil
		},
	)

	s.AddTool(
		mcp.NewTool("update_doc",
			mcp.WithDescription("Overwrite an existing document's content."),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file, relative to the project")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New markdown content")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			project, err := requireString(args, "project")
			if err != nil {
				return toolError(err)
			}
			path, err := requireString(args, "path")
			if err != nil {
				return toolError(err)
			}
			content, err := requireString(args, "content")
			if err != nil {
				return toolError(err)
			}

			result, err := w.UpdateDocument(ctx, project, path, content)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(result.RelPath), nil
		},
	)
}
