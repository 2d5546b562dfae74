package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/assembler"
)

// registerPrompts exposes the two canned context documents - project
// briefing and session start - as MCP prompts, each taking a project
// argument.
func registerPrompts(s *server.MCPServer, asm *assembler.Assembler) {
	s.AddPrompt(
		mcp.NewPrompt("project_briefing",
			mcp.WithPromptDescription("Current status, active tasks, and recent session summaries for a project."),
			mcp.WithArgument("project", mcp.ArgumentDescription("Project name"), mcp.RequiredArgument()),
		),
		func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			project := request.Params.Arguments["project"]
			text, err := asm.ProjectBriefing(ctx, project)
			if err != nil {
				return nil, err
			}
			return &mcp.GetPromptResult{
				Description: "Project briefing for " + project,
				Messages: []mcp.PromptMessage{
					mcp.NewPromptMessage(mcp.RoleAssistant, mcp.NewTextContent(text)),
				},
			}, nil
		},
	)

	s.AddPrompt(
		mcp.NewPrompt("session_start",
			mcp.WithPromptDescription("Full session-start context: status, execution plan, in-progress/blocked tasks, and the latest session log."),
			mcp.WithArgument("project", mcp.ArgumentDescription("Project name"), mcp.RequiredArgument()),
		),
		func(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			project := request.Params.Arguments["project"]
			text, err := asm.SessionStart(ctx, project)
			if err != nil {
				return nil, err
			}
			return &mcp.GetPromptResult{
				Description: "Session start context for " + project,
				Messages: []mcp.PromptMessage{
					mcp.NewPromptMessage(mcp.RoleAssistant, mcp.NewTextContent(text)),
				},
			}, nil
		},
	)
}
