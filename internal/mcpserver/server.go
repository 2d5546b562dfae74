// Package mcpserver adapts vibeMCP's internal services - the write
// path, the search engine, the assembler, and the webhook dispatcher -
// onto the Model Context Protocol: tools for every mutating and
// read-only operation, a resource for the projects list, and prompts
// for the canned briefing documents.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/assembler"
	"vibemcp/internal/search"
	"vibemcp/internal/webhook"
	"vibemcp/internal/writer"
)

// Deps holds every service the MCP surface is built from.
type Deps struct {
	Writer     *writer.Writer
	Search     *search.Engine
	Assembler  *assembler.Assembler
	Dispatcher *webhook.Dispatcher
}

// Build constructs the MCP server and registers every tool, resource,
// and prompt vibeMCP exposes.
func Build(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"vibemcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	registerDocumentTools(s, deps.Writer)
	registerTaskTools(s, deps.Writer)
	registerPlanAndSessionTools(s, deps.Writer)
	registerProjectTools(s, deps.Writer)
	registerSearchTool(s, deps.Search)
	registerWebhookTools(s, deps.Dispatcher)
	registerReadTools(s, deps.Assembler)
	registerResources(s, deps.Assembler)
	registerPrompts(s, deps.Assembler)

	return s
}
