package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/search"
)

// searchHit is the JSON shape returned to MCP clients for a search
// result - a trimmed view of storage.SearchResult.
type searchHit struct {
	Project string  `json:"project"`
	Path    string  `json:"path"`
	Heading string  `json:"heading"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

func registerSearchTool(s *server.MCPServer, engine *search.Engine) {
	s.AddTool(
		mcp.NewTool("search",
			mcp.WithDescription("Full-text search across indexed documents. Supports phrases, prefix* matching, boolean AND/OR/NOT, and heading:/content: column filters."),
			mcp.WithString("query", mcp.Required(), mcp.Description("Search query in FTS5 syntax")),
			mcp.WithString("project", mcp.Description("Restrict results to one project")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results, defaults to 20")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			query, err := requireString(args, "query")
			if err != nil {
				return toolError(err)
			}
			project := optionalString(args, "project", "")
			limit := optionalInt(args, "limit", 20)

			results, err := engine.Search(ctx, query, search.Options{Project: project, Limit: limit})
			if err != nil {
				return toolError(err)
			}

			hits := make([]searchHit, 0, len(results))
			for _, r := range results {
				hits = append(hits, searchHit{
					Project: r.ProjectName,
					Path:    r.DocumentPath,
					Heading: r.Heading,
					Snippet: r.Snippet,
					Score:   r.FinalScore,
				})
			}

			encoded, err := json.Marshal(hits)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(string(encoded)), nil
		},
	)
}
