package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vibemcp/internal/vibeerr"
	"vibemcp/internal/webhook"
)

// subscriptionView is the JSON shape returned by list_webhooks; it omits
// the signing secret.
type subscriptionView struct {
	ID          string    `json:"id"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	URL         string    `json:"url"`
	EventTypes  []string  `json:"event_types"`
	Active      bool      `json:"active"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func registerWebhookTools(s *server.MCPServer, dispatcher *webhook.Dispatcher) {
	s.AddTool(
		mcp.NewTool("subscribe_webhook",
			mcp.WithDescription("Register an outgoing webhook subscription. URLs must be public http(s) endpoints; the secret must be at least 32 characters."),
			mcp.WithString("url", mcp.Required(), mcp.Description("Delivery endpoint URL")),
			mcp.WithString("secret", mcp.Required(), mcp.Description("HMAC signing secret, at least 32 characters")),
			mcp.WithArray("event_types", mcp.Required(), mcp.Description("Event types to receive, or [\"*\"] for all")),
			mcp.WithString("project", mcp.Description("Scope the subscription to one project; omit for a global subscription")),
			mcp.WithString("description", mcp.Description("Free-text note about what this subscription is for")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			url, err := requireString(args, "url")
			if err != nil {
				return toolError(err)
			}
			secret, err := requireString(args, "secret")
			if err != nil {
				return toolError(err)
			}
			eventTypes := optionalStringSlice(args, "event_types")
			if len(eventTypes) == 0 {
				return toolError(vibeerr.New(vibeerr.KindInvalidArgument, "event_types must list at least one event type"))
			}
			description := optionalString(args, "description", "")

			projectID, err := dispatcher.ResolveProjectID(ctx, optionalString(args, "project", ""))
			if err != nil {
				return toolError(err)
			}

			id, err := dispatcher.Subscribe(ctx, url, secret, eventTypes, projectID, description)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(id), nil
		},
	)

	s.AddTool(
		mcp.NewTool("unsubscribe_webhook",
			mcp.WithDescription("Remove a webhook subscription by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Subscription id")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			id, err := requireString(args, "id")
			if err != nil {
				return toolError(err)
			}

			if err := dispatcher.Unsubscribe(ctx, id); err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText("removed " + id), nil
		},
	)

	s.AddTool(
		mcp.NewTool("list_webhooks",
			mcp.WithDescription("List every registered webhook subscription."),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			subs, err := dispatcher.ListSubscriptions(ctx)
			if err != nil {
				return toolError(err)
			}

			views := make([]subscriptionView, 0, len(subs))
			for _, sub := range subs {
				views = append(views, subscriptionView{
					ID:          sub.ID,
					ProjectID:   sub.ProjectID,
					URL:         sub.URL,
					EventTypes:  sub.EventTypes,
					Active:      sub.Active,
					Description: sub.Description,
					CreatedAt:   sub.CreatedAt,
				})
			}

			encoded, err := json.Marshal(views)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(string(encoded)), nil
		},
	)

	s.AddTool(
		mcp.NewTool("webhook_delivery_history",
			mcp.WithDescription("Show recent delivery attempts for a webhook subscription."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Subscription id")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of attempts to return, defaults to 20")),
		),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := getArgs(request)
			id, err := requireString(args, "id")
			if err != nil {
				return toolError(err)
			}
			limit := optionalInt(args, "limit", 20)

			history, err := dispatcher.DeliveryHistory(ctx, id, limit)
			if err != nil {
				return toolError(err)
			}
			encoded, err := json.Marshal(history)
			if err != nil {
				return toolError(err)
			}
			return mcp.NewToolResultText(string(encoded)), nil
		},
	)
}
