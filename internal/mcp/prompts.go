package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("organize_inbox",
		mcp.WithPromptDescription("Sort the cards waiting in the inbox into titled groups"),
		mcp.WithArgument("strategy",
			mcp.ArgumentDescription("How to group cards, e.g. by topic, by site or by project"),
		),
	), s.handleOrganizeInboxPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("collect_links",
		mcp.WithPromptDescription("Save a list of links into a new group"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Title for the new group"),
			mcp.RequiredArgument(),
		),
	), s.handleCollectLinksPrompt)
}

func (s *Server) handleOrganizeInboxPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	strategy := req.Params.Arguments["strategy"]
	if strategy == "" {
		strategy = "topic"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Organize the inbox by %s", strategy),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Organize the cards in my canvasboard inbox by %s.

Steps:
1. Call list_groups to see the inbox and the existing groups.
2. Reuse an existing group when a card clearly belongs there.
3. Otherwise create_group with a short title and move_item the cards into it.
4. Use set_group_width so no group is taller than it is wide.
5. Finish with center_camera.

Do not delete anything.`, strategy),
				},
			},
		},
	}, nil
}

func (s *Server) handleCollectLinksPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Collect links about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create a group titled %q with create_group, then add each link I give you with create_item using that groupId. Fill in the title when you know it.`, topic),
				},
			},
		},
	}, nil
}
