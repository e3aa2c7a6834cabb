package mcpserver

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasboard/internal/canvas"
)

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

// requireString returns a non-empty string argument.
func requireString(args map[string]any, key string) (string, error) {
	v, _ := args[key].(string)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// numberArg returns a numeric argument, or ok=false when absent.
func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key].(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// groupArg resolves a group id argument. An empty id means the inbox.
func groupArg(args map[string]any, key string) canvas.GroupRef {
	id, _ := args[key].(string)
	if id == "" {
		return canvas.Inbox()
	}
	return canvas.ParseGroupRef(id)
}

type groupSummary struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Width int      `json:"width"`
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Items []string `json:"items"`
}

func summarizeGroup(g *canvas.Group) groupSummary {
	x, y := g.Position()
	return groupSummary{
		ID:    g.ID(),
		Title: g.Title(),
		Width: g.Width(),
		X:     x,
		Y:     y,
		Items: g.Items(),
	}
}
