package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasboard/internal/canvas"
	"canvasboard/internal/domain"
)

func (s *Server) registerCameraTools() {
	s.mcp.AddTool(mcp.NewTool("center_camera",
		mcp.WithDescription("Fit all groups into the view"),
	), s.handleCenterCamera)

	s.mcp.AddTool(mcp.NewTool("center_camera_on_item",
		mcp.WithDescription("Center the view on a card that sits in a user group"),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
	), s.handleCenterCameraOnItem)
}

func (s *Server) handleCenterCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cam domain.Camera
	if err := s.do(ctx, func(ws *canvas.Workspace) error {
		ws.CenterCamera()
		cam = ws.Camera().State()
		return nil
	}); err != nil {
		return nil, err
	}
	return jsonResult(cam)
}

func (s *Server) handleCenterCameraOnItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "itemId")
	if err != nil {
		return nil, err
	}
	var cam domain.Camera
	err = s.do(ctx, func(ws *canvas.Workspace) error {
		if !ws.CenterCameraOnItem(id) {
			return fmt.Errorf("item %s not found or not in a user group", id)
		}
		cam = ws.Camera().State()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(cam)
}
