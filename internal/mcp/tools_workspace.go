package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasboard/internal/canvas"
	"canvasboard/internal/domain"
)

func (s *Server) registerWorkspaceTools() {
	// ── list_groups ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List the inbox and all user groups with their items in display order"),
	), s.handleListGroups)

	// ── get_workspace ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_workspace",
		mcp.WithDescription("Return the full workspace snapshot: camera, groups and items"),
	), s.handleGetWorkspace)

	// ── create_item ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_item",
		mcp.WithDescription("Save a link as a card. It is placed first in the target group (the inbox by default)."),
		mcp.WithString("url", mcp.Description("Link URL"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Card title (optional)")),
		mcp.WithString("image", mcp.Description("Preview image URL (optional)")),
		mcp.WithString("favicon", mcp.Description("Favicon URL (optional)")),
		mcp.WithString("groupId", mcp.Description("Target group id (optional, defaults to the inbox)")),
	), s.handleCreateItem)

	// ── move_item ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_item",
		mcp.WithDescription("Move a card into a group at a position in its arrangement"),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithString("groupId", mcp.Description("Target group id (\"inbox\" or a user group id)"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Position in the target group (default: end)")),
	), s.handleMoveItem)

	// ── remove_item (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_item",
		mcp.WithDescription("Delete a card. A user group left empty is removed too."),
		mcp.WithString("itemId", mcp.Description("Item ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveItem)

	// ── create_group ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_group",
		mcp.WithDescription("Create an empty group. Without x/y it is placed in free space near the top-left of the view."),
		mcp.WithString("title", mcp.Description("Group title"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("World X position (optional)")),
		mcp.WithNumber("y", mcp.Description("World Y position (optional)")),
	), s.handleCreateGroup)

	// ── delete_group (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_group",
		mcp.WithDescription("Delete a user group and every card in it"),
		mcp.WithString("groupId", mcp.Description("Group ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteGroup)

	// ── rename_group ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_group",
		mcp.WithDescription("Set a user group's title"),
		mcp.WithString("groupId", mcp.Description("Group ID"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title"), mcp.Required()),
	), s.handleRenameGroup)

	// ── set_group_width ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_group_width",
		mcp.WithDescription("Set how many columns a user group lays its cards out in"),
		mcp.WithString("groupId", mcp.Description("Group ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Column count, at least 1"), mcp.Required()),
	), s.handleSetGroupWidth)
}

func (s *Server) handleListGroups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []groupSummary
	err := s.do(ctx, func(ws *canvas.Workspace) error {
		inbox, _ := ws.Group(canvas.Inbox())
		out = append(out, summarizeGroup(inbox))
		for _, g := range ws.Groups() {
			out = append(out, summarizeGroup(g))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(out)
}

func (s *Server) handleGetWorkspace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var snap *domain.Snapshot
	if err := s.do(ctx, func(ws *canvas.Workspace) error {
		snap = ws.Snapshot()
		return nil
	}); err != nil {
		return nil, err
	}
	return jsonResult(snap)
}

func (s *Server) handleCreateItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	url, err := requireString(args, "url")
	if err != nil {
		return nil, err
	}
	title, _ := args["title"].(string)
	image, _ := args["image"].(string)
	favicon, _ := args["favicon"].(string)
	ref := groupArg(args, "groupId")

	var id, group string
	err = s.do(ctx, func(ws *canvas.Workspace) error {
		if ref.Kind == canvas.KindHidden {
			return fmt.Errorf("cannot add items to the hidden group")
		}
		if _, ok := ws.Group(ref); !ok {
			return fmt.Errorf("group %s not found", ref)
		}
		id = ws.CreateItem(url, title, image, favicon, ref)
		it, _ := ws.Item(id)
		group = it.Group().String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]string{"id": id, "groupId": group})
}

func (s *Server) handleMoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, err := requireString(args, "itemId")
	if err != nil {
		return nil, err
	}
	if _, err := requireString(args, "groupId"); err != nil {
		return nil, err
	}
	ref := groupArg(args, "groupId")
	index, hasIndex := numberArg(args, "index")

	err = s.do(ctx, func(ws *canvas.Workspace) error {
		if ref.Kind == canvas.KindHidden {
			return fmt.Errorf("cannot move items to the hidden group")
		}
		if _, ok := ws.Item(itemID); !ok {
			return fmt.Errorf("item %s not found", itemID)
		}
		g, ok := ws.Group(ref)
		if !ok {
			return fmt.Errorf("group %s not found", ref)
		}
		at := g.Len()
		if hasIndex {
			at = int(index)
		}
		ws.MoveItem(itemID, ref, at)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved item %s to %s", itemID, ref)), nil
}

func (s *Server) handleRemoveItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemID, err := requireString(req.GetArguments(), "itemId")
	if err != nil {
		return nil, err
	}
	err = s.do(ctx, func(ws *canvas.Workspace) error {
		if !ws.RemoveItem(itemID) {
			return fmt.Errorf("item %s not found", itemID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("mcp: item removed", "item", itemID)
	return textResult(fmt.Sprintf("Removed item %s", itemID)), nil
}

func (s *Server) handleCreateGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	title, err := requireString(args, "title")
	if err != nil {
		return nil, err
	}
	x, hasX := numberArg(args, "x")
	y, hasY := numberArg(args, "y")

	var out groupSummary
	err = s.do(ctx, func(ws *canvas.Workspace) error {
		var id string
		if hasX && hasY {
			id = ws.CreateGroupAt(title, x, y)
		} else {
			id = ws.CreateGroup(title)
		}
		g, _ := ws.Group(canvas.User(id))
		out = summarizeGroup(g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(out)
}

func (s *Server) handleDeleteGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "groupId")
	if err != nil {
		return nil, err
	}
	ref := canvas.ParseGroupRef(id)
	var removed int
	err = s.do(ctx, func(ws *canvas.Workspace) error {
		if ref.Reserved() {
			return fmt.Errorf("group %s cannot be deleted", id)
		}
		g, ok := ws.Group(ref)
		if !ok {
			return fmt.Errorf("group %s not found", id)
		}
		removed = g.Len()
		ws.DeleteGroup(ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("mcp: group deleted", "group", id, "items", removed)
	return textResult(fmt.Sprintf("Deleted group %s and %d item(s)", id, removed)), nil
}

func (s *Server) handleRenameGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "groupId")
	if err != nil {
		return nil, err
	}
	title, err := requireString(args, "title")
	if err != nil {
		return nil, err
	}
	err = s.do(ctx, func(ws *canvas.Workspace) error {
		if !ws.RenameGroup(canvas.ParseGroupRef(id), title) {
			return fmt.Errorf("group %s not found or not renamable", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Renamed group %s", id)), nil
}

func (s *Server) handleSetGroupWidth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "groupId")
	if err != nil {
		return nil, err
	}
	width, ok := numberArg(args, "width")
	if !ok {
		return nil, fmt.Errorf("width is required")
	}
	ref := canvas.ParseGroupRef(id)

	var out groupSummary
	err = s.do(ctx, func(ws *canvas.Workspace) error {
		g, ok := ws.Group(ref)
		if !ok || !ref.Resizable() {
			return fmt.Errorf("group %s not found or not resizable", id)
		}
		ws.SetWidth(ref, int(width))
		out = summarizeGroup(g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(out)
}
