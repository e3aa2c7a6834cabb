package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"canvasboard/internal/canvas"
	"canvasboard/internal/domain"
)

const (
	workspaceURI   = "canvas://workspace"
	groupURIPrefix = "canvas://group/"
)

func (s *Server) registerResources() {
	// ── canvas://workspace ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		workspaceURI,
		"Workspace snapshot",
		mcp.WithMIMEType("application/json"),
	), s.handleWorkspaceResource)

	// ── canvas://group/{groupId} ───────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			groupURIPrefix+"{groupId}",
			"Group with its items",
		),
		s.handleGroupResource,
	)
}

func (s *Server) handleWorkspaceResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var snap *domain.Snapshot
	if err := s.do(ctx, func(ws *canvas.Workspace) error {
		snap = ws.Snapshot()
		return nil
	}); err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(snap, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      workspaceURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

type groupDetail struct {
	groupSummary
	Cards []domain.Item `json:"cards"`
}

func (s *Server) handleGroupResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := groupIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract groupId from URI: %s", uri)
	}

	var detail groupDetail
	err := s.do(ctx, func(ws *canvas.Workspace) error {
		ref := canvas.ParseGroupRef(id)
		g, ok := ws.Group(ref)
		if !ok {
			return fmt.Errorf("group %s not found", id)
		}
		detail.groupSummary = summarizeGroup(g)
		for _, it := range ws.GroupItems(ref) {
			detail.Cards = append(detail.Cards, domain.Item{
				ID:        it.ID(),
				URL:       it.URL(),
				Title:     it.Title(),
				Image:     it.Image(),
				Favicon:   it.Favicon(),
				GroupID:   id,
				Index:     it.Index(),
				CreatedAt: it.CreatedAt(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, _ := json.MarshalIndent(detail, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// groupIDFromURI extracts the id from "canvas://group/{id}".
func groupIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, groupURIPrefix)
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "/")
	return id
}
