package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"canvasboard/internal/canvas"
)

// Executor runs fn against the live workspace on the goroutine that owns
// it. Tool handlers never touch the workspace directly.
type Executor interface {
	Do(ctx context.Context, fn func(ws *canvas.Workspace)) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, fn func(ws *canvas.Workspace)) error

func (f ExecutorFunc) Do(ctx context.Context, fn func(ws *canvas.Workspace)) error {
	return f(ctx, fn)
}

// Server exposes the workspace to agents as MCP tools, resources and
// prompts.
type Server struct {
	mcp  *server.MCPServer
	exec Executor
	log  *slog.Logger
}

// Deps holds the dependencies passed from the host.
type Deps struct {
	Executor Executor
	Logger   *slog.Logger
	Version  string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	s := &Server{exec: deps.Executor, log: deps.Logger}

	s.mcp = server.NewMCPServer(
		"canvasboard",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerWorkspaceTools()
	s.registerCameraTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// MCPServer returns the underlying server, e.g. to mount it over HTTP.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("mcp: serving on stdio")
	return server.ServeStdio(s.mcp)
}

// do runs fn on the workspace goroutine, returning fn's error.
func (s *Server) do(ctx context.Context, fn func(ws *canvas.Workspace) error) error {
	var err error
	if execErr := s.exec.Do(ctx, func(ws *canvas.Workspace) { err = fn(ws) }); execErr != nil {
		return execErr
	}
	return err
}
