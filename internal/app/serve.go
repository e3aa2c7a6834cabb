package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"canvasboard/internal/canvas"
	mcpserver "canvasboard/internal/mcp"
)

// ServeOptions selects the surfaces exposed by Serve.
type ServeOptions struct {
	// Addr serves /metrics and the streamable MCP endpoint /mcp.
	Addr string
	// Stdio serves MCP on stdin/stdout until stdin closes.
	Stdio   bool
	Version string
}

// Serve runs the workspace headless until ctx is cancelled (or stdin
// closes in stdio mode). MCP tool calls are executed on the loop
// goroutine.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := NewLoop(a.Session, a.Log,
		WithReloads(a.Reloads()),
		WithBackup(a.backup),
		WithMetrics(a.Metrics),
	)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Executor: mcpserver.ExecutorFunc(func(ctx context.Context, fn func(*canvas.Workspace)) error {
			return loop.Do(ctx, func(s *Session) { fn(s.Workspace()) })
		}),
		Logger:  a.Log,
		Version: opts.Version,
	})

	var httpSrv *http.Server
	if opts.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.Metrics.Handler())
		mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
		httpSrv = &http.Server{Addr: opts.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			a.Log.Info("serve: listening", "addr", opts.Addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.Log.Error("serve: http server failed", "err", err)
				cancel()
			}
		}()
	}

	if opts.Stdio {
		go func() {
			if err := mcpSrv.ServeStdio(); err != nil {
				a.Log.Error("serve: mcp stdio stopped", "err", err)
			}
			cancel()
		}()
	}

	<-ctx.Done()
	if httpSrv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		httpSrv.Shutdown(shutdownCtx)
	}
	if err := <-loopDone; err != nil {
		return fmt.Errorf("loop: %w", err)
	}
	return nil
}
