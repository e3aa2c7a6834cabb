package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"canvasboard/internal/app"
)

func newServeCmd(opts *Options) *cobra.Command {
	var (
		addr  string
		stdio bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the board headless with MCP tools and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.Metrics.Addr
			}
			// stdout belongs to the MCP transport in stdio mode.
			log := opts.logger(os.Stderr)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := app.Startup(ctx, opts.cfg, log)
			if err != nil {
				return err
			}
			defer a.Shutdown(context.WithoutCancel(ctx))
			a.Start(ctx)

			return a.Serve(ctx, app.ServeOptions{Addr: addr, Stdio: stdio, Version: Version})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address for /metrics and /mcp (default: metrics.addr from config)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "Serve MCP on stdin/stdout")
	return cmd
}
