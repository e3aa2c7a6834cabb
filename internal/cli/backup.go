package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"canvasboard/internal/app"
)

func newBackupCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the workspace to the configured backup store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Startup(ctx, opts.cfg, opts.logger(os.Stderr))
			if err != nil {
				return err
			}
			defer a.Shutdown(context.WithoutCancel(ctx))

			if err := a.BackupNow(ctx); err != nil {
				return err
			}
			ws := a.Session.Workspace()
			return writeOut(cmd, opts, map[string]any{
				"target": opts.cfg.Backup.Driver,
				"groups": ws.GroupCount(),
				"items":  ws.ItemCount(),
			})
		},
	}
}
