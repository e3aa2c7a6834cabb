package cli

import (
	"context"

	"github.com/spf13/cobra"

	"canvasboard/internal/app"
	"canvasboard/internal/tui"
)

func runTUI(cmd *cobra.Command, opts *Options) error {
	log, closeLog, err := opts.fileLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	a, err := app.Startup(ctx, opts.cfg, log)
	if err != nil {
		return err
	}
	defer a.Shutdown(context.WithoutCancel(ctx))
	a.Start(ctx)

	m := tui.New(ctx, a.Session, log,
		tui.WithReloads(a.Reloads()),
		tui.WithBackup(a.Backup()),
	)
	return tui.Run(m)
}
