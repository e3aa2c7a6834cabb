package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"canvasboard/internal/app"
	"canvasboard/internal/canvas"
)

func newAddCmd(opts *Options) *cobra.Command {
	var title, image, favicon, group string
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Save a link as a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.Startup(ctx, opts.cfg, opts.logger(os.Stderr))
			if err != nil {
				return err
			}
			defer a.Shutdown(context.WithoutCancel(ctx))

			ws := a.Session.Workspace()
			ref := canvas.Inbox()
			if group != "" {
				ref = canvas.ParseGroupRef(group)
				if _, ok := ws.Group(ref); !ok || ref.Kind == canvas.KindHidden {
					return fmt.Errorf("group %s not found", group)
				}
			}
			id := ws.CreateItem(args[0], title, image, favicon, ref)
			return writeOut(cmd, opts, map[string]string{"id": id, "groupId": ref.String()})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Card title")
	cmd.Flags().StringVar(&image, "image", "", "Preview image URL")
	cmd.Flags().StringVar(&favicon, "favicon", "", "Favicon URL")
	cmd.Flags().StringVar(&group, "group", "", "Target group id (default: inbox)")
	return cmd
}
