package cli

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"canvasboard/internal/domain"
	"canvasboard/internal/storage"
)

type groupReport struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Width int     `json:"width"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Items int     `json:"items"`
}

type inspectReport struct {
	Store  domain.StoreDriver `json:"store"`
	Saved  string             `json:"savedAt,omitempty"`
	Camera domain.Camera      `json:"camera"`
	Groups []groupReport      `json:"groups"`
	Items  int                `json:"items"`
}

func newInspectCmd(opts *Options) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the stored workspace without opening it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := storage.Open(ctx, opts.cfg.Store)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Load(ctx)
			if errors.Is(err, storage.ErrNotFound) {
				snap = domain.NewSnapshot()
			} else if err != nil {
				return err
			}
			if full {
				return writeOut(cmd, opts, snap)
			}
			return writeOut(cmd, opts, summarize(opts.cfg.Store.Driver, snap))
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Print the whole snapshot")
	return cmd
}

func summarize(driver domain.StoreDriver, snap *domain.Snapshot) inspectReport {
	r := inspectReport{Store: driver, Camera: snap.Camera, Items: len(snap.Items), Groups: []groupReport{}}
	if !snap.SavedAt.IsZero() {
		r.Saved = snap.SavedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	for id, g := range snap.Groups {
		if id == domain.HiddenGroupID {
			continue
		}
		r.Groups = append(r.Groups, groupReport{ID: id, Title: g.Title, Width: g.Width, X: g.X, Y: g.Y, Items: len(g.Items)})
	}
	sort.Slice(r.Groups, func(i, j int) bool {
		a, b := r.Groups[i], r.Groups[j]
		if (a.ID == domain.InboxGroupID) != (b.ID == domain.InboxGroupID) {
			return a.ID == domain.InboxGroupID
		}
		return a.Title < b.Title || (a.Title == b.Title && a.ID < b.ID)
	})
	return r
}
