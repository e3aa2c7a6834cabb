package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"canvasboard/internal/config"
	"canvasboard/internal/domain"
)

// Version is set at build time.
var Version = "dev"

// Options holds the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	Snapshot   string
	LogLevel   string
	Pretty     bool

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:          "canvasboard",
		Short:        "Spatial board for saved links",
		Version:      Version,
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the board in the terminal
  canvasboard

  # Save a link to the inbox from a script
  canvasboard add https://go.dev --title "Go"

  # Run headless with MCP on stdio and metrics on :9464
  canvasboard serve --stdio --addr :9464
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", envOr("CANVASBOARD_CONFIG", ""), "Path to config.toml (default: $XDG_CONFIG_HOME/canvasboard/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Snapshot, "snapshot", "", "Snapshot file (file store only; overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.Pretty, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newAddCmd(opts))
	cmd.AddCommand(newInspectCmd(opts))
	cmd.AddCommand(newBackupCmd(opts))

	return cmd
}

// load reads the config file, then applies flag overrides.
func (o *Options) load() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.Snapshot != "" {
		cfg.SnapshotPath = o.Snapshot
		if cfg.Store.Driver == domain.StoreDriverFile {
			cfg.Store.DSN = o.Snapshot
		}
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// logger builds the process logger writing to w.
func (o *Options) logger(w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(o.cfg.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// fileLogger logs to the data directory so output does not corrupt the
// terminal UI.
func (o *Options) fileLogger() (*slog.Logger, func(), error) {
	if err := os.MkdirAll(o.cfg.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(o.cfg.DataDir, "canvasboard.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return o.logger(f), func() { f.Close() }, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, opts *Options, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
