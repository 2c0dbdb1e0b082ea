// Package cli implements the orderkey command line interface.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/lupppig/orderkey/internal/config"
	"github.com/lupppig/orderkey/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Database   string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the orderkey CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "orderkey",
		Short: "Sortable position keys for reorderable lists",
		Long: `Compute order keys that place an item before, after, or between other
items of a list without renumbering anything, and manage ordered lists
stored in SQLite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "SQLite database path (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewFirstCommand(opts))
	cmd.AddCommand(NewValidCommand(opts))
	cmd.AddCommand(NewBeforeCommand(opts))
	cmd.AddCommand(NewAfterCommand(opts))
	cmd.AddCommand(NewBetweenCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// openStore loads configuration and opens the list store it names. Logs go
// to the command's stderr so they never mix with JSON output.
func openStore(opts *RootOptions, cmd *cobra.Command, f *OutputFormatter) (*store.Store, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "load config", err)
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "load config", err)
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	s, err := store.Open(cfg.Database,
		store.WithLogger(logger),
		store.WithRetries(cfg.Retries),
		store.WithLockTimeout(cfg.LockTimeout),
	)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "open store", err)
	}
	logger.Debug("store opened", "path", cfg.Database)
	return s, nil
}
