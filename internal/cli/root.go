// Package cli implements the mlvtools command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mlvtools/mlvtools/internal/config"
	"github.com/mlvtools/mlvtools/internal/journal"
)

// NewRootCommand returns the mlvtools command tree.
func NewRootCommand(version string) *cobra.Command {
	var logLevel, logFormat string

	root := &cobra.Command{
		Use:   "mlvtools",
		Short: "Generate DVC commands and pipelines from annotated Python scripts",
		Long: `mlvtools reads dvc annotations from the docstring of Python step scripts to
generate DVC bash commands, and exports DVC pipelines to sequential scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(logLevel, logFormat, cmd.ErrOrStderr()))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newGenDvcCommand(),
		newExportPipelineCommand(),
		newJournalCommand(),
		newMCPCommand(version),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "mlvtools %s\n", version)
			},
		},
	)
	return root
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "mlvtools: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds the process logger from the global flags.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openJournal returns the journal configured by cfg, or nil when it is
// disabled or cannot be opened.
func openJournal(cfg *config.Config) *journal.Logger {
	if cfg.Journal.Disabled || cfg.Journal.Path == "" {
		return nil
	}
	j, err := journal.NewLogger(cfg.Journal.Path)
	if err != nil {
		// Continue without journaling.
		slog.Warn("Cannot open journal.", "path", cfg.Journal.Path, "err", err)
		return nil
	}
	return j
}

// workDirectory returns flagValue, or the git top directory of dir.
func workDirectory(ctx context.Context, flagValue, dir string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.WorkDirectory(ctx, dir)
}
