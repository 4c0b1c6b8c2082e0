package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlvtools/mlvtools/internal/config"
	"github.com/mlvtools/mlvtools/internal/export"
	"github.com/mlvtools/mlvtools/internal/gendvc"
)

func newExportPipelineCommand() *cobra.Command {
	var (
		target, output, workDir string
		force                   bool
	)

	cmd := &cobra.Command{
		Use:   "export-pipeline",
		Short: "Export a DVC pipeline to a sequential bash script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			top, err := workDirectory(ctx, workDir, filepath.Dir(target))
			if err != nil {
				return err
			}
			if !force {
				if err := gendvc.CheckOutput(output); err != nil {
					return err
				}
			}
			return export.Pipeline(ctx, target, output, top, openJournal(exportConfig(top)))
		},
	}

	f := cmd.Flags()
	f.StringVar(&target, "dvc", "", "DVC targeted pipeline metadata step")
	f.StringVarP(&output, "output", "o", "", "the pipeline script output path")
	f.StringVarP(&workDir, "working-directory", "w", "", "directory the pipeline runs from, defaults to the git top directory of the target")
	f.BoolVarP(&force, "force", "f", false, "overwrite an existing output")
	_ = cmd.MarkFlagRequired("dvc")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// exportConfig loads the configuration of top for journal settings only.
// The pipeline work directory need not exist on this machine, so any
// failure falls back to the defaults.
func exportConfig(top string) *config.Config {
	cfg, err := config.LoadFrom(config.DefaultPath(top), top)
	if err != nil {
		slog.Debug("Using default configuration.", "err", err)
		return config.DefaultConfig(top)
	}
	return cfg
}
