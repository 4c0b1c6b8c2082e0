package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlvtools/mlvtools/internal/config"
	"github.com/mlvtools/mlvtools/internal/gendvc"
)

func newGenDvcCommand() *cobra.Command {
	var (
		input, output, workDir, confPath string
		force                            bool
	)

	cmd := &cobra.Command{
		Use:   "gen-dvc",
		Short: "Generate the DVC bash command of a Python step script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			top, err := workDirectory(ctx, workDir, filepath.Dir(input))
			if err != nil {
				return err
			}
			if confPath == "" {
				confPath = config.DefaultPath(top)
			}
			cfg, err := config.LoadFrom(confPath, top)
			if err != nil {
				return err
			}

			g := &gendvc.Generator{Config: cfg, Journal: openJournal(cfg)}
			_, err = g.Generate(ctx, gendvc.Request{Input: input, Output: output, Force: force})
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&input, "input-script", "i", "", "the python input script")
	f.StringVarP(&output, "out-dvc-cmd", "o", "", "path to the generated bash dvc command, derived from the configuration when omitted")
	f.StringVarP(&workDir, "working-directory", "w", "", "working directory, defaults to the git top directory of the input")
	f.StringVarP(&confPath, "conf-path", "c", "", "configuration file, defaults to <working-directory>/"+config.FileName)
	f.BoolVarP(&force, "force", "f", false, "overwrite an existing output")
	_ = cmd.MarkFlagRequired("input-script")
	return cmd
}
