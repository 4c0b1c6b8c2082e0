package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlvtools/mlvtools/internal/config"
	"github.com/mlvtools/mlvtools/internal/journal"
)

func newJournalCommand() *cobra.Command {
	var workDir, confPath, path string

	// journalPath resolves the journal from --path, then the configuration.
	journalPath := func() (string, error) {
		if path != "" {
			return path, nil
		}
		if confPath == "" {
			confPath = config.DefaultPath(workDir)
		}
		cfg, err := config.LoadFrom(confPath, workDir)
		if err != nil {
			return "", err
		}
		return cfg.Journal.Path, nil
	}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the journal of generated scripts",
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&workDir, "working-directory", "w", ".", "working directory")
	pf.StringVarP(&confPath, "conf-path", "c", "", "configuration file, defaults to <working-directory>/"+config.FileName)
	pf.StringVar(&path, "path", "", "journal file, overrides the configuration")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Check the journal hash chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := journalPath()
			if err != nil {
				return err
			}
			if err := journal.Verify(p); err != nil {
				return fmt.Errorf("journal verification FAILED: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "journal integrity verified")
			return nil
		},
	}

	var n int
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Show the last journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := journalPath()
			if err != nil {
				return err
			}
			entries, err := journal.Tail(p, n)
			if err != nil {
				return err
			}
			return printEntries(cmd, entries, "no journal entries")
		},
	}
	tail.Flags().IntVarP(&n, "lines", "n", 20, "number of entries")

	stale := &cobra.Command{
		Use:   "stale",
		Short: "List generated scripts changed or removed since generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := journalPath()
			if err != nil {
				return err
			}
			entries, err := journal.Stale(p)
			if err != nil {
				return err
			}
			return printEntries(cmd, entries, "no stale scripts")
		},
	}

	cmd.AddCommand(verify, tail, stale)
	return cmd
}

func printEntries(cmd *cobra.Command, entries []journal.Entry, empty string) error {
	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, empty)
		return nil
	}
	for _, e := range entries {
		data, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", data)
	}
	return nil
}
