// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package export turns a DVC pipeline into a single sequential shell script.
package export

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mlvtools/mlvtools/internal/dvcmeta"
	"github.com/mlvtools/mlvtools/internal/journal"
	"github.com/mlvtools/mlvtools/internal/render"
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// MetaFiles returns the candidate metadata files of the pipeline containing
// target: every .dvc file of its directory.
func MetaFiles(target string) ([]string, error) {
	if _, err := os.Stat(target); err != nil {
		return nil, toolerr.Wrap(toolerr.IO, err, "targeted pipeline metadata step %s does not exist", target)
	}
	paths, err := filepath.Glob(filepath.Join(filepath.Dir(target), "*.dvc"))
	if err != nil {
		return nil, toolerr.Wrap(toolerr.IO, err, "cannot list pipeline metadata next to %s", target)
	}
	return paths, nil
}

// Steps resolves the ordered steps needed to reproduce target.
func Steps(ctx context.Context, target string) ([]*dvcmeta.Meta, error) {
	candidates, err := MetaFiles(target)
	if err != nil {
		return nil, err
	}
	return dvcmeta.ResolveFiles(ctx, target, candidates)
}

// Pipeline writes to output an executable script running, from workDir,
// the command of every step needed to reproduce target, in order. j may be
// nil.
func Pipeline(ctx context.Context, target, output, workDir string, j *journal.Logger) error {
	start := time.Now()

	steps, err := Steps(ctx, target)
	if err == nil {
		err = ctx.Err()
	}
	names := make([]string, 0, len(steps))
	cmds := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
		cmds = append(cmds, s.Cmd)
	}
	if err == nil {
		err = render.PipelineScript(output, render.Pipeline{WorkDir: workDir, Cmds: cmds})
	}

	if jerr := j.Record(journal.Record{
		Command:  "export-pipeline",
		Inputs:   []string{target},
		Output:   output,
		Steps:    names,
		WorkDir:  workDir,
		Err:      err,
		Duration: time.Since(start),
	}); jerr != nil {
		slog.Warn("Cannot record export in journal.", "journal", j.Path(), "err", jerr)
	}
	if err != nil {
		return err
	}

	slog.Info("Pipeline exported.", "output", output, "steps", len(steps))
	return nil
}
