// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package gendvc generates the DVC command script of a Python step script.
package gendvc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/mlvtools/mlvtools/internal/annotation"
	"github.com/mlvtools/mlvtools/internal/assemble"
	"github.com/mlvtools/mlvtools/internal/config"
	"github.com/mlvtools/mlvtools/internal/docstring"
	"github.com/mlvtools/mlvtools/internal/journal"
	"github.com/mlvtools/mlvtools/internal/render"
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// Request describes one generation.
type Request struct {
	Input  string // Python script
	Output string // derived from the config path section when empty
	Force  bool   // overwrite an existing output
}

// Generator runs generations against one configuration.
type Generator struct {
	Config  *config.Config
	Journal *journal.Logger // nil disables journaling
}

// CommandData extracts the docstring of the first function of script and
// assembles the DVC command template data.
func CommandData(script string, cfg *config.Config) (assemble.Data, error) {
	info, err := docstring.ExtractFile(script)
	if err != nil {
		return assemble.Data{}, err
	}
	set, err := annotation.Aggregate(info.Docstring.DeclaredParams(), info.Docstring.Meta)
	if err != nil {
		return assemble.Data{}, fmt.Errorf("docstring of %s in %s: %w", info.FuncName, script, err)
	}

	rel, err := relPath(cfg.TopDirectory, script)
	if err != nil {
		return assemble.Data{}, err
	}
	return assemble.Assemble(set, assemble.Context{
		CommandPath:     rel,
		MetaVarName:     cfg.DvcVarMetaFilename,
		MetaFileRootDir: cfg.MetaFileRootDir(),
		ExtraVars: []assemble.Var{
			{Name: cfg.DvcVarPythonCmdPath, Value: rel},
			{Name: cfg.DvcVarPythonCmdName, Value: path.Base(rel)},
		},
	}), nil
}

// OutputPath returns where the command script of req is written.
func (g *Generator) OutputPath(req Request) (string, error) {
	if req.Output != "" {
		return req.Output, nil
	}
	if !g.Config.HasPaths() {
		return "", toolerr.New(toolerr.Config,
			"an output path is mandatory when the configuration has no path section")
	}
	return g.Config.DvcCmdOutputPath(req.Input), nil
}

// Generate writes the DVC command script of req.Input and returns its path.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()

	out, err := g.OutputPath(req)
	if err != nil {
		return "", err
	}
	if !req.Force {
		if err := CheckOutput(out); err != nil {
			return "", err
		}
	}

	err = g.write(ctx, req.Input, out)
	if jerr := g.Journal.Record(journal.Record{
		Command:  "gen-dvc",
		Inputs:   []string{req.Input},
		Output:   out,
		WorkDir:  g.Config.TopDirectory,
		Err:      err,
		Duration: time.Since(start),
	}); jerr != nil {
		slog.Warn("Cannot record generation in journal.", "journal", g.Journal.Path(), "err", jerr)
	}
	if err != nil {
		return "", err
	}

	slog.Info("DVC bash command successfully generated.", "output", out)
	return out, nil
}

func (g *Generator) write(ctx context.Context, input, out string) error {
	data, err := CommandData(input, g.Config)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return render.DvcCommand(out, data)
}

// CheckOutput fails when path already exists.
func CheckOutput(path string) error {
	if _, err := os.Stat(path); err == nil {
		return toolerr.New(toolerr.IO, "output file %s already exists, use --force option to overwrite it", path)
	}
	return nil
}

// relPath returns p relative to top, slash separated.
func relPath(top, p string) (string, error) {
	absTop, err := filepath.Abs(top)
	if err != nil {
		return "", toolerr.Wrap(toolerr.IO, err, "cannot resolve working directory %s", top)
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return "", toolerr.Wrap(toolerr.IO, err, "cannot resolve script path %s", p)
	}
	rel, err := filepath.Rel(absTop, absP)
	if err != nil {
		return "", toolerr.Wrap(toolerr.IO, err, "script %s is not under %s", p, top)
	}
	return filepath.ToSlash(rel), nil
}
