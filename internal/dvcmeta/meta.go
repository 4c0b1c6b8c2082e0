// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package dvcmeta loads DVC step metadata files and resolves the ordered
// set of steps needed to reproduce a target.
package dvcmeta

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// Meta is one pipeline step as described by its metadata file.
type Meta struct {
	Name string   `json:"name"` // base name of the metadata file
	Cmd  string   `json:"cmd"`
	Deps []string `json:"deps"`
	Outs []string `json:"outs"`
}

// fileFormat is the on-disk shape of a metadata file. Keys other than these
// (md5, wdir, cache flags...) are ignored.
type fileFormat struct {
	Cmd  string      `yaml:"cmd"`
	Deps []pathEntry `yaml:"deps"`
	Outs []pathEntry `yaml:"outs"`
}

type pathEntry struct {
	Path string `yaml:"path"`
}

// Load reads and decodes a metadata file. Read failures are reported as
// toolerr.IO, decode failures as toolerr.Format.
func Load(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.IO, err, "cannot load DVC meta file %s", path)
	}
	return Decode(filepath.Base(path), data)
}

// Decode builds a Meta named name from the YAML content data. An empty
// document or a dependency or output without a path is a format error.
func Decode(name string, data []byte) (*Meta, error) {
	var raw *fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, toolerr.Wrap(toolerr.Format, err, "cannot load DVC meta file %s, wrong format", name)
	}
	if raw == nil {
		return nil, toolerr.New(toolerr.Format, "cannot load DVC meta file %s, wrong format: empty document", name)
	}
	deps, err := paths(name, "deps", raw.Deps)
	if err != nil {
		return nil, err
	}
	outs, err := paths(name, "outs", raw.Outs)
	if err != nil {
		return nil, err
	}
	return &Meta{Name: name, Cmd: raw.Cmd, Deps: deps, Outs: outs}, nil
}

func paths(name, key string, entries []pathEntry) ([]string, error) {
	out := make([]string, 0, len(entries))
	for i, e := range entries {
		if e.Path == "" {
			return nil, toolerr.New(toolerr.Format,
				"cannot load DVC meta file %s, wrong format: %s[%d] has no path", name, key, i)
		}
		out = append(out, e.Path)
	}
	return out, nil
}

// LoadAll loads every path concurrently. The result keeps the order of
// paths. The first failure cancels the remaining loads and is returned.
func LoadAll(ctx context.Context, paths []string) ([]*Meta, error) {
	metas := make([]*Meta, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := Load(p)
			if err != nil {
				return err
			}
			metas[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return metas, nil
}
