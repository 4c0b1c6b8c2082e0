// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mlvtools/mlvtools/internal/journal"
	"github.com/mlvtools/mlvtools/internal/render"
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

type pathEntry struct {
	Path string `yaml:"path"`
}

type dvcFile struct {
	Cmd  string      `yaml:"cmd"`
	Deps []pathEntry `yaml:"deps,omitempty"`
	Outs []pathEntry `yaml:"outs,omitempty"`
}

func writeStep(t *testing.T, dir, name, cmd string, deps, outs []string) string {
	t.Helper()
	f := dvcFile{Cmd: cmd}
	for _, d := range deps {
		f.Deps = append(f.Deps, pathEntry{Path: d})
	}
	for _, o := range outs {
		f.Outs = append(f.Outs, pathEntry{Path: o})
	}
	data, err := yaml.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// pipeline writes step1 -> step2 -> step3 plus an unrelated step.
func pipeline(t *testing.T) (dir, target string) {
	dir = t.TempDir()
	writeStep(t, dir, "step1.dvc", "./dvc/step1_dvc", []string{"./data/in.csv"}, []string{"./data/s1.csv"})
	writeStep(t, dir, "step2.dvc", "./dvc/step2_dvc", []string{"./data/s1.csv"}, []string{"./data/s2.csv"})
	target = writeStep(t, dir, "step3.dvc", "./dvc/step3_dvc", []string{"./data/s2.csv", "./model.pkl"}, []string{"./data/s3.csv"})
	writeStep(t, dir, "other.dvc", "./dvc/other_dvc", []string{"./data/s1.csv"}, []string{"./data/other.csv"})
	return dir, target
}

func scriptLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l = strings.TrimSpace(l); l != "" && !strings.HasPrefix(l, "#") {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestPipeline(t *testing.T) {
	dir, target := pipeline(t)
	out := filepath.Join(dir, "exported", "pipeline.sh")

	require.NoError(t, Pipeline(context.Background(), target, out, "/work_dir", nil))

	require.Equal(t, []string{
		"set -o errexit",
		"pushd /work_dir",
		"./dvc/step1_dvc",
		"./dvc/step2_dvc",
		"./dvc/step3_dvc",
		"popd",
	}, scriptLines(t, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Equal(t, render.ExecMode, info.Mode().Perm())
}

func TestPipelineRecordsSteps(t *testing.T) {
	dir, target := pipeline(t)
	out := filepath.Join(dir, "pipeline.sh")
	jpath := filepath.Join(t.TempDir(), "journal.jsonl")
	j, err := journal.NewLogger(jpath)
	require.NoError(t, err)

	require.NoError(t, Pipeline(context.Background(), target, out, dir, j))

	entries, err := journal.Tail(jpath, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "export-pipeline", entries[0].Command)
	require.Equal(t, []string{"step1.dvc", "step2.dvc", "step3.dvc"}, entries[0].Steps)
	require.NotEmpty(t, entries[0].Digest)
}

func TestPipelineMissingTarget(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "pipeline.sh")

	err := Pipeline(context.Background(), filepath.Join(dir, "nope.dvc"), out, dir, nil)
	require.ErrorIs(t, err, toolerr.ErrIO)
	require.Contains(t, err.Error(), "does not exist")
	require.NoFileExists(t, out)
}

func TestPipelineMalformedCandidate(t *testing.T) {
	dir, target := pipeline(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.dvc"), []byte("test"), 0o644))
	out := filepath.Join(dir, "pipeline.sh")

	err := Pipeline(context.Background(), target, out, dir, nil)
	require.ErrorIs(t, err, toolerr.ErrFormat)
	require.NoFileExists(t, out)
}

func TestMetaFilesOnlyListsDvcFiles(t *testing.T) {
	dir, target := pipeline(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	paths, err := MetaFiles(target)
	require.NoError(t, err)
	require.Len(t, paths, 4)
	for _, p := range paths {
		require.Equal(t, ".dvc", filepath.Ext(p))
	}
}

func TestStepsCancelled(t *testing.T) {
	_, target := pipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Pipeline(ctx, target, filepath.Join(t.TempDir(), "pipeline.sh"), ".", nil)
	require.ErrorIs(t, err, context.Canceled)
}
