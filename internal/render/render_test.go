// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlvtools/mlvtools/internal/assemble"
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

func TestExecuteDvcCommandGenerated(t *testing.T) {
	data := assemble.Data{
		Variables:             []string{`MLV_PY_CMD_PATH="scripts/step.py"`, `INPUT_FILE="./in.csv"`},
		DvcInputs:             []string{"$INPUT_FILE", "./model.pkl"},
		DvcOutputs:            []string{"./out.csv"},
		PythonScript:          "scripts/step.py",
		PythonParams:          "--input-file $INPUT_FILE --rate 12",
		MetaFileNameVarAssign: `MLV_DVC_META_FILENAME="step.dvc"`,
		MetaFileNameVar:       "MLV_DVC_META_FILENAME",
	}
	var buf bytes.Buffer
	require.NoError(t, Execute(&buf, DvcCmdTemplate, data))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "#!/bin/bash\n"))
	require.Contains(t, out, "\nMLV_PY_CMD_PATH=\"scripts/step.py\"\nINPUT_FILE=\"./in.csv\"\n")
	require.Contains(t, out, "\nMLV_DVC_META_FILENAME=\"step.dvc\"\n")
	require.Contains(t, out, "dvc run${NO_CACHE_OPT} --overwrite-dvcfile -f $MLV_DVC_META_FILENAME \\\n"+
		"    -d $INPUT_FILE \\\n"+
		"    -d ./model.pkl \\\n"+
		"    -o ./out.csv \\\n"+
		"    scripts/step.py --input-file $INPUT_FILE --rate 12\n")
}

func TestExecuteDvcCommandNoParams(t *testing.T) {
	data := assemble.Data{
		PythonScript:          "step.py",
		MetaFileNameVarAssign: `META="step.dvc"`,
		MetaFileNameVar:       "META",
	}
	var buf bytes.Buffer
	require.NoError(t, Execute(&buf, DvcCmdTemplate, data))
	require.Contains(t, buf.String(), "-f $META \\\n    step.py\n")
}

func TestExecuteDvcCommandWhole(t *testing.T) {
	data := assemble.Data{
		Variables:             []string{`MLV_PY_CMD_NAME="step.py"`},
		MetaFileNameVarAssign: `MLV_DVC_META_FILENAME="step.dvc"`,
		MetaFileNameVar:       "MLV_DVC_META_FILENAME",
		WholeCommand:          assemble.NormalizeNewlines("dvc run -o ./a\n./py_cmd --out ./a"),
	}
	var buf bytes.Buffer
	require.NoError(t, Execute(&buf, DvcCmdTemplate, data))
	out := buf.String()
	require.Contains(t, out, "dvc run -o ./a \\\n./py_cmd --out ./a\n")
	require.NotContains(t, out, "--overwrite-dvcfile")
}

func TestExecuteUnknownTemplate(t *testing.T) {
	err := Execute(&bytes.Buffer{}, "nope.tpl", nil)
	require.ErrorIs(t, err, toolerr.ErrFormat)
}

func TestPipelineScript(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "pipeline.sh")
	require.NoError(t, PipelineScript(out, Pipeline{
		WorkDir: "/work_dir",
		Cmds:    []string{"./step1_dvc", "./step2_dvc"},
	}))

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Equal(t, ExecMode, info.Mode().Perm())

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var lines []string
	for _, l := range strings.Split(string(content), "\n") {
		if l = strings.TrimSpace(l); l != "" && !strings.HasPrefix(l, "#") {
			lines = append(lines, l)
		}
	}
	require.Equal(t, []string{"set -o errexit", "pushd /work_dir", "./step1_dvc", "./step2_dvc", "popd"}, lines)
}

func TestWriteExecutableOverwritesMode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "cmd")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o600))

	require.NoError(t, DvcCommand(out, assemble.Data{PythonScript: "s.py", MetaFileNameVar: "M"}))
	info, err := os.Stat(out)
	require.NoError(t, err)
	require.Equal(t, ExecMode, info.Mode().Perm())
}

func TestWriteExecutableUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := PipelineScript(filepath.Join(blocker, "pipeline.sh"), Pipeline{WorkDir: "."})
	require.ErrorIs(t, err, toolerr.ErrIO)
}
