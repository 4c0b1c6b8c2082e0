// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package render writes the generated shell scripts from embedded templates.
package render

import (
	"bytes"
	"embed"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"github.com/mlvtools/mlvtools/internal/assemble"
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// Template names.
const (
	DvcCmdTemplate         = "dvc-cmd.tpl"
	PipelineExportTemplate = "pipeline-export.tpl"
)

// ExecMode is the permission of every generated script.
const ExecMode os.FileMode = 0o755

//go:embed templates/*.tpl
var templatesFS embed.FS

var templates = template.Must(
	template.New("").Option("missingkey=error").ParseFS(templatesFS, "templates/*.tpl"))

// Pipeline is the data of the pipeline export template.
type Pipeline struct {
	WorkDir string
	Cmds    []string
}

// Execute renders the named template to w.
func Execute(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return toolerr.Wrap(toolerr.Format, err, "cannot render template %s", name)
	}
	return nil
}

// WriteExecutable renders the named template and writes it to outputPath
// with ExecMode, creating parent directories. Nothing is written when
// rendering fails.
func WriteExecutable(outputPath, name string, data any) error {
	slog.Debug("Writing script.", "path", outputPath, "template", name)

	var buf bytes.Buffer
	if err := Execute(&buf, name, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return toolerr.Wrap(toolerr.IO, err, "cannot create executable %s using template %s", outputPath, name)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), ExecMode); err != nil {
		return toolerr.Wrap(toolerr.IO, err, "cannot create executable %s using template %s", outputPath, name)
	}
	// WriteFile keeps the mode of an existing file and honours the umask.
	if err := os.Chmod(outputPath, ExecMode); err != nil {
		return toolerr.Wrap(toolerr.IO, err, "cannot make %s executable", outputPath)
	}
	return nil
}

// DvcCommand writes the DVC command script of one step.
func DvcCommand(outputPath string, data assemble.Data) error {
	return WriteExecutable(outputPath, DvcCmdTemplate, data)
}

// PipelineScript writes a script running every command of a pipeline in
// order from its work directory.
func PipelineScript(outputPath string, p Pipeline) error {
	return WriteExecutable(outputPath, PipelineExportTemplate, p)
}
