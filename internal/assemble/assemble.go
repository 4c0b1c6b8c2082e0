// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package assemble turns an aggregated annotation set into the flat data
// consumed by the DVC command template.
package assemble

import (
	"fmt"
	"path"
	"strings"

	"github.com/mlvtools/mlvtools/internal/annotation"
)

// Var is a shell variable assignment. Order matters, so extra variables are
// passed as a slice rather than a map.
type Var struct {
	Name  string
	Value string
}

// Assignment renders the variable as NAME="value".
func (v Var) Assignment() string {
	return fmt.Sprintf("%s=\"%s\"", v.Name, v.Value)
}

// Context is the generation context of one command.
type Context struct {
	CommandPath     string // path of the generated callable's command, relative to the work dir
	MetaVarName     string // shell variable holding the metadata file name
	MetaFileRootDir string // optional directory prefix of the metadata file
	ExtraVars       []Var
}

// Data is the template contract. In whole-command mode only Variables,
// the meta file fields and WholeCommand are set.
type Data struct {
	Variables             []string `json:"variables"`
	DvcInputs             []string `json:"dvc_inputs,omitempty"`
	DvcOutputs            []string `json:"dvc_outputs,omitempty"`
	PythonParams          string   `json:"python_params,omitempty"`
	PythonScript          string   `json:"python_script,omitempty"`
	MetaFileNameVarAssign string   `json:"meta_file_name_var_assign"`
	MetaFileNameVar       string   `json:"meta_file_name_var"`
	WholeCommand          string   `json:"whole_command,omitempty"`
}

// Assemble builds the template data for set in the given context.
func Assemble(set *annotation.Set, ctx Context) Data {
	data := Data{
		Variables:       make([]string, 0, len(ctx.ExtraVars)),
		MetaFileNameVar: ctx.MetaVarName,
	}
	for _, v := range ctx.ExtraVars {
		data.Variables = append(data.Variables, v.Assignment())
	}

	metaFile := ToDvcMetaFilename(ctx.CommandPath)
	if set.MetaFile != nil {
		metaFile = set.MetaFile.Name
	}
	if ctx.MetaFileRootDir != "" {
		metaFile = path.Join(ctx.MetaFileRootDir, metaFile)
	}
	data.MetaFileNameVarAssign = Var{Name: ctx.MetaVarName, Value: metaFile}.Assignment()

	if !set.Generated() {
		data.WholeCommand = NormalizeNewlines(set.Cmd.Text)
		return data
	}

	data.PythonScript = ctx.CommandPath
	data.DvcInputs = []string{}
	data.DvcOutputs = []string{}
	var params []string

	bind := func(filePath, related string, refs *[]string) {
		if related == "" {
			*refs = append(*refs, filePath)
			return
		}
		name := ToBashVariable(related)
		data.Variables = append(data.Variables, Var{Name: name, Value: filePath}.Assignment())
		*refs = append(*refs, "$"+name)
		params = append(params, fmt.Sprintf("--%s $%s", ToCmdParam(related), name))
	}
	for _, in := range set.In {
		bind(in.Path, in.RelatedParam, &data.DvcInputs)
	}
	for _, out := range set.Out {
		bind(out.Path, out.RelatedParam, &data.DvcOutputs)
	}
	for _, extra := range set.Extra {
		params = append(params, extra.Text)
	}
	data.PythonParams = strings.Join(params, " ")
	return data
}
