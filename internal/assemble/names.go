// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package assemble

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mlvtools/mlvtools/internal/annotation"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// ToCmdParam converts a parameter name to its command-line flag form.
func ToCmdParam(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// ToBashVariable converts a parameter name to a shell variable name.
func ToBashVariable(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// ToLowerAlphanum collapses runs of non-word characters to a single
// underscore and lower-cases the result.
func ToLowerAlphanum(name string) string {
	return strings.ToLower(nonWord.ReplaceAllString(name, "_"))
}

// ToDvcMetaFilename derives the metadata file name of a command script.
func ToDvcMetaFilename(scriptPath string) string {
	return ToLowerAlphanum(stem(filepath.Base(scriptPath))) + annotation.MetaFileExt
}

// ToDvcCmdName derives the DVC command script name of a Python script.
func ToDvcCmdName(scriptName string) string {
	return stem(scriptName) + "_dvc"
}

// NormalizeNewlines turns a multi-line command into a shell line
// continuation sequence.
func NormalizeNewlines(cmd string) string {
	return strings.ReplaceAll(cmd, "\n", " \\\n")
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
