// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package annotation

import (
	"strings"

	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// ParseEntry parses a ":dvc-in [related_param]?: path" or
// ":dvc-out [related_param]?: path" entry into an In or Out. args holds the tokens between the
// leading colon and the closing colon; description is the text after it.
// Checks run in order and the first failure is returned.
func ParseEntry(params Params, args []string, description, keyword string) (Annotation, error) {
	related, err := checkPathEntry(params, args, description, keyword)
	if err != nil {
		return nil, err
	}
	switch keyword {
	case KeyIn:
		return In{Path: description, RelatedParam: related}, nil
	case KeyOut:
		return Out{Path: description, RelatedParam: related}, nil
	default:
		return nil, toolerr.New(toolerr.Syntax, "unexpected keyword %q: not a path annotation", keyword)
	}
}

// ParseExtra parses a ":dvc-extra: text" entry.
func ParseExtra(args []string, description string) (Extra, error) {
	if err := checkSingleEntry(args, description, KeyExtra); err != nil {
		return Extra{}, err
	}
	return Extra{Text: description}, nil
}

// ParseWholeCommand parses a ":dvc-cmd: command" entry.
func ParseWholeCommand(args []string, description string) (WholeCommand, error) {
	if err := checkSingleEntry(args, description, KeyWholeCommand); err != nil {
		return WholeCommand{}, err
	}
	return WholeCommand{Text: description}, nil
}

// ParseMetaFileName parses a ":dvc-meta-file: name" entry. The returned name
// always ends with MetaFileExt.
func ParseMetaFileName(args []string, description string) (MetaFileName, error) {
	if err := checkSingleEntry(args, description, KeyMetaFile); err != nil {
		return MetaFileName{}, err
	}
	return MetaFileName{Name: withMetaFileExt(description)}, nil
}

// checkPathEntry validates an In/Out entry and returns its related
// parameter, empty when none is given.
func checkPathEntry(params Params, args []string, description, keyword string) (string, error) {
	if len(args) == 0 {
		return "", toolerr.New(toolerr.Syntax, "empty annotation")
	}
	if len(args) > 2 {
		return "", toolerr.New(toolerr.Syntax,
			"invalid syntax %s, expected :%s [related_param]?: {file_path}", formatArgs(args), keyword)
	}
	if args[0] != keyword {
		return "", toolerr.New(toolerr.Syntax, "unexpected keyword %q, expected %q", args[0], keyword)
	}
	if description == "" {
		return "", toolerr.New(toolerr.Syntax, "missing value: no path given for %s", formatArgs(args))
	}
	if len(args) == 1 {
		return "", nil
	}

	related := args[1]
	typeName, ok := params[related]
	if !ok {
		return "", toolerr.New(toolerr.Syntax, "unknown related parameter %q in %s", related, formatArgs(args))
	}
	if typeName != "" && typeName != "str" {
		return "", toolerr.New(toolerr.Syntax, "unsupported type %q for %s", typeName, formatArgs(args))
	}
	return related, nil
}

// checkSingleEntry validates an entry that takes no related parameter.
func checkSingleEntry(args []string, description, keyword string) error {
	if len(args) == 0 {
		return toolerr.New(toolerr.Syntax, "empty annotation")
	}
	if len(args) > 1 {
		return toolerr.New(toolerr.Syntax,
			"invalid syntax %s, expected :%s: {value}", formatArgs(args), keyword)
	}
	if args[0] != keyword {
		return toolerr.New(toolerr.Syntax, "unexpected keyword %q, expected %q", args[0], keyword)
	}
	if description == "" {
		return toolerr.New(toolerr.Syntax, "missing value for :%s:", keyword)
	}
	return nil
}

func formatArgs(args []string) string {
	return ":" + strings.Join(args, " ") + ":"
}
