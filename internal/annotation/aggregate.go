// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package annotation

import (
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// Aggregate routes every entry to its parser in source order and assembles
// the resulting Set. Entries whose first token is not a known keyword
// belong to unrelated documentation (":param ...:", ":return:") and are
// skipped. The first malformed entry aborts aggregation.
func Aggregate(params Params, entries []Entry) (*Set, error) {
	set := &Set{}
	var cmds []WholeCommand

	for _, e := range entries {
		if len(e.Args) == 0 {
			continue
		}
		a, err := parse(params, e)
		if err != nil {
			return nil, err
		}
		switch a := a.(type) {
		case In:
			set.In = append(set.In, a)
		case Out:
			set.Out = append(set.Out, a)
		case Extra:
			set.Extra = append(set.Extra, a)
		case WholeCommand:
			cmds = append(cmds, a)
		case MetaFileName:
			// Last declaration wins.
			set.MetaFile = &a
		}
	}

	if len(cmds) > 1 {
		return nil, toolerr.New(toolerr.Consistency,
			"only one whole-command entry allowed, found %d :%s: entries", len(cmds), KeyWholeCommand)
	}
	if len(cmds) == 1 {
		if len(set.In) > 0 || len(set.Out) > 0 || len(set.Extra) > 0 {
			return nil, toolerr.New(toolerr.Consistency,
				"whole-command is exclusive with generated-command annotations: :%s: cannot be combined with :%s:, :%s: or :%s:",
				KeyWholeCommand, KeyIn, KeyOut, KeyExtra)
		}
		set.Cmd = &cmds[0]
	}
	return set, nil
}

// parse dispatches e on its keyword. Unknown keywords yield a nil
// Annotation.
func parse(params Params, e Entry) (Annotation, error) {
	switch kw := e.Args[0]; kw {
	case KeyIn, KeyOut:
		return ParseEntry(params, e.Args, e.Description, kw)
	case KeyExtra:
		return ParseExtra(e.Args, e.Description)
	case KeyWholeCommand:
		return ParseWholeCommand(e.Args, e.Description)
	case KeyMetaFile:
		return ParseMetaFileName(e.Args, e.Description)
	}
	return nil, nil
}
