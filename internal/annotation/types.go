// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package annotation

import "strings"

// Keywords recognised as the first token of a docstring meta entry.
const (
	KeyIn           = "dvc-in"
	KeyOut          = "dvc-out"
	KeyExtra        = "dvc-extra"
	KeyWholeCommand = "dvc-cmd"
	KeyMetaFile     = "dvc-meta-file"
)

// MetaFileExt is the extension every metadata file name carries.
const MetaFileExt = ".dvc"

// Params maps a declared parameter name to its declared type. An empty type
// means the parameter was documented without one.
type Params map[string]string

// Entry is one tokenized meta line: ":args...: description".
type Entry struct {
	Args        []string
	Description string
}

// Annotation is one of In, Out, Extra, WholeCommand or MetaFileName.
type Annotation interface {
	annotation()
}

// In declares a pipeline input.
type In struct {
	Path         string
	RelatedParam string // empty when unbound
}

// Out declares a pipeline output.
type Out struct {
	Path         string
	RelatedParam string // empty when unbound
}

// Extra is a literal fragment appended to the generated command line.
type Extra struct {
	Text string
}

// WholeCommand replaces all generated command structure.
type WholeCommand struct {
	Text string
}

// MetaFileName overrides the generated metadata file name.
type MetaFileName struct {
	Name string
}

func (In) annotation()           {}
func (Out) annotation()          {}
func (Extra) annotation()        {}
func (WholeCommand) annotation() {}
func (MetaFileName) annotation() {}

// Set is the aggregated annotation collection of one docstring.
type Set struct {
	In       []In
	Out      []Out
	Extra    []Extra
	Cmd      *WholeCommand // nil unless a whole command was declared
	MetaFile *MetaFileName // nil unless overridden
}

// Generated reports whether the set describes a generated command, i.e. it
// has no whole-command override.
func (s *Set) Generated() bool {
	return s.Cmd == nil
}

func withMetaFileExt(name string) string {
	if strings.HasSuffix(name, MetaFileExt) {
		return name
	}
	return name + MetaFileExt
}
