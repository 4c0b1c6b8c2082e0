// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package docstring lexes reST-style Python docstrings into declared
// parameters and meta entries, and extracts function docstrings from
// Python scripts.
package docstring

import (
	"strings"

	"github.com/mlvtools/mlvtools/internal/annotation"
	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// Keywords introducing a parameter declaration.
var paramKeywords = map[string]bool{
	"param":     true,
	"parameter": true,
	"arg":       true,
	"argument":  true,
	"key":       true,
	"keyword":   true,
}

// Param is a documented parameter.
type Param struct {
	Name        string
	Type        string // empty when undeclared
	Description string
}

// Docstring is a lexed docstring.
type Docstring struct {
	Description string
	Params      []Param
	Meta        []annotation.Entry // every ":...:" entry in source order
}

// DeclaredParams returns the parameter name to type map used to validate
// related parameters.
func (d *Docstring) DeclaredParams() annotation.Params {
	params := make(annotation.Params, len(d.Params))
	for _, p := range d.Params {
		params[p.Name] = p.Type
	}
	return params
}

// Parse lexes text. The meta section starts at the first line beginning
// with a colon; every following line that begins with a colon opens a new
// entry and other lines continue the current one.
func Parse(text string) (*Docstring, error) {
	text = CleanDoc(text)
	d := &Docstring{}

	lines := strings.Split(text, "\n")
	start := len(lines)
	for i, line := range lines {
		if strings.HasPrefix(line, ":") {
			start = i
			break
		}
	}
	d.Description = strings.TrimSpace(strings.Join(lines[:start], "\n"))

	var chunks []string
	for _, line := range lines[start:] {
		if strings.HasPrefix(line, ":") || len(chunks) == 0 {
			chunks = append(chunks, line)
			continue
		}
		chunks[len(chunks)-1] += "\n" + line
	}

	types := make(map[string]string)
	for _, chunk := range chunks {
		e, err := parseChunk(chunk)
		if err != nil {
			return nil, err
		}
		d.Meta = append(d.Meta, e)

		switch {
		case len(e.Args) == 0:
		case paramKeywords[e.Args[0]] && len(e.Args) == 2:
			d.Params = append(d.Params, Param{Name: e.Args[1], Description: e.Description})
		case paramKeywords[e.Args[0]] && len(e.Args) == 3:
			d.Params = append(d.Params, Param{Name: e.Args[2], Type: e.Args[1], Description: e.Description})
		case e.Args[0] == "type" && len(e.Args) == 2:
			types[e.Args[1]] = e.Description
		}
	}
	for i, p := range d.Params {
		if t, ok := types[p.Name]; ok && p.Type == "" {
			d.Params[i].Type = t
		}
	}
	return d, nil
}

// parseChunk splits ":args: description" at the second colon.
func parseChunk(chunk string) (annotation.Entry, error) {
	argsPart, desc, ok := strings.Cut(strings.TrimPrefix(chunk, ":"), ":")
	if !ok {
		return annotation.Entry{}, toolerr.New(toolerr.Syntax,
			"docstring format error, cannot parse meta information near %q", firstLine(chunk))
	}
	desc = strings.TrimSpace(desc)
	if first, rest, multi := strings.Cut(desc, "\n"); multi {
		desc = first + "\n" + CleanDoc(rest)
	}
	return annotation.Entry{Args: strings.Fields(argsPart), Description: desc}, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// CleanDoc normalises docstring indentation: tabs are expanded, the first
// line is left-trimmed, the common indentation of the other lines is
// removed, and leading and trailing blank lines are dropped.
func CleanDoc(doc string) string {
	lines := strings.Split(expandTabs(doc), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " ")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}

	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := 8 - col%8
			sb.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n':
			sb.WriteRune(r)
			col = 0
		default:
			sb.WriteRune(r)
			col++
		}
	}
	return sb.String()
}
