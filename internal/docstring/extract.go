// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package docstring

import (
	"errors"
	"os"
	"regexp"
	"strings"

	"github.com/mlvtools/mlvtools/internal/toolerr"
)

var defPattern = regexp.MustCompile(`^def[ \t]+([A-Za-z_]\w*)[ \t]*\(`)

// Info describes the first function of a Python script.
type Info struct {
	FuncName  string
	Raw       string // cleaned docstring text
	Docstring *Docstring
	FilePath  string
}

// ExtractFile reads a Python script and lexes the docstring of its first
// function.
func ExtractFile(path string) (*Info, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.IO, err, "python input script %s not found", path)
	}
	info, err := Extract(string(src))
	if err != nil {
		return nil, toolerr.Wrap(toolerr.KindOf(err), err, "invalid python script %s", path)
	}
	info.FilePath = path
	return info, nil
}

// Extract finds the first function defined in src and lexes its docstring.
// Shallower definitions win over nested ones, so a top-level function is
// preferred to a method declared above it. Coroutines are ignored.
// A function without a docstring yields an empty Docstring.
func Extract(src string) (*Info, error) {
	sites, err := scanDefs(src)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.Syntax, err, "malformed python source")
	}
	if len(sites) == 0 {
		return nil, toolerr.New(toolerr.Syntax, "no function found")
	}
	site := sites[0]
	for _, s := range sites[1:] {
		if s.indent < site.indent {
			site = s
		}
	}
	name := site.name

	bodyStart, err := skipSignature(src, site.open)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.Syntax, err, "function %s", name)
	}

	raw, err := leadingString(src[bodyStart:])
	if err != nil {
		return nil, toolerr.Wrap(toolerr.Syntax, err, "function %s", name)
	}
	raw = CleanDoc(raw)
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Info{FuncName: name, Raw: raw, Docstring: doc}, nil
}

// defSite is a def statement found at the start of a logical line.
type defSite struct {
	name   string
	indent int // column of the def keyword
	open   int // offset of the opening parenthesis
}

// scanDefs lists the def statements of src in source order. String
// literals, comments and bracketed continuation lines are skipped, so only
// real statements are reported.
func scanDefs(src string) ([]defSite, error) {
	var sites []defSite
	depth := 0
	lineStart := true
	for i := 0; i < len(src); i++ {
		if lineStart {
			lineStart = false
			col := 0
			for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\f') {
				if src[i] == '\t' {
					col = col/8*8 + 8
				} else if src[i] == ' ' {
					col++
				}
				i++
			}
			if i >= len(src) {
				break
			}
			if m := defPattern.FindStringSubmatchIndex(src[i:]); m != nil {
				sites = append(sites, defSite{
					name:   src[i+m[2] : i+m[3]],
					indent: col,
					open:   i + m[1] - 1,
				})
			}
		}

		switch c := src[i]; c {
		case '#':
			for i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
		case '\'', '"':
			end, err := skipString(src, i)
			if err != nil {
				return nil, err
			}
			i = end - 1
		case '\\':
			// Explicit line joining.
			if i+1 < len(src) && src[i+1] == '\r' {
				i++
			}
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '\n':
			lineStart = depth == 0
		}
	}
	return sites, nil
}

// skipSignature starts at the opening parenthesis of a def and returns the
// offset just past the colon ending the signature.
func skipSignature(src string, open int) (int, error) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch c := src[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '\'', '"':
			end, err := skipString(src, i)
			if err != nil {
				return 0, err
			}
			i = end - 1
		case ':':
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, errors.New("unterminated function signature")
}

// leadingString returns the value of the string literal that starts the
// body, or "" when the body does not start with one.
func leadingString(body string) (string, error) {
	i := skipBlank(body)
	j := i
	for j < len(body) && j-i < 2 && strings.ContainsRune("rRuU", rune(body[j])) {
		j++
	}
	if j >= len(body) || (body[j] != '"' && body[j] != '\'') {
		return "", nil
	}
	end, err := skipString(body, j)
	if err != nil {
		return "", err
	}
	q := quoteLen(body, j)
	return body[j+q : end-q], nil
}

// skipBlank skips whitespace, line continuations and comments.
func skipBlank(s string) int {
	i := 0
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\r', '\n', '\\':
			i++
		case '#':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

// skipString returns the offset just past the string literal opening at
// start.
func skipString(src string, start int) (int, error) {
	q := quoteLen(src, start)
	delim := src[start : start+q]
	for i := start + q; i < len(src); i++ {
		switch {
		case src[i] == '\\':
			i++
		case q == 1 && src[i] == '\n':
			return 0, errors.New("unterminated string literal")
		case strings.HasPrefix(src[i:], delim):
			return i + q, nil
		}
	}
	return 0, errors.New("unterminated string literal")
}

func quoteLen(src string, start int) int {
	c := src[start]
	if start+2 < len(src) && src[start+1] == c && src[start+2] == c {
		return 3
	}
	return 1
}
