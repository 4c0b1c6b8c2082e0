// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package dvcmeta

import (
	"context"
	"log/slog"

	"github.com/mlvtools/mlvtools/internal/toolerr"
)

// graph is an arena of steps addressed by index. Step names are interned
// once; edges point from a step to the steps producing its dependencies.
type graph struct {
	steps []*Meta
	index map[string]int
	deps  [][]int
}

func newGraph() *graph {
	return &graph{index: make(map[string]int)}
}

// intern returns the node index of m, adding it on first sight. The first
// record registered under a name is kept as node data.
func (g *graph) intern(m *Meta) int {
	if id, ok := g.index[m.Name]; ok {
		return id
	}
	id := len(g.steps)
	g.index[m.Name] = id
	g.steps = append(g.steps, m)
	g.deps = append(g.deps, nil)
	return id
}

// Resolve returns the steps needed to reproduce target, every step after
// the steps it transitively depends on and target last. A dependency path
// that no candidate outputs is an external input. Candidates unrelated to
// target are left out.
//
// When several candidates declare the same output, the last one wins.
func Resolve(target *Meta, candidates []*Meta) []*Meta {
	producers := make(map[string]*Meta)
	for _, c := range candidates {
		for _, out := range c.Outs {
			if prev, ok := producers[out]; ok && prev.Name != c.Name {
				slog.Debug("Output declared by several steps, keeping the last one.",
					"output", out, "previous", prev.Name, "kept", c.Name)
			}
			producers[out] = c
		}
	}

	g := newGraph()
	root := g.intern(target)

	// Link lazily from the target so only reachable steps enter the arena.
	linked := make(map[int]bool)
	var link func(id int)
	link = func(id int) {
		if linked[id] {
			return
		}
		linked[id] = true
		for _, dep := range g.steps[id].Deps {
			producer, ok := producers[dep]
			if !ok {
				continue
			}
			pid := g.intern(producer)
			if pid == id {
				continue
			}
			g.deps[id] = append(g.deps[id], pid)
			link(pid)
		}
	}
	link(root)

	return g.postorder(root)
}

// postorder walks dependency edges depth-first from root and emits each
// node once all of its dependencies have been emitted. Nodes are marked on
// entry, so a cycle cannot loop forever.
func (g *graph) postorder(root int) []*Meta {
	visited := make([]bool, len(g.steps))
	order := make([]*Meta, 0, len(g.steps))
	var visit func(id int)
	visit = func(id int) {
		visited[id] = true
		for _, dep := range g.deps[id] {
			if !visited[dep] {
				visit(dep)
			}
		}
		order = append(order, g.steps[id])
	}
	visit(root)
	return order
}

// ResolveFiles loads the target and candidate metadata files and resolves
// the target. Any unreadable or malformed file fails the whole resolution.
func ResolveFiles(ctx context.Context, targetPath string, candidatePaths []string) ([]*Meta, error) {
	target, err := Load(targetPath)
	if err != nil {
		return nil, toolerr.Wrap(toolerr.KindOf(err), err, "cannot load target metadata")
	}
	candidates, err := LoadAll(ctx, candidatePaths)
	if err != nil {
		return nil, err
	}
	steps := Resolve(target, candidates)
	slog.Debug("Pipeline resolved.", "target", target.Name, "candidates", len(candidates), "steps", len(steps))
	return steps, nil
}
