package core

import (
	"strings"
)

// A Graph owns every target of a run. Targets are added in front-end
// order; ResolveAll walks them dependency-first.
type Graph struct {
	Settings   *BuildSettings
	targets    map[Label]*Target
	order      []*Target
	Toolchains []*Toolchain
}

// NewGraph constructs an empty graph for the given settings.
func NewGraph(settings *BuildSettings) *Graph {
	return &Graph{
		Settings: settings,
		targets:  make(map[Label]*Target),
	}
}

// AddTarget registers a target. Duplicate labels are a user error.
func (g *Graph) AddTarget(t *Target) error {
	if _, present := g.targets[t.Label]; present {
		return newUserError("duplicate target %s", t.Label)
	}
	t.Settings = g.Settings
	g.targets[t.Label] = t
	g.order = append(g.order, t)
	return nil
}

// Target looks a target up by label.
func (g *Graph) Target(label Label) *Target {
	return g.targets[label]
}

// Targets returns all targets in insertion order.
func (g *Graph) Targets() []*Target {
	return g.order
}

// AllLabels returns every target's label in insertion order.
func (g *Graph) AllLabels() []Label {
	ret := make([]Label, 0, len(g.order))
	for _, t := range g.order {
		ret = append(ret, t.Label)
	}
	return ret
}

// Subgraph returns a new graph containing only the given targets and
// everything reachable from them, preserving insertion order.
func (g *Graph) Subgraph(roots []*Target) *Graph {
	keep := make(map[*Target]bool)
	var visit func(t *Target)
	visit = func(t *Target) {
		if keep[t] {
			return
		}
		keep[t] = true
		for _, dep := range t.AllDeps() {
			visit(dep.Target)
		}
	}
	for _, t := range roots {
		visit(t)
	}
	sub := NewGraph(g.Settings)
	sub.Toolchains = g.Toolchains
	for _, t := range g.order {
		if keep[t] {
			sub.targets[t.Label] = t
			sub.order = append(sub.order, t)
		}
	}
	return sub
}

// TopoSort returns the targets ordered so every target follows all of
// its dependencies. The front-end contract says the graph is acyclic; we
// verify that defensively and report any cycle with its full path.
func (g *Graph) TopoSort() ([]*Target, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[*Target]int, len(g.order))
	sorted := make([]*Target, 0, len(g.order))
	var stack []*Target

	var visit func(t *Target) error
	visit = func(t *Target) error {
		switch state[t] {
		case done:
			return nil
		case visiting:
			return cycleError(stack, t)
		}
		state[t] = visiting
		stack = append(stack, t)
		for _, dep := range t.AllDeps() {
			if dep.Target == nil {
				return newInternalError("dependency %s of %s was never resolved to a target", dep.Label, t.Label)
			}
			if err := visit(dep.Target); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[t] = done
		sorted = append(sorted, t)
		return nil
	}
	for _, t := range g.order {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// cycleError renders the dependency cycle ending back at repeat.
func cycleError(stack []*Target, repeat *Target) *Err {
	start := 0
	for i, t := range stack {
		if t == repeat {
			start = i
			break
		}
	}
	labels := make([]string, 0, len(stack)-start+1)
	for _, t := range stack[start:] {
		labels = append(labels, t.Label.String())
	}
	labels = append(labels, repeat.Label.String())
	return &Err{Kind: ErrCycle, Msg: "dependency cycle:\n  " + strings.Join(labels, "\n -> ")}
}

// ResolveAll topologically sorts the graph and runs OnResolved on every
// target in order. User errors are collected per target and returned
// together; affected targets (and anything downstream of them) are left
// out of the returned list so emission can continue for the rest.
func (g *Graph) ResolveAll() ([]*Target, []error) {
	sorted, err := g.TopoSort()
	if err != nil {
		return nil, []error{err}
	}
	var errs []error
	resolved := make([]*Target, 0, len(sorted))
	failed := make(map[*Target]bool)
	for _, t := range sorted {
		skip := false
		for _, dep := range t.AllDeps() {
			if failed[dep.Target] {
				failed[t] = true
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if err := t.OnResolved(); err != nil {
			if e, ok := err.(*Err); ok && e.File == "" && t.DeclFile != "" {
				e.WithPosition(t.DeclFile, t.DeclLine, t.DeclCol, t.DeclSnippet)
			}
			log.Debugf("failed to resolve %s: %s", t.Label, err)
			failed[t] = true
			errs = append(errs, err)
			continue
		}
		resolved = append(resolved, t)
	}
	return resolved, errs
}
