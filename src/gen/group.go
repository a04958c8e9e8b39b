package gen

import (
	"bytes"

	"github.com/genja-build/genja/src/core"
)

// writeGroupTarget collapses a group's children behind one phony. Users
// take the phony order-only, so an empty group simply emits nothing and
// contributes nothing downstream.
func writeGroupTarget(t *core.Target, out *bytes.Buffer) error {
	w := newTargetWriter(t, out)
	phony, ok := t.DependencyOutputPhony()
	if !ok {
		return nil
	}
	var files []core.OutputFile
	for _, dep := range t.LinkedDeps() {
		if out, ok := dep.Target.DependencyOutput(); ok {
			files = append(files, out)
		}
	}
	var orderOnly []core.OutputFile
	for _, dep := range t.DataDeps {
		if out, ok := dep.Target.DependencyOutput(); ok {
			orderOnly = append(orderOnly, out)
		}
	}
	w.buildLine([]core.OutputFile{phony}, "phony", files, nil, orderOnly)
	return nil
}
