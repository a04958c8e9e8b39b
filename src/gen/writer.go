// Package gen turns resolved targets into ninja-dialect build files: one
// writer per target kind, a substitution layer shared between them, and
// the driver that fans writes out across a worker pool.
package gen

import (
	"bytes"

	"golang.org/x/exp/slices"
	"gopkg.in/op/go-logging.v1"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/ninja"
)

var log = logging.MustGetLogger("gen")

// targetWriter carries the state shared by every per-kind writer: the
// target, the buffer its rules accumulate into and the path emitter.
type targetWriter struct {
	t    *core.Target
	out  *bytes.Buffer
	path ninja.PathOutput
}

func newTargetWriter(t *core.Target, out *bytes.Buffer) targetWriter {
	return targetWriter{
		t:    t,
		out:  out,
		path: ninja.PathOutput{Settings: t.Settings},
	}
}

// writeVar emits one scalar variable definition. The value follows the
// "name = " prefix even when empty; list-valued variables go through
// writeListVar instead, which omits the trailing space.
func (w *targetWriter) writeVar(name, value string) {
	w.out.WriteString(name)
	w.out.WriteString(" = ")
	w.out.WriteString(value)
	w.out.WriteByte('\n')
}

// writeListVar emits a variable whose value is a space-joined list.
func (w *targetWriter) writeListVar(name, indent string, items []string) {
	w.out.WriteString(indent)
	w.out.WriteString(name)
	w.out.WriteString(" =")
	for _, item := range items {
		w.out.WriteByte(' ')
		w.out.WriteString(item)
	}
	w.out.WriteByte('\n')
}

// writeSharedVars emits the target-scope variables any of the
// toolchain's tools reference, in their fixed order, followed by a blank
// line if anything was written.
func (w *targetWriter) writeSharedVars() {
	written := false
	for _, name := range core.SharedVarOrder {
		if !w.t.Toolchain.Uses(name) {
			continue
		}
		value, _ := w.t.GetTargetSubstitution(name)
		w.writeVar(name, ninja.Escape(value, ninja.EscapeNinja))
		written = true
	}
	if written {
		w.out.WriteByte('\n')
	}
}

// buildLine emits one build edge.
func (w *targetWriter) buildLine(outputs []core.OutputFile, rule string, explicit, implicit, orderOnly []core.OutputFile) {
	w.out.WriteString("build")
	w.path.WriteFiles(w.out, outputs)
	w.out.WriteString(": ")
	w.out.WriteString(rule)
	w.path.WriteFiles(w.out, explicit)
	if len(implicit) > 0 {
		w.out.WriteString(" |")
		w.path.WriteFiles(w.out, implicit)
	}
	if len(orderOnly) > 0 {
		w.out.WriteString(" ||")
		w.path.WriteFiles(w.out, orderOnly)
	}
	w.out.WriteByte('\n')
}

// sourceOutput is the path of a source file as it appears on rule lines.
func (w *targetWriter) sourceOutput(f core.SourceFile) core.OutputFile {
	return core.OutputFile(w.t.Settings.RebaseSourceFile(f))
}

// writeInputDepsPhonyAndGetDep collects the dependencies a
// non-binary target needs before it can run: its declared inputs, the
// script for actions, and every recursive hard dep. A single collected
// input is returned directly; multiple are collapsed behind one
// .inputdeps phony, unless the output will only be referenced once in
// which case the phony would be pure overhead and the list is returned
// as-is.
func (w *targetWriter) writeInputDepsPhonyAndGetDep(numOutputUses int) []core.OutputFile {
	t := w.t
	var files []core.SourceFile
	if t.OutputType == core.Action || t.OutputType == core.ActionForEach {
		files = append(files, t.Action.Script)
	}
	if !t.IsBinary() {
		files = append(files, t.AllInputs()...)
	}
	if t.OutputType == core.Action {
		files = append(files, t.Sources...)
	}

	var deps []*core.Target
	for hd := range t.RecursiveHardDeps {
		// Bundle data is data-only everywhere except the create_bundle
		// that consumes it.
		if hd.OutputType != core.BundleData || t.OutputType == core.CreateBundle {
			deps = append(deps, hd)
		}
	}
	deps = append(deps, toolchainDeps(t)...)

	if len(files)+len(deps) == 0 {
		return nil
	}
	if len(files) == 1 && len(deps) == 0 {
		return []core.OutputFile{w.sourceOutput(files[0])}
	}
	if len(files) == 0 && len(deps) == 1 {
		if out, ok := deps[0].DependencyOutput(); ok {
			return []core.OutputFile{out}
		}
		return nil
	}

	var outs []core.OutputFile
	for _, f := range files {
		outs = append(outs, w.sourceOutput(f))
	}
	// Sort targets by label so output doesn't depend on map order.
	slices.SortFunc(deps, func(a, b *core.Target) bool { return a.Label.Less(b.Label) })
	for _, dep := range deps {
		if out, ok := dep.DependencyOutput(); ok {
			outs = append(outs, out)
		}
	}
	if numOutputUses == 1 {
		return outs
	}

	phony := core.OutputFile(t.TargetOutDir() + "/" + t.Label.Name + ".inputdeps")
	w.buildLine([]core.OutputFile{phony}, "phony", outs, nil, nil)
	return []core.OutputFile{phony}
}

// toolchainDeps returns the targets the toolchain itself requires.
func toolchainDeps(t *core.Target) []*core.Target {
	var ret []*core.Target
	for _, dep := range t.Toolchain.Deps {
		ret = append(ret, dep.Target)
	}
	return ret
}

// writePhonyForTarget writes the phony edge collapsing this target's
// outputs, if it has one.
func (w *targetWriter) writePhonyForTarget(files, orderOnly []core.OutputFile) {
	phony, ok := w.t.DependencyOutputPhony()
	if !ok {
		return
	}
	w.buildLine([]core.OutputFile{phony}, "phony", files, nil, orderOnly)
}

// stampRule is the rule used for input stamps of binary targets.
func (w *targetWriter) stampRule() string {
	if tool := w.t.Toolchain.Tool(core.ToolStamp); tool != nil {
		return tool.RuleName(w.t.Toolchain)
	}
	return "phony"
}
