package gen

import (
	"bytes"

	"github.com/genja-build/genja/src/core"
)

// writeBundleDataTarget treats each file of a bundle_data target as a
// copy plan into the bundle layout, collapsed behind the target's phony.
// Only the create_bundle ancestor that consumes the data depends on it.
func writeBundleDataTarget(t *core.Target, out *bytes.Buffer) error {
	w := newTargetWriter(t, out)
	tool := t.Toolchain.Tool(core.ToolCopyBundleData)
	if tool == nil {
		tool = t.Toolchain.Tool(core.ToolCopy)
	}
	if tool == nil {
		return core.NewUserError("toolchain %s cannot copy bundle data for %s", t.Toolchain.Label, t.Label)
	}
	var outputs []core.OutputFile
	for _, source := range t.Sources {
		output := core.OutputFile(t.TargetOutDir() + "/" + t.Label.Name + "/" + source.Name())
		outputs = append(outputs, output)
		w.buildLine([]core.OutputFile{output}, tool.RuleName(t.Toolchain),
			[]core.OutputFile{w.sourceOutput(source)}, nil, nil)
	}
	w.writePhonyForTarget(outputs, nil)
	return nil
}

// writeCreateBundleTarget emits the assembly step of a bundle: a phony
// gathering every bundle_data reachable through the target's deps, which
// stands in for the driver action that lays the bundle out on disk.
func writeCreateBundleTarget(t *core.Target, out *bytes.Buffer) error {
	w := newTargetWriter(t, out)
	var files []core.OutputFile
	seen := make(map[*core.Target]bool)
	var collect func(dep *core.Target)
	collect = func(dep *core.Target) {
		if seen[dep] {
			return
		}
		seen[dep] = true
		if dep.OutputType == core.BundleData {
			if out, ok := dep.DependencyOutput(); ok {
				files = append(files, out)
			}
			return
		}
		for _, d := range dep.AllDeps() {
			collect(d.Target)
		}
	}
	for _, dep := range t.AllDeps() {
		collect(dep.Target)
	}
	orderOnly := w.writeInputDepsPhonyAndGetDep(1)
	w.writePhonyForTarget(files, orderOnly)
	return nil
}
