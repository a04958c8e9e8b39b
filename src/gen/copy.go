package gen

import (
	"bytes"

	"github.com/genja-build/genja/src/core"
)

// writeCopyTarget emits one copy edge per source/output pair, then the
// phony collapsing them when there are several.
func writeCopyTarget(t *core.Target, out *bytes.Buffer) error {
	w := newTargetWriter(t, out)
	tool := t.Toolchain.Tool(core.ToolCopy)
	if tool == nil {
		return core.NewUserError("toolchain %s has no copy tool for %s", t.Toolchain.Label, t.Label)
	}
	if len(t.Action.Outputs) != 1 {
		return core.NewUserError("copy target %s must have exactly one output pattern", t.Label)
	}
	inputDeps := w.writeInputDepsPhonyAndGetDep(len(t.Sources))
	for _, source := range t.Sources {
		output := t.ApplySourcePattern(t.Action.Outputs[0], source)
		w.buildLine([]core.OutputFile{output}, tool.RuleName(t.Toolchain),
			[]core.OutputFile{w.sourceOutput(source)}, nil, inputDeps)
	}
	if len(t.Sources) > 1 {
		w.writePhonyForTarget(t.ComputedOutputs(), nil)
	}
	return nil
}
