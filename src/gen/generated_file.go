package gen

import (
	"bytes"
	"strings"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/fs"
)

// writeGeneratedFileTarget resolves a generated_file target: it runs the
// metadata walk over the target's dependencies at generation time,
// writes the collected contents to the declared output, and emits a
// phony so consumers can order on it. The file itself goes through
// write-if-changed like everything else.
func writeGeneratedFileTarget(t *core.Target, out *bytes.Buffer, buildDirPath string) error {
	w := newTargetWriter(t, out)

	contents := t.GeneratedContents
	if len(t.DataKeys) > 0 {
		var roots []*core.Target
		for _, dep := range t.AllDeps() {
			roots = append(roots, dep.Target)
		}
		values, _, err := core.WalkMetadata(roots, t.DataKeys, t.WalkKeys, t.RebaseGenerated)
		if err != nil {
			return err
		}
		var b strings.Builder
		for _, v := range values {
			b.WriteString(renderValue(v))
			b.WriteByte('\n')
		}
		contents = b.String()
	}

	outputs := t.ComputedOutputs()
	if len(outputs) == 0 {
		return core.NewUserError("generated_file target %s declares no output", t.Label)
	}
	if buildDirPath != "" {
		if _, err := fs.WriteIfChanged(buildDirPath+"/"+string(outputs[0]), []byte(contents)); err != nil {
			return core.NewIOError(err)
		}
	}

	// The file exists once generation finishes, so the edge is a phony
	// over the input deps purely for ordering.
	inputDeps := w.writeInputDepsPhonyAndGetDep(1)
	w.buildLine(outputs, "phony", nil, nil, inputDeps)
	return nil
}

func renderValue(v core.Value) string {
	switch {
	case v.IsList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = renderValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case v.IsBool:
		if v.Boolean {
			return "true"
		}
		return "false"
	}
	return v.Str
}
