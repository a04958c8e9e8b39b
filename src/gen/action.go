package gen

import (
	"bytes"
	"strings"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/ninja"
)

// actionWriter emits action and action_foreach targets. Each target gets
// its own rule (the command is unique to it), then one build edge for
// the whole action or one per source for foreach. The script itself is
// always an implicit input so edits to it re-run the action.
type actionWriter struct {
	targetWriter
}

func writeActionTarget(t *core.Target, out *bytes.Buffer) error {
	w := &actionWriter{newTargetWriter(t, out)}
	return w.run()
}

func (w *actionWriter) run() error {
	t := w.t
	rule := actionRuleName(t)
	w.out.WriteString("rule " + rule + "\n")
	w.out.WriteString("  command = " + w.command() + "\n")
	if t.Action.Depfile != "" {
		depfile := string(t.ApplyOutputPattern(replaceSourceSubs(ninja.Escape(t.Action.Depfile, ninja.EscapeNinja))))
		w.out.WriteString("  depfile = " + depfile + "\n")
	}

	inputDeps := w.writeInputDepsPhonyAndGetDep(w.numUses())

	if t.OutputType == core.ActionForEach {
		for _, source := range t.Sources {
			var outputs []core.OutputFile
			for _, pattern := range t.Action.Outputs {
				outputs = append(outputs, t.ApplySourcePattern(pattern, source))
			}
			w.buildLine(outputs, rule, []core.OutputFile{w.sourceOutput(source)}, inputDeps, nil)
		}
	} else {
		// The sources already rode along in the input deps; the edge
		// itself has no explicit inputs.
		w.buildLine(t.ComputedOutputs(), rule, nil, inputDeps, nil)
	}

	if len(t.ComputedOutputs()) > 1 || t.OutputType == core.ActionForEach && len(t.Sources) > 1 {
		w.writePhonyForTarget(t.ComputedOutputs(), nil)
	}
	return nil
}

func (w *actionWriter) numUses() int {
	if w.t.OutputType == core.ActionForEach {
		return len(w.t.Sources)
	}
	return 1
}

// command renders the script invocation with its arguments, expanding
// per-target substitutions (and per-source ones for foreach, which ninja
// re-expands via the rule-scope variables written on each edge).
func (w *actionWriter) command() string {
	t := w.t
	parts := []string{ninja.Escape(t.Settings.RebaseSourceFile(t.Action.Script), ninja.EscapeNinjaCommand)}
	for _, arg := range t.Action.Args {
		// Escape before substituting so ${in} and ${out} stay live.
		expanded := t.ApplyOutputPattern(replaceSourceSubs(ninja.Escape(arg, ninja.EscapeNinjaCommand)))
		parts = append(parts, string(expanded))
	}
	return strings.Join(parts, " ")
}

// replaceSourceSubs rewrites per-source placeholders into the ninja
// variables the executor substitutes at edge level, so one rule works
// for every source of a foreach action.
func replaceSourceSubs(s string) string {
	s = strings.ReplaceAll(s, "{{source}}", "${in}")
	return strings.ReplaceAll(s, "{{output}}", "${out}")
}

// actionRuleName derives the unique rule name for an action target from
// its label: //foo/bar:baz becomes __foo_bar_baz___rule.
func actionRuleName(t *core.Target) string {
	mangle := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			}
			return '_'
		}, s)
	}
	return "__" + mangle(t.Label.Dir) + "_" + mangle(t.Label.Name) + "___rule"
}
