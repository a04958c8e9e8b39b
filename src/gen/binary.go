package gen

import (
	"bytes"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/ninja"
)

// binaryWriter emits C/C++ targets: shared compile variables, one build
// edge per translation unit, then the link (or archive, or phony) edge.
// Like the Rust writer it always goes into its own sub-file, because the
// compile-flag variables are resolved from the enclosing file scope at
// execution time, not captured where the rule is invoked.
type binaryWriter struct {
	targetWriter
}

func writeBinaryTarget(t *core.Target, out *bytes.Buffer) error {
	w := &binaryWriter{newTargetWriter(t, out)}
	return w.run()
}

func (w *binaryWriter) run() error {
	w.writeCompilerVars()

	objects, err := w.writeSources()
	if err != nil {
		return err
	}
	if w.t.OutputType == core.SourceSet {
		w.writePhonyForTarget(objects, nil)
		return nil
	}
	return w.writeLinkerStuff(objects)
}

func (w *binaryWriter) writeCompilerVars() {
	t := w.t
	var cflags, cflagsC, cflagsCC, defines []string
	var includeDirs []string
	t.ConfigValuesIterator(func(v *core.ConfigValues) {
		cflags = append(cflags, v.CFlags...)
		cflagsC = append(cflagsC, v.CFlagsC...)
		cflagsCC = append(cflagsCC, v.CFlagsCC...)
		for _, d := range v.Defines {
			defines = append(defines, "-D"+ninja.Escape(d, ninja.EscapeNinjaCommand))
		}
		for _, d := range v.IncludeDirs {
			includeDirs = append(includeDirs, "-I"+ninja.Escape(t.Settings.RebaseSourceDir(d), ninja.EscapeNinja))
		}
	})
	w.writeListVar("defines", "", defines)
	w.writeListVar("include_dirs", "", includeDirs)
	w.writeListVar("cflags", "", cflags)
	if t.SourceTypes.Has(core.SourceC) {
		w.writeListVar("cflags_c", "", cflagsC)
	}
	if t.SourceTypes.Has(core.SourceCPP) {
		w.writeListVar("cflags_cc", "", cflagsCC)
	}
	w.writeSharedVars()
}

// writeSources emits one compile edge per compilable source and returns
// the object files produced.
func (w *binaryWriter) writeSources() ([]core.OutputFile, error) {
	t := w.t
	orderOnly := w.inputDeps()
	var objects []core.OutputFile
	for _, source := range t.Sources {
		tool := compileTool(t, source)
		if tool == nil || len(tool.Outputs) == 0 {
			continue // Headers and unknown types just ride along as inputs.
		}
		obj := t.ApplySourcePattern(tool.Outputs[0], source)
		objects = append(objects, obj)
		w.buildLine([]core.OutputFile{obj}, tool.RuleName(t.Toolchain),
			[]core.OutputFile{w.sourceOutput(source)}, nil, orderOnly)
	}
	return objects, nil
}

// inputDeps collects what every compile in this target must wait for:
// recursive hard deps and toolchain deps, behind a phony when numerous.
// The target's declared inputs are not part of it.
func (w *binaryWriter) inputDeps() []core.OutputFile {
	numUses := len(w.t.Sources)
	if numUses == 0 {
		numUses = 1
	}
	return w.writeInputDepsPhonyAndGetDep(numUses)
}

// writeLinkerStuff emits the final link edge with its rule-scope vars.
func (w *binaryWriter) writeLinkerStuff(objects []core.OutputFile) error {
	t := w.t
	tool := t.ToolForTarget()
	if tool == nil {
		return core.NewInternalError("no linker tool for %s target %s", t.OutputType, t.Label)
	}

	implicit := append([]core.OutputFile{}, objects...)
	var orderOnly []core.OutputFile
	var libs []string
	for _, pair := range t.Inherited.Ordered() {
		lib := pair.Target
		if lib.OutputType == core.SourceSet {
			implicit = append(implicit, lib.ComputedOutputs()...)
			if stamp, ok := lib.DependencyOutputPhony(); ok {
				orderOnly = append(orderOnly, stamp)
			}
			continue
		}
		if dep, ok := lib.DependencyOutputFile(); ok {
			implicit = append(implicit, dep)
		}
		if link, ok := lib.LinkOutput(); ok {
			libs = append(libs, ninja.Escape(string(link), ninja.EscapeNinja))
		}
	}
	for _, dir := range t.AllLibDirs() {
		libs = append(libs, "-L"+ninja.Escape(t.Settings.RebaseSourceDir(dir), ninja.EscapeNinja))
	}
	for _, lib := range t.AllLibs() {
		if lib.IsSourceFile() {
			libs = append(libs, ninja.Escape(t.Settings.RebaseSourceFile(lib.SourceFile()), ninja.EscapeNinja))
		} else {
			libs = append(libs, "-l"+ninja.Escape(lib.Value(), ninja.EscapeNinja))
		}
	}

	w.buildLine(t.ComputedOutputs(), tool.RuleName(t.Toolchain), objects, implicit[len(objects):], orderOnly)
	w.writeListVar("ldflags", "  ", t.AllLdFlags())
	w.writeListVar("libs", "  ", libs)
	return nil
}

func compileTool(t *core.Target, f core.SourceFile) *core.Tool {
	switch core.SourceTypeOf(f) {
	case core.SourceC:
		return t.Toolchain.Tool(core.ToolCc)
	case core.SourceCPP:
		return t.Toolchain.Tool(core.ToolCxx)
	case core.SourceASM:
		return t.Toolchain.Tool(core.ToolAsm)
	}
	return nil
}
