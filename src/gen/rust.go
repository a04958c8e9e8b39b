package gen

import (
	"bytes"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/ninja"
)

// rustWriter emits the build block for one Rust compilation: the shared
// variable block, the single build edge pointing rustc at the crate
// root, and the four rule-local variables (externs, rustdeps, ldflags,
// sources) the rule template consumes.
type rustWriter struct {
	targetWriter
}

func writeRustTarget(t *core.Target, out *bytes.Buffer) error {
	w := &rustWriter{newTargetWriter(t, out)}
	return w.run()
}

func (w *rustWriter) run() error {
	t := w.t
	tool := t.ToolForTarget()
	if tool == nil || !tool.Kind.IsRust() {
		return core.NewInternalError("no Rust tool for target %s", t.Label)
	}

	// Declared inputs participate both as implicit inputs and, when there
	// are several, behind a stamp that orders the whole set.
	inputs := t.AllInputs()
	var inputsDep []core.OutputFile
	if len(inputs) == 1 {
		inputsDep = []core.OutputFile{w.sourceOutput(inputs[0])}
	} else if len(inputs) > 1 {
		stamp := core.OutputFile(t.TargetOutDir() + "/" + t.Label.Name + ".inputs.stamp")
		var files []core.OutputFile
		for _, input := range inputs {
			files = append(files, w.sourceOutput(input))
		}
		w.buildLine([]core.OutputFile{stamp}, w.stampRule(), files, nil, nil)
		inputsDep = []core.OutputFile{stamp}
	}

	w.writeCompilerVars()

	externs, externFiles, groupStamps := w.walkExterns()
	crates, objects, natives := w.classifyTransitiveLibs()

	// Implicit inputs: every source, every declared input, any extern
	// file from configs, then dependency artifacts: source-set objects,
	// direct crate outputs, native libraries.
	var implicit []core.OutputFile
	for _, source := range t.Sources {
		implicit = append(implicit, w.sourceOutput(source))
	}
	for _, input := range inputs {
		implicit = append(implicit, w.sourceOutput(input))
	}
	for _, e := range t.AllExterns() {
		if e.File.IsSourceFile() {
			implicit = append(implicit, w.sourceOutput(e.File.SourceFile()))
		}
	}
	implicit = append(implicit, objects...)
	implicit = append(implicit, externFiles...)
	for _, lib := range natives {
		if dep, ok := lib.DependencyOutputFile(); ok {
			implicit = append(implicit, dep)
		}
	}

	var orderOnly []core.OutputFile
	orderOnly = append(orderOnly, inputsDep...)
	orderOnly = append(orderOnly, groupStamps...)
	for _, lib := range natives {
		// Source sets have no linkable output of their own; ordering on
		// their stamp is what guarantees the objects exist.
		if lib.OutputType == core.SourceSet {
			if stamp, ok := lib.DependencyOutputPhony(); ok {
				orderOnly = appendUnique(orderOnly, stamp)
			}
		}
	}

	w.buildLine(t.ComputedOutputs(), tool.RuleName(t.Toolchain),
		[]core.OutputFile{w.sourceOutput(t.Rust.CrateRoot)}, implicit, orderOnly)

	w.writeListVar("externs", "  ", externs)
	w.writeListVar("rustdeps", "  ", w.rustDeps(crates, objects, natives))
	w.writeListVar("ldflags", "  ", t.AllLdFlags())
	sources := make([]string, 0, len(t.Sources)+len(inputs))
	for _, source := range t.Sources {
		sources = append(sources, w.path.SourcePath(source))
	}
	for _, input := range inputs {
		sources = append(sources, w.path.SourcePath(input))
	}
	w.writeListVar("sources", "  ", sources)
	return nil
}

// writeCompilerVars writes the fixed block of variables at the top of a
// Rust target's rules, ending with a blank line.
func (w *rustWriter) writeCompilerVars() {
	t := w.t
	w.writeVar("crate_name", ninja.Escape(t.Rust.CrateName, ninja.EscapeNinja))
	w.writeVar("crate_type", core.InferredCrateType(t).String())
	w.writeVar("output_extension", t.EffectiveOutputExtension())
	w.writeVar("output_dir", t.ExplicitOutputDir())
	w.writeListVar("rustflags", "", t.AllRustFlags())
	w.writeListVar("rustenv", "", t.AllRustEnv())
	w.writeSharedVars()
}

// walkExterns finds every crate the target may reference in source: a
// breadth-first walk seeded with the direct linked deps, continuing only
// along public edges. Groups are transparent (their children count as
// direct when the group itself is) and proc-macros are barriers: their
// own dependencies were loaded into the compiler, not linked into us.
// Returns the --extern switch list, the outputs of direct crates (which
// become implicit inputs) and the stamps of any groups crossed.
func (w *rustWriter) walkExterns() (externs []string, externFiles, groupStamps []core.OutputFile) {
	type item struct {
		t      *core.Target
		direct bool
	}
	var queue []item
	for _, dep := range w.t.PublicDeps {
		queue = append(queue, item{dep.Target, true})
	}
	for _, dep := range w.t.PrivateDeps {
		queue = append(queue, item{dep.Target, true})
	}
	visited := make(map[*core.Target]bool)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.t] {
			continue
		}
		visited[cur.t] = true
		switch {
		case cur.t.OutputType == core.Group:
			if stamp, ok := cur.t.DependencyOutputPhony(); ok {
				groupStamps = appendUnique(groupStamps, stamp)
			}
			for _, dep := range cur.t.PublicDeps {
				queue = append(queue, item{dep.Target, cur.direct})
			}
			if cur.direct {
				for _, dep := range cur.t.PrivateDeps {
					queue = append(queue, item{dep.Target, true})
				}
			}
		case core.IsRustCrate(cur.t):
			out, ok := cur.t.DependencyOutputFile()
			if !ok {
				continue
			}
			externs = append(externs, "--extern",
				ninja.Escape(w.t.CrateAlias(cur.t), ninja.EscapeNinja)+"="+ninja.Escape(string(out), ninja.EscapeNinja))
			if cur.direct {
				externFiles = append(externFiles, out)
			}
			if core.InferredCrateType(cur.t) != core.CrateProcMacro {
				for _, dep := range cur.t.PublicDeps {
					queue = append(queue, item{dep.Target, false})
				}
			}
		}
	}
	// Externs declared directly on configs come after the dep-derived
	// ones, in composition order.
	for _, e := range w.t.AllExterns() {
		path := e.File.Value()
		if e.File.IsSourceFile() {
			path = w.t.Settings.RebaseSourceFile(e.File.SourceFile())
		}
		externs = append(externs, "--extern",
			ninja.Escape(e.Name, ninja.EscapeNinja)+"="+ninja.Escape(path, ninja.EscapeNinja))
	}
	return externs, externFiles, groupStamps
}

// classifyTransitiveLibs splits the resolved transitive closure into the
// three groups the rustc command line cares about: Rust crates (whose
// directories feed -Ldependency), loose object files contributed by
// source sets, and native libraries passed to the linker.
func (w *rustWriter) classifyTransitiveLibs() (crates []*core.Target, objects []core.OutputFile, natives []*core.Target) {
	for _, pair := range w.t.RustTransitiveLibs.Ordered() {
		lib := pair.Target
		switch {
		case core.IsRustCrate(lib):
			crates = append(crates, lib)
		case lib.OutputType == core.SourceSet:
			objects = append(objects, lib.ComputedOutputs()...)
			natives = append(natives, lib)
		default:
			natives = append(natives, lib)
		}
	}
	return crates, objects, natives
}

// rustDeps assembles the rustdeps variable: -Ldependency for every
// distinct directory holding a Rust crate in the closure, -Lnative for
// directories of native link inputs, a single -Bdynamic followed by the
// explicit link-args, then any lib_dirs/libs from configs.
func (w *rustWriter) rustDeps(crates []*core.Target, objects []core.OutputFile, natives []*core.Target) []string {
	var ret []string
	var seenDirs []string
	for _, crate := range crates {
		if out, ok := crate.DependencyOutputFile(); ok {
			if dir := out.Dir(); !contains(seenDirs, dir) {
				seenDirs = append(seenDirs, dir)
				ret = append(ret, "-Ldependency="+ninja.Escape(dir, ninja.EscapeNinja))
			}
		}
	}

	// Link inputs: loose objects first, then libraries, mirroring the
	// order their directories and link-args are emitted in.
	var linkFiles []core.OutputFile
	linkFiles = append(linkFiles, objects...)
	for _, lib := range natives {
		if lib.OutputType == core.SourceSet {
			continue
		}
		if out, ok := lib.LinkOutput(); ok {
			linkFiles = append(linkFiles, out)
		}
	}
	seenDirs = seenDirs[:0]
	for _, f := range linkFiles {
		if dir := f.Dir(); !contains(seenDirs, dir) {
			seenDirs = append(seenDirs, dir)
			ret = append(ret, "-Lnative="+ninja.Escape(dir, ninja.EscapeNinja))
		}
	}
	if len(linkFiles) > 0 {
		ret = append(ret, "-Clink-arg=-Bdynamic")
		for _, f := range linkFiles {
			ret = append(ret, "-Clink-arg="+ninja.Escape(string(f), ninja.EscapeNinja))
		}
	}

	for _, dir := range w.t.AllLibDirs() {
		ret = append(ret, "-Lnative="+ninja.Escape(w.t.Settings.RebaseSourceDir(dir), ninja.EscapeNinja))
	}
	for _, lib := range w.t.AllLibs() {
		if lib.IsSourceFile() {
			ret = append(ret, "-Clink-arg="+ninja.Escape(w.t.Settings.RebaseSourceFile(lib.SourceFile()), ninja.EscapeNinja))
		} else {
			ret = append(ret, "-l"+ninja.Escape(lib.Value(), ninja.EscapeNinja))
		}
	}
	return ret
}

func appendUnique(files []core.OutputFile, f core.OutputFile) []core.OutputFile {
	for _, existing := range files {
		if existing == f {
			return files
		}
	}
	return append(files, f)
}

func contains(strs []string, s string) bool {
	for _, existing := range strs {
		if existing == s {
			return true
		}
	}
	return false
}
