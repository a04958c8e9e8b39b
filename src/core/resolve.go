package core

// Dependency resolution. OnResolved runs once per target, after all of
// the target's dependencies have themselves been resolved, and fills in
// the computed fields: the transitive hard-dep set, the inherited
// libraries closures and the output files. After it returns the target
// never changes again.

// ToolForTarget returns the tool that builds this target's primary
// output, or nil for kinds with no single tool (eg. source sets).
func (t *Target) ToolForTarget() *Tool {
	if t.Toolchain == nil {
		return nil
	}
	if t.SourceTypes.RustUsed() && t.Rust.CrateRoot != "" {
		switch InferredCrateType(t) {
		case CrateBin:
			return t.Toolchain.Tool(ToolRustBin)
		case CrateRlib:
			return t.Toolchain.Tool(ToolRustRlib)
		case CrateDylib:
			return t.Toolchain.Tool(ToolRustDylib)
		case CrateCdylib:
			return t.Toolchain.Tool(ToolRustCdylib)
		case CrateProcMacro:
			return t.Toolchain.Tool(ToolRustMacro)
		case CrateStaticlib:
			return t.Toolchain.Tool(ToolRustStaticlib)
		}
	}
	switch t.OutputType {
	case Executable:
		return t.Toolchain.Tool(ToolLink)
	case StaticLibrary:
		return t.Toolchain.Tool(ToolAlink)
	case SharedLibrary:
		return t.Toolchain.Tool(ToolSolink)
	case LoadableModule:
		return t.Toolchain.Tool(ToolSolinkModule)
	case CopyFiles:
		return t.Toolchain.Tool(ToolCopy)
	}
	return t.Toolchain.Tool(ToolStamp)
}

// compileToolForSource returns the tool that compiles one source file.
func (t *Target) compileToolForSource(f SourceFile) *Tool {
	switch SourceTypeOf(f) {
	case SourceC:
		return t.Toolchain.Tool(ToolCc)
	case SourceCPP:
		return t.Toolchain.Tool(ToolCxx)
	case SourceASM:
		return t.Toolchain.Tool(ToolAsm)
	}
	return nil
}

// OnResolved validates the populated target and computes its derived
// state. Failures are *Err values; a user error leaves the target out of
// emission but doesn't stop the rest of the graph.
func (t *Target) OnResolved() error {
	if t.resolved {
		return newInternalError("target %s resolved twice", t.Label)
	}
	t.resolved = true

	if t.Toolchain == nil {
		return newUserError("target %s has no toolchain", t.Label)
	}
	if err := t.validate(); err != nil {
		return err
	}
	t.fillRecursiveHardDeps()
	t.fillInheritedLibraries()
	t.fillRustTransitiveLibs()
	return t.fillOutputFiles()
}

func (t *Target) validate() error {
	if t.SourceTypes.RustUsed() {
		if t.OutputType == SourceSet {
			return newUserError("target %s is a source_set with Rust sources, which cannot be expressed; use a rust_library instead", t.Label)
		}
		if t.Rust.CrateRoot == "" {
			return newUserError("target %s has Rust sources but no crate root", t.Label)
		}
		found := false
		for _, s := range t.Sources {
			if s == t.Rust.CrateRoot {
				found = true
				break
			}
		}
		if !found {
			return newUserError("crate root %s of %s is not one of its sources", t.Rust.CrateRoot, t.Label)
		}
		if t.Rust.CrateName == "" {
			return newUserError("target %s has Rust sources but no crate name", t.Label)
		}
	}
	if t.IsBinary() && t.ToolForTarget() == nil && t.OutputType != SourceSet {
		return newUserError("toolchain %s has no tool to build %s target %s", t.Toolchain.Label, t.OutputType, t.Label)
	}
	return nil
}

// fillRecursiveHardDeps unions the hard-dep closure of every linked and
// gen dep. Bundle data is only observed as a real dependency by the
// create_bundle that consumes it; elsewhere it stays data-only.
func (t *Target) fillRecursiveHardDeps() {
	t.RecursiveHardDeps = make(map[*Target]bool)
	deps := t.LinkedDeps()
	deps = append(deps, t.GenDeps...)
	for _, dep := range deps {
		if dep.Target.IsDataOnly() && t.OutputType != CreateBundle {
			continue
		}
		if dep.Target.IsHardDep() {
			t.RecursiveHardDeps[dep.Target] = true
		}
		for hd := range dep.Target.RecursiveHardDeps {
			if hd.IsDataOnly() && t.OutputType != CreateBundle {
				continue
			}
			t.RecursiveHardDeps[hd] = true
		}
	}
}

// fillInheritedLibraries merges dependency libraries: direct deps
// contribute themselves with the edge's publicness,
// their own lists merge through with publicness ANDed along the path and
// OR'd on duplicates. Final targets stop propagation of what they have
// already linked in.
func (t *Target) fillInheritedLibraries() {
	pull := func(dep *Target, public bool) {
		switch dep.OutputType {
		case Group:
			t.Inherited.AppendInherited(&dep.Inherited, public)
		case SourceSet, StaticLibrary, SharedLibrary, LoadableModule, RustLibrary, RustProcMacro:
			t.Inherited.Append(dep, public)
			if !dep.IsFinal() {
				t.Inherited.AppendInherited(&dep.Inherited, public)
			}
		}
	}
	for _, dep := range t.PublicDeps {
		pull(dep.Target, true)
	}
	for _, dep := range t.PrivateDeps {
		pull(dep.Target, false)
	}
}

// fillRustTransitiveLibs computes the narrower closure the Rust writers
// consume. It differs from the general list in two ways: a proc-macro is
// a barrier (it is loaded by the compiler, not linked, so its deps stay
// behind it), and native libraries keep propagating so that link-time
// inputs surface through rlib chains.
func (t *Target) fillRustTransitiveLibs() {
	var pull func(list *InheritedLibs, dep *Target, public bool)
	pull = func(list *InheritedLibs, dep *Target, public bool) {
		switch {
		case dep.OutputType == Group:
			list.AppendInherited(&dep.RustTransitiveLibs, public)
		case IsRustCrate(dep):
			list.Append(dep, public)
			if InferredCrateType(dep) != CrateProcMacro {
				list.AppendInherited(&dep.RustTransitiveLibs, public)
			}
		case dep.IsLinkable() || dep.OutputType == SourceSet:
			list.Append(dep, public)
			list.AppendInherited(&dep.RustTransitiveLibs, public)
		}
	}
	for _, dep := range t.PublicDeps {
		pull(&t.RustTransitiveLibs, dep.Target, true)
	}
	for _, dep := range t.PrivateDeps {
		pull(&t.RustTransitiveLibs, dep.Target, false)
	}
}

// fillOutputFiles computes the files this target produces and which of
// them (or which synthesized phony) consumers depend on.
func (t *Target) fillOutputFiles() error {
	switch t.OutputType {
	case Group:
		// A group with nothing behind it contributes nothing downstream.
		for _, dep := range t.LinkedDeps() {
			if _, ok := dep.Target.DependencyOutput(); ok {
				t.setDepPhony(OutputFile(t.TargetOutDir() + "/" + t.Label.Name + ".stamp"))
				break
			}
		}
	case SourceSet:
		for _, source := range t.Sources {
			tool := t.compileToolForSource(source)
			if tool == nil || len(tool.Outputs) == 0 {
				continue
			}
			t.computedOutputs = append(t.computedOutputs, t.ApplySourcePattern(tool.Outputs[0], source))
		}
		t.setDepPhony(OutputFile(t.TargetOutDir() + "/" + t.Label.Name + ".stamp"))
	case StaticLibrary, SharedLibrary, LoadableModule, Executable, RustLibrary, RustProcMacro:
		tool := t.ToolForTarget()
		if tool == nil || len(tool.Outputs) == 0 {
			return newUserError("toolchain %s cannot build %s target %s", t.Toolchain.Label, t.OutputType, t.Label)
		}
		for _, pattern := range tool.Outputs {
			t.computedOutputs = append(t.computedOutputs, t.ApplyOutputPattern(pattern))
		}
		dep := t.computedOutputs[0]
		if tool.DependOutput != "" {
			dep = t.ApplyOutputPattern(tool.DependOutput)
		}
		t.setDepFile(dep)
		if tool.LinkOutput != "" {
			t.linkOutputFile = t.ApplyOutputPattern(tool.LinkOutput)
			t.hasLinkOutputFile = true
		}
	case CopyFiles:
		if len(t.Action.Outputs) == 0 {
			return newUserError("copy target %s has no outputs", t.Label)
		}
		for _, source := range t.Sources {
			t.computedOutputs = append(t.computedOutputs, t.ApplySourcePattern(t.Action.Outputs[0], source))
		}
		t.finishMultiOutput()
	case Action, GeneratedFile:
		for _, pattern := range t.Action.Outputs {
			t.computedOutputs = append(t.computedOutputs, t.ApplyOutputPattern(pattern))
		}
		if t.OutputType == GeneratedFile && t.GeneratedOutput != "" {
			t.computedOutputs = append(t.computedOutputs, OutputFile(t.Settings.RebaseSourceFile(t.GeneratedOutput)))
		}
		t.finishMultiOutput()
	case ActionForEach:
		for _, source := range t.Sources {
			for _, pattern := range t.Action.Outputs {
				t.computedOutputs = append(t.computedOutputs, t.ApplySourcePattern(pattern, source))
			}
		}
		t.finishMultiOutput()
	case BundleData, CreateBundle:
		t.setDepPhony(OutputFile(t.TargetOutDir() + "/" + t.Label.Name + ".stamp"))
	default:
		return newInternalError("unknown output type %d for %s", int(t.OutputType), t.Label)
	}
	return nil
}

// finishMultiOutput assigns the dependency output: the single real output
// when there is exactly one, a synthesized phony when there are several.
func (t *Target) finishMultiOutput() {
	if len(t.computedOutputs) == 1 {
		t.setDepFile(t.computedOutputs[0])
	} else if len(t.computedOutputs) > 1 {
		t.setDepPhony(OutputFile(t.TargetOutDir() + "/" + t.Label.Name + ".stamp"))
	}
}

func (t *Target) setDepFile(f OutputFile) {
	t.depOutputFile = f
	t.hasDepOutputFile = true
}

func (t *Target) setDepPhony(f OutputFile) {
	t.depOutputPhony = f
	t.hasDepOutputPhony = true
}
