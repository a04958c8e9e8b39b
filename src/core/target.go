package core

import (
	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("core")

// OutputType describes what a target produces.
type OutputType int

const (
	Unknown OutputType = iota
	Group
	CopyFiles
	Action
	ActionForEach
	BundleData
	CreateBundle
	GeneratedFile
	SourceSet
	StaticLibrary
	SharedLibrary
	LoadableModule
	Executable
	RustLibrary
	RustProcMacro
)

func (t OutputType) String() string {
	switch t {
	case Group:
		return "group"
	case CopyFiles:
		return "copy"
	case Action:
		return "action"
	case ActionForEach:
		return "action_foreach"
	case BundleData:
		return "bundle_data"
	case CreateBundle:
		return "create_bundle"
	case GeneratedFile:
		return "generated_file"
	case SourceSet:
		return "source_set"
	case StaticLibrary:
		return "static_library"
	case SharedLibrary:
		return "shared_library"
	case LoadableModule:
		return "loadable_module"
	case Executable:
		return "executable"
	case RustLibrary:
		return "rust_library"
	case RustProcMacro:
		return "rust_proc_macro"
	}
	return "unknown"
}

// InheritedPair is one entry in an inherited-libraries list.
type InheritedPair struct {
	Target *Target
	Public bool
}

// InheritedLibs is an ordered set of (target, publicness) pairs. Position
// is first-occurrence; publicness is OR'd on revisit so the list stays a
// definite upper bound on what may need linking.
type InheritedLibs struct {
	pairs []InheritedPair
	index map[*Target]int
}

// Append adds one library, merging publicness if it is already present.
func (l *InheritedLibs) Append(t *Target, public bool) {
	if l.index == nil {
		l.index = make(map[*Target]int)
	}
	if i, present := l.index[t]; present {
		l.pairs[i].Public = l.pairs[i].Public || public
		return
	}
	l.index[t] = len(l.pairs)
	l.pairs = append(l.pairs, InheritedPair{Target: t, Public: public})
}

// AppendInherited merges another list in; an entry stays public only if
// it was public there and the edge it arrives through is public.
func (l *InheritedLibs) AppendInherited(other *InheritedLibs, publicEdge bool) {
	for _, p := range other.pairs {
		l.Append(p.Target, p.Public && publicEdge)
	}
}

// Ordered returns the pairs in insertion order.
func (l *InheritedLibs) Ordered() []InheritedPair { return l.pairs }

// Contains reports whether the given target is in the list.
func (l *InheritedLibs) Contains(t *Target) bool {
	_, present := l.index[t]
	return present
}

// Len returns the number of entries.
func (l *InheritedLibs) Len() int { return len(l.pairs) }

// A Target is one node of the build graph. The front-end populates the
// declared fields; OnResolved fills in the computed ones, after which the
// target is immutable.
type Target struct {
	Settings   *BuildSettings
	Label      Label
	OutputType OutputType

	Sources     []SourceFile
	SourceTypes SourceTypeSet

	Configs             []*Config
	AllDependentConfigs []*Config
	PublicConfigs       []*Config
	ConfigValues        ConfigValues
	Rust                RustValues
	Action              ActionValues
	Bundle              BundleValues
	Metadata            Metadata

	// The four dependency kinds. Public and private deps are linked;
	// data deps are runtime-only; gen deps order generation without
	// linking.
	PublicDeps  []LabelTargetPair
	PrivateDeps []LabelTargetPair
	DataDeps    []LabelTargetPair
	GenDeps     []LabelTargetPair

	Toolchain *Toolchain

	// Overrides for where and how outputs are named.
	OutputName         string
	OutputExtension    string
	OutputExtensionSet bool
	OutputDir          SourceDir

	// Where the target was declared, for error reporting.
	DeclFile    string
	DeclLine    int
	DeclCol     int
	DeclSnippet string

	// For generated_file targets.
	GeneratedContents string
	GeneratedOutput   SourceFile
	DataKeys          []string
	WalkKeys          []string
	RebaseGenerated   bool

	// Computed during resolution.
	resolved           bool
	RecursiveHardDeps  map[*Target]bool
	Inherited          InheritedLibs
	RustTransitiveLibs InheritedLibs
	computedOutputs    []OutputFile
	depOutputFile      OutputFile
	hasDepOutputFile   bool
	depOutputPhony     OutputFile
	hasDepOutputPhony  bool
	linkOutputFile     OutputFile
	hasLinkOutputFile  bool
}

// LinkOutput returns the file passed to a linker when consuming this
// target, which differs from the dependency output for toolchains that
// produce a separate table-of-contents file.
func (t *Target) LinkOutput() (OutputFile, bool) {
	if t.hasLinkOutputFile {
		return t.linkOutputFile, true
	}
	return t.depOutputFile, t.hasDepOutputFile
}

// Dir returns the directory part of the target's label.
func (t *Target) Dir() string { return t.Label.Dir }

// GetOutputName returns the base name for output files, which is the
// label name unless overridden.
func (t *Target) GetOutputName() string {
	if t.OutputName != "" {
		return t.OutputName
	}
	return t.Label.Name
}

// IsBinary reports whether this target is built by a compiler/linker tool
// and therefore needs its own sub-file for flag scoping.
func (t *Target) IsBinary() bool {
	switch t.OutputType {
	case SourceSet, StaticLibrary, SharedLibrary, LoadableModule, Executable, RustLibrary, RustProcMacro:
		return true
	}
	return false
}

// IsLinkable reports whether the output can appear on a link line.
func (t *Target) IsLinkable() bool {
	switch t.OutputType {
	case StaticLibrary, SharedLibrary, LoadableModule, RustLibrary, RustProcMacro:
		return true
	case Executable:
		return false
	}
	return false
}

// IsFinal reports whether this target gathers its transitive inputs into
// a complete output rather than deferring them to consumers.
func (t *Target) IsFinal() bool {
	switch t.OutputType {
	case Executable, SharedLibrary, LoadableModule, CreateBundle, RustProcMacro:
		return true
	}
	return false
}

// IsDataOnly reports whether this target only carries data for a bundle
// ancestor rather than participating in the normal dependency graph.
func (t *Target) IsDataOnly() bool {
	return t.OutputType == BundleData
}

// IsHardDep reports whether consumers must be fully built after this
// target completes, rather than just linking its output. Actions, copies
// and generated files produce files consumed at compile time; proc-macros
// are loaded by the compiler itself.
func (t *Target) IsHardDep() bool {
	switch t.OutputType {
	case Action, ActionForEach, CopyFiles, CreateBundle, BundleData, GeneratedFile, RustProcMacro:
		return true
	}
	return false
}

// LinkedDeps returns the public then private deps, the edges that carry
// link-time meaning. The returned slice is freshly allocated.
func (t *Target) LinkedDeps() []LabelTargetPair {
	ret := make([]LabelTargetPair, 0, len(t.PublicDeps)+len(t.PrivateDeps))
	ret = append(ret, t.PublicDeps...)
	ret = append(ret, t.PrivateDeps...)
	return ret
}

// AllDeps returns every dependency of the target: public, private, data
// and gen deps in that order.
func (t *Target) AllDeps() []LabelTargetPair {
	ret := make([]LabelTargetPair, 0, len(t.PublicDeps)+len(t.PrivateDeps)+len(t.DataDeps)+len(t.GenDeps))
	ret = append(ret, t.PublicDeps...)
	ret = append(ret, t.PrivateDeps...)
	ret = append(ret, t.DataDeps...)
	ret = append(ret, t.GenDeps...)
	return ret
}

// ComputedOutputs returns every output file the target produces, in
// emission order. Only valid after resolution.
func (t *Target) ComputedOutputs() []OutputFile { return t.computedOutputs }

// DependencyOutputFile returns the single real output that consumers
// depend on, if the target has one.
func (t *Target) DependencyOutputFile() (OutputFile, bool) {
	return t.depOutputFile, t.hasDepOutputFile
}

// DependencyOutputPhony returns the synthesized phony consumers depend
// on, for targets whose outputs are collapsed behind one.
func (t *Target) DependencyOutputPhony() (OutputFile, bool) {
	return t.depOutputPhony, t.hasDepOutputPhony
}

// DependencyOutput returns whichever of the real output or phony
// represents this target downstream. A target with neither (eg. an empty
// group) returns false, and consumers skip it.
func (t *Target) DependencyOutput() (OutputFile, bool) {
	if t.hasDepOutputFile {
		return t.depOutputFile, true
	}
	return t.depOutputPhony, t.hasDepOutputPhony
}
