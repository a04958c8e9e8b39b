package core

// CrateType is one of the compilation shapes rustc can produce.
type CrateType int

const (
	// CrateAuto means the type is inferred from the target's output type.
	CrateAuto CrateType = iota
	CrateBin
	CrateRlib
	CrateDylib
	CrateCdylib
	CrateProcMacro
	CrateStaticlib
)

func (c CrateType) String() string {
	switch c {
	case CrateBin:
		return "bin"
	case CrateRlib:
		return "rlib"
	case CrateDylib:
		return "dylib"
	case CrateCdylib:
		return "cdylib"
	case CrateProcMacro:
		return "proc-macro"
	case CrateStaticlib:
		return "staticlib"
	}
	return ""
}

// RustValues holds the Rust-specific attributes of a target.
type RustValues struct {
	// The single source file rustc is pointed at.
	CrateRoot SourceFile
	CrateName string
	// Explicit crate type; CrateAuto defers to the output type.
	CrateType CrateType
	// Renames applied to dependency crates, keyed by the dep's label
	// without toolchain.
	AliasedDeps map[Label]string
}

// InferredCrateType resolves the effective crate type of a target,
// falling back on its output type when no override is set.
func InferredCrateType(t *Target) CrateType {
	if t.Rust.CrateType != CrateAuto {
		return t.Rust.CrateType
	}
	switch t.OutputType {
	case Executable:
		return CrateBin
	case RustLibrary:
		return CrateRlib
	case RustProcMacro:
		return CrateProcMacro
	case SharedLibrary:
		return CrateDylib
	case StaticLibrary:
		return CrateStaticlib
	}
	return CrateAuto
}

// IsRustCrate reports whether a target produces an artifact usable as an
// extern crate by a Rust consumer: an rlib, dylib or proc-macro. cdylibs
// and staticlibs expose a C ABI and are linked like native libraries.
func IsRustCrate(t *Target) bool {
	if !t.SourceTypes.RustUsed() {
		return false
	}
	switch InferredCrateType(t) {
	case CrateRlib, CrateDylib, CrateProcMacro:
		return true
	}
	return false
}

// CrateAlias returns the name under which the consumer refers to dep,
// honouring any rename declared in aliased_deps.
func (t *Target) CrateAlias(dep *Target) string {
	if name, present := t.Rust.AliasedDeps[dep.Label.NoToolchain()]; present {
		return name
	}
	return dep.Rust.CrateName
}
