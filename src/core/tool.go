package core

// ToolKind identifies one of the closed set of tools a toolchain can
// provide. Rust tools are a tagged sub-family rather than a subclass;
// code that needs Rust-specific behaviour switches on the kind.
type ToolKind int

const (
	ToolNone ToolKind = iota
	ToolCc
	ToolCxx
	ToolAsm
	ToolAlink
	ToolSolink
	ToolSolinkModule
	ToolLink
	ToolStamp
	ToolCopy
	ToolCopyBundleData
	ToolAction
	ToolRustBin
	ToolRustRlib
	ToolRustDylib
	ToolRustCdylib
	ToolRustMacro
	ToolRustStaticlib
)

// IsRust reports whether this kind belongs to the Rust tool family.
func (k ToolKind) IsRust() bool {
	return k >= ToolRustBin && k <= ToolRustStaticlib
}

// A Tool describes one command a toolchain can run: its rule name, command
// template and the patterns describing where its outputs land. Patterns
// use the {{substitution}} placeholders expanded by the generation layer.
type Tool struct {
	Kind ToolKind
	// Rule name as it appears in emitted files, eg. "rust_rlib".
	Name string
	// Command template, in terms of ninja variables and substitutions.
	Command     string
	Description string
	// Output file patterns; the first is the primary output.
	Outputs []string
	// Prefix prepended to the target output name, eg. "lib".
	OutputPrefix string
	// Extension used when the target doesn't override it, with dot.
	DefaultOutputExtension string
	// Where outputs land when the target has no explicit output_dir;
	// either "{{root_out_dir}}" or "{{target_out_dir}}".
	DefaultOutputDir string
	// For linker tools that produce a separate table-of-contents file:
	// the output consumers should depend on for re-link checking, and the
	// file actually passed to the link. Empty means the primary output.
	DependOutput string
	LinkOutput   string
	Depfile      string
	Pool         string
}

// RuleName returns the name of this tool's rule in the given toolchain's
// files; rules in non-default toolchains are namespaced by the toolchain.
func (t *Tool) RuleName(toolchain *Toolchain) string {
	if toolchain == nil || toolchain.IsDefault {
		return t.Name
	}
	return toolchain.Label.Name + "_" + t.Name
}
