package core

import (
	"regexp"
)

// A Toolchain is a named collection of tools plus the dependencies that
// must be built before anything in the toolchain can run. The set of
// substitutions any of its tools reference is collected up front so
// writers know which shared variables a target block needs.
type Toolchain struct {
	Label     Label
	IsDefault bool
	tools     map[ToolKind]*Tool
	Deps      []LabelTargetPair
	used      map[string]bool
}

var substitutionRe = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// NewToolchain constructs a toolchain from the given tools.
func NewToolchain(label Label, isDefault bool, tools ...*Tool) *Toolchain {
	tc := &Toolchain{
		Label:     label,
		IsDefault: isDefault,
		tools:     make(map[ToolKind]*Tool, len(tools)),
		used:      make(map[string]bool),
	}
	for _, tool := range tools {
		tc.AddTool(tool)
	}
	return tc
}

// AddTool registers a tool and folds its substitution references into the
// toolchain's used set.
func (tc *Toolchain) AddTool(tool *Tool) {
	tc.tools[tool.Kind] = tool
	for _, s := range append([]string{tool.Command}, tool.Outputs...) {
		for _, m := range substitutionRe.FindAllStringSubmatch(s, -1) {
			tc.used[m[1]] = true
		}
	}
}

// Tool returns the tool of the given kind, or nil.
func (tc *Toolchain) Tool(kind ToolKind) *Tool {
	return tc.tools[kind]
}

// Uses reports whether any tool in this toolchain references the named
// substitution.
func (tc *Toolchain) Uses(name string) bool {
	return tc.used[name]
}

// OutputDir returns the directory of this toolchain's generated files,
// relative to the build root. The default toolchain owns the root.
func (tc *Toolchain) OutputDir() string {
	if tc.IsDefault {
		return ""
	}
	return tc.Label.Name + "/"
}
