package gen

import (
	"bytes"
	"regexp"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/ninja"
)

// ruleToolOrder fixes the order tool rules are defined in so aggregate
// files are byte-identical across runs.
var ruleToolOrder = []core.ToolKind{
	core.ToolCc,
	core.ToolCxx,
	core.ToolAsm,
	core.ToolAlink,
	core.ToolSolink,
	core.ToolSolinkModule,
	core.ToolLink,
	core.ToolStamp,
	core.ToolCopy,
	core.ToolCopyBundleData,
	core.ToolRustBin,
	core.ToolRustRlib,
	core.ToolRustDylib,
	core.ToolRustCdylib,
	core.ToolRustMacro,
	core.ToolRustStaticlib,
}

// writeToolRules emits the rule definition of every tool the toolchain
// provides, at the top of its aggregate file.
func writeToolRules(tc *core.Toolchain, out *bytes.Buffer) {
	for _, kind := range ruleToolOrder {
		tool := tc.Tool(kind)
		if tool == nil || tool.Command == "" {
			continue
		}
		out.WriteString("rule " + tool.RuleName(tc) + "\n")
		out.WriteString("  command = " + commandToNinja(tool.Command) + "\n")
		if tool.Description != "" {
			out.WriteString("  description = " + tool.Description + "\n")
		}
		if tool.Depfile != "" {
			out.WriteString("  depfile = " + commandToNinja(tool.Depfile) + "\n")
		}
		if tool.Pool != "" {
			out.WriteString("  pool = " + tool.Pool + "\n")
		}
	}
	out.WriteByte('\n')
}

// commandToNinja rewrites a tool command template into ninja variable
// references: {{source}} and {{output}} map onto the built-in $in/$out,
// everything else onto the identically named variable written in the
// target's block.
func commandToNinja(command string) string {
	escaped := ninja.Escape(command, ninja.EscapeNinjaCommand)
	return substitutionTemplateRe.ReplaceAllStringFunc(escaped, func(m string) string {
		name := m[2 : len(m)-2]
		switch name {
		case core.SubSource:
			return "${in}"
		case core.SubOutput:
			return "${out}"
		}
		return "${" + name + "}"
	})
}

var substitutionTemplateRe = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)
