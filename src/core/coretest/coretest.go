// Package coretest provides canned build settings and toolchains for
// tests of the resolution and emission layers.
package coretest

import (
	"github.com/genja-build/genja/src/core"
)

// Settings returns build settings with the conventional test build dir.
func Settings() *core.BuildSettings {
	return &core.BuildSettings{BuildDir: "//out/Debug/"}
}

// Toolchain returns a toolchain equipped with every tool the writers
// need, shaped like a desktop Linux toolchain. If withTOC is set the
// solink tool produces a separate .TOC file that consumers depend on.
func Toolchain(label core.Label, withTOC bool) *core.Toolchain {
	solink := &core.Tool{
		Kind:                   core.ToolSolink,
		Name:                   "solink",
		Command:                "ld -shared -o {{target_output_name}}.so {{inputs}} {{ldflags}} {{libs}}",
		OutputPrefix:           "lib",
		DefaultOutputExtension: ".so",
		DefaultOutputDir:       "{{root_out_dir}}",
		Outputs:                []string{"{{output_dir}}/{{target_output_name}}{{output_extension}}"},
	}
	if withTOC {
		solink.Outputs = []string{
			"{{output_dir}}/{{target_output_name}}{{output_extension}}.TOC",
			"{{output_dir}}/{{target_output_name}}{{output_extension}}",
		}
		solink.DependOutput = "{{output_dir}}/{{target_output_name}}{{output_extension}}.TOC"
		solink.LinkOutput = "{{output_dir}}/{{target_output_name}}{{output_extension}}"
	}
	return core.NewToolchain(label, true,
		&core.Tool{
			Kind:    core.ToolCc,
			Name:    "cc",
			Command: "cc {{source}} {{cflags}} {{cflags_c}} {{defines}} {{include_dirs}} -o {{output}}",
			Outputs: []string{"{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.o"},
		},
		&core.Tool{
			Kind:    core.ToolCxx,
			Name:    "cxx",
			Command: "c++ {{source}} {{cflags}} {{cflags_cc}} {{defines}} {{include_dirs}} -o {{output}}",
			Outputs: []string{"{{source_out_dir}}/{{target_output_name}}.{{source_name_part}}.o"},
		},
		&core.Tool{
			Kind:                   core.ToolAlink,
			Name:                   "alink",
			Command:                "ar {{output}} {{source_out_dir}}/{{target_output_name}}.a",
			OutputPrefix:           "lib",
			DefaultOutputExtension: ".a",
			DefaultOutputDir:       "{{target_out_dir}}",
			Outputs:                []string{"{{target_out_dir}}/{{target_output_name}}{{output_extension}}"},
		},
		solink,
		&core.Tool{
			Kind:             core.ToolLink,
			Name:             "link",
			Command:          "ld -o {{target_output_name}} {{source_out_dir}}/{{target_output_name}}.o {{ldflags}} {{libs}}",
			DefaultOutputDir: "{{root_out_dir}}",
			Outputs:          []string{"{{output_dir}}/{{target_output_name}}{{output_extension}}"},
		},
		&core.Tool{Kind: core.ToolStamp, Name: "stamp", Command: "touch {{output}}"},
		&core.Tool{Kind: core.ToolCopy, Name: "copy", Command: "cp {{source}} {{output}}"},
		rustTool(core.ToolRustBin, "rust_bin", "", "", "{{root_out_dir}}", "{{root_out_dir}}/{{crate_name}}{{output_extension}}"),
		rustTool(core.ToolRustRlib, "rust_rlib", "lib", ".rlib", "{{target_out_dir}}", "{{output_dir}}/{{target_output_name}}{{output_extension}}"),
		rustTool(core.ToolRustDylib, "rust_dylib", "lib", ".so", "{{target_out_dir}}", "{{output_dir}}/{{target_output_name}}{{output_extension}}"),
		rustTool(core.ToolRustCdylib, "rust_cdylib", "lib", ".so", "{{target_out_dir}}", "{{output_dir}}/{{target_output_name}}{{output_extension}}"),
		rustTool(core.ToolRustMacro, "rust_macro", "lib", ".so", "{{target_out_dir}}", "{{output_dir}}/{{target_output_name}}{{output_extension}}"),
		rustTool(core.ToolRustStaticlib, "rust_staticlib", "lib", ".a", "{{target_out_dir}}", "{{output_dir}}/{{target_output_name}}{{output_extension}}"),
	)
}

func rustTool(kind core.ToolKind, name, prefix, ext, dir, outputs string) *core.Tool {
	return &core.Tool{
		Kind: kind,
		Name: name,
		Command: "{{rustenv}} rustc --crate-name {{crate_name}} {{source}} --crate-type {{crate_type}} " +
			"{{rustflags}} -o {{output}} {{rustdeps}} {{externs}}",
		OutputPrefix:           prefix,
		DefaultOutputExtension: ext,
		DefaultOutputDir:       dir,
		Outputs:                []string{outputs},
	}
}

// DefaultToolchain returns the standard test toolchain labelled
// //toolchain:default.
func DefaultToolchain() *core.Toolchain {
	return Toolchain(core.ParseLabel("//toolchain:default"), false)
}

// RustTarget builds a populated but unresolved Rust target for tests.
func RustTarget(settings *core.BuildSettings, toolchain *core.Toolchain, label string, outputType core.OutputType, crateName string, sources ...core.SourceFile) *core.Target {
	t := &core.Target{
		Settings:   settings,
		Label:      core.ParseLabel(label),
		OutputType: outputType,
		Toolchain:  toolchain,
		Sources:    sources,
	}
	if len(sources) > 0 {
		t.Rust.CrateRoot = sources[len(sources)-1]
	}
	t.Rust.CrateName = crateName
	t.SourceTypes.Set(core.SourceRS)
	return t
}
