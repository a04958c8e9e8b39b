package core

import (
	"strings"
)

// The closed set of substitution placeholders usable in tool templates.
// Each has the textual form it takes in rule files (without braces).
const (
	SubLabel            = "label"
	SubLabelName        = "label_name"
	SubLabelNoToolchain = "label_no_toolchain"
	SubRootGenDir       = "root_gen_dir"
	SubRootOutDir       = "root_out_dir"
	SubTargetGenDir     = "target_gen_dir"
	SubTargetOutDir     = "target_out_dir"
	SubTargetOutputName = "target_output_name"
	SubOutputDir        = "output_dir"
	SubOutputExtension  = "output_extension"
	SubCrateName        = "crate_name"
	SubCrateType        = "crate_type"
	SubSource           = "source"
	SubSourceFilePart   = "source_file_part"
	SubSourceNamePart   = "source_name_part"
	SubSourceOutDir     = "source_out_dir"
	SubOutput           = "output"
)

// SharedVarOrder is the order target-scope variables are written in; it
// is fixed so output is deterministic.
var SharedVarOrder = []string{
	SubLabel,
	SubLabelName,
	SubLabelNoToolchain,
	SubRootGenDir,
	SubRootOutDir,
	SubTargetGenDir,
	SubTargetOutDir,
	SubTargetOutputName,
}

// RootOutDir returns the build-root relative output directory for this
// target's toolchain; "." for the default toolchain.
func (t *Target) RootOutDir() string {
	dir := strings.TrimSuffix(t.Toolchain.OutputDir(), "/")
	if dir == "" {
		return "."
	}
	return dir
}

// RootGenDir returns the generated-file root for this target's toolchain.
func (t *Target) RootGenDir() string {
	return t.Toolchain.OutputDir() + "gen"
}

// TargetOutDir returns obj/<dir> under the toolchain's output directory.
func (t *Target) TargetOutDir() string {
	return t.Toolchain.OutputDir() + "obj/" + t.Label.Dir
}

// TargetGenDir returns gen/<dir> under the toolchain's output directory.
func (t *Target) TargetGenDir() string {
	return t.Toolchain.OutputDir() + "gen/" + t.Label.Dir
}

// TargetOutputName is the output file base name: the output name with the
// tool's prefix applied (eg. "lib" for library tools).
func (t *Target) TargetOutputName() string {
	prefix := ""
	if tool := t.ToolForTarget(); tool != nil {
		prefix = tool.OutputPrefix
	}
	return prefix + t.GetOutputName()
}

// EffectiveOutputExtension resolves the extension for output files,
// honouring a per-target override (which may be explicitly empty).
func (t *Target) EffectiveOutputExtension() string {
	if t.OutputExtensionSet {
		if t.OutputExtension == "" {
			return ""
		}
		return "." + t.OutputExtension
	}
	if tool := t.ToolForTarget(); tool != nil {
		return tool.DefaultOutputExtension
	}
	return ""
}

// EffectiveOutputDir resolves where this target's primary outputs land:
// the explicit output_dir when set, otherwise the tool's default.
func (t *Target) EffectiveOutputDir() string {
	if t.OutputDir != "" {
		return t.Settings.OutputDirForSourceDir(t.OutputDir)
	}
	tool := t.ToolForTarget()
	if tool == nil || tool.DefaultOutputDir == "" {
		return t.TargetOutDir()
	}
	return t.expandPattern(tool.DefaultOutputDir, "")
}

// ExplicitOutputDir is the value of the output_dir variable as written
// into rule files: the override rebased, or empty when defaulted.
func (t *Target) ExplicitOutputDir() string {
	if t.OutputDir == "" {
		return ""
	}
	return t.Settings.OutputDirForSourceDir(t.OutputDir)
}

// GetTargetSubstitution resolves a target-scope substitution to its
// concrete string.
func (t *Target) GetTargetSubstitution(sub string) (string, bool) {
	switch sub {
	case SubLabel:
		return t.Label.String(), true
	case SubLabelName:
		return t.Label.Name, true
	case SubLabelNoToolchain:
		return t.Label.ShortString(), true
	case SubRootGenDir:
		return t.RootGenDir(), true
	case SubRootOutDir:
		return t.RootOutDir(), true
	case SubTargetGenDir:
		return t.TargetGenDir(), true
	case SubTargetOutDir:
		return t.TargetOutDir(), true
	case SubTargetOutputName:
		return t.TargetOutputName(), true
	case SubOutputDir:
		return t.EffectiveOutputDir(), true
	case SubOutputExtension:
		return t.EffectiveOutputExtension(), true
	case SubCrateName:
		return t.Rust.CrateName, true
	case SubCrateType:
		return InferredCrateType(t).String(), true
	}
	return "", false
}

// expandPattern applies target-scope substitutions to a pattern; source
// is non-empty when expanding per-source patterns.
func (t *Target) expandPattern(pattern string, source SourceFile) string {
	return substitutionRe.ReplaceAllStringFunc(pattern, func(m string) string {
		name := m[2 : len(m)-2]
		if s, present := t.GetTargetSubstitution(name); present {
			return s
		}
		if source != "" {
			switch name {
			case SubSource:
				return t.Settings.RebaseSourceFile(source)
			case SubSourceFilePart:
				return source.Name()
			case SubSourceNamePart:
				return source.NamePart()
			case SubSourceOutDir:
				return t.TargetOutDir()
			}
		}
		log.Errorf("unresolved substitution {{%s}} in pattern %s", name, pattern)
		return ""
	})
}

// ApplyOutputPattern expands a tool output pattern for this target.
func (t *Target) ApplyOutputPattern(pattern string) OutputFile {
	return OutputFile(t.expandPattern(pattern, ""))
}

// ApplySourcePattern expands a per-source output pattern.
func (t *Target) ApplySourcePattern(pattern string, source SourceFile) OutputFile {
	return OutputFile(t.expandPattern(pattern, source))
}
