// Package load reads a serialised target graph, the hand-off format the
// front-end produces once parsing and scope evaluation are done, and
// reconstitutes it as an in-memory core.Graph ready for generation. It
// enforces the front-end contract: every referenced label resolves to a
// live target, every target names a known toolchain.
package load

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/google/shlex"
	"gopkg.in/op/go-logging.v1"

	"github.com/genja-build/genja/src/core"
)

var log = logging.MustGetLogger("load")

// Description is the on-disk shape of a resolved graph.
type Description struct {
	BuildDir   string                  `json:"build_dir"`
	RootPath   string                  `json:"root_path"`
	Toolchains []*ToolchainDescription `json:"toolchains"`
	Configs    []*ConfigDescription    `json:"configs"`
	Targets    []*TargetDescription    `json:"targets"`
}

// ToolchainDescription describes one toolchain and its tools.
type ToolchainDescription struct {
	Label   string             `json:"label"`
	Default bool               `json:"default"`
	Tools   []*ToolDescription `json:"tools"`
	Deps    []string           `json:"deps"`
}

// ToolDescription describes a single tool.
type ToolDescription struct {
	Kind                   string   `json:"kind"`
	Command                string   `json:"command"`
	Description            string   `json:"description"`
	Outputs                []string `json:"outputs"`
	OutputPrefix           string   `json:"output_prefix"`
	DefaultOutputExtension string   `json:"default_output_extension"`
	DefaultOutputDir       string   `json:"default_output_dir"`
	DependOutput           string   `json:"depend_output"`
	LinkOutput             string   `json:"link_output"`
	Depfile                string   `json:"depfile"`
	Pool                   string   `json:"pool"`
}

// ConfigDescription is a named bundle of config values.
type ConfigDescription struct {
	Label string `json:"label"`
	ConfigValuesDescription
}

// ConfigValuesDescription mirrors core.ConfigValues.
type ConfigValuesDescription struct {
	CFlags      []string          `json:"cflags"`
	CFlagsC     []string          `json:"cflags_c"`
	CFlagsCC    []string          `json:"cflags_cc"`
	Defines     []string          `json:"defines"`
	IncludeDirs []string          `json:"include_dirs"`
	LdFlags     []string          `json:"ldflags"`
	Libs        []string          `json:"libs"`
	LibDirs     []string          `json:"lib_dirs"`
	Inputs      []string          `json:"inputs"`
	Externs     map[string]string `json:"externs"`
	RustFlags   []string          `json:"rustflags"`
	RustEnv     []string          `json:"rustenv"`
}

// TargetDescription is one target of the graph.
type TargetDescription struct {
	Label     string   `json:"label"`
	Type      string   `json:"type"`
	Toolchain string   `json:"toolchain"`
	Sources   []string `json:"sources"`
	Configs   []string `json:"configs"`
	ConfigValuesDescription

	PublicDeps  []string `json:"public_deps"`
	PrivateDeps []string `json:"private_deps"`
	DataDeps    []string `json:"data_deps"`
	GenDeps     []string `json:"gen_deps"`

	CrateRoot   string            `json:"crate_root"`
	CrateName   string            `json:"crate_name"`
	CrateType   string            `json:"crate_type"`
	AliasedDeps map[string]string `json:"aliased_deps"`

	// A single command string for actions; split shell-style into the
	// script and its arguments.
	Command string   `json:"command"`
	Outputs []string `json:"outputs"`
	Depfile string   `json:"depfile"`

	OutputName      string `json:"output_name"`
	OutputDir       string `json:"output_dir"`
	OutputExtension *string `json:"output_extension"`

	// Declaration position in the front-end input, for error reports.
	File    string `json:"file"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Snippet string `json:"snippet"`

	Metadata map[string][]string `json:"metadata"`
	DataKeys []string            `json:"data_keys"`
	WalkKeys []string            `json:"walk_keys"`
	Rebase   bool                `json:"rebase"`
	Contents string              `json:"contents"`
	Output   string              `json:"output"`
}

var outputTypes = map[string]core.OutputType{
	"group":           core.Group,
	"copy":            core.CopyFiles,
	"action":          core.Action,
	"action_foreach":  core.ActionForEach,
	"bundle_data":     core.BundleData,
	"create_bundle":   core.CreateBundle,
	"generated_file":  core.GeneratedFile,
	"source_set":      core.SourceSet,
	"static_library":  core.StaticLibrary,
	"shared_library":  core.SharedLibrary,
	"loadable_module": core.LoadableModule,
	"executable":      core.Executable,
	"rust_library":    core.RustLibrary,
	"rust_proc_macro": core.RustProcMacro,
}

var toolKinds = map[string]core.ToolKind{
	"cc":               core.ToolCc,
	"cxx":              core.ToolCxx,
	"asm":              core.ToolAsm,
	"alink":            core.ToolAlink,
	"solink":           core.ToolSolink,
	"solink_module":    core.ToolSolinkModule,
	"link":             core.ToolLink,
	"stamp":            core.ToolStamp,
	"copy":             core.ToolCopy,
	"copy_bundle_data": core.ToolCopyBundleData,
	"rust_bin":         core.ToolRustBin,
	"rust_rlib":        core.ToolRustRlib,
	"rust_dylib":       core.ToolRustDylib,
	"rust_cdylib":      core.ToolRustCdylib,
	"rust_macro":       core.ToolRustMacro,
	"rust_staticlib":   core.ToolRustStaticlib,
}

var crateTypes = map[string]core.CrateType{
	"":           core.CrateAuto,
	"bin":        core.CrateBin,
	"rlib":       core.CrateRlib,
	"dylib":      core.CrateDylib,
	"cdylib":     core.CrateCdylib,
	"proc-macro": core.CrateProcMacro,
	"staticlib":  core.CrateStaticlib,
}

// FromFile reads and reconstitutes a graph description.
func FromFile(filename string) (*core.Graph, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, core.NewIOError(err)
	}
	desc := &Description{}
	if err := json.Unmarshal(data, desc); err != nil {
		return nil, core.NewUserError("invalid graph description %s: %s", filename, err)
	}
	return FromDescription(desc)
}

// FromDescription reconstitutes a graph from its parsed description.
func FromDescription(desc *Description) (*core.Graph, error) {
	if desc.BuildDir == "" {
		return nil, core.NewUserError("graph description has no build_dir")
	}
	settings := &core.BuildSettings{RootPath: desc.RootPath, BuildDir: core.SourceDir(desc.BuildDir)}
	g := core.NewGraph(settings)

	toolchains := make(map[core.Label]*core.Toolchain, len(desc.Toolchains))
	for _, td := range desc.Toolchains {
		label, err := core.TryParseLabel(td.Label)
		if err != nil {
			return nil, core.NewUserError("invalid toolchain label: %s", err)
		}
		tools := make([]*core.Tool, 0, len(td.Tools))
		for _, tool := range td.Tools {
			kind, present := toolKinds[tool.Kind]
			if !present {
				return nil, core.NewUserError("unknown tool kind %q in toolchain %s", tool.Kind, label)
			}
			tools = append(tools, &core.Tool{
				Kind:                   kind,
				Name:                   tool.Kind,
				Command:                tool.Command,
				Description:            tool.Description,
				Outputs:                tool.Outputs,
				OutputPrefix:           tool.OutputPrefix,
				DefaultOutputExtension: tool.DefaultOutputExtension,
				DefaultOutputDir:       tool.DefaultOutputDir,
				DependOutput:           tool.DependOutput,
				LinkOutput:             tool.LinkOutput,
				Depfile:                tool.Depfile,
				Pool:                   tool.Pool,
			})
		}
		tc := core.NewToolchain(label, td.Default, tools...)
		toolchains[label] = tc
		g.Toolchains = append(g.Toolchains, tc)
	}

	configs := make(map[core.Label]*core.Config, len(desc.Configs))
	for _, cd := range desc.Configs {
		label, err := core.TryParseLabel(cd.Label)
		if err != nil {
			return nil, core.NewUserError("invalid config label: %s", err)
		}
		configs[label] = &core.Config{Label: label, Values: cd.values()}
	}

	// First pass creates the targets so the second can link deps by label.
	for _, td := range desc.Targets {
		t, err := makeTarget(td, toolchains)
		if err != nil {
			return nil, err
		}
		if err := g.AddTarget(t); err != nil {
			return nil, err
		}
	}
	for _, td := range desc.Targets {
		if err := linkTarget(g, td, configs); err != nil {
			return nil, err
		}
	}
	log.Debugf("Loaded %d targets across %d toolchains", len(desc.Targets), len(desc.Toolchains))
	return g, nil
}

func (d *ConfigValuesDescription) values() core.ConfigValues {
	v := core.ConfigValues{
		CFlags:    d.CFlags,
		CFlagsC:   d.CFlagsC,
		CFlagsCC:  d.CFlagsCC,
		Defines:   d.Defines,
		LdFlags:   d.LdFlags,
		RustFlags: d.RustFlags,
		RustEnv:   d.RustEnv,
	}
	for _, dir := range d.IncludeDirs {
		v.IncludeDirs = append(v.IncludeDirs, core.SourceDir(dir))
	}
	for _, dir := range d.LibDirs {
		v.LibDirs = append(v.LibDirs, core.SourceDir(dir))
	}
	for _, input := range d.Inputs {
		v.Inputs = append(v.Inputs, core.SourceFile(input))
	}
	for _, lib := range d.Libs {
		v.Libs = append(v.Libs, libFile(lib))
	}
	for name, file := range d.Externs {
		v.Externs = append(v.Externs, core.Extern{Name: name, File: libFile(file)})
	}
	return v
}

// libFile distinguishes file paths from bare library names.
func libFile(s string) core.LibFile {
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/") {
		return core.LibFileSource(core.SourceFile(s))
	}
	return core.LibFileName(s)
}

func makeTarget(td *TargetDescription, toolchains map[core.Label]*core.Toolchain) (*core.Target, error) {
	label, err := core.TryParseLabel(td.Label)
	if err != nil {
		return nil, core.NewUserError("invalid target label: %s", err)
	}
	outputType, present := outputTypes[td.Type]
	if !present {
		return nil, core.NewUserError("target %s has unknown type %q", label, td.Type)
	}
	crateType, present := crateTypes[td.CrateType]
	if !present {
		return nil, core.NewUserError("target %s has unknown crate type %q", label, td.CrateType)
	}

	t := &core.Target{
		Label:        label,
		OutputType:   outputType,
		ConfigValues: td.values(),
		OutputName:   td.OutputName,
		OutputDir:    core.SourceDir(td.OutputDir),
		DeclFile:     td.File,
		DeclLine:     td.Line,
		DeclCol:      td.Col,
		DeclSnippet:  td.Snippet,
	}
	if td.OutputExtension != nil {
		t.OutputExtension = *td.OutputExtension
		t.OutputExtensionSet = true
	}
	for _, s := range td.Sources {
		f := core.SourceFile(s)
		t.Sources = append(t.Sources, f)
		t.SourceTypes.Set(core.SourceTypeOf(f))
	}

	tcLabel := core.Label{}
	if td.Toolchain != "" {
		if tcLabel, err = core.TryParseLabel(td.Toolchain); err != nil {
			return nil, core.NewUserError("target %s has invalid toolchain: %s", label, err)
		}
	} else if len(toolchains) == 1 {
		for l := range toolchains {
			tcLabel = l
		}
	}
	tc, present := toolchains[tcLabel]
	if !present {
		return nil, core.NewUserError("target %s names unknown toolchain %s", label, tcLabel)
	}
	t.Toolchain = tc

	t.Rust.CrateRoot = core.SourceFile(td.CrateRoot)
	t.Rust.CrateName = td.CrateName
	t.Rust.CrateType = crateType
	for dep, name := range td.AliasedDeps {
		depLabel, err := core.TryParseLabel(dep)
		if err != nil {
			return nil, core.NewUserError("target %s has invalid aliased dep: %s", label, err)
		}
		if t.Rust.AliasedDeps == nil {
			t.Rust.AliasedDeps = make(map[core.Label]string)
		}
		t.Rust.AliasedDeps[depLabel.NoToolchain()] = name
	}

	if td.Command != "" {
		argv, err := shlex.Split(td.Command)
		if err != nil || len(argv) == 0 {
			return nil, core.NewUserError("target %s has unparseable command: %s", label, err)
		}
		t.Action.Script = core.SourceFile(argv[0])
		t.Action.Args = argv[1:]
	}
	t.Action.Outputs = td.Outputs
	t.Action.Depfile = td.Depfile

	if len(td.Metadata) > 0 {
		t.Metadata.Contents = make(map[string]core.Value, len(td.Metadata))
		for key, list := range td.Metadata {
			values := make([]core.Value, len(list))
			for i, s := range list {
				values[i] = core.StringValue(s)
			}
			t.Metadata.Contents[key] = core.ListValue(values...)
		}
		t.Metadata.SourceDir = label.SourceDir()
	}
	t.DataKeys = td.DataKeys
	t.WalkKeys = td.WalkKeys
	t.RebaseGenerated = td.Rebase
	t.GeneratedContents = td.Contents
	t.GeneratedOutput = core.SourceFile(td.Output)
	return t, nil
}

// linkTarget resolves dependency and config references now that every
// target exists.
func linkTarget(g *core.Graph, td *TargetDescription, configs map[core.Label]*core.Config) error {
	t := g.Target(core.ParseLabel(td.Label))
	link := func(labels []string, out *[]core.LabelTargetPair) error {
		for _, s := range labels {
			label, err := core.TryParseLabel(s)
			if err != nil {
				return core.NewUserError("invalid dependency of %s: %s", t.Label, err)
			}
			dep := g.Target(label)
			if dep == nil {
				return core.NewUserError("dependency %s of %s does not exist", label, t.Label)
			}
			*out = append(*out, core.LabelTargetPair{Label: label, Target: dep})
		}
		return nil
	}
	if err := link(td.PublicDeps, &t.PublicDeps); err != nil {
		return err
	}
	if err := link(td.PrivateDeps, &t.PrivateDeps); err != nil {
		return err
	}
	if err := link(td.DataDeps, &t.DataDeps); err != nil {
		return err
	}
	if err := link(td.GenDeps, &t.GenDeps); err != nil {
		return err
	}
	for _, s := range td.Configs {
		label, err := core.TryParseLabel(s)
		if err != nil {
			return core.NewUserError("invalid config of %s: %s", t.Label, err)
		}
		config, present := configs[label]
		if !present {
			return core.NewUserError("config %s of %s does not exist", label, t.Label)
		}
		t.Configs = append(t.Configs, config)
	}
	return nil
}
