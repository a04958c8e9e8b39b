package core

// A LibFile is an entry in a libs list: either a path to a library file
// (which consumers depend on and rebase) or a bare library name handed to
// the linker as -l<name>.
type LibFile struct {
	value    string
	isSource bool
}

// LibFileName makes a LibFile for a bare library name or literal path.
func LibFileName(name string) LibFile { return LibFile{value: name} }

// LibFileSource makes a LibFile for a source-form file path.
func LibFileSource(f SourceFile) LibFile { return LibFile{value: string(f), isSource: true} }

// IsSourceFile reports whether this entry names a file rather than a lib.
func (l LibFile) IsSourceFile() bool { return l.isSource }

// SourceFile returns the file this entry names; only valid if IsSourceFile.
func (l LibFile) SourceFile() SourceFile { return SourceFile(l.value) }

// Value returns the raw string.
func (l LibFile) Value() string { return l.value }

// An Extern registers one crate artifact under a usable module name in the
// consuming compilation, independent of the dependency graph.
type Extern struct {
	Name string
	File LibFile
}

// ConfigValues holds the compiler/linker values composed onto a target,
// either directly or via its configs.
type ConfigValues struct {
	CFlags      []string
	CFlagsC     []string
	CFlagsCC    []string
	Defines     []string
	IncludeDirs []SourceDir
	LdFlags     []string
	Libs        []LibFile
	LibDirs     []SourceDir
	Inputs      []SourceFile
	Externs     []Extern
	RustFlags   []string
	RustEnv     []string
}

// A Config is a named, reusable bundle of config values.
type Config struct {
	Label  Label
	Values ConfigValues
}

// ConfigValuesIterator visits a target's own values first, then each of
// its configs in composition order; emission order everywhere follows
// this traversal.
func (t *Target) ConfigValuesIterator(visit func(*ConfigValues)) {
	visit(&t.ConfigValues)
	for _, config := range t.Configs {
		visit(&config.Values)
	}
}

// AllLdFlags returns the ldflags over all reachable config values in order.
func (t *Target) AllLdFlags() []string {
	var ret []string
	t.ConfigValuesIterator(func(v *ConfigValues) { ret = append(ret, v.LdFlags...) })
	return ret
}

// AllRustFlags returns the rustflags over all reachable config values.
func (t *Target) AllRustFlags() []string {
	var ret []string
	t.ConfigValuesIterator(func(v *ConfigValues) { ret = append(ret, v.RustFlags...) })
	return ret
}

// AllRustEnv returns the rustenv entries over all reachable config values.
func (t *Target) AllRustEnv() []string {
	var ret []string
	t.ConfigValuesIterator(func(v *ConfigValues) { ret = append(ret, v.RustEnv...) })
	return ret
}

// AllInputs returns the declared inputs over all reachable config values.
func (t *Target) AllInputs() []SourceFile {
	var ret []SourceFile
	t.ConfigValuesIterator(func(v *ConfigValues) { ret = append(ret, v.Inputs...) })
	return ret
}

// AllExterns returns the extern declarations over all reachable config values.
func (t *Target) AllExterns() []Extern {
	var ret []Extern
	t.ConfigValuesIterator(func(v *ConfigValues) { ret = append(ret, v.Externs...) })
	return ret
}

// AllLibs returns the libs over all reachable config values.
func (t *Target) AllLibs() []LibFile {
	var ret []LibFile
	t.ConfigValuesIterator(func(v *ConfigValues) { ret = append(ret, v.Libs...) })
	return ret
}

// AllLibDirs returns the lib_dirs over all reachable config values.
func (t *Target) AllLibDirs() []SourceDir {
	var ret []SourceDir
	t.ConfigValuesIterator(func(v *ConfigValues) { ret = append(ret, v.LibDirs...) })
	return ret
}
