package gen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genja-build/genja/src/core"
	"github.com/genja-build/genja/src/core/coretest"
)

func resolve(t *testing.T, targets ...*core.Target) {
	for _, target := range targets {
		require.NoError(t, target.OnResolved())
	}
}

func runRustWriter(t *testing.T, target *core.Target) string {
	var out bytes.Buffer
	require.NoError(t, writeRustTarget(target, &out))
	return out.String()
}

func TestRustSourceSetIsRejected(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()
	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.SourceSet, "foo_bar",
		"//foo/input1.rs", "//foo/main.rs")
	assert.Error(t, target.OnResolved())
}

func TestRustExecutable(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()
	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/input3.rs", "//foo/main.rs")
	target.ConfigValues.LdFlags = []string{"-fsanitize=address"}
	resolve(t, target)

	expected := "crate_name = foo_bar\n" +
		"crate_type = bin\n" +
		"output_extension = \n" +
		"output_dir = \n" +
		"rustflags =\n" +
		"rustenv =\n" +
		"root_out_dir = .\n" +
		"target_out_dir = obj/foo\n" +
		"target_output_name = bar\n" +
		"\n" +
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/input3.rs ../../foo/main.rs\n" +
		"  externs =\n" +
		"  rustdeps =\n" +
		"  ldflags = -fsanitize=address\n" +
		"  sources = ../../foo/input3.rs ../../foo/main.rs\n"
	assert.Equal(t, expected, runRustWriter(t, target))
}

// Accessible dependencies appear as --extern switches so the target
// crate can use them, whether direct or reached along a public_deps
// chain. Crates reached only through private edges still appear via
// -Ldependency since other crates referenced them.
func TestRlibDeps(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	privateRlib := coretest.RustTarget(settings, toolchain, "//baz:privatelib", core.RustLibrary, "privatecrate",
		"//baz/privatelib.rs", "//baz/lib.rs")
	resolve(t, privateRlib)
	assert.Equal(t, "crate_name = privatecrate\n"+
		"crate_type = rlib\n"+
		"output_extension = .rlib\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/baz\n"+
		"target_output_name = libprivatelib\n"+
		"\n"+
		"build obj/baz/libprivatelib.rlib: rust_rlib ../../baz/lib.rs | ../../baz/privatelib.rs ../../baz/lib.rs\n"+
		"  externs =\n"+
		"  rustdeps =\n"+
		"  ldflags =\n"+
		"  sources = ../../baz/privatelib.rs ../../baz/lib.rs\n", runRustWriter(t, privateRlib))

	farPublicRlib := coretest.RustTarget(settings, toolchain, "//far:farlib", core.RustLibrary, "farcrate",
		"//far/farlib.rs", "//far/lib.rs")
	resolve(t, farPublicRlib)

	publicRlib := coretest.RustTarget(settings, toolchain, "//bar:publiclib", core.RustLibrary, "publiccrate",
		"//bar/publiclib.rs", "//bar/lib.rs")
	publicRlib.PublicDeps = []core.LabelTargetPair{{Label: farPublicRlib.Label, Target: farPublicRlib}}
	resolve(t, publicRlib)
	assert.Equal(t, "crate_name = publiccrate\n"+
		"crate_type = rlib\n"+
		"output_extension = .rlib\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/bar\n"+
		"target_output_name = libpubliclib\n"+
		"\n"+
		"build obj/bar/libpubliclib.rlib: rust_rlib ../../bar/lib.rs | ../../bar/publiclib.rs ../../bar/lib.rs obj/far/libfarlib.rlib\n"+
		"  externs = --extern farcrate=obj/far/libfarlib.rlib\n"+
		"  rustdeps = -Ldependency=obj/far\n"+
		"  ldflags =\n"+
		"  sources = ../../bar/publiclib.rs ../../bar/lib.rs\n", runRustWriter(t, publicRlib))

	rlib := coretest.RustTarget(settings, toolchain, "//foo:direct", core.RustLibrary, "direct",
		"//foo/direct.rs", "//foo/main.rs")
	rlib.PublicDeps = []core.LabelTargetPair{{Label: publicRlib.Label, Target: publicRlib}}
	rlib.PrivateDeps = []core.LabelTargetPair{{Label: privateRlib.Label, Target: privateRlib}}
	resolve(t, rlib)

	target := coretest.RustTarget(settings, toolchain, "//main:main", core.Executable, "main_crate",
		"//main/source.rs", "//main/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{{Label: rlib.Label, Target: rlib}}
	resolve(t, target)

	assert.Equal(t, "crate_name = main_crate\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/main\n"+
		"target_output_name = main\n"+
		"\n"+
		"build ./main_crate: rust_bin ../../main/main.rs | ../../main/source.rs ../../main/main.rs obj/foo/libdirect.rlib\n"+
		"  externs = --extern direct=obj/foo/libdirect.rlib --extern publiccrate=obj/bar/libpubliclib.rlib --extern farcrate=obj/far/libfarlib.rlib\n"+
		"  rustdeps = -Ldependency=obj/foo -Ldependency=obj/bar -Ldependency=obj/far -Ldependency=obj/baz\n"+
		"  ldflags =\n"+
		"  sources = ../../main/source.rs ../../main/main.rs\n", runRustWriter(t, target))
}

func TestDylibDeps(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	privateInside := coretest.RustTarget(settings, toolchain, "//faz:private_inside", core.RustLibrary, "private_inside",
		"//faz/private_inside.rs", "//faz/lib.rs")
	resolve(t, privateInside)

	inside := coretest.RustTarget(settings, toolchain, "//baz:inside", core.RustLibrary, "inside",
		"//baz/inside.rs", "//baz/lib.rs")
	resolve(t, inside)

	dylib := coretest.RustTarget(settings, toolchain, "//bar:mylib", core.SharedLibrary, "mylib",
		"//bar/mylib.rs", "//bar/lib.rs")
	dylib.Rust.CrateType = core.CrateDylib
	dylib.PublicDeps = []core.LabelTargetPair{{Label: inside.Label, Target: inside}}
	dylib.PrivateDeps = []core.LabelTargetPair{{Label: privateInside.Label, Target: privateInside}}
	resolve(t, dylib)
	assert.Equal(t, "crate_name = mylib\n"+
		"crate_type = dylib\n"+
		"output_extension = .so\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/bar\n"+
		"target_output_name = libmylib\n"+
		"\n"+
		"build obj/bar/libmylib.so: rust_dylib ../../bar/lib.rs | ../../bar/mylib.rs ../../bar/lib.rs obj/baz/libinside.rlib obj/faz/libprivate_inside.rlib\n"+
		"  externs = --extern inside=obj/baz/libinside.rlib --extern private_inside=obj/faz/libprivate_inside.rlib\n"+
		"  rustdeps = -Ldependency=obj/baz -Ldependency=obj/faz\n"+
		"  ldflags =\n"+
		"  sources = ../../bar/mylib.rs ../../bar/lib.rs\n", runRustWriter(t, dylib))

	anotherDylib := coretest.RustTarget(settings, toolchain, "//foo:direct", core.SharedLibrary, "direct",
		"//foo/direct.rs", "//foo/main.rs")
	anotherDylib.Rust.CrateType = core.CrateDylib
	anotherDylib.PublicDeps = []core.LabelTargetPair{{Label: dylib.Label, Target: dylib}}
	resolve(t, anotherDylib)

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{{Label: anotherDylib.Label, Target: anotherDylib}}
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/foo/libdirect.so\n"+
		"  externs = --extern direct=obj/foo/libdirect.so --extern mylib=obj/bar/libmylib.so --extern inside=obj/baz/libinside.rlib\n"+
		"  rustdeps = -Ldependency=obj/foo -Ldependency=obj/bar -Ldependency=obj/baz -Ldependency=obj/faz\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

func TestRlibDepsAcrossGroups(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	procMacro := coretest.RustTarget(settings, toolchain, "//bar:mymacro", core.RustProcMacro, "mymacro",
		"//bar/mylib.rs", "//bar/lib.rs")
	procMacro.Rust.CrateType = core.CrateProcMacro
	resolve(t, procMacro)
	assert.Equal(t, "crate_name = mymacro\n"+
		"crate_type = proc-macro\n"+
		"output_extension = .so\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/bar\n"+
		"target_output_name = libmymacro\n"+
		"\n"+
		"build obj/bar/libmymacro.so: rust_macro ../../bar/lib.rs | ../../bar/mylib.rs ../../bar/lib.rs\n"+
		"  externs =\n"+
		"  rustdeps =\n"+
		"  ldflags =\n"+
		"  sources = ../../bar/mylib.rs ../../bar/lib.rs\n", runRustWriter(t, procMacro))

	group := &core.Target{
		Settings:   settings,
		Label:      core.ParseLabel("//baz:group"),
		OutputType: core.Group,
		Toolchain:  toolchain,
		PublicDeps: []core.LabelTargetPair{{Label: procMacro.Label, Target: procMacro}},
	}
	resolve(t, group)

	rlib := coretest.RustTarget(settings, toolchain, "//bar:mylib", core.RustLibrary, "mylib",
		"//bar/mylib.rs", "//bar/lib.rs")
	rlib.PublicDeps = []core.LabelTargetPair{{Label: group.Label, Target: group}}
	resolve(t, rlib)
	assert.Equal(t, "crate_name = mylib\n"+
		"crate_type = rlib\n"+
		"output_extension = .rlib\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/bar\n"+
		"target_output_name = libmylib\n"+
		"\n"+
		"build obj/bar/libmylib.rlib: rust_rlib ../../bar/lib.rs | ../../bar/mylib.rs ../../bar/lib.rs obj/bar/libmymacro.so || obj/baz/group.stamp\n"+
		"  externs = --extern mymacro=obj/bar/libmymacro.so\n"+
		"  rustdeps = -Ldependency=obj/bar\n"+
		"  ldflags =\n"+
		"  sources = ../../bar/mylib.rs ../../bar/lib.rs\n", runRustWriter(t, rlib))

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{{Label: rlib.Label, Target: rlib}}
	resolve(t, target)
	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/bar/libmylib.rlib || obj/baz/group.stamp\n"+
		"  externs = --extern mylib=obj/bar/libmylib.rlib --extern mymacro=obj/bar/libmymacro.so\n"+
		"  rustdeps = -Ldependency=obj/bar\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

func TestRenamedDeps(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	transitive := coretest.RustTarget(settings, toolchain, "//faz:transitive", core.RustLibrary, "transitive",
		"//faz/transitive/transitive.rs", "//faz/transitive/lib.rs")
	resolve(t, transitive)

	rlib := coretest.RustTarget(settings, toolchain, "//baz:mylib", core.RustLibrary, "mylib",
		"//baz/bar/mylib.rs", "//baz/bar/lib.rs")
	rlib.PublicDeps = []core.LabelTargetPair{{Label: transitive.Label, Target: transitive}}
	resolve(t, rlib)

	direct := coretest.RustTarget(settings, toolchain, "//bar:direct", core.RustLibrary, "direct",
		"//bar/direct/direct.rs", "//bar/direct/lib.rs")
	resolve(t, direct)

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.Rust.AliasedDeps = map[core.Label]string{
		direct.Label:     "direct_renamed",
		transitive.Label: "transitive_renamed",
	}
	target.PrivateDeps = []core.LabelTargetPair{
		{Label: direct.Label, Target: direct},
		{Label: rlib.Label, Target: rlib},
	}
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/bar/libdirect.rlib obj/baz/libmylib.rlib\n"+
		"  externs = --extern direct_renamed=obj/bar/libdirect.rlib --extern mylib=obj/baz/libmylib.rlib --extern transitive_renamed=obj/faz/libtransitive.rlib\n"+
		"  rustdeps = -Ldependency=obj/bar -Ldependency=obj/baz -Ldependency=obj/faz\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

func cppTarget(settings *core.BuildSettings, toolchain *core.Toolchain, label string, outputType core.OutputType, sources ...core.SourceFile) *core.Target {
	t := &core.Target{
		Settings:   settings,
		Label:      core.ParseLabel(label),
		OutputType: outputType,
		Toolchain:  toolchain,
		Sources:    sources,
	}
	for _, s := range sources {
		t.SourceTypes.Set(core.SourceTypeOf(s))
	}
	return t
}

func TestNonRustDeps(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	staticlib := cppTarget(settings, toolchain, "//foo:static", core.StaticLibrary, "//foo/static.cpp")
	resolve(t, staticlib)

	rlib := coretest.RustTarget(settings, toolchain, "//bar:mylib", core.RustLibrary, "mylib",
		"//bar/mylib.rs", "//bar/lib.rs")
	resolve(t, rlib)

	sharedlib := cppTarget(settings, toolchain, "//foo:shared", core.SharedLibrary, "//foo/static.cpp")
	resolve(t, sharedlib)

	csourceset := cppTarget(settings, toolchain, "//baz:sourceset", core.SourceSet, "//baz/csourceset.cpp")
	resolve(t, csourceset)

	tocToolchain := coretest.Toolchain(core.ParseLabel("//toolchain_with_toc:with_toc"), true)
	sharedlibWithTOC := cppTarget(settings, tocToolchain, "//foo:shared_with_toc", core.SharedLibrary, "//foo/static.cpp")
	resolve(t, sharedlibWithTOC)

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{
		{Label: rlib.Label, Target: rlib},
		{Label: staticlib.Label, Target: staticlib},
		{Label: sharedlib.Label, Target: sharedlib},
		{Label: csourceset.Label, Target: csourceset},
		{Label: sharedlibWithTOC.Label, Target: sharedlibWithTOC},
	}
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/baz/sourceset.csourceset.o obj/bar/libmylib.rlib obj/foo/libstatic.a ./libshared.so ./libshared_with_toc.so.TOC || obj/baz/sourceset.stamp\n"+
		"  externs = --extern mylib=obj/bar/libmylib.rlib\n"+
		"  rustdeps = -Ldependency=obj/bar -Lnative=obj/baz -Lnative=obj/foo -Lnative=. -Clink-arg=-Bdynamic -Clink-arg=obj/baz/sourceset.csourceset.o -Clink-arg=obj/foo/libstatic.a -Clink-arg=./libshared.so -Clink-arg=./libshared_with_toc.so\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))

	nonRustOnly := coretest.RustTarget(settings, toolchain, "//foo:baronly", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	nonRustOnly.OutputName = "bar"
	nonRustOnly.PrivateDeps = []core.LabelTargetPair{{Label: staticlib.Label, Target: staticlib}}
	resolve(t, nonRustOnly)
	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/foo/libstatic.a\n"+
		"  externs =\n"+
		"  rustdeps = -Lnative=obj/foo -Clink-arg=-Bdynamic -Clink-arg=obj/foo/libstatic.a\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, nonRustOnly))

	rustStaticlib := coretest.RustTarget(settings, toolchain, "//baz:baz", core.StaticLibrary, "baz",
		"//baz/lib.rs")
	rustStaticlib.PrivateDeps = []core.LabelTargetPair{{Label: staticlib.Label, Target: staticlib}}
	resolve(t, rustStaticlib)
	assert.Equal(t, "crate_name = baz\n"+
		"crate_type = staticlib\n"+
		"output_extension = .a\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/baz\n"+
		"target_output_name = libbaz\n"+
		"\n"+
		"build obj/baz/libbaz.a: rust_staticlib ../../baz/lib.rs | ../../baz/lib.rs obj/foo/libstatic.a\n"+
		"  externs =\n"+
		"  rustdeps = -Lnative=obj/foo -Clink-arg=-Bdynamic -Clink-arg=obj/foo/libstatic.a\n"+
		"  ldflags =\n"+
		"  sources = ../../baz/lib.rs\n", runRustWriter(t, rustStaticlib))
}

func TestRustOutputExtensionAndDir(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()
	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/input3.rs", "//foo/main.rs")
	target.OutputExtension = "exe"
	target.OutputExtensionSet = true
	target.OutputDir = "//out/Debug/foo/"
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = .exe\n"+
		"output_dir = foo\n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar.exe: rust_bin ../../foo/main.rs | ../../foo/input3.rs ../../foo/main.rs\n"+
		"  externs =\n"+
		"  rustdeps =\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/input3.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

func TestLibsAndLibDirs(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()
	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/input.rs", "//foo/main.rs")
	target.OutputDir = "//out/Debug/foo/"
	target.ConfigValues.Libs = []core.LibFile{core.LibFileName("quux")}
	target.ConfigValues.LibDirs = []core.SourceDir{"//baz/"}
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = foo\n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/input.rs ../../foo/main.rs\n"+
		"  externs =\n"+
		"  rustdeps = -Lnative=../../baz -lquux\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/input.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

// Neither public nor private deps of a proc-macro are acquired by its
// users; the macro itself still is.
func TestRustProcMacroIsABarrier(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	publicDep := coretest.RustTarget(settings, toolchain, "//baz/public:mymacropublicdep", core.RustLibrary, "publicdep",
		"//baz/public/mylib.rs", "//baz/public/lib.rs")
	resolve(t, publicDep)

	privateDep := coretest.RustTarget(settings, toolchain, "//baz/private:mymacroprivatedep", core.RustLibrary, "privatedep",
		"//baz/private/mylib.rs", "//baz/private/lib.rs")
	resolve(t, privateDep)

	procMacro := coretest.RustTarget(settings, toolchain, "//bar:mymacro", core.RustProcMacro, "mymacro",
		"//bar/mylib.rs", "//bar/lib.rs")
	procMacro.Rust.CrateType = core.CrateProcMacro
	procMacro.PublicDeps = []core.LabelTargetPair{{Label: publicDep.Label, Target: publicDep}}
	procMacro.PrivateDeps = []core.LabelTargetPair{{Label: privateDep.Label, Target: privateDep}}
	resolve(t, procMacro)
	assert.Equal(t, "crate_name = mymacro\n"+
		"crate_type = proc-macro\n"+
		"output_extension = .so\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/bar\n"+
		"target_output_name = libmymacro\n"+
		"\n"+
		"build obj/bar/libmymacro.so: rust_macro ../../bar/lib.rs | ../../bar/mylib.rs ../../bar/lib.rs obj/baz/public/libmymacropublicdep.rlib obj/baz/private/libmymacroprivatedep.rlib\n"+
		"  externs = --extern publicdep=obj/baz/public/libmymacropublicdep.rlib --extern privatedep=obj/baz/private/libmymacroprivatedep.rlib\n"+
		"  rustdeps = -Ldependency=obj/baz/public -Ldependency=obj/baz/private\n"+
		"  ldflags =\n"+
		"  sources = ../../bar/mylib.rs ../../bar/lib.rs\n", runRustWriter(t, procMacro))

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{{Label: procMacro.Label, Target: procMacro}}
	resolve(t, target)
	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/bar/libmymacro.so\n"+
		"  externs = --extern mymacro=obj/bar/libmymacro.so\n"+
		"  rustdeps = -Ldependency=obj/bar\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

func TestGroupDeps(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	rlib := coretest.RustTarget(settings, toolchain, "//bar:mylib", core.RustLibrary, "mylib",
		"//bar/mylib.rs", "//bar/lib.rs")
	resolve(t, rlib)

	group := &core.Target{
		Settings:   settings,
		Label:      core.ParseLabel("//baz:group"),
		OutputType: core.Group,
		Toolchain:  toolchain,
		PublicDeps: []core.LabelTargetPair{{Label: rlib.Label, Target: rlib}},
	}
	resolve(t, group)

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{{Label: group.Label, Target: group}}
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/bar/libmylib.rlib || obj/baz/group.stamp\n"+
		"  externs = --extern mylib=obj/bar/libmylib.rlib\n"+
		"  rustdeps = -Ldependency=obj/bar\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

func TestConfigExterns(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()
	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.ConfigValues.Externs = []core.Extern{
		{Name: "lib1", File: core.LibFileSource("//foo/lib1.rlib")},
		{Name: "lib2", File: core.LibFileName("lib2.rlib")},
	}
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs ../../foo/lib1.rlib\n"+
		"  externs = --extern lib1=../../foo/lib1.rlib --extern lib2=lib2.rlib\n"+
		"  rustdeps =\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

func TestDeclaredInputs(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()
	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.ConfigValues.Inputs = []core.SourceFile{"//foo/config.json", "//foo/template.h"}
	resolve(t, target)

	assert.Equal(t, "build obj/foo/bar.inputs.stamp: stamp ../../foo/config.json ../../foo/template.h\n"+
		"crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs ../../foo/config.json ../../foo/template.h || obj/foo/bar.inputs.stamp\n"+
		"  externs =\n"+
		"  rustdeps =\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs ../../foo/config.json ../../foo/template.h\n", runRustWriter(t, target))
}

func TestCdylibDeps(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	cdylib := coretest.RustTarget(settings, toolchain, "//bar:mylib", core.SharedLibrary, "mylib",
		"//bar/lib.rs")
	cdylib.Rust.CrateType = core.CrateCdylib
	resolve(t, cdylib)
	assert.Equal(t, "crate_name = mylib\n"+
		"crate_type = cdylib\n"+
		"output_extension = .so\n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/bar\n"+
		"target_output_name = libmylib\n"+
		"\n"+
		"build obj/bar/libmylib.so: rust_cdylib ../../bar/lib.rs | ../../bar/lib.rs\n"+
		"  externs =\n"+
		"  rustdeps =\n"+
		"  ldflags =\n"+
		"  sources = ../../bar/lib.rs\n", runRustWriter(t, cdylib))

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/source.rs", "//foo/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{{Label: cdylib.Label, Target: cdylib}}
	resolve(t, target)
	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/source.rs ../../foo/main.rs obj/bar/libmylib.so\n"+
		"  externs =\n"+
		"  rustdeps = -Lnative=obj/bar -Clink-arg=-Bdynamic -Clink-arg=obj/bar/libmylib.so\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/source.rs ../../foo/main.rs\n", runRustWriter(t, target))
}

// Native libraries reached through a chain of Rust and C++ deps must
// still surface on the final link line.
func TestTransitivePublicNonRustDeps(t *testing.T) {
	settings := coretest.Settings()
	toolchain := coretest.DefaultToolchain()

	implicitlib := cppTarget(settings, toolchain, "//foo:implicit", core.SharedLibrary, "//foo/implicit.cpp")
	resolve(t, implicitlib)

	sharedlib := cppTarget(settings, toolchain, "//foo:shared", core.SharedLibrary, "//foo/shared.cpp")
	sharedlib.PublicDeps = []core.LabelTargetPair{{Label: implicitlib.Label, Target: implicitlib}}
	resolve(t, sharedlib)

	rlib := coretest.RustTarget(settings, toolchain, "//bar:mylib", core.RustLibrary, "mylib",
		"//bar/mylib.rs", "//bar/lib.rs")
	rlib.PrivateDeps = []core.LabelTargetPair{{Label: sharedlib.Label, Target: sharedlib}}
	resolve(t, rlib)

	target := coretest.RustTarget(settings, toolchain, "//foo:bar", core.Executable, "foo_bar",
		"//foo/main.rs")
	target.PrivateDeps = []core.LabelTargetPair{{Label: rlib.Label, Target: rlib}}
	resolve(t, target)

	assert.Equal(t, "crate_name = foo_bar\n"+
		"crate_type = bin\n"+
		"output_extension = \n"+
		"output_dir = \n"+
		"rustflags =\n"+
		"rustenv =\n"+
		"root_out_dir = .\n"+
		"target_out_dir = obj/foo\n"+
		"target_output_name = bar\n"+
		"\n"+
		"build ./foo_bar: rust_bin ../../foo/main.rs | ../../foo/main.rs obj/bar/libmylib.rlib ./libshared.so ./libimplicit.so\n"+
		"  externs = --extern mylib=obj/bar/libmylib.rlib\n"+
		"  rustdeps = -Ldependency=obj/bar -Lnative=. -Clink-arg=-Bdynamic -Clink-arg=./libshared.so -Clink-arg=./libimplicit.so\n"+
		"  ldflags =\n"+
		"  sources = ../../foo/main.rs\n", runRustWriter(t, target))
}
