package ninja

import (
	"github.com/genja-build/genja/src/core"
)

// FileForTarget is the per-target sub-file a binary target's rules are
// written into: obj/<source-dir>/<target-name>.ninja.
func FileForTarget(t *core.Target) core.OutputFile {
	return core.OutputFile(t.Toolchain.OutputDir() + "obj/" + t.Label.Dir + "/" + t.Label.Name + ".ninja")
}

// FileForToolchain is the aggregate file for one toolchain, under the
// toolchain's output directory.
func FileForToolchain(tc *core.Toolchain) core.OutputFile {
	return core.OutputFile(tc.OutputDir() + "toolchain.ninja")
}

// MasterFile is the top-level file at the build root.
const MasterFile = "build.ninja"
