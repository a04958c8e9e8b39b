package core

import (
	"strings"
)

// BuildSettings holds the global settings for one build directory: where
// the sources live and where generated files go. Paths used as build-graph
// keys stay in source form (//a/b/c.rs); anything that appears in an
// emitted rule is rebased against the build directory first.
type BuildSettings struct {
	// Absolute filesystem path of the source root. May be empty in tests.
	RootPath string
	// The build output directory in source form, eg. "//out/Debug/".
	BuildDir SourceDir
}

// RebasePath returns the textually shortest relative path from base to
// input. Both are source-form directories or files; neither is consulted
// on disk.
func RebasePath(input string, base SourceDir) string {
	b := strings.TrimPrefix(string(base), "//")
	in := strings.TrimPrefix(input, "//")
	if !strings.HasPrefix(input, "//") {
		// System-absolute paths are passed through untouched.
		return input
	}
	// Strip the longest common directory prefix.
	for {
		i := strings.IndexByte(b, '/')
		if i == -1 {
			break
		}
		dir := b[:i+1]
		if !strings.HasPrefix(in, dir) {
			break
		}
		b = b[i+1:]
		in = in[i+1:]
	}
	up := strings.Count(b, "/")
	ret := strings.Repeat("../", up) + in
	if ret == "" {
		return "."
	}
	return strings.TrimSuffix(ret, "/")
}

// RebaseSourceFile rebases a source file against the build directory,
// yielding the path that appears in emitted rules.
func (s *BuildSettings) RebaseSourceFile(f SourceFile) string {
	return RebasePath(string(f), s.BuildDir)
}

// RebaseSourceDir rebases a source directory against the build directory.
func (s *BuildSettings) RebaseSourceDir(d SourceDir) string {
	return RebasePath(string(d), s.BuildDir)
}

// OutputDirForSourceDir converts a source-form directory inside the build
// dir (eg. an explicit output_dir of "//out/Debug/foo/") into its
// build-root relative form ("foo"). Directories outside the build dir are
// rebased like any other path.
func (s *BuildSettings) OutputDirForSourceDir(d SourceDir) string {
	if strings.HasPrefix(string(d), string(s.BuildDir)) {
		return strings.TrimSuffix(strings.TrimPrefix(string(d), string(s.BuildDir)), "/")
	}
	return s.RebaseSourceDir(d)
}
