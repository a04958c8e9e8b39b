package ninja

import (
	"bytes"

	"github.com/genja-build/genja/src/core"
)

// PathOutput writes paths into an output buffer, rebasing source paths
// against the build directory and escaping everything for the ninja
// context. Output-root relative paths are escaped but not rebased.
type PathOutput struct {
	Settings *core.BuildSettings
}

// WriteFile writes one output file, preceded by a space.
func (p PathOutput) WriteFile(out *bytes.Buffer, f core.OutputFile) {
	out.WriteByte(' ')
	out.WriteString(Escape(string(f), EscapeNinja))
}

// WriteFiles writes each file preceded by a space.
func (p PathOutput) WriteFiles(out *bytes.Buffer, files []core.OutputFile) {
	for _, f := range files {
		p.WriteFile(out, f)
	}
}

// WriteSource writes one source file rebased against the build dir,
// preceded by a space.
func (p PathOutput) WriteSource(out *bytes.Buffer, f core.SourceFile) {
	out.WriteByte(' ')
	out.WriteString(Escape(p.Settings.RebaseSourceFile(f), EscapeNinja))
}

// SourcePath returns the rebased, escaped form of a source file.
func (p PathOutput) SourcePath(f core.SourceFile) string {
	return Escape(p.Settings.RebaseSourceFile(f), EscapeNinja)
}
