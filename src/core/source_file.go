package core

import (
	"path"
	"strings"
)

// A SourceFile is a path to a file in source form: either source-root
// relative ("//foo/bar.rs") or system absolute ("/usr/include/foo.h").
type SourceFile string

// Name returns the file part of the path.
func (f SourceFile) Name() string {
	return path.Base(string(f))
}

// NamePart returns the file part without its extension.
func (f SourceFile) NamePart() string {
	name := f.Name()
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// Extension returns the extension without the dot, or "".
func (f SourceFile) Extension() string {
	name := f.Name()
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[i+1:]
	}
	return ""
}

// Dir returns the directory containing this file, with a trailing slash.
func (f SourceFile) Dir() SourceDir {
	s := string(f)
	if i := strings.LastIndexByte(s, '/'); i != -1 {
		return SourceDir(s[:i+1])
	}
	return SourceDir(s)
}

// IsSourceRooted reports whether the path begins with //.
func (f SourceFile) IsSourceRooted() bool {
	return strings.HasPrefix(string(f), "//")
}

// A SourceDir is a directory in source form; always ends in a slash.
type SourceDir string

// SourceType describes the language a source file belongs to, inferred
// from its extension.
type SourceType uint8

const (
	SourceUnknown SourceType = iota
	SourceC
	SourceCPP
	SourceH
	SourceASM
	SourceRS
	SourceGo
)

// SourceTypeSet is a bitset of the source types used by a target.
type SourceTypeSet uint32

// Set marks the given type as used.
func (s *SourceTypeSet) Set(t SourceType) { *s |= 1 << t }

// Has reports whether the given type is used.
func (s SourceTypeSet) Has(t SourceType) bool { return s&(1<<t) != 0 }

// RustUsed reports whether any Rust sources are used.
func (s SourceTypeSet) RustUsed() bool { return s.Has(SourceRS) }

// SourceTypeOf classifies a file by extension.
func SourceTypeOf(f SourceFile) SourceType {
	switch f.Extension() {
	case "c":
		return SourceC
	case "cc", "cpp", "cxx":
		return SourceCPP
	case "h", "hpp", "hxx":
		return SourceH
	case "s", "S", "asm":
		return SourceASM
	case "rs":
		return SourceRS
	case "go":
		return SourceGo
	}
	return SourceUnknown
}

// An OutputFile is a path relative to the root of the build output
// directory. It is a distinct type so it can't be confused with source
// paths, which require rebasing before they can appear in build rules.
type OutputFile string

// Dir returns the directory part of the path without a trailing slash,
// or "." for a file at the build root.
func (f OutputFile) Dir() string {
	if i := strings.LastIndexByte(string(f), '/'); i > 0 {
		return string(f)[:i]
	} else if i == 0 {
		return "."
	}
	return "."
}
