// Package ninja holds the primitives of the output dialect: escaping,
// path emission and the naming scheme for generated files.
package ninja

import (
	"strings"
)

// EscapeMode selects which characters are significant in the context the
// string is being written into.
type EscapeMode int

const (
	// EscapeNone passes the string through untouched.
	EscapeNone EscapeMode = iota
	// EscapeNinja quotes the characters significant on build lines:
	// $, space and colon.
	EscapeNinja
	// EscapeNinjaCommand quotes only $ for strings landing inside a
	// command variable, where spaces separate arguments on purpose.
	EscapeNinjaCommand
)

// Escape quotes s for the given context.
func Escape(s string, mode EscapeMode) string {
	switch mode {
	case EscapeNinja:
		if !strings.ContainsAny(s, "$ :") {
			return s
		}
		var b strings.Builder
		b.Grow(len(s) + 4)
		for i := 0; i < len(s); i++ {
			switch s[i] {
			case '$', ' ', ':':
				b.WriteByte('$')
			}
			b.WriteByte(s[i])
		}
		return b.String()
	case EscapeNinjaCommand:
		return strings.ReplaceAll(s, "$", "$$")
	}
	return s
}
