package core

import (
	"fmt"
	"regexp"
	"strings"
)

// Representation of an identifier of a build target, eg. //spam/eggs:ham
// corresponds to Label{Dir: "spam/eggs", Name: "ham"}. Labels are always
// absolute. A label may also carry the toolchain it is built with, written
// //spam/eggs:ham(//tools:gcc); two labels are only equal if all four
// fields match.
type Label struct {
	Dir           string
	Name          string
	ToolchainDir  string
	ToolchainName string
}

// This is a little strict; doesn't allow for non-ascii names, for example.
const labelDirPart = `[A-Za-z0-9\._\+-]+`
const labelDir = "(" + labelDirPart + "(?:/" + labelDirPart + ")*)"
const labelName = `([A-Za-z0-9\._\+-]+)`

var absoluteLabel = regexp.MustCompile(fmt.Sprintf("^//(?:%s)?:%s$", labelDir, labelName))
var implicitLabel = regexp.MustCompile(fmt.Sprintf("^//(?:%s/)?(%s)$", labelDir, labelDirPart))

func (label Label) String() string {
	s := "//" + label.Dir + ":" + label.Name
	if label.ToolchainName != "" {
		s += "(//" + label.ToolchainDir + ":" + label.ToolchainName + ")"
	}
	return s
}

// ShortString returns the label without any toolchain annotation.
func (label Label) ShortString() string {
	return "//" + label.Dir + ":" + label.Name
}

// NoToolchain returns a copy of this label with the toolchain stripped.
func (label Label) NoToolchain() Label {
	return Label{Dir: label.Dir, Name: label.Name}
}

// Compare defines a total order over labels; lexicographic over
// (Dir, Name, ToolchainDir, ToolchainName).
func (label Label) Compare(other Label) int {
	if c := strings.Compare(label.Dir, other.Dir); c != 0 {
		return c
	}
	if c := strings.Compare(label.Name, other.Name); c != 0 {
		return c
	}
	if c := strings.Compare(label.ToolchainDir, other.ToolchainDir); c != 0 {
		return c
	}
	return strings.Compare(label.ToolchainName, other.ToolchainName)
}

// Less is a convenience for sorts.
func (label Label) Less(other Label) bool { return label.Compare(other) < 0 }

// SourceDir returns the directory of this label as a SourceDir ("//spam/eggs/").
func (label Label) SourceDir() SourceDir {
	if label.Dir == "" {
		return "//"
	}
	return SourceDir("//" + label.Dir + "/")
}

// TryParseLabel parses a single absolute build label from a string.
// //foo/bar expands to //foo/bar:bar in the usual way.
func TryParseLabel(s string) (Label, error) {
	toolchain := Label{}
	if i := strings.IndexByte(s, '('); i != -1 && strings.HasSuffix(s, ")") {
		tc, err := TryParseLabel(s[i+1 : len(s)-1])
		if err != nil {
			return Label{}, err
		}
		toolchain = tc
		s = s[:i]
	}
	if m := absoluteLabel.FindStringSubmatch(s); m != nil {
		return Label{Dir: m[1], Name: m[2], ToolchainDir: toolchain.Dir, ToolchainName: toolchain.Name}, nil
	}
	if m := implicitLabel.FindStringSubmatch(s); m != nil {
		dir := m[2]
		if m[1] != "" {
			dir = m[1] + "/" + m[2]
		}
		return Label{Dir: dir, Name: m[2], ToolchainDir: toolchain.Dir, ToolchainName: toolchain.Name}, nil
	}
	return Label{}, fmt.Errorf("invalid build label: %s", s)
}

// ParseLabel is like TryParseLabel but panics on failure. Only for use on
// labels known to be valid (eg. literals in tests).
func ParseLabel(s string) Label {
	label, err := TryParseLabel(s)
	if err != nil {
		panic(err)
	}
	return label
}

// LabelTargetPair associates a label with the target it resolved to.
type LabelTargetPair struct {
	Label  Label
	Target *Target
}
