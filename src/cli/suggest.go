package cli

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/genja-build/genja/src/core"
)

// maxSuggestions caps how many alternatives one message offers.
const maxSuggestions = 3

// SuggestTargets produces a "Maybe you meant" message for a mistyped
// target label, or the empty string when nothing in the graph is close.
// Labels in the same package as the needle are matched on their name
// alone and preferred, so //foo:bra suggests //foo:bar before anything
// in another package; otherwise the whole label is compared.
func SuggestTargets(needle core.Label, graph []core.Label, maxDistance int) string {
	type scored struct {
		label core.Label
		dist  int
		same  bool
	}
	var options []scored
	for _, candidate := range graph {
		var dist int
		if candidate.Dir == needle.Dir {
			dist = labelDistance(needle.Name, candidate.Name)
		} else {
			dist = labelDistance(needle.ShortString(), candidate.ShortString())
		}
		if dist > 0 && dist <= maxDistance {
			options = append(options, scored{label: candidate, dist: dist, same: candidate.Dir == needle.Dir})
		}
	}
	if len(options) == 0 {
		return ""
	}
	// Same-package matches sort ahead of all others, then by distance;
	// ties break on label order so the message is deterministic.
	sort.Slice(options, func(i, j int) bool {
		if options[i].same != options[j].same {
			return options[i].same
		}
		if options[i].dist != options[j].dist {
			return options[i].dist < options[j].dist
		}
		return options[i].label.Less(options[j].label)
	})
	if len(options) > maxSuggestions {
		options = options[:maxSuggestions]
	}
	var b strings.Builder
	b.WriteString("\nMaybe you meant ")
	for i, o := range options {
		if i > 0 {
			if i == len(options)-1 {
				b.WriteString(" or ")
			} else {
				b.WriteString(", ")
			}
		}
		b.WriteString(o.label.ShortString())
	}
	b.WriteString("?")
	return b.String()
}

func labelDistance(a, b string) int {
	return levenshtein.DistanceForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}
