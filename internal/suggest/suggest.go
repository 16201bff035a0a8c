// Package suggest produces nearest-name hints for absent required elements.
package suggest

import (
	"fmt"

	"github.com/agnivade/levenshtein"
)

// maxDistance bounds how dissimilar a name may be and still be suggested.
const maxDistance = 4

// Closest returns the candidate nearest to want by Levenshtein distance, or
// "" when nothing is close enough to be a plausible typo.
func Closest(want string, candidates []string) string {
	best := ""
	bestDist := maxDistance + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(want, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// DidYouMean formats a hint for the closest candidate, or "" when there is
// none.
func DidYouMean(want string, candidates []string) string {
	c := Closest(want, candidates)
	if c == "" {
		return ""
	}
	return fmt.Sprintf("did you mean %q?", c)
}
