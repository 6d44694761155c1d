package errors

import (
	"fmt"
	"strings"
)

// SuggestKey suggests the closest present key when a required section is
// missing, e.g. a misspelled field name in the data.
func SuggestKey(missing string, present []string) string {
	best, ok := closest(missing, present, 3)
	if !ok {
		return ""
	}
	return fmt.Sprintf("Did you mean '%s'?", best)
}

// SuggestConstraint suggests a known constraint name for an unknown one.
func SuggestConstraint(unknown string, known []string) string {
	if len(known) == 0 {
		return ""
	}
	if best, ok := closest(unknown, known, 3); ok {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	return fmt.Sprintf("Valid constraints: %s", strings.Join(known, ", "))
}

// closest returns the candidate with the smallest edit distance to s, if
// that distance is below limit.
func closest(s string, candidates []string, limit int) (string, bool) {
	minDistance := limit
	var best string
	found := false

	for _, c := range candidates {
		if d := levenshteinDistance(strings.ToLower(s), strings.ToLower(c)); d < minDistance {
			minDistance = d
			best = c
			found = true
		}
	}

	return best, found
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	r1, r2 := []rune(s1), []rune(s2)
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
