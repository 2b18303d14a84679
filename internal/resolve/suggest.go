package resolve

import (
	"sort"

	"modatlas/internal/policy"
)

// suggestionDistanceCap bounds how far a module ID may be, in edit
// distance, from the unresolved input and still be suggested.
const suggestionDistanceCap = 10

// Suggest returns up to max module IDs closest to input by Levenshtein
// distance, ascending, with IDs beyond suggestionDistanceCap excluded.
// Purely advisory text generation: an empty policy degrades to an empty
// list, never an error.
func Suggest(input string, pol *policy.Policy, max int) []string {
	if pol == nil || max <= 0 {
		return nil
	}

	type candidate struct {
		id   string
		dist int
	}

	var candidates []candidate
	for _, id := range pol.ModuleIDs() {
		d := levenshtein(input, id)
		if d <= suggestionDistanceCap {
			candidates = append(candidates, candidate{id: id, dist: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}

	suggestions := make([]string, len(candidates))
	for i, c := range candidates {
		suggestions[i] = c.id
	}
	return suggestions
}

// levenshtein computes edit distance between a and b using the two-row
// dynamic programming formulation.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
