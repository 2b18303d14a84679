// Package resolve turns possibly-imprecise module references into canonical
// policy module IDs. Resolution is a fixed cascade - exact key, alias table,
// unique case-insensitive substring - that short-circuits on first success
// and never guesses: ambiguity is reported, not broken by heuristics.
//
// Edit-distance matching exists only to generate suggestions for error
// messages (see suggest.go); it never resolves anything on its own.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"modatlas/internal/logging"
	"modatlas/internal/policy"
)

// Source identifies which cascade tier produced a resolution.
type Source string

const (
	SourceExact     Source = "exact"
	SourceAlias     Source = "alias"
	SourceSubstring Source = "substring"
	// SourceFuzzy marks an unresolved reference (confidence 0). The name is
	// historical: it means "no confident source", not that fuzzy matching
	// was attempted.
	SourceFuzzy Source = "fuzzy"
)

// Default option values.
const (
	DefaultMinSubstringLength  = 3
	DefaultMaxAmbiguousMatches = 5
)

// Options tunes the resolution cascade. The zero value gives defaults with
// non-strict behavior.
type Options struct {
	// NoSubstring disables the substring tier entirely.
	NoSubstring bool

	// MinSubstringLength is the shortest input eligible for substring
	// matching. The floor suppresses accidental matches from very
	// short tokens. Zero means DefaultMinSubstringLength.
	MinSubstringLength int

	// MaxAmbiguousMatches caps how many candidates an ambiguity report
	// lists before truncating. Zero means DefaultMaxAmbiguousMatches.
	MaxAmbiguousMatches int

	// Strict converts ambiguity and non-matches into errors instead of a
	// zero-confidence result.
	Strict bool
}

func (o Options) minSubstringLength() int {
	if o.MinSubstringLength <= 0 {
		return DefaultMinSubstringLength
	}
	return o.MinSubstringLength
}

func (o Options) maxAmbiguousMatches() int {
	if o.MaxAmbiguousMatches <= 0 {
		return DefaultMaxAmbiguousMatches
	}
	return o.MaxAmbiguousMatches
}

// Result is the outcome of one resolution.
type Result struct {
	// Canonical is the resolved module ID, or the original input unchanged
	// when unresolved.
	Canonical string `json:"canonical"`

	// Confidence in [0,1]. 1.0 only for exact and alias tiers, 0.9 for a
	// unique substring match, 0 for unresolved.
	Confidence float64 `json:"confidence"`

	// Original is the caller's input, verbatim.
	Original string `json:"original"`

	// Source is the cascade tier that produced this result.
	Source Source `json:"source"`

	// Warning is a human-readable note set whenever resolution was
	// non-literal (substring expansion, ambiguity collapse). Callers are
	// expected to surface it.
	Warning string `json:"warning,omitempty"`
}

// Resolve maps input to a canonical module ID using the fixed cascade.
//
// In non-strict mode it always returns a Result; an unresolvable input
// yields confidence 0 with Canonical echoing the input. In strict mode
// substring ambiguity returns *AmbiguousError and full non-resolution
// returns *NoMatchError.
func Resolve(input string, pol *policy.Policy, aliases *policy.AliasTable, opts Options) (Result, error) {
	// Tier 1: exact canonical ID. Checked before aliases so a canonical ID
	// can never be shadowed by an alias of the same string.
	if pol.Has(input) {
		logging.ResolveDebug("Resolved %q exactly", input)
		return Result{
			Canonical:  input,
			Confidence: 1.0,
			Original:   input,
			Source:     SourceExact,
		}, nil
	}

	// Tier 2: alias table. Confidence comes from the entry, not a constant,
	// so low-confidence aliases stay distinguishable downstream.
	if entry, ok := aliases.Lookup(input); ok {
		logging.ResolveDebug("Resolved %q via alias -> %q (confidence %.2f)",
			input, entry.Canonical, entry.Confidence)
		return Result{
			Canonical:  entry.Canonical,
			Confidence: entry.Confidence,
			Original:   input,
			Source:     SourceAlias,
		}, nil
	}

	// Tier 3: unique case-insensitive substring.
	if !opts.NoSubstring && len(input) >= opts.minSubstringLength() {
		matches := substringMatches(input, pol)

		switch {
		case len(matches) == 1:
			logging.ResolveDebug("Resolved %q via substring -> %q", input, matches[0])
			return Result{
				Canonical:  matches[0],
				Confidence: 0.9,
				Original:   input,
				Source:     SourceSubstring,
				Warning:    fmt.Sprintf("expanded %q to %q via substring match", input, matches[0]),
			}, nil

		case len(matches) > 1:
			shown := matches
			total := len(matches)
			if limit := opts.maxAmbiguousMatches(); total > limit {
				shown = matches[:limit]
			}
			if opts.Strict {
				return Result{}, &AmbiguousError{Input: input, Matches: shown, Total: total}
			}
			// Non-strict: ambiguity collapses to unresolved, with the full
			// candidate context preserved in the warning.
			ambig := &AmbiguousError{Input: input, Matches: shown, Total: total}
			logging.ResolveDebug("Ambiguous substring %q: %d candidates", input, total)
			return Result{
				Canonical:  input,
				Confidence: 0,
				Original:   input,
				Source:     SourceFuzzy,
				Warning:    ambig.Error(),
			}, nil
		}
		// Zero matches: fall through.
	}

	// Tier 4: unresolved.
	if opts.Strict {
		return Result{}, &NoMatchError{Input: input}
	}
	logging.ResolveDebug("Could not resolve %q", input)
	return Result{
		Canonical:  input,
		Confidence: 0,
		Original:   input,
		Source:     SourceFuzzy,
	}, nil
}

// substringMatches returns every canonical module ID containing input
// case-insensitively, in sorted order so reports and results are
// deterministic regardless of map iteration.
func substringMatches(input string, pol *policy.Policy) []string {
	needle := strings.ToLower(input)

	var matches []string
	for _, id := range pol.ModuleIDs() {
		if strings.Contains(strings.ToLower(id), needle) {
			matches = append(matches, id)
		}
	}
	sort.Strings(matches)
	return matches
}
