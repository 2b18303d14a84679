package resolve

import (
	"fmt"
	"strings"
)

// AmbiguousError reports a substring match with more than one candidate.
// Matches may be truncated to the resolver's MaxAmbiguousMatches; Total
// carries the untruncated count so the report never hides how ambiguous
// the input actually was.
type AmbiguousError struct {
	Input   string
	Matches []string
	Total   int
}

func (e *AmbiguousError) Error() string {
	candidates := strings.Join(e.Matches, ", ")
	if e.Total > len(e.Matches) {
		candidates = fmt.Sprintf("%s, ... and %d more", candidates, e.Total-len(e.Matches))
	}
	return fmt.Sprintf("ambiguous module reference %q: matches %s", e.Input, candidates)
}

// NoMatchError reports that no tier of the resolution cascade produced a
// canonical module ID.
type NoMatchError struct {
	Input string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no module found matching %q", e.Input)
}
