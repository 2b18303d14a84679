package resolve

import (
	"fmt"

	"modatlas/internal/logging"
	"modatlas/internal/policy"
)

// maxSuggestions caps how many alternatives a validation error offers.
const maxSuggestions = 3

// ValidationError describes one module reference that could not be
// validated, with advisory alternatives.
type ValidationError struct {
	Module      string   `json:"module"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ValidationResult is the outcome of validating a module scope.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Canonical []string          `json:"canonical"`
	Errors    []ValidationError `json:"errors,omitempty"`

	// Warnings carries non-fatal resolution notes (substring expansions)
	// that callers are expected to surface.
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateModuleIDs resolves every reference in scope and reports either
// the full canonical list or structured errors with suggestions. An empty
// scope is trivially valid. A resolved canonical ID that is not actually a
// policy module is an error - this covers both unresolved references and,
// defensively, an alias pointing at a module that no longer exists.
func ValidateModuleIDs(scope []string, pol *policy.Policy, aliases *policy.AliasTable, opts Options) ValidationResult {
	timer := logging.StartTimer(logging.CategoryResolve, "ValidateModuleIDs")
	defer timer.Stop()

	result := ValidationResult{
		Valid:     true,
		Canonical: []string{},
	}

	// Validation is the non-throwing surface; strictness belongs to direct
	// Resolve call sites.
	opts.Strict = false

	for _, ref := range scope {
		res, err := Resolve(ref, pol, aliases, opts)
		if err != nil {
			// Unreachable with Strict forced off; kept so a future change
			// to Resolve cannot silently drop an error.
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Module:      ref,
				Message:     err.Error(),
				Suggestions: Suggest(ref, pol, maxSuggestions),
			})
			continue
		}

		if !pol.Has(res.Canonical) {
			msg := fmt.Sprintf("unknown module %q", ref)
			if res.Source == SourceAlias {
				msg = fmt.Sprintf("alias %q points at unknown module %q", ref, res.Canonical)
			} else if res.Warning != "" {
				msg = fmt.Sprintf("unknown module %q (%s)", ref, res.Warning)
			}
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Module:      ref,
				Message:     msg,
				Suggestions: Suggest(res.Canonical, pol, maxSuggestions),
			})
			continue
		}

		if res.Warning != "" {
			result.Warnings = append(result.Warnings, res.Warning)
		}
		result.Canonical = append(result.Canonical, res.Canonical)
	}

	if !result.Valid {
		result.Canonical = nil
		logging.Resolve("Validation failed: %d of %d references invalid",
			len(result.Errors), len(scope))
	}

	return result
}
