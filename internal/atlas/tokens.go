package atlas

import "encoding/json"

// =============================================================================
// Token Counting Utilities
// =============================================================================
// Token estimation for neighborhood budget management. The heuristic is
// ~4 characters per token, rounded up so the budget is never silently
// exceeded by rounding.

// TokenCounter provides token counting functionality.
type TokenCounter struct {
	charsPerToken int
}

// NewTokenCounter creates a token counter with default calibration.
func NewTokenCounter() *TokenCounter {
	return &TokenCounter{charsPerToken: 4}
}

// CountBytes estimates tokens for a serialized payload, rounding up.
func (tc *TokenCounter) CountBytes(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + tc.charsPerToken - 1) / tc.charsPerToken
}

// CountNeighborhood estimates tokens for a neighborhood's JSON serialization.
func (tc *TokenCounter) CountNeighborhood(n *Neighborhood) (int, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return 0, err
	}
	return tc.CountBytes(len(data)), nil
}
