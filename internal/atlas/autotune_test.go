package atlas

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modatlas/internal/policy"
)

// linePolicy builds a line graph m0 - m1 - ... - m(n-1) with padded metadata
// so neighborhoods grow meaningfully with radius.
func linePolicy(n int) *policy.Policy {
	pol := &policy.Policy{Modules: map[string]policy.Module{}}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("services/module-%03d", i)
		m := policy.Module{
			ID:                  id,
			RequiredPermissions: []string{"perm.read", "perm.write", "perm.admin"},
			FeatureFlags:        []string{"flag-alpha", "flag-beta"},
		}
		if i > 0 {
			m.AllowedCallers = []string{fmt.Sprintf("services/module-%03d", i-1)}
		}
		pol.Modules[id] = m
	}
	return pol
}

func generatorFor(pol *policy.Policy, seeds []string) GenerateFunc {
	return func(radius int) (*Neighborhood, error) {
		return ComputeFoldRadius(seeds, radius, pol), nil
	}
}

func TestAutoTuneRadius_FitsImmediately(t *testing.T) {
	pol := linePolicy(5)
	gen := generatorFor(pol, []string{"services/module-000"})

	result, err := AutoTuneRadius(gen, 2, 100000, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.RadiusUsed, "radius shrinks only when over budget")
	assert.LessOrEqual(t, result.TokensUsed, 100000)
}

func TestAutoTuneRadius_ShrinksToFit(t *testing.T) {
	pol := linePolicy(30)
	gen := generatorFor(pol, []string{"services/module-000"})

	full, err := gen(10)
	require.NoError(t, err)
	fullTokens, err := NewTokenCounter().CountNeighborhood(full)
	require.NoError(t, err)

	// Budget below the radius-10 size forces shrinking.
	budget := fullTokens - 1

	var adjustments [][4]int
	result, err := AutoTuneRadius(gen, 10, budget, func(oldR, newR, tokens, max int) {
		adjustments = append(adjustments, [4]int{oldR, newR, tokens, max})
	})
	require.NoError(t, err)

	assert.Less(t, result.RadiusUsed, 10)
	assert.GreaterOrEqual(t, result.RadiusUsed, 0)
	assert.LessOrEqual(t, result.TokensUsed, budget)
	require.NotEmpty(t, adjustments)

	// Each adjustment decrements by exactly 1.
	for i, adj := range adjustments {
		assert.Equal(t, adj[0]-1, adj[1], "adjustment %d", i)
		assert.Equal(t, budget, adj[3])
	}
	assert.Equal(t, 10, adjustments[0][0])
	assert.Equal(t, result.RadiusUsed, adjustments[len(adjustments)-1][1])
}

func TestAutoTuneRadius_FloorReturnsOverBudget(t *testing.T) {
	pol := linePolicy(10)
	gen := generatorFor(pol, []string{"services/module-000"})

	// Budget of 1 token can never be met; the radius-0 result comes back anyway.
	result, err := AutoTuneRadius(gen, 3, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.RadiusUsed)
	assert.Greater(t, result.TokensUsed, 1, "caller detects the over-budget floor result")
	require.NotNil(t, result.Neighborhood)
	assert.Len(t, result.Neighborhood.Modules, 1)
}

func TestAutoTuneRadius_TerminationBound(t *testing.T) {
	pol := linePolicy(10)

	calls := 0
	gen := func(radius int) (*Neighborhood, error) {
		calls++
		return ComputeFoldRadius([]string{"services/module-000"}, radius, pol), nil
	}

	initial := 7
	_, err := AutoTuneRadius(gen, initial, 1, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, calls, initial+1, "must terminate in at most initialRadius+1 iterations")
}

func TestAutoTuneRadius_NegativeInitialClamped(t *testing.T) {
	pol := linePolicy(3)
	gen := generatorFor(pol, []string{"services/module-000"})

	result, err := AutoTuneRadius(gen, -4, 100000, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.RadiusUsed)
}

func TestAutoTuneRadius_GenerateError(t *testing.T) {
	gen := func(radius int) (*Neighborhood, error) {
		return nil, fmt.Errorf("boom")
	}

	_, err := AutoTuneRadius(gen, 2, 100, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAutoTuneRadius_NilGenerate(t *testing.T) {
	_, err := AutoTuneRadius(nil, 2, 100, nil)
	require.Error(t, err)
}
