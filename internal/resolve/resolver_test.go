package resolve

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modatlas/internal/policy"
)

// testPolicy builds a policy with the given module IDs.
func testPolicy(ids ...string) *policy.Policy {
	modules := make(map[string]policy.Module, len(ids))
	for _, id := range ids {
		modules[id] = policy.Module{ID: id}
	}
	return &policy.Policy{Modules: modules}
}

func testAliases(entries map[string]policy.AliasEntry) *policy.AliasTable {
	return &policy.AliasTable{Aliases: entries}
}

func TestResolve_Exact(t *testing.T) {
	pol := testPolicy("services/auth-core", "services/gateway")

	res, err := Resolve("services/auth-core", pol, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, "services/auth-core", res.Canonical)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, SourceExact, res.Source)
	assert.Empty(t, res.Warning)
}

func TestResolve_ExactPrecedesAlias(t *testing.T) {
	// A canonical ID that is also an alias key mapping elsewhere must
	// resolve exactly - aliases can never shadow real module IDs.
	pol := testPolicy("services/auth-core", "services/other")
	aliases := testAliases(map[string]policy.AliasEntry{
		"services/auth-core": {Canonical: "services/other", Confidence: 0.9},
	})

	res, err := Resolve("services/auth-core", pol, aliases, Options{})
	require.NoError(t, err)
	assert.Equal(t, SourceExact, res.Source)
	assert.Equal(t, "services/auth-core", res.Canonical)
}

func TestResolve_Alias(t *testing.T) {
	pol := testPolicy("services/auth-core")
	aliases := testAliases(map[string]policy.AliasEntry{
		"auth": {Canonical: "services/auth-core", Confidence: 0.85, Reason: "shorthand"},
	})

	res, err := Resolve("auth", pol, aliases, Options{})
	require.NoError(t, err)

	assert.Equal(t, "services/auth-core", res.Canonical)
	assert.Equal(t, 0.85, res.Confidence, "alias confidence is data-driven, not hard-coded")
	assert.Equal(t, SourceAlias, res.Source)
}

func TestResolve_UniqueSubstring(t *testing.T) {
	pol := testPolicy("services/auth-core")

	res, err := Resolve("auth-core", pol, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, "services/auth-core", res.Canonical)
	assert.Equal(t, 0.9, res.Confidence)
	assert.Equal(t, SourceSubstring, res.Source)
	assert.Contains(t, res.Warning, "auth-core")
	assert.Contains(t, res.Warning, "services/auth-core")
}

func TestResolve_SubstringCaseInsensitive(t *testing.T) {
	pol := testPolicy("services/auth-core")

	res, err := Resolve("AUTH-CORE", pol, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "services/auth-core", res.Canonical)
	assert.Equal(t, SourceSubstring, res.Source)
}

func TestResolve_SubstringFloor(t *testing.T) {
	// Input shorter than the minimum never substring-matches, even when it
	// is a substring of exactly one module ID.
	pol := testPolicy("services/ab-core")

	res, err := Resolve("ab", pol, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, SourceFuzzy, res.Source)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, "ab", res.Canonical)
}

func TestResolve_AmbiguousCollapsesToUnresolved(t *testing.T) {
	// Spec example: "auth" is a substring of two modules - non-strict mode
	// must not pick a winner.
	pol := testPolicy("services/auth-core", "services/auth-admin")

	res, err := Resolve("auth", pol, nil, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, SourceFuzzy, res.Source)
	assert.Equal(t, "auth", res.Canonical)
	assert.Contains(t, res.Warning, "services/auth-admin")
	assert.Contains(t, res.Warning, "services/auth-core")
}

func TestResolve_AmbiguousStrict(t *testing.T) {
	pol := testPolicy("services/auth-core", "services/auth-admin")

	_, err := Resolve("auth", pol, nil, Options{Strict: true})
	require.Error(t, err)

	var ambig *AmbiguousError
	require.True(t, errors.As(err, &ambig))
	assert.Equal(t, "auth", ambig.Input)
	assert.Equal(t, []string{"services/auth-admin", "services/auth-core"}, ambig.Matches)
	assert.Equal(t, 2, ambig.Total)
}

func TestResolve_AmbiguousTruncation(t *testing.T) {
	var ids []string
	for i := 0; i < 8; i++ {
		ids = append(ids, fmt.Sprintf("services/auth-%d", i))
	}
	pol := testPolicy(ids...)

	_, err := Resolve("auth", pol, nil, Options{Strict: true})
	var ambig *AmbiguousError
	require.True(t, errors.As(err, &ambig))

	assert.Len(t, ambig.Matches, DefaultMaxAmbiguousMatches)
	assert.Equal(t, 8, ambig.Total)
	assert.Contains(t, ambig.Error(), "... and 3 more")
}

func TestResolve_NoMatch(t *testing.T) {
	pol := testPolicy("services/auth-core")

	res, err := Resolve("billing", pol, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "billing", res.Canonical, "canonical echoes the original input unchanged")
	assert.Equal(t, 0.0, res.Confidence)
	assert.Equal(t, SourceFuzzy, res.Source)

	_, err = Resolve("billing", pol, nil, Options{Strict: true})
	var noMatch *NoMatchError
	require.True(t, errors.As(err, &noMatch))
	assert.Equal(t, "billing", noMatch.Input)
}

func TestResolve_NoSubstringOption(t *testing.T) {
	pol := testPolicy("services/auth-core")

	res, err := Resolve("auth-core", pol, nil, Options{NoSubstring: true})
	require.NoError(t, err)
	assert.Equal(t, SourceFuzzy, res.Source)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestResolve_Deterministic(t *testing.T) {
	// Map iteration order must not leak into results: repeated calls with
	// identical inputs return identical results.
	pol := testPolicy("services/auth-core", "services/auth-admin", "services/auth-gateway")

	first, err := Resolve("auth", pol, nil, Options{})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := Resolve("auth", pol, nil, Options{})
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("Resolve not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestResolve_CaseSensitiveExact(t *testing.T) {
	// Exact matching is case-sensitive; a wrong-case input falls through
	// to the substring tier instead.
	pol := testPolicy("Services/Auth")

	res, err := Resolve("services/auth", pol, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, SourceSubstring, res.Source)
	assert.Equal(t, "Services/Auth", res.Canonical)
}
