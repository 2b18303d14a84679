// Package policy defines the module policy document model: architectural
// modules, their permitted and forbidden callers, and the alias table used
// to map shorthand references onto canonical module IDs.
//
// A Policy is loaded once and treated as an immutable snapshot; nothing in
// this package mutates it after loading.
package policy

// Module is one architectural unit declared in the policy document.
// The ID is the canonical, case-sensitive key used everywhere else.
type Module struct {
	ID string `json:"-"`

	// Ownership declarations (glob patterns, informational)
	OwnedPaths      []string `json:"owned_paths,omitempty"`
	OwnedNamespaces []string `json:"owned_namespaces,omitempty"`

	// Calling permissions. ForbiddenCallers overrides any implicit allowance.
	AllowedCallers   []string `json:"allowed_callers,omitempty"`
	ForbiddenCallers []string `json:"forbidden_callers,omitempty"`

	// Passthrough presentation metadata, not interpreted here
	Coords              *[2]float64 `json:"coords,omitempty"`
	FeatureFlags        []string    `json:"feature_flags,omitempty"`
	RequiredPermissions []string    `json:"required_permissions,omitempty"`
	KillPatterns        []string    `json:"kill_patterns,omitempty"`
}

// KillPattern is a global anti-pattern declaration.
type KillPattern struct {
	Pattern     string `json:"pattern"`
	Description string `json:"description,omitempty"`
}

// Policy maps canonical module IDs to their declarations.
type Policy struct {
	Modules            map[string]Module `json:"modules"`
	GlobalKillPatterns []KillPattern     `json:"global_kill_patterns,omitempty"`
}

// Has reports whether id is a canonical module ID in the policy.
func (p *Policy) Has(id string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Modules[id]
	return ok
}

// ModuleIDs returns all canonical module IDs in unspecified order.
func (p *Policy) ModuleIDs() []string {
	if p == nil {
		return nil
	}
	ids := make([]string, 0, len(p.Modules))
	for id := range p.Modules {
		ids = append(ids, id)
	}
	return ids
}

// AliasEntry maps one alias onto a canonical module ID.
// Confidence is data-driven so low-confidence aliases stay distinguishable.
type AliasEntry struct {
	Canonical  string  `json:"canonical"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// AliasTable is the optional alias document. Read-only to this package's
// consumers.
type AliasTable struct {
	Aliases map[string]AliasEntry `json:"aliases"`
}

// Lookup returns the entry for alias, if present.
func (t *AliasTable) Lookup(alias string) (AliasEntry, bool) {
	if t == nil {
		return AliasEntry{}, false
	}
	e, ok := t.Aliases[alias]
	return e, ok
}
