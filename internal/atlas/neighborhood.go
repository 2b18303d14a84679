package atlas

import (
	"sort"

	"modatlas/internal/logging"
	"modatlas/internal/policy"
)

// ReasonForbiddenCaller classifies an edge derived from a forbidden_callers
// declaration.
const ReasonForbiddenCaller = "forbidden_caller"

// ModuleSummary carries the presentation subset of a policy module.
type ModuleSummary struct {
	ID                  string      `json:"id"`
	Coords              *[2]float64 `json:"coords,omitempty"`
	FeatureFlags        []string    `json:"featureFlags,omitempty"`
	RequiredPermissions []string    `json:"requiredPermissions,omitempty"`
	KillPatterns        []string    `json:"killPatterns,omitempty"`
}

// Edge is one classified caller relationship between two modules inside a
// neighborhood. From is always the caller.
type Edge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Neighborhood is a self-contained subgraph around the seed modules:
// every edge endpoint is guaranteed to be in Modules. Computed fresh per
// request, never persisted here.
type Neighborhood struct {
	SeedModules []string        `json:"seedModules"`
	FoldRadius  int             `json:"foldRadius"`
	Modules     []ModuleSummary `json:"modules"`
	Edges       []Edge          `json:"edges"`
}

// ComputeFoldRadius performs a bounded breadth-first traversal from the seed
// modules and returns the visited modules plus classified edges between them.
//
// All seeds start simultaneously at distance 0; each module is enqueued at
// most once, so its first-discovered distance is its shortest distance.
// Modules at distance == radius are included but not expanded. Seeds that
// are not policy modules are silently skipped - callers are expected to
// have validated seeds through the resolver already.
func ComputeFoldRadius(seeds []string, radius int, pol *policy.Policy) *Neighborhood {
	timer := logging.StartTimer(logging.CategoryAtlas, "ComputeFoldRadius")
	defer timer.Stop()

	graph := BuildGraph(pol)

	// Pass 1: BFS to fix the visited set.
	distance := make(map[string]int)
	var frontier []string

	var seedsInPolicy []string
	for _, seed := range seeds {
		if !pol.Has(seed) {
			logging.AtlasDebug("Skipping unknown seed %q", seed)
			continue
		}
		if _, seen := distance[seed]; seen {
			continue // Duplicate seed
		}
		distance[seed] = 0
		frontier = append(frontier, seed)
		seedsInPolicy = append(seedsInPolicy, seed)
	}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		if distance[current] >= radius {
			continue // Included, but not expanded
		}

		for _, neighbor := range graph.Neighbors(current) {
			if _, seen := distance[neighbor]; seen {
				continue
			}
			distance[neighbor] = distance[current] + 1
			frontier = append(frontier, neighbor)
		}
	}

	// Pass 2: classify edges between visited modules only, so the result is
	// self-contained by construction.
	type edgeKey struct {
		from, to string
		allowed  bool
	}
	seenEdges := make(map[edgeKey]struct{})
	var edges []Edge

	visited := make([]string, 0, len(distance))
	for id := range distance {
		visited = append(visited, id)
	}
	sort.Strings(visited)

	for _, id := range visited {
		m := pol.Modules[id]
		for _, caller := range m.AllowedCallers {
			if _, ok := distance[caller]; !ok {
				continue
			}
			key := edgeKey{from: caller, to: id, allowed: true}
			if _, dup := seenEdges[key]; dup {
				continue
			}
			seenEdges[key] = struct{}{}
			edges = append(edges, Edge{From: caller, To: id, Allowed: true})
		}
		for _, caller := range m.ForbiddenCallers {
			if _, ok := distance[caller]; !ok {
				continue
			}
			key := edgeKey{from: caller, to: id, allowed: false}
			if _, dup := seenEdges[key]; dup {
				continue
			}
			seenEdges[key] = struct{}{}
			edges = append(edges, Edge{From: caller, To: id, Allowed: false, Reason: ReasonForbiddenCaller})
		}
	}

	modules := make([]ModuleSummary, len(visited))
	for i, id := range visited {
		m := pol.Modules[id]
		modules[i] = ModuleSummary{
			ID:                  id,
			Coords:              m.Coords,
			FeatureFlags:        m.FeatureFlags,
			RequiredPermissions: m.RequiredPermissions,
			KillPatterns:        m.KillPatterns,
		}
	}

	if edges == nil {
		edges = []Edge{}
	}
	if seedsInPolicy == nil {
		seedsInPolicy = []string{}
	}

	logging.AtlasDebug("Fold radius %d from %d seeds: %d modules, %d edges",
		radius, len(seedsInPolicy), len(modules), len(edges))

	return &Neighborhood{
		SeedModules: seedsInPolicy,
		FoldRadius:  radius,
		Modules:     modules,
		Edges:       edges,
	}
}
