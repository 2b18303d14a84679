// Package atlas extracts bounded, token-budgeted neighborhoods from the
// module policy graph: an undirected adjacency built from caller
// declarations, a fold-radius BFS around seed modules, and an auto-tuner
// that shrinks the radius until the serialized result fits a budget.
package atlas

import (
	"sort"

	"modatlas/internal/policy"
)

// Graph is the in-memory adjacency over policy modules. Traversal treats
// the graph as undirected even though rendered edges carry a directional
// allowed/forbidden classification.
type Graph struct {
	adjacency map[string]map[string]struct{}
}

// BuildGraph derives the adjacency from both declared directions: a module
// is adjacent to every module it names in allowed_callers/forbidden_callers,
// and to every module that names it. Pure transform; caller entries that are
// not canonical module IDs (glob patterns, stale references) contribute no
// adjacency because they are not nodes.
func BuildGraph(pol *policy.Policy) *Graph {
	g := &Graph{adjacency: make(map[string]map[string]struct{}, len(pol.Modules))}

	for id := range pol.Modules {
		g.adjacency[id] = make(map[string]struct{})
	}

	for id, m := range pol.Modules {
		for _, caller := range m.AllowedCallers {
			g.connect(id, caller)
		}
		for _, caller := range m.ForbiddenCallers {
			g.connect(id, caller)
		}
	}

	return g
}

// connect links a and b bidirectionally when both are real modules.
func (g *Graph) connect(a, b string) {
	if a == b {
		return
	}
	if _, ok := g.adjacency[a]; !ok {
		return
	}
	if _, ok := g.adjacency[b]; !ok {
		return
	}
	g.adjacency[a][b] = struct{}{}
	g.adjacency[b][a] = struct{}{}
}

// Neighbors returns the adjacent module IDs in sorted order. Unknown IDs
// have no neighbors.
func (g *Graph) Neighbors(id string) []string {
	set, ok := g.adjacency[id]
	if !ok || len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Has reports whether id is a node in the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.adjacency[id]
	return ok
}
