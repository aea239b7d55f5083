package graphsearch

import (
	"math"

	"github.com/pkg/errors"
)

// ErrGraphCycle is the panic value raised when parent pointers loop back on themselves.
var ErrGraphCycle = errors.New("search graph parent pointers contain a cycle")

// EdgePolicy decides what happens when an edge is proposed for a child that is already in the
// graph.
type EdgePolicy int

const (
	// FirstWriterWins keeps the first committed parent of every node. Later proposals are refused.
	FirstWriterWins EdgePolicy = iota
	// ImproveCost rewires a node onto a new parent when that strictly lowers its cost from start.
	ImproveCost
)

func (p EdgePolicy) String() string {
	switch p {
	case FirstWriterWins:
		return "first_writer_wins"
	case ImproveCost:
		return "improve_cost"
	default:
		return "unknown"
	}
}

type edge[N comparable] struct {
	parent    N
	hasParent bool
	cost      float64
	// fromStart is the cost from start when the edge was committed. It stays exact under
	// FirstWriterWins only, since ImproveCost can rewire an ancestor later.
	fromStart float64
}

// Graph is the incrementally built search tree: every node but the root has exactly one parent
// and the cost of the edge from it.
type Graph[N comparable] struct {
	policy EdgePolicy
	root   N
	edges  map[N]edge[N]
}

// NewGraph returns an empty graph using the given edge policy.
func NewGraph[N comparable](policy EdgePolicy) *Graph[N] {
	return &Graph[N]{policy: policy, edges: map[N]edge[N]{}}
}

// Initialize drops every edge and makes root the only node.
func (g *Graph[N]) Initialize(root N) {
	clear(g.edges)
	g.root = root
	g.edges[root] = edge[N]{}
}

// Policy returns the edge policy.
func (g *Graph[N]) Policy() EdgePolicy {
	return g.policy
}

// Root returns the node the graph was initialized with.
func (g *Graph[N]) Root() N {
	return g.root
}

// Size returns the number of nodes, root included.
func (g *Graph[N]) Size() int {
	return len(g.edges)
}

// Contains reports whether n has been committed.
func (g *Graph[N]) Contains(n N) bool {
	_, ok := g.edges[n]
	return ok
}

// CheckAndSetEdge commits parent -> child with the given edge cost and reports whether it did.
// The parent must already be in the graph, the root can never be re-parented and negative or NaN
// costs are refused. An existing child is only rewired under ImproveCost, and only when the new
// cost from start is strictly lower.
func (g *Graph[N]) CheckAndSetEdge(parent, child N, cost float64) bool {
	if cost < 0 || math.IsNaN(cost) || child == g.root || parent == child {
		return false
	}
	if !g.Contains(parent) {
		return false
	}
	if _, ok := g.edges[child]; ok {
		if g.policy != ImproveCost {
			return false
		}
		if g.CostFromStart(parent)+cost >= g.CostFromStart(child) {
			return false
		}
		if g.isAncestor(child, parent) {
			return false
		}
	}
	g.edges[child] = edge[N]{parent: parent, hasParent: true, cost: cost, fromStart: g.CostFromStart(parent) + cost}
	return true
}

// Parent returns the committed parent of n.
func (g *Graph[N]) Parent(n N) (N, bool) {
	e, ok := g.edges[n]
	return e.parent, ok && e.hasParent
}

// EdgeCost returns the cost of the edge into n, zero for the root.
func (g *Graph[N]) EdgeCost(n N) float64 {
	return g.edges[n].cost
}

// CostFromStart returns the summed edge costs from the root to n. Nodes outside the graph cost
// +Inf. Under FirstWriterWins the sum is stored on commit; under ImproveCost the parent chain is
// walked so that descendants of a rewired node see the improvement.
func (g *Graph[N]) CostFromStart(n N) float64 {
	e, ok := g.edges[n]
	if !ok {
		return math.Inf(1)
	}
	if g.policy == FirstWriterWins {
		return e.fromStart
	}
	total := 0.
	steps := 0
	for cur := n; ; steps++ {
		if steps > len(g.edges) {
			panic(ErrGraphCycle)
		}
		e := g.edges[cur]
		if !e.hasParent {
			return total
		}
		total += e.cost
		cur = e.parent
	}
}

// PathFromStart returns the nodes from the root to n inclusive, or nil if n is not in the graph.
// It panics with ErrGraphCycle if the parent chain does not reach the root.
func (g *Graph[N]) PathFromStart(n N) []N {
	if !g.Contains(n) {
		return nil
	}
	var reversed []N
	cur := n
	for {
		if len(reversed) > len(g.edges) {
			panic(ErrGraphCycle)
		}
		reversed = append(reversed, cur)
		e := g.edges[cur]
		if !e.hasParent {
			break
		}
		cur = e.parent
	}
	path := make([]N, len(reversed))
	for i, node := range reversed {
		path[len(reversed)-1-i] = node
	}
	return path
}

// isAncestor reports whether a lies on the parent chain of b.
func (g *Graph[N]) isAncestor(a, b N) bool {
	steps := 0
	for cur := b; ; steps++ {
		if cur == a {
			return true
		}
		e := g.edges[cur]
		if !e.hasParent || steps > len(g.edges) {
			return false
		}
		cur = e.parent
	}
}

