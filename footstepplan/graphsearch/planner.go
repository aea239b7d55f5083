// Package graphsearch is a generic incremental best-first search. The caller injects expansion,
// validity, cost and heuristic functions and advances the search one node expansion at a time,
// which lets it interleave the search with its own time budget and cancellation.
package graphsearch

import "math"

// ExpandFunc returns the candidate children of a node. The returned slice may be reused by the
// callee on the next call.
type ExpandFunc[N comparable] func(parent N) []N

// CheckFunc validates a child reached from parent, returning a rejection reason when invalid.
type CheckFunc[N comparable, R any] func(child, parent N) (R, bool)

// CostFunc returns the non-negative cost of the edge parent -> child.
type CostFunc[N comparable] func(parent, child N) float64

// HeuristicFunc estimates the remaining cost from a node to the goal.
type HeuristicFunc[N comparable] func(node N) float64

// RejectedChild is a child that failed validation, with the reason it failed.
type RejectedChild[N comparable, R any] struct {
	Node   N
	Reason R
}

// IterationRecord describes one expansion. Its slices are reused by the next iteration; copy
// anything that must outlive it.
type IterationRecord[N comparable, R any] struct {
	Parent          N
	ValidChildren   []N
	InvalidChildren []RejectedChild[N, R]
	exhausted       bool
}

// Exhausted is true when the open set was empty and no node was expanded. Parent is then the
// zero value.
func (r *IterationRecord[N, R]) Exhausted() bool {
	return r.exhausted
}

func (r *IterationRecord[N, R]) reset() {
	var zero N
	r.Parent = zero
	r.ValidChildren = r.ValidChildren[:0]
	r.InvalidChildren = r.InvalidChildren[:0]
	r.exhausted = false
}

// Planner is a weighted A* engine. Open-set ties on f are broken by insertion order, so for
// deterministic injected functions the search is fully reproducible. A Planner is not safe for
// concurrent use.
type Planner[N comparable, R any] struct {
	expand    ExpandFunc[N]
	check     CheckFunc[N, R]
	cost      CostFunc[N]
	heuristic HeuristicFunc[N]

	graph      *Graph[N]
	open       openSet[N]
	closed     map[N]struct{}
	seq        uint64
	expansions int
	record     IterationRecord[N, R]
}

// NewPlanner returns a planner over the injected functions using the given edge policy.
func NewPlanner[N comparable, R any](
	expand ExpandFunc[N],
	check CheckFunc[N, R],
	cost CostFunc[N],
	heuristic HeuristicFunc[N],
	policy EdgePolicy,
) *Planner[N, R] {
	return &Planner[N, R]{
		expand:    expand,
		check:     check,
		cost:      cost,
		heuristic: heuristic,
		graph:     NewGraph[N](policy),
		closed:    map[N]struct{}{},
	}
}

// Initialize resets all search state and seeds the open set with start at cost zero.
func (p *Planner[N, R]) Initialize(start N) {
	p.graph.Initialize(start)
	p.open = p.open[:0]
	clear(p.closed)
	p.seq = 0
	p.expansions = 0
	p.record.reset()
	p.pushOpen(start, 0)
}

// Graph returns the search graph.
func (p *Planner[N, R]) Graph() *Graph[N] {
	return p.graph
}

// Heuristic evaluates the injected heuristic.
func (p *Planner[N, R]) Heuristic(n N) float64 {
	return p.heuristic(n)
}

// Expansions returns how many nodes have been expanded since Initialize.
func (p *Planner[N, R]) Expansions() int {
	return p.expansions
}

// OpenSetSize returns the number of queued entries, stale ones included.
func (p *Planner[N, R]) OpenSetSize() int {
	return len(p.open)
}

// DoPlanningIteration pops the lowest-f open node, expands it and commits its valid children.
// Exactly one node is expanded per call.
func (p *Planner[N, R]) DoPlanningIteration() *IterationRecord[N, R] {
	p.record.reset()

	var parent N
	found := false
	for len(p.open) > 0 {
		entry := p.open.pop()
		if _, done := p.closed[entry.node]; done {
			continue
		}
		parent, found = entry.node, true
		break
	}
	if !found {
		p.record.exhausted = true
		return &p.record
	}
	p.closed[parent] = struct{}{}
	p.expansions++
	p.record.Parent = parent

	parentCost := p.graph.CostFromStart(parent)
	for _, child := range p.expand(parent) {
		if child == parent {
			continue
		}
		if p.graph.Policy() == FirstWriterWins && p.graph.Contains(child) {
			continue
		}
		if reason, ok := p.check(child, parent); !ok {
			p.record.InvalidChildren = append(p.record.InvalidChildren, RejectedChild[N, R]{Node: child, Reason: reason})
			continue
		}
		edgeCost := p.cost(parent, child)
		if !p.graph.CheckAndSetEdge(parent, child, edgeCost) {
			continue
		}
		// an improved node must be expanded again
		delete(p.closed, child)
		p.record.ValidChildren = append(p.record.ValidChildren, child)
		p.pushOpen(child, parentCost+edgeCost)
	}
	return &p.record
}

func (p *Planner[N, R]) pushOpen(n N, costFromStart float64) {
	h := p.heuristic(n)
	if math.IsNaN(h) || h < 0 {
		h = 0
	}
	p.open.push(openEntry[N]{node: n, f: costFromStart + h, seq: p.seq})
	p.seq++
}
