package graphsearch

import "container/heap"

type openEntry[N comparable] struct {
	node N
	f    float64
	seq  uint64
}

// openSet is a binary heap ordered by f, then by insertion sequence so that equal-f nodes pop
// first-in first-out.
type openSet[N comparable] []openEntry[N]

func (q openSet[N]) Len() int { return len(q) }

func (q openSet[N]) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q openSet[N]) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *openSet[N]) Push(x any) {
	*q = append(*q, x.(openEntry[N]))
}

func (q *openSet[N]) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (q *openSet[N]) push(entry openEntry[N]) {
	heap.Push(q, entry)
}

func (q *openSet[N]) pop() openEntry[N] {
	return heap.Pop(q).(openEntry[N])
}
