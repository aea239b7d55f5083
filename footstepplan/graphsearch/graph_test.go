package graphsearch

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestFirstWriterWins(t *testing.T) {
	g := NewGraph[string](FirstWriterWins)
	g.Initialize("root")
	test.That(t, g.CheckAndSetEdge("root", "a", 1), test.ShouldBeTrue)
	test.That(t, g.CheckAndSetEdge("root", "b", 5), test.ShouldBeTrue)
	test.That(t, g.CheckAndSetEdge("a", "c", 1), test.ShouldBeTrue)
	// a cheaper route to c is ignored
	test.That(t, g.CheckAndSetEdge("root", "c", 0.5), test.ShouldBeFalse)
	parent, ok := g.Parent("c")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, parent, test.ShouldEqual, "a")
	test.That(t, g.CostFromStart("c"), test.ShouldEqual, 2.)

	// unknown parents, the root, self loops and bad costs are refused
	test.That(t, g.CheckAndSetEdge("nowhere", "d", 1), test.ShouldBeFalse)
	test.That(t, g.CheckAndSetEdge("a", "root", 1), test.ShouldBeFalse)
	test.That(t, g.CheckAndSetEdge("a", "a", 1), test.ShouldBeFalse)
	test.That(t, g.CheckAndSetEdge("a", "d", -1), test.ShouldBeFalse)
	test.That(t, g.CheckAndSetEdge("a", "d", math.NaN()), test.ShouldBeFalse)
	test.That(t, g.Contains("d"), test.ShouldBeFalse)
	test.That(t, math.IsInf(g.CostFromStart("d"), 1), test.ShouldBeTrue)
	test.That(t, g.Size(), test.ShouldEqual, 4)
}

func TestStoredCostMatchesChain(t *testing.T) {
	g := NewGraph[int](FirstWriterWins)
	g.Initialize(0)
	want := 0.
	for i := 1; i <= 50; i++ {
		test.That(t, g.CheckAndSetEdge(i-1, i, 0.25*float64(i)), test.ShouldBeTrue)
		want += 0.25 * float64(i)
		test.That(t, g.CostFromStart(i), test.ShouldEqual, want)
	}
	// the stored sum survives a refused rewire
	test.That(t, g.CheckAndSetEdge(0, 50, 0), test.ShouldBeFalse)
	test.That(t, g.CostFromStart(50), test.ShouldEqual, want)

	// reinitializing forgets stored costs
	g.Initialize(50)
	test.That(t, g.CostFromStart(50), test.ShouldEqual, 0.)
	test.That(t, math.IsInf(g.CostFromStart(49), 1), test.ShouldBeTrue)
}

func TestImproveCost(t *testing.T) {
	g := NewGraph[string](ImproveCost)
	g.Initialize("root")
	test.That(t, g.CheckAndSetEdge("root", "a", 1), test.ShouldBeTrue)
	test.That(t, g.CheckAndSetEdge("a", "c", 3), test.ShouldBeTrue)
	test.That(t, g.CheckAndSetEdge("c", "d", 1), test.ShouldBeTrue)
	test.That(t, g.CostFromStart("d"), test.ShouldEqual, 5.)

	// equal cost keeps the existing parent
	test.That(t, g.CheckAndSetEdge("root", "c", 4), test.ShouldBeFalse)
	test.That(t, g.CheckAndSetEdge("root", "c", 2), test.ShouldBeTrue)
	parent, _ := g.Parent("c")
	test.That(t, parent, test.ShouldEqual, "root")
	// descendants see the improvement
	test.That(t, g.CostFromStart("d"), test.ShouldEqual, 3.)
	test.That(t, g.PathFromStart("d"), test.ShouldResemble, []string{"root", "c", "d"})

	// zero cost edges must not create a loop
	test.That(t, g.CheckAndSetEdge("d", "c", 0), test.ShouldBeFalse)
}

func TestPathFromStart(t *testing.T) {
	g := NewGraph[int](FirstWriterWins)
	g.Initialize(0)
	for i := 1; i < 5; i++ {
		test.That(t, g.CheckAndSetEdge(i-1, i, float64(i)), test.ShouldBeTrue)
	}
	path := g.PathFromStart(4)
	test.That(t, path, test.ShouldResemble, []int{0, 1, 2, 3, 4})
	test.That(t, g.CostFromStart(path[0]), test.ShouldEqual, 0.)
	for i := 1; i < len(path); i++ {
		parent, ok := g.Parent(path[i])
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, parent, test.ShouldEqual, path[i-1])
		test.That(t, g.CostFromStart(path[i]), test.ShouldEqual, g.CostFromStart(path[i-1])+g.EdgeCost(path[i]))
	}
	test.That(t, g.PathFromStart(10), test.ShouldBeNil)

	g.Initialize(7)
	test.That(t, g.Size(), test.ShouldEqual, 1)
	test.That(t, g.PathFromStart(7), test.ShouldResemble, []int{7})
	_, ok := g.Parent(7)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestCycleIsFatal(t *testing.T) {
	g := NewGraph[int](ImproveCost)
	g.Initialize(0)
	test.That(t, g.CheckAndSetEdge(0, 1, 1), test.ShouldBeTrue)
	test.That(t, g.CheckAndSetEdge(1, 2, 1), test.ShouldBeTrue)
	// corrupt the tree so 1 and 2 point at each other
	g.edges[1] = edge[int]{parent: 2, hasParent: true, cost: 1}

	test.That(t, func() { g.PathFromStart(2) }, test.ShouldPanic)
	test.That(t, func() { g.CostFromStart(2) }, test.ShouldPanic)

	var recovered interface{}
	func() {
		defer func() { recovered = recover() }()
		g.PathFromStart(1)
	}()
	test.That(t, recovered, test.ShouldEqual, ErrGraphCycle)
}
