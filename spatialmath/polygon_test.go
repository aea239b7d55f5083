package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func unitSquare() ConvexPolygon {
	return NewConvexPolygon(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 0}, r2.Point{X: 1, Y: 1}, r2.Point{X: 0, Y: 1})
}

func TestConvexHull(t *testing.T) {
	// interior and collinear points are dropped
	p := NewConvexPolygon(
		r2.Point{X: 0, Y: 0}, r2.Point{X: 0.5, Y: 0}, r2.Point{X: 1, Y: 0},
		r2.Point{X: 1, Y: 1}, r2.Point{X: 0.5, Y: 0.5}, r2.Point{X: 0, Y: 1},
	)
	test.That(t, p.NumVertices(), test.ShouldEqual, 4)
	test.That(t, p.Area(), test.ShouldAlmostEqual, 1)
	test.That(t, p.Vertices()[0], test.ShouldResemble, r2.Point{X: 0, Y: 0})

	test.That(t, NewConvexPolygon(r2.Point{}, r2.Point{X: 1}).IsEmpty(), test.ShouldBeTrue)
	test.That(t, NewConvexPolygon(r2.Point{}, r2.Point{X: 1}, r2.Point{X: 2}).IsEmpty(), test.ShouldBeTrue)
}

func TestRectangle(t *testing.T) {
	rect := NewRectangle(r2.Point{X: 1, Y: 1}, math.Pi/2, 0.4, 0.2)
	test.That(t, rect.Area(), test.ShouldAlmostEqual, 0.08)
	c := rect.Centroid()
	test.That(t, c.X, test.ShouldAlmostEqual, 1)
	test.That(t, c.Y, test.ShouldAlmostEqual, 1)
	// rotated a quarter turn, the long side runs along y
	test.That(t, rect.Contains(r2.Point{X: 1, Y: 1.19}), test.ShouldBeTrue)
	test.That(t, rect.Contains(r2.Point{X: 1.15, Y: 1}), test.ShouldBeFalse)
	lo, hi := rect.BoundingBox()
	test.That(t, lo.X, test.ShouldAlmostEqual, 0.9)
	test.That(t, hi.Y, test.ShouldAlmostEqual, 1.2)
}

func TestContainsAndDistance(t *testing.T) {
	sq := unitSquare()
	test.That(t, sq.Contains(r2.Point{X: 0.5, Y: 0.5}), test.ShouldBeTrue)
	test.That(t, sq.Contains(r2.Point{X: 1, Y: 0.5}), test.ShouldBeTrue)
	test.That(t, sq.Contains(r2.Point{X: 1.01, Y: 0.5}), test.ShouldBeFalse)
	test.That(t, sq.SignedDistance(r2.Point{X: 0.5, Y: 0.5}), test.ShouldAlmostEqual, -0.5)
	test.That(t, sq.SignedDistance(r2.Point{X: 2, Y: 0.5}), test.ShouldAlmostEqual, 1)
	test.That(t, ConvexPolygon{}.Contains(r2.Point{}), test.ShouldBeFalse)
}

func TestIntersection(t *testing.T) {
	sq := unitSquare()
	shifted := sq.Translate(r2.Point{X: 0.5, Y: 0.5})
	overlap := sq.Intersection(shifted)
	test.That(t, overlap.Area(), test.ShouldAlmostEqual, 0.25)
	test.That(t, sq.Intersects(shifted), test.ShouldBeTrue)

	far := sq.Translate(r2.Point{X: 3})
	test.That(t, sq.Intersection(far).IsEmpty(), test.ShouldBeTrue)
	test.That(t, sq.Intersects(far), test.ShouldBeFalse)

	inner := NewRectangle(r2.Point{X: 0.5, Y: 0.5}, 0.3, 0.2, 0.1)
	test.That(t, sq.Intersection(inner).Area(), test.ShouldAlmostEqual, inner.Area())
}

func TestClipperReusesBuffers(t *testing.T) {
	var clipper Clipper
	sq := unitSquare()
	rect := NewRectangle(r2.Point{X: 1, Y: 0.5}, 0, 1, 0.5)
	test.That(t, clipper.ClippedArea(rect, sq), test.ShouldAlmostEqual, 0.25)
	allocs := testing.AllocsPerRun(20, func() {
		clipper.ClippedArea(rect, sq)
	})
	test.That(t, allocs, test.ShouldEqual, 0.)
}

func TestIntersectsSegmentInterior(t *testing.T) {
	sq := unitSquare()
	test.That(t, sq.IntersectsSegmentInterior(r2.Point{X: -1, Y: 0.5}, r2.Point{X: 2, Y: 0.5}), test.ShouldBeTrue)
	// along an edge
	test.That(t, sq.IntersectsSegmentInterior(r2.Point{X: -1, Y: 0}, r2.Point{X: 2, Y: 0}), test.ShouldBeFalse)
	// touching a corner
	test.That(t, sq.IntersectsSegmentInterior(r2.Point{X: 0, Y: 2}, r2.Point{X: 2, Y: 0}), test.ShouldBeFalse)
	// stops short
	test.That(t, sq.IntersectsSegmentInterior(r2.Point{X: -1, Y: 0.5}, r2.Point{X: -0.1, Y: 0.5}), test.ShouldBeFalse)
	// vertex to vertex across the diagonal
	test.That(t, sq.IntersectsSegmentInterior(r2.Point{X: 0, Y: 0}, r2.Point{X: 1, Y: 1}), test.ShouldBeTrue)
}

func TestExpand(t *testing.T) {
	sq := unitSquare()
	grown := sq.Expand(0.2)
	for _, v := range sq.Vertices() {
		test.That(t, grown.SignedDistance(v), test.ShouldBeLessThanOrEqualTo, -0.2+1e-9)
	}
	test.That(t, grown.Contains(r2.Point{X: 0.5, Y: 1.19}), test.ShouldBeTrue)
	test.That(t, grown.Contains(r2.Point{X: 0.5, Y: 1.3}), test.ShouldBeFalse)
	test.That(t, sq.Expand(0), test.ShouldResemble, sq)
}
