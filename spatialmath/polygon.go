package spatialmath

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

// floatEpsilon is the tolerance used for orientation tests on polygon edges.
const floatEpsilon = 1e-9

// ConvexPolygon is a convex polygon in the plane with counter-clockwise ordered vertices.
// The zero value is the empty polygon.
type ConvexPolygon struct {
	vertices []r2.Point
}

// NewConvexPolygon returns the convex hull of the given points. Fewer than three non-collinear
// points give an empty polygon.
func NewConvexPolygon(points ...r2.Point) ConvexPolygon {
	return ConvexPolygon{vertices: convexHull(points)}
}

// NewRectangle returns a length x width rectangle centered on center and rotated by yaw. The
// length is measured along the rotated x axis.
func NewRectangle(center r2.Point, yaw, length, width float64) ConvexPolygon {
	return ConvexPolygon{vertices: AppendRectangle(make([]r2.Point, 0, 4), center, yaw, length, width)}
}

// AppendRectangle appends the counter-clockwise corners of a rectangle to dst. Non-positive
// dimensions produce a degenerate rectangle.
func AppendRectangle(dst []r2.Point, center r2.Point, yaw, length, width float64) []r2.Point {
	hl, hw := length/2, width/2
	c, s := math.Cos(yaw), math.Sin(yaw)
	for _, corner := range [4]r2.Point{{X: hl, Y: hw}, {X: -hl, Y: hw}, {X: -hl, Y: -hw}, {X: hl, Y: -hw}} {
		dst = append(dst, r2.Point{
			X: center.X + c*corner.X - s*corner.Y,
			Y: center.Y + s*corner.X + c*corner.Y,
		})
	}
	return dst
}

// Vertices returns the counter-clockwise ordered vertices. The slice must not be modified.
func (p ConvexPolygon) Vertices() []r2.Point {
	return p.vertices
}

// NumVertices returns the number of vertices.
func (p ConvexPolygon) NumVertices() int {
	return len(p.vertices)
}

// IsEmpty is true when the polygon has no area.
func (p ConvexPolygon) IsEmpty() bool {
	return len(p.vertices) < 3
}

// Area returns the enclosed area.
func (p ConvexPolygon) Area() float64 {
	return polygonArea(p.vertices)
}

// Centroid returns the area centroid; the vertex average for degenerate polygons.
func (p ConvexPolygon) Centroid() r2.Point {
	return polygonCentroid(p.vertices)
}

// Contains reports whether pt is inside or on the boundary.
func (p ConvexPolygon) Contains(pt r2.Point) bool {
	if p.IsEmpty() {
		return false
	}
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		a, b := p.vertices[i], p.vertices[(i+1)%n]
		if b.Sub(a).Cross(pt.Sub(a)) < -floatEpsilon {
			return false
		}
	}
	return true
}

// SignedDistance returns the distance from pt to the polygon boundary, negative inside.
func (p ConvexPolygon) SignedDistance(pt r2.Point) float64 {
	if p.IsEmpty() {
		return math.Inf(1)
	}
	n := len(p.vertices)
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		d := DistanceToSegment(pt, p.vertices[i], p.vertices[(i+1)%n])
		if d < best {
			best = d
		}
	}
	if p.Contains(pt) {
		return -best
	}
	return best
}

// Translate returns the polygon moved by offset.
func (p ConvexPolygon) Translate(offset r2.Point) ConvexPolygon {
	out := make([]r2.Point, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = v.Add(offset)
	}
	return ConvexPolygon{vertices: out}
}

// Transform rotates the polygon by yaw about the origin and then translates it.
func (p ConvexPolygon) Transform(yaw float64, translation r2.Point) ConvexPolygon {
	c, s := math.Cos(yaw), math.Sin(yaw)
	out := make([]r2.Point, len(p.vertices))
	for i, v := range p.vertices {
		out[i] = r2.Point{X: c*v.X - s*v.Y + translation.X, Y: s*v.X + c*v.Y + translation.Y}
	}
	return ConvexPolygon{vertices: out}
}

// Expand returns a convex polygon containing every point within distance of p. The circle
// swept around each vertex is approximated by a circumscribed sixteen-gon.
func (p ConvexPolygon) Expand(distance float64) ConvexPolygon {
	if p.IsEmpty() || distance <= 0 {
		return p
	}
	const sides = 16
	r := distance / math.Cos(math.Pi/sides)
	points := make([]r2.Point, 0, len(p.vertices)*sides)
	for _, v := range p.vertices {
		for k := 0; k < sides; k++ {
			theta := 2 * math.Pi * (float64(k) + 0.5) / sides
			points = append(points, r2.Point{X: v.X + r*math.Cos(theta), Y: v.Y + r*math.Sin(theta)})
		}
	}
	return NewConvexPolygon(points...)
}

// Intersection returns the overlap of two convex polygons.
func (p ConvexPolygon) Intersection(other ConvexPolygon) ConvexPolygon {
	var clipper Clipper
	clipped := clipper.Clip(p, other)
	out := make([]r2.Point, len(clipped))
	copy(out, clipped)
	if len(out) < 3 {
		return ConvexPolygon{}
	}
	return ConvexPolygon{vertices: out}
}

// Intersects reports whether the polygons overlap, using the separating axis theorem.
func (p ConvexPolygon) Intersects(other ConvexPolygon) bool {
	if p.IsEmpty() || other.IsEmpty() {
		return false
	}
	return !hasSeparatingAxis(p.vertices, other.vertices) && !hasSeparatingAxis(other.vertices, p.vertices)
}

// IntersectsSegmentInterior reports whether the open segment a-b passes through the interior of
// the polygon. Segments running along an edge or touching a vertex do not intersect.
func (p ConvexPolygon) IntersectsSegmentInterior(a, b r2.Point) bool {
	if p.IsEmpty() {
		return false
	}
	const eps = 1e-7
	tEnter, tExit := 0., 1.
	d := b.Sub(a)
	n := len(p.vertices)
	for i := 0; i < n; i++ {
		v0, v1 := p.vertices[i], p.vertices[(i+1)%n]
		edge := v1.Sub(v0)
		length := edge.Norm()
		if length == 0 {
			continue
		}
		// Signed distance to the edge line, positive inside.
		dist0 := edge.Cross(a.Sub(v0))/length - eps
		rate := edge.Cross(d) / length
		if rate == 0 {
			if dist0 <= 0 {
				return false
			}
			continue
		}
		t := -dist0 / rate
		if rate > 0 {
			tEnter = math.Max(tEnter, t)
		} else {
			tExit = math.Min(tExit, t)
		}
		if tEnter >= tExit {
			return false
		}
	}
	return tExit-tEnter > 0
}

// BoundingBox returns the axis aligned min and max corners.
func (p ConvexPolygon) BoundingBox() (r2.Point, r2.Point) {
	lo := r2.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi := r2.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range p.vertices {
		lo.X, lo.Y = math.Min(lo.X, v.X), math.Min(lo.Y, v.Y)
		hi.X, hi.Y = math.Max(hi.X, v.X), math.Max(hi.Y, v.Y)
	}
	return lo, hi
}

// DistanceToSegment returns the distance between pt and the segment a-b.
func DistanceToSegment(pt, a, b r2.Point) float64 {
	return pt.Sub(ClosestPointSegmentPoint(a, b, pt)).Norm()
}

// ClosestPointSegmentPoint takes a line segment and a query point, and returns the point on the segment which is closest
// to the query point.
func ClosestPointSegmentPoint(segStart, segEnd, query r2.Point) r2.Point {
	ab := segEnd.Sub(segStart)
	lengthSq := ab.Dot(ab)
	if lengthSq == 0 {
		return segStart
	}
	t := query.Sub(segStart).Dot(ab) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return segStart.Add(ab.Mul(t))
}

func hasSeparatingAxis(a, b []r2.Point) bool {
	n := len(a)
	for i := 0; i < n; i++ {
		edge := a[(i+1)%n].Sub(a[i])
		// Outward normal for counter-clockwise vertices.
		axis := r2.Point{X: edge.Y, Y: -edge.X}
		maxA := math.Inf(-1)
		for _, v := range a {
			maxA = math.Max(maxA, axis.Dot(v))
		}
		minB := math.Inf(1)
		for _, v := range b {
			minB = math.Min(minB, axis.Dot(v))
		}
		if minB > maxA+floatEpsilon {
			return true
		}
	}
	return false
}

// convexHull computes the counter-clockwise hull with Andrew's monotone chain. Collinear points
// are dropped and the output starts at the lowest-leftmost point, which keeps results
// deterministic for the same input set.
func convexHull(points []r2.Point) []r2.Point {
	if len(points) < 3 {
		return nil
	}
	sorted := make([]r2.Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	hull := make([]r2.Point, 0, 2*len(sorted))
	for _, pt := range sorted {
		for len(hull) >= 2 && hull[len(hull)-1].Sub(hull[len(hull)-2]).Cross(pt.Sub(hull[len(hull)-2])) <= floatEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		pt := sorted[i]
		for len(hull) >= lower && hull[len(hull)-1].Sub(hull[len(hull)-2]).Cross(pt.Sub(hull[len(hull)-2])) <= floatEpsilon {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, pt)
	}
	hull = hull[:len(hull)-1]
	if len(hull) < 3 {
		return nil
	}
	return hull
}

func polygonArea(vertices []r2.Point) float64 {
	if len(vertices) < 3 {
		return 0
	}
	area := 0.
	n := len(vertices)
	for i := 0; i < n; i++ {
		area += vertices[i].Cross(vertices[(i+1)%n])
	}
	return math.Abs(area) / 2
}

func polygonCentroid(vertices []r2.Point) r2.Point {
	n := len(vertices)
	if n == 0 {
		return r2.Point{}
	}
	area2 := 0.
	var c r2.Point
	for i := 0; i < n; i++ {
		a, b := vertices[i], vertices[(i+1)%n]
		cross := a.Cross(b)
		area2 += cross
		c = c.Add(a.Add(b).Mul(cross))
	}
	if math.Abs(area2) < floatEpsilon {
		var avg r2.Point
		for _, v := range vertices {
			avg = avg.Add(v)
		}
		return avg.Mul(1 / float64(n))
	}
	return c.Mul(1 / (3 * area2))
}
