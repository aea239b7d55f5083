package spatialmath

import "github.com/golang/geo/r2"

// Clipper intersects convex polygons with Sutherland-Hodgman clipping. It owns two scratch
// buffers which grow to the largest polygon seen and are reused afterwards, so steady state
// clipping does not allocate. A Clipper is not safe for concurrent use.
type Clipper struct {
	in, out []r2.Point
}

// Clip returns the vertices of subject ∩ clip in counter-clockwise order. The returned slice is
// owned by the Clipper and is only valid until the next call.
func (c *Clipper) Clip(subject, clip ConvexPolygon) []r2.Point {
	return c.ClipVertices(subject.vertices, clip.vertices)
}

// ClipVertices is Clip for raw counter-clockwise vertex lists.
func (c *Clipper) ClipVertices(subject, clip []r2.Point) []r2.Point {
	if len(subject) < 3 || len(clip) < 3 {
		return c.out[:0]
	}
	c.out = append(c.out[:0], subject...)
	n := len(clip)
	for i := 0; i < n && len(c.out) > 0; i++ {
		a, b := clip[i], clip[(i+1)%n]
		c.in, c.out = c.out, c.in[:0]
		m := len(c.in)
		for j := 0; j < m; j++ {
			cur, next := c.in[j], c.in[(j+1)%m]
			curIn := b.Sub(a).Cross(cur.Sub(a)) >= -floatEpsilon
			nextIn := b.Sub(a).Cross(next.Sub(a)) >= -floatEpsilon
			switch {
			case curIn && nextIn:
				c.out = append(c.out, next)
			case curIn && !nextIn:
				c.out = append(c.out, lineIntersection(cur, next, a, b))
			case !curIn && nextIn:
				c.out = append(c.out, lineIntersection(cur, next, a, b), next)
			}
		}
	}
	if len(c.out) < 3 {
		return c.out[:0]
	}
	return c.out
}

// ClippedArea returns the area of subject ∩ clip without keeping the vertices.
func (c *Clipper) ClippedArea(subject, clip ConvexPolygon) float64 {
	return polygonArea(c.Clip(subject, clip))
}

// VertexArea returns the area enclosed by an ordered vertex list.
func VertexArea(vertices []r2.Point) float64 {
	return polygonArea(vertices)
}

// lineIntersection returns where segment p-q crosses the infinite line through a-b.
func lineIntersection(p, q, a, b r2.Point) r2.Point {
	ab := b.Sub(a)
	denom := ab.Cross(q.Sub(p))
	if denom == 0 {
		return p
	}
	t := ab.Cross(a.Sub(p)) / denom
	return p.Add(q.Sub(p).Mul(t))
}
