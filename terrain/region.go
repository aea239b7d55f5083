// Package terrain describes the 2.5D world footsteps are planned over: a set of planar regions,
// each a rigid pose plus convex polygons in the region's local xy plane.
package terrain

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/footsteps/spatialmath"
)

// minNormalZ is the smallest normal z component for which a region has a usable projection onto
// the world xy plane.
const minNormalZ = 1e-3

// PlanarRegion is a patch of planar terrain. Its polygons live in the region frame; world xy
// projections, the normal and the incline are computed once at construction.
type PlanarRegion struct {
	id            int
	pose          spatialmath.Pose
	polygons      []spatialmath.ConvexPolygon
	worldPolygons []spatialmath.ConvexPolygon
	normal        r3.Vector
	incline       float64
}

// NewPlanarRegion creates a region from its pose in the world and its convex polygons expressed
// in the region frame.
func NewPlanarRegion(id int, pose spatialmath.Pose, polygons ...spatialmath.ConvexPolygon) *PlanarRegion {
	region := &PlanarRegion{
		id:       id,
		pose:     pose,
		polygons: polygons,
		normal:   spatialmath.RotatePoint(pose.Orientation(), r3.Vector{Z: 1}).Normalize(),
	}
	if region.normal.Z < 0 {
		region.normal = region.normal.Mul(-1)
	}
	region.incline = math.Acos(math.Max(-1, math.Min(1, region.normal.Z)))
	for _, poly := range polygons {
		projected := make([]r2.Point, 0, poly.NumVertices())
		for _, v := range poly.Vertices() {
			world := spatialmath.TransformPoint(pose, r3.Vector{X: v.X, Y: v.Y})
			projected = append(projected, r2.Point{X: world.X, Y: world.Y})
		}
		region.worldPolygons = append(region.worldPolygons, spatialmath.NewConvexPolygon(projected...))
	}
	return region
}

// NewHorizontalRegion is a convenience for a flat region at height z whose single polygon is
// given directly in world xy.
func NewHorizontalRegion(id int, z float64, polygon spatialmath.ConvexPolygon) *PlanarRegion {
	return NewPlanarRegion(id, spatialmath.NewPoseFromPoint(r3.Vector{Z: z}), polygon)
}

// NewBoxTopRegion returns the horizontal top face of an axis aligned box.
func NewBoxTopRegion(id int, center r2.Point, lengthX, widthY, height float64) *PlanarRegion {
	return NewHorizontalRegion(id, height, spatialmath.NewRectangle(center, 0, lengthX, widthY))
}

// ID returns the region identifier.
func (r *PlanarRegion) ID() int {
	return r.id
}

// Pose returns the region frame in the world.
func (r *PlanarRegion) Pose() spatialmath.Pose {
	return r.pose
}

// Polygons returns the region-frame polygons.
func (r *PlanarRegion) Polygons() []spatialmath.ConvexPolygon {
	return r.polygons
}

// WorldPolygons returns the polygons projected onto the world xy plane.
func (r *PlanarRegion) WorldPolygons() []spatialmath.ConvexPolygon {
	return r.worldPolygons
}

// Normal returns the upward unit normal in the world frame.
func (r *PlanarRegion) Normal() r3.Vector {
	return r.normal
}

// Incline is the angle between the region normal and world +z.
func (r *PlanarRegion) Incline() float64 {
	return r.incline
}

// IsVertical reports whether the region has no usable xy projection.
func (r *PlanarRegion) IsVertical() bool {
	return r.normal.Z < minNormalZ
}

// PlaneZ returns the height of the region's plane at world (x, y). NaN for vertical regions.
func (r *PlanarRegion) PlaneZ(x, y float64) float64 {
	if r.IsVertical() {
		return math.NaN()
	}
	origin := r.pose.Point()
	n := r.normal
	return origin.Z - (n.X*(x-origin.X)+n.Y*(y-origin.Y))/n.Z
}

// ContainsXY reports whether the world xy point lies over one of the region's polygons.
func (r *PlanarRegion) ContainsXY(pt r2.Point) bool {
	for _, poly := range r.worldPolygons {
		if poly.Contains(pt) {
			return true
		}
	}
	return false
}

// DistanceXY returns the planar distance from pt to the nearest polygon, zero when inside.
func (r *PlanarRegion) DistanceXY(pt r2.Point) float64 {
	best := math.Inf(1)
	for _, poly := range r.worldPolygons {
		best = math.Min(best, math.Max(0, poly.SignedDistance(pt)))
	}
	return best
}

// MaxZOver returns the highest plane height over the vertices of the given world xy polygon.
// For a plane the maximum over a convex polygon is attained at a vertex.
func (r *PlanarRegion) MaxZOver(vertices []r2.Point) float64 {
	maxZ := math.Inf(-1)
	for _, v := range vertices {
		maxZ = math.Max(maxZ, r.PlaneZ(v.X, v.Y))
	}
	return maxZ
}

// MaxHeight returns the highest point of the region.
func (r *PlanarRegion) MaxHeight() float64 {
	maxZ := math.Inf(-1)
	for _, poly := range r.worldPolygons {
		maxZ = math.Max(maxZ, r.MaxZOver(poly.Vertices()))
	}
	return maxZ
}

func (r *PlanarRegion) String() string {
	return fmt.Sprintf("region %d (%d polygons, incline %.3f)", r.id, len(r.polygons), r.Incline())
}
