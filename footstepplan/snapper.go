package footstepplan

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/terrain"
)

// SnapData is the result of placing a node's footprint on the terrain. It is never modified once
// computed.
type SnapData struct {
	// Transform places the nominal foot frame on the terrain.
	Transform spatialmath.Pose
	// Foothold is the supported part of the footprint in world xy.
	Foothold spatialmath.ConvexPolygon
	// RegionID is the supporting region, -1 when unsnapped or on assumed flat ground.
	RegionID int
	// AreaFraction is the supported fraction of the footprint area.
	AreaFraction float64
	// Incline of the supporting region.
	Incline float64
	// Wiggled is set when the foot was shifted to improve support.
	Wiggled bool

	snapped bool
}

var unsnappable = &SnapData{
	Transform: spatialmath.NewPoseFromPoint(r3.Vector{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}),
	RegionID:  -1,
}

// Snapped reports whether a supporting region was found.
func (d *SnapData) Snapped() bool {
	return d.snapped
}

// ContainsNaN reports whether the transform is undefined, which is the case for unsnapped nodes.
func (d *SnapData) ContainsNaN() bool {
	return spatialmath.PoseContainsNaN(d.Transform)
}

// Z returns the snapped height.
func (d *SnapData) Z() float64 {
	return d.Transform.Point().Z
}

// XY returns the snapped position.
func (d *SnapData) XY() r2.Point {
	pt := d.Transform.Point()
	return r2.Point{X: pt.X, Y: pt.Y}
}

// FootholdSnapper projects footprints onto the planar regions and caches the result per node.
// A nil region set means flat ground at z = 0.
type FootholdSnapper struct {
	params  *Parameters
	terrain *terrain.PlanarRegionSet
	version uint64
	regions []*terrain.PlanarRegion
	cache   map[FootstepNode]*SnapData
	clipper spatialmath.Clipper
	scratch []r2.Point
}

// NewFootholdSnapper returns a snapper assuming flat ground until SetPlanarRegions is called.
func NewFootholdSnapper(params *Parameters) *FootholdSnapper {
	return &FootholdSnapper{params: params, cache: map[FootstepNode]*SnapData{}}
}

// SetPlanarRegions updates the terrain. The cache survives only when the same set is passed again
// at the same version.
func (s *FootholdSnapper) SetPlanarRegions(set *terrain.PlanarRegionSet) {
	var version uint64
	if set != nil {
		version = set.Version()
	}
	if set == s.terrain && version == s.version {
		return
	}
	s.terrain = set
	s.version = version
	s.regions = nil
	if set != nil {
		s.regions = set.Regions()
	}
	clear(s.cache)
}

// FlatGround reports whether terrain is being ignored.
func (s *FootholdSnapper) FlatGround() bool {
	return s.terrain == nil
}

// CacheSize returns the number of memoized nodes.
func (s *FootholdSnapper) CacheSize() int {
	return len(s.cache)
}

// Cached returns the snap data for node if it has already been computed.
func (s *FootholdSnapper) Cached(node FootstepNode) (*SnapData, bool) {
	data, ok := s.cache[node]
	return data, ok
}

// Snap returns the snap data of node, computing it on first use.
func (s *FootholdSnapper) Snap(node FootstepNode) *SnapData {
	if data, ok := s.cache[node]; ok {
		return data
	}
	data := s.compute(node)
	s.cache[node] = data
	return data
}

func (s *FootholdSnapper) compute(node FootstepNode) *SnapData {
	footArea := s.params.FootLength * s.params.FootWidth
	if s.terrain == nil {
		return &SnapData{
			Transform:    node.Pose(0),
			Foothold:     spatialmath.NewRectangle(node.XY(), node.Yaw(), s.params.FootLength, s.params.FootWidth),
			RegionID:     -1,
			AreaFraction: 1,
			snapped:      true,
		}
	}

	region, _, ok := terrain.HighestRegionIn(s.regions, node.XY(), math.Pi/2)
	if !ok {
		return unsnappable
	}

	offset := r2.Point{}
	area := s.supportedArea(region, node, offset)
	wiggled := false
	if s.params.WiggleWhilePlanning && s.params.MaxXYWiggle > 0 && area < footArea*(1-1e-9) {
		w := s.params.MaxXYWiggle
		steps := [5]float64{-w, -w / 2, 0, w / 2, w}
		for _, dx := range steps {
			for _, dy := range steps {
				candidate := r2.Point{X: dx, Y: dy}
				if candidate == (r2.Point{}) {
					continue
				}
				if a := s.supportedArea(region, node, candidate); a > area+1e-12 {
					area, offset, wiggled = a, candidate, true
				}
			}
		}
	}

	center := node.XY().Add(offset)
	var points []r2.Point
	s.scratch = spatialmath.AppendRectangle(s.scratch[:0], center, node.Yaw(), s.params.FootLength, s.params.FootWidth)
	for _, poly := range region.WorldPolygons() {
		points = append(points, s.clipper.ClipVertices(s.scratch, poly.Vertices())...)
	}

	align := spatialmath.NewPose(r3.Vector{}, spatialmath.NewAlignZOrientation(region.Normal()))
	orientation := spatialmath.Compose(align, spatialmath.NewPoseFromXYYaw(0, 0, 0, node.Yaw())).Orientation()
	return &SnapData{
		Transform:    spatialmath.NewPose(r3.Vector{X: center.X, Y: center.Y, Z: region.PlaneZ(center.X, center.Y)}, orientation),
		Foothold:     spatialmath.NewConvexPolygon(points...),
		RegionID:     region.ID(),
		AreaFraction: math.Min(1, area/footArea),
		Incline:      region.Incline(),
		Wiggled:      wiggled,
		snapped:      true,
	}
}

// supportedArea is the footprint area over the region with the foot shifted by offset.
func (s *FootholdSnapper) supportedArea(region *terrain.PlanarRegion, node FootstepNode, offset r2.Point) float64 {
	s.scratch = spatialmath.AppendRectangle(s.scratch[:0], node.XY().Add(offset), node.Yaw(), s.params.FootLength, s.params.FootWidth)
	area := 0.
	for _, poly := range region.WorldPolygons() {
		area += spatialmath.VertexArea(s.clipper.ClipVertices(s.scratch, poly.Vertices()))
	}
	return area
}
