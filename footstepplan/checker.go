package footstepplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/terrain"
	"go.viam.com/footsteps/utils"
)

// NodeChecker decides whether a footstep is feasible. Checks run in a fixed order and stop at
// the first failure: snap feasibility, then collisions, then cliff avoidance. Steady state
// checking does not allocate beyond the snapper's cache.
type NodeChecker struct {
	params  *Parameters
	snapper *FootholdSnapper
	regions []*terrain.PlanarRegion

	clipper spatialmath.Clipper
	box     []r2.Point
	foot    []r2.Point
}

// NewNodeChecker returns a checker which snaps through snapper.
func NewNodeChecker(params *Parameters, snapper *FootholdSnapper) *NodeChecker {
	return &NodeChecker{
		params:  params,
		snapper: snapper,
		box:     make([]r2.Point, 0, 4),
		foot:    make([]r2.Point, 0, 4),
	}
}

// SetPlanarRegions resynchronizes the checker with the terrain. A nil set means flat ground,
// on which every footstep is valid.
func (c *NodeChecker) SetPlanarRegions(set *terrain.PlanarRegionSet) {
	c.regions = nil
	if set != nil {
		c.regions = set.Regions()
	}
}

// IsValid checks child as reached from parent. parent is nil when validating a goal, in which
// case checks that need a stance foot are skipped.
func (c *NodeChecker) IsValid(child FootstepNode, parent *FootstepNode) (RejectionReason, bool) {
	if c.snapper.FlatGround() {
		return NotRejected, true
	}

	childSnap := c.snapper.Snap(child)
	var parentSnap *SnapData
	if parent != nil {
		parentSnap = c.snapper.Snap(*parent)
	}
	if reason := c.checkSnap(childSnap, parentSnap); reason != NotRejected {
		return reason, false
	}
	if c.collides(child, childSnap, parent, parentSnap) {
		return BodyCollision, false
	}
	if c.params.AvoidCliffs && c.nearCliff(child, childSnap) {
		return CliffTooClose, false
	}
	return NotRejected, true
}

func (c *NodeChecker) checkSnap(childSnap, parentSnap *SnapData) RejectionReason {
	switch {
	case !childSnap.Snapped() || childSnap.ContainsNaN():
		return CouldNotSnap
	case childSnap.Incline > c.params.MaxSurfaceIncline:
		return SurfaceTooSteep
	case childSnap.AreaFraction < c.params.MinFootholdPercent:
		return NotEnoughArea
	case parentSnap != nil && parentSnap.Snapped() && math.Abs(childSnap.Z()-parentSnap.Z()) > c.params.MaxStepZ:
		return StepTooHighOrLow
	}
	return NotRejected
}

// collides checks the footprint, and the body box between the feet when a stance foot is known,
// against every region which is not supporting a foot.
func (c *NodeChecker) collides(child FootstepNode, childSnap *SnapData, parent *FootstepNode, parentSnap *SnapData) bool {
	c.foot = spatialmath.AppendRectangle(c.foot[:0], childSnap.XY(), child.Yaw(), c.params.FootLength, c.params.FootWidth)
	footTop := childSnap.Z() + c.params.FootCollisionHeight

	checkBody := c.params.CheckForBodyBoxCollisions && parent != nil && parentSnap.Snapped()
	var bodyBottom, bodyTop float64
	if checkBody {
		mid := childSnap.XY().Add(parentSnap.XY()).Mul(0.5)
		yaw := parent.Yaw() + utils.AngleDiff(child.Yaw(), parent.Yaw())/2
		c.box = spatialmath.AppendRectangle(c.box[:0], mid, yaw, c.params.BodyBoxDepth, c.params.BodyBoxWidth)
		bodyBottom = (childSnap.Z()+parentSnap.Z())/2 + c.params.BodyBoxBaseZ
		bodyTop = bodyBottom + c.params.BodyBoxHeight
	}

	for _, region := range c.regions {
		if region.ID() == childSnap.RegionID || (parentSnap != nil && region.ID() == parentSnap.RegionID) {
			continue
		}
		if region.IsVertical() {
			continue
		}
		for _, poly := range region.WorldPolygons() {
			if overlap := c.clipper.ClipVertices(c.foot, poly.Vertices()); len(overlap) > 0 && region.MaxZOver(overlap) > footTop {
				return true
			}
			if !checkBody {
				continue
			}
			overlap := c.clipper.ClipVertices(c.box, poly.Vertices())
			if len(overlap) == 0 {
				continue
			}
			if region.MaxZOver(overlap) > bodyBottom && minZOver(region, overlap) < bodyTop {
				return true
			}
		}
	}
	return false
}

// cliffDirections are the sample directions around the foot in the foot frame, as multiples of
// the half length and half width.
var cliffDirections = [8]r2.Point{
	{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: -1, Y: 1},
	{X: -1, Y: 0}, {X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
}

// nearCliff samples the terrain just beyond the foot outline. Missing terrain counts as an
// unbounded drop.
func (c *NodeChecker) nearCliff(child FootstepNode, snap *SnapData) bool {
	if c.params.CliffHeightToAvoid <= 0 {
		return false
	}
	halfL := c.params.FootLength/2 + c.params.MinClearanceFromCliff
	halfW := c.params.FootWidth/2 + c.params.MinClearanceFromCliff
	cosYaw, sinYaw := math.Cos(child.Yaw()), math.Sin(child.Yaw())
	center := snap.XY()
	for _, d := range cliffDirections {
		lx, ly := d.X*halfL, d.Y*halfW
		sample := r2.Point{X: center.X + cosYaw*lx - sinYaw*ly, Y: center.Y + sinYaw*lx + cosYaw*ly}
		_, height, ok := terrain.HighestRegionIn(c.regions, sample, math.Pi/2)
		if !ok || snap.Z()-height > c.params.CliffHeightToAvoid {
			return true
		}
	}
	return false
}

func minZOver(region *terrain.PlanarRegion, vertices []r2.Point) float64 {
	minZ := math.Inf(1)
	for _, v := range vertices {
		minZ = math.Min(minZ, region.PlaneZ(v.X, v.Y))
	}
	return minZ
}
