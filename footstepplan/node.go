package footstepplan

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/utils"
)

// Footstep lattice resolution.
const (
	// GridSizeXY is the spacing of the xy lattice in meters.
	GridSizeXY = 0.05
	// YawDivisions is the number of yaw bins in a full turn.
	YawDivisions = 36
	// YawResolution is the width of one yaw bin in radians.
	YawResolution = 2 * math.Pi / YawDivisions
)

// FootstepNode is one lattice state: a foot placement rounded to the grid. Nodes are compared by
// value, so two nodes with equal indices and side are the same graph vertex.
type FootstepNode struct {
	XIndex   int
	YIndex   int
	YawIndex int
	Side     RobotSide
}

// NewFootstepNode rounds a continuous foot placement onto the lattice. Rounding is half away
// from zero, so mirroring the inputs mirrors the node exactly.
func NewFootstepNode(x, y, yaw float64, side RobotSide) FootstepNode {
	return FootstepNode{
		XIndex:   int(math.Round(x / GridSizeXY)),
		YIndex:   int(math.Round(y / GridSizeXY)),
		YawIndex: wrapYawIndex(int(math.Round(utils.WrapAngle(yaw) / YawResolution))),
		Side:     side,
	}
}

// NewFootstepNodeFromPose rounds a pose onto the lattice.
func NewFootstepNodeFromPose(pose spatialmath.Pose, side RobotSide) FootstepNode {
	pt := pose.Point()
	return NewFootstepNode(pt.X, pt.Y, spatialmath.Yaw(pose), side)
}

// wrapYawIndex wraps a yaw index into [-YawDivisions/2, YawDivisions/2).
func wrapYawIndex(index int) int {
	return utils.PositiveMod(index+YawDivisions/2, YawDivisions) - YawDivisions/2
}

// X returns the lattice x position in meters.
func (n FootstepNode) X() float64 {
	return float64(n.XIndex) * GridSizeXY
}

// Y returns the lattice y position in meters.
func (n FootstepNode) Y() float64 {
	return float64(n.YIndex) * GridSizeXY
}

// Yaw returns the lattice yaw in radians.
func (n FootstepNode) Yaw() float64 {
	return float64(n.YawIndex) * YawResolution
}

// XY returns the lattice position.
func (n FootstepNode) XY() r2.Point {
	return r2.Point{X: n.X(), Y: n.Y()}
}

// Pose returns the nominal pose of the node at height z.
func (n FootstepNode) Pose(z float64) spatialmath.Pose {
	return spatialmath.NewPoseFromXYYaw(n.X(), n.Y(), z, n.Yaw())
}

// EuclideanDistance returns the planar distance between two nodes.
func (n FootstepNode) EuclideanDistance(other FootstepNode) float64 {
	return math.Hypot(n.X()-other.X(), n.Y()-other.Y())
}

// YawDistance returns the unsigned yaw difference between two nodes.
func (n FootstepNode) YawDistance(other FootstepNode) float64 {
	return math.Abs(utils.AngleDiff(n.Yaw(), other.Yaw()))
}

// Mirror reflects the node across the world x axis and swaps its side.
func (n FootstepNode) Mirror() FootstepNode {
	return FootstepNode{XIndex: n.XIndex, YIndex: -n.YIndex, YawIndex: wrapYawIndex(-n.YawIndex), Side: n.Side.Opposite()}
}

// StanceNode returns the node of the given foot when the robot stands centered on pose with its
// feet stanceWidth apart.
func StanceNode(pose spatialmath.Pose, side RobotSide, stanceWidth float64) FootstepNode {
	pt := pose.Point()
	yaw := spatialmath.Yaw(pose)
	lateral := side.Negate(stanceWidth / 2)
	return NewFootstepNode(pt.X-lateral*math.Sin(yaw), pt.Y+lateral*math.Cos(yaw), yaw, side)
}

func (n FootstepNode) String() string {
	return fmt.Sprintf("%s(%.2f, %.2f, %.0fdeg)", n.Side, n.X(), n.Y(), utils.RadToDeg(n.Yaw()))
}
