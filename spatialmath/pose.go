package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/footsteps/utils"
)

// Pose represents a 6dof pose, position and orientation, with respect to the world frame.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

type basicPose struct {
	point       r3.Vector
	orientation quat.Number
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() Orientation {
	q := quaternion(p.orientation)
	return &q
}

func (p *basicPose) String() string {
	ea := p.Orientation().EulerAngles()
	return fmt.Sprintf("{X:%.3f Y:%.3f Z:%.3f Roll:%.3f Pitch:%.3f Yaw:%.3f}",
		p.point.X, p.point.Y, p.point.Z, ea.Roll, ea.Pitch, ea.Yaw)
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return &basicPose{orientation: quat.Number{Real: 1}}
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(point r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(point)
	}
	return &basicPose{point: point, orientation: o.Quaternion()}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &basicPose{point: point, orientation: quat.Number{Real: 1}}
}

// NewPoseFromXYYaw returns a pose at height z, rotated by yaw about the z axis.
func NewPoseFromXYYaw(x, y, z, yaw float64) Pose {
	return NewPose(r3.Vector{X: x, Y: y, Z: z}, NewYawOrientation(yaw))
}

// Compose takes two poses, converts to dual quaternion-like rigid transforms and multiplies them
// together: the result applies b in the frame of a.
func Compose(a, b Pose) Pose {
	aq := a.Orientation().Quaternion()
	point := a.Point().Add(RotatePoint(a.Orientation(), b.Point()))
	return &basicPose{point: point, orientation: quat.Mul(aq, b.Orientation().Quaternion())}
}

// PoseInverse will return the inverse of a pose. So if a given pose p is the pose of A relative to B, PoseInverse(p) will give
// the pose of B relative to A.
func PoseInverse(p Pose) Pose {
	inv := quaternion(quat.Conj(p.Orientation().Quaternion()))
	return &basicPose{point: RotatePoint(&inv, p.Point()).Mul(-1), orientation: quat.Number(inv)}
}

// TransformPoint moves a point expressed in the frame of p into the frame p is expressed in.
func TransformPoint(p Pose, v r3.Vector) r3.Vector {
	return p.Point().Add(RotatePoint(p.Orientation(), v))
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-8)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqualEps(a, b Pose, epsilon float64) bool {
	return PoseAlmostCoincidentEps(a, b, epsilon) && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// PoseAlmostCoincidentEps will return a bool describing whether 2 poses approximately are at the same 3D coordinate location.
// This uses the same epsilon as the default value for the Viam IK solver.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	ap := a.Point()
	bp := b.Point()
	return utils.Float64AlmostEqual(ap.X, bp.X, epsilon) &&
		utils.Float64AlmostEqual(ap.Y, bp.Y, epsilon) &&
		utils.Float64AlmostEqual(ap.Z, bp.Z, epsilon)
}

// PoseContainsNaN reports whether any translation or rotation component is NaN.
func PoseContainsNaN(p Pose) bool {
	pt := p.Point()
	q := p.Orientation().Quaternion()
	return math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsNaN(pt.Z) ||
		math.IsNaN(q.Real) || math.IsNaN(q.Imag) || math.IsNaN(q.Jmag) || math.IsNaN(q.Kmag)
}

// Yaw returns the rotation of the pose about the world z axis.
func Yaw(p Pose) float64 {
	return p.Orientation().EulerAngles().Yaw
}
