// Package spatialmath defines spatial mathematical operations used to place footsteps on terrain.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/footsteps/utils"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
}

// EulerAngles are three angles (in radians) used to represent the rotation of an object in 3D
// Euclidean space. They are applied in yaw (z), pitch (y), roll (x) order.
type EulerAngles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// NewEulerAngles creates an empty EulerAngles struct.
func NewEulerAngles() *EulerAngles {
	return &EulerAngles{}
}

// EulerAngles returns the orientation in Euler angle representation.
func (ea *EulerAngles) EulerAngles() *EulerAngles {
	return ea
}

// Quaternion returns the orientation in quaternion representation.
func (ea *EulerAngles) Quaternion() quat.Number {
	cy := math.Cos(ea.Yaw * 0.5)
	sy := math.Sin(ea.Yaw * 0.5)
	cp := math.Cos(ea.Pitch * 0.5)
	sp := math.Sin(ea.Pitch * 0.5)
	cr := math.Cos(ea.Roll * 0.5)
	sr := math.Sin(ea.Roll * 0.5)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

type quaternion quat.Number

// Quaternion returns the orientation in quaternion representation.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// EulerAngles returns the orientation in Euler angle representation.
func (q *quaternion) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(quat.Number(*q))
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// NewYawOrientation returns a rotation of yaw radians about the z axis.
func NewYawOrientation(yaw float64) Orientation {
	return &quaternion{math.Cos(yaw / 2), 0, 0, math.Sin(yaw / 2)}
}

// NewOrientationFromQuaternion normalizes and wraps a quaternion.
func NewOrientationFromQuaternion(q quat.Number) Orientation {
	norm := quat.Abs(q)
	if norm == 0 {
		return NewZeroOrientation()
	}
	nq := quaternion(quat.Scale(1/norm, q))
	return &nq
}

// NewAlignZOrientation returns the smallest rotation which takes the +z axis onto the given
// direction. The direction does not need to be normalized.
func NewAlignZOrientation(direction r3.Vector) Orientation {
	n := direction.Normalize()
	z := r3.Vector{Z: 1}
	cosTheta := utils.Clamp(z.Dot(n), -1, 1)
	axis := z.Cross(n)
	if axis.Norm() < 1e-12 {
		if cosTheta > 0 {
			return NewZeroOrientation()
		}
		// Flip about x.
		return &quaternion{0, 1, 0, 0}
	}
	axis = axis.Normalize()
	half := math.Acos(cosTheta) / 2
	s := math.Sin(half)
	return &quaternion{math.Cos(half), axis.X * s, axis.Y * s, axis.Z * s}
}

// QuatToEulerAngles converts a quaternion to the yaw-pitch-roll euler angles.
func QuatToEulerAngles(q quat.Number) *EulerAngles {
	var angles EulerAngles

	// roll (x-axis rotation)
	sinrCosp := 2 * (q.Real*q.Imag + q.Jmag*q.Kmag)
	cosrCosp := 1 - 2*(q.Imag*q.Imag+q.Jmag*q.Jmag)
	angles.Roll = math.Atan2(sinrCosp, cosrCosp)

	// pitch (y-axis rotation)
	sinp := 2 * (q.Real*q.Jmag - q.Kmag*q.Imag)
	angles.Pitch = math.Asin(utils.Clamp(sinp, -1, 1))

	// yaw (z-axis rotation)
	sinyCosp := 2 * (q.Real*q.Kmag + q.Imag*q.Jmag)
	cosyCosp := 1 - 2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag)
	angles.Yaw = math.Atan2(sinyCosp, cosyCosp)

	return &angles
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage, q == -q, and
// this function will *not* account for this. Use OrientationAlmostEqual unless you're certain this is what you want.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	return utils.Float64AlmostEqual(a.Imag, b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, b.Jmag, tol) &&
		utils.Float64AlmostEqual(a.Kmag, b.Kmag, tol) &&
		utils.Float64AlmostEqual(a.Real, b.Real, tol)
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	q1 := o1.Quaternion()
	q2 := o2.Quaternion()
	return QuaternionAlmostEqual(q1, q2, 1e-5) || QuaternionAlmostEqual(q1, quat.Scale(-1, q2), 1e-5)
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// RotatePoint rotates a vector by the given orientation.
func RotatePoint(o Orientation, v r3.Vector) r3.Vector {
	q := o.Quaternion()
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}
