package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PoseConfig represents the serialized form of a pose: a translation in meters and euler angles
// in radians.
type PoseConfig struct {
	X     float64 `json:"x"     yaml:"x"     mapstructure:"x"`
	Y     float64 `json:"y"     yaml:"y"     mapstructure:"y"`
	Z     float64 `json:"z"     yaml:"z"     mapstructure:"z"`
	Roll  float64 `json:"roll"  yaml:"roll"  mapstructure:"roll"`
	Pitch float64 `json:"pitch" yaml:"pitch" mapstructure:"pitch"`
	Yaw   float64 `json:"yaw"   yaml:"yaw"   mapstructure:"yaw"`
}

// NewPoseConfig encodes a pose as a PoseConfig.
func NewPoseConfig(pose Pose) *PoseConfig {
	pt := pose.Point()
	ea := pose.Orientation().EulerAngles()
	return &PoseConfig{X: pt.X, Y: pt.Y, Z: pt.Z, Roll: ea.Roll, Pitch: ea.Pitch, Yaw: ea.Yaw}
}

// ParseConfig converts a PoseConfig into a Pose.
func (config *PoseConfig) ParseConfig() (Pose, error) {
	if config == nil {
		return nil, errors.New("missing pose config")
	}
	pose := NewPose(
		r3.Vector{X: config.X, Y: config.Y, Z: config.Z},
		&EulerAngles{Roll: config.Roll, Pitch: config.Pitch, Yaw: config.Yaw},
	)
	if PoseContainsNaN(pose) {
		return nil, errors.Errorf("pose config contains NaN: %+v", *config)
	}
	return pose, nil
}
