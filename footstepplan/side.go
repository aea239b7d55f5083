package footstepplan

import (
	"strings"

	"github.com/pkg/errors"
)

// RobotSide names a foot.
type RobotSide int

const (
	// Left is the left foot. Lateral offsets toward it are positive y.
	Left RobotSide = iota
	// Right is the right foot.
	Right
)

// Sides lists both feet, left first.
var Sides = [2]RobotSide{Left, Right}

func (s RobotSide) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Opposite returns the other foot.
func (s RobotSide) Opposite() RobotSide {
	if s == Left {
		return Right
	}
	return Left
}

// Negate returns v for the left foot and -v for the right foot. It mirrors lateral offsets and
// yaws defined for the left foot onto either side.
func (s RobotSide) Negate(v float64) float64 {
	if s == Right {
		return -v
	}
	return v
}

// MarshalText implements encoding.TextMarshaler.
func (s RobotSide) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RobotSide) UnmarshalText(text []byte) error {
	side, err := ParseRobotSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseRobotSide parses "left" or "right", case insensitively.
func ParseRobotSide(name string) (RobotSide, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	default:
		return Left, errors.Errorf("unknown robot side %q", name)
	}
}
