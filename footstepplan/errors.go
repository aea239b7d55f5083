package footstepplan

import "github.com/pkg/errors"

var (
	// ErrRequestInFlight is returned when a request is submitted while another is being planned.
	ErrRequestInFlight = errors.New("a planning request is already in flight")
	// ErrNoMotionRequired is returned when the start stance already stands on the goal.
	ErrNoMotionRequired = errors.New("start and goal footsteps are identical, no motion required")
	// ErrInvalidRequest wraps malformed requests.
	ErrInvalidRequest = errors.New("invalid planning request")
	// ErrTerrainModified is returned when the terrain changes while a request is planning.
	ErrTerrainModified = errors.New("terrain was modified during planning")
)

func newInvalidRequestError(reason string) error {
	return errors.Wrap(ErrInvalidRequest, reason)
}

// RejectionReason explains why a candidate footstep was discarded.
type RejectionReason int

const (
	// NotRejected is the zero value reported for valid nodes.
	NotRejected RejectionReason = iota
	// CouldNotSnap means no terrain lies under the footstep.
	CouldNotSnap
	// SurfaceTooSteep means the supporting region is inclined beyond the limit.
	SurfaceTooSteep
	// NotEnoughArea means too little of the foot is supported.
	NotEnoughArea
	// StepTooHighOrLow means the height change from the stance foot exceeds the limit.
	StepTooHighOrLow
	// BodyCollision means the body box between the feet intersects terrain.
	BodyCollision
	// CliffTooClose means the foot lands next to a large drop.
	CliffTooClose
)

// RejectionReasons lists every rejection, in checking order.
var RejectionReasons = []RejectionReason{
	CouldNotSnap, SurfaceTooSteep, NotEnoughArea, StepTooHighOrLow, BodyCollision, CliffTooClose,
}

func (r RejectionReason) String() string {
	switch r {
	case NotRejected:
		return "NOT_REJECTED"
	case CouldNotSnap:
		return "COULD_NOT_SNAP"
	case SurfaceTooSteep:
		return "SURFACE_TOO_STEEP"
	case NotEnoughArea:
		return "NOT_ENOUGH_AREA"
	case StepTooHighOrLow:
		return "STEP_TOO_HIGH_OR_LOW"
	case BodyCollision:
		return "BODY_COLLISION"
	case CliffTooClose:
		return "CLIFF_TOO_CLOSE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RejectionReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
