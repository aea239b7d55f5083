package footstepplan

import (
	"time"

	"github.com/google/uuid"

	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/terrain"
)

// PlannerType selects the heuristic and whether a body path is planned first.
type PlannerType int

const (
	// GraphOnly searches footsteps with the straight-line heuristic.
	GraphOnly PlannerType = iota
	// WithBodyPath plans a body path first and follows it with the body path heuristic.
	WithBodyPath
)

func (t PlannerType) String() string {
	if t == WithBodyPath {
		return "with_body_path"
	}
	return "graph_only"
}

// Result is the closed set of planning outcomes.
type Result int

const (
	// SolutionDoesNotReachGoal is reported while planning and for partial plans.
	SolutionDoesNotReachGoal Result = iota
	// SubOptimalSolution means the goal was reached. The search stops at first contact, so the
	// plan is valid but not proven optimal.
	SubOptimalSolution
	// NoPathExists means the search space was exhausted.
	NoPathExists
	// TimedOutBeforeSolution means the time or iteration budget ran out, or planning was halted.
	TimedOutBeforeSolution
	// InvalidGoal means a goal footstep is infeasible.
	InvalidGoal
	// PlannerFailed means the body path could not be planned.
	PlannerFailed
)

func (r Result) String() string {
	switch r {
	case SolutionDoesNotReachGoal:
		return "SOLUTION_DOES_NOT_REACH_GOAL"
	case SubOptimalSolution:
		return "SUB_OPTIMAL_SOLUTION"
	case NoPathExists:
		return "NO_PATH_EXISTS"
	case TimedOutBeforeSolution:
		return "TIMED_OUT_BEFORE_SOLUTION"
	case InvalidGoal:
		return "INVALID_GOAL"
	case PlannerFailed:
		return "PLANNER_FAILED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Terminal reports whether r ends a request.
func (r Result) Terminal() bool {
	return r != SolutionDoesNotReachGoal
}

// Request asks for footsteps from a start stance to a goal pose.
type Request struct {
	RequestID int
	// StartPose is the body pose midway between the feet.
	StartPose spatialmath.Pose
	// StartSide is the stance foot; the first step is taken by the other foot.
	StartSide RobotSide
	GoalPose  spatialmath.Pose
	// Terrain is ignored when AssumeFlatGround is set.
	Terrain              *terrain.PlanarRegionSet
	AssumeFlatGround     bool
	PlannerType          PlannerType
	Timeout              time.Duration
	ReturnBestEffortPlan bool
}

// Footstep is one planned foot placement.
type Footstep struct {
	Side      RobotSide
	Node      FootstepNode
	Transform spatialmath.Pose
	Foothold  spatialmath.ConvexPolygon
}

// Status is a snapshot of a request. Published statuses are never modified.
type Status struct {
	RequestID         int
	PlanID            uuid.UUID
	Result            Result
	Footsteps         []Footstep
	BodyPathWaypoints []spatialmath.Pose
	Elapsed           time.Duration
	Statistics        Statistics
}
