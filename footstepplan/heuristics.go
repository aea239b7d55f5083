package footstepplan

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/utils"
)

// Heuristic estimates the remaining cost from a node to the goal. Both implementations are
// inflated by HeuristicsWeight, which makes the search a weighted A*: faster, but its solutions
// carry no optimality guarantee.
type Heuristic interface {
	Compute(node FootstepNode) float64
}

// Goal holds the goal node of each foot.
type Goal map[RobotSide]FootstepNode

// NewGoal places both feet around pose, stanceWidth apart.
func NewGoal(pose spatialmath.Pose, stanceWidth float64) Goal {
	return Goal{
		Left:  StanceNode(pose, Left, stanceWidth),
		Right: StanceNode(pose, Right, stanceWidth),
	}
}

// Contains reports whether node is the goal of its own side.
func (g Goal) Contains(node FootstepNode) bool {
	goal, ok := g[node.Side]
	return ok && goal == node
}

// DistanceAndYawHeuristic is the planar distance and yaw difference to the goal of the node's
// side, plus the per-step cost of covering that distance at full reach. Distances are measured
// between lattice positions, never snapped ones, so only the goal nodes themselves score zero.
type DistanceAndYawHeuristic struct {
	params *Parameters
	goal   Goal
}

// NewDistanceAndYawHeuristic returns the straight-line heuristic toward goal.
func NewDistanceAndYawHeuristic(params *Parameters, goal Goal) *DistanceAndYawHeuristic {
	return &DistanceAndYawHeuristic{params: params, goal: goal}
}

// Compute implements Heuristic. It is zero exactly at the goal nodes.
func (h *DistanceAndYawHeuristic) Compute(node FootstepNode) float64 {
	if h.goal.Contains(node) {
		return 0
	}
	return h.params.HeuristicsWeight * h.raw(node)
}

func (h *DistanceAndYawHeuristic) raw(node FootstepNode) float64 {
	goal := h.goal[node.Side]
	d := node.XY().Sub(goal.XY()).Norm()
	return h.params.DistanceWeight*d +
		h.params.YawWeight*node.YawDistance(goal) +
		h.params.CostPerStep*d/h.params.MaxStepReach
}

// BodyPathHeuristic follows a precomputed body path: remaining arc length plus lateral deviation
// beyond half a stance. Within GoalBlendDistance of the path end it blends into the straight-line
// heuristic, so lateral excursions are tolerated early and the feet still converge on the goal.
type BodyPathHeuristic struct {
	params   *Parameters
	distance *DistanceAndYawHeuristic
	points   []r2.Point
	arc      []float64
}

// NewBodyPathHeuristic returns a heuristic following waypoints toward goal.
func NewBodyPathHeuristic(params *Parameters, goal Goal, waypoints []spatialmath.Pose) *BodyPathHeuristic {
	h := &BodyPathHeuristic{
		params:   params,
		distance: NewDistanceAndYawHeuristic(params, goal),
	}
	total := 0.
	for i, wp := range waypoints {
		pt := r2.Point{X: wp.Point().X, Y: wp.Point().Y}
		if i > 0 {
			total += pt.Sub(h.points[i-1]).Norm()
		}
		h.points = append(h.points, pt)
		h.arc = append(h.arc, total)
	}
	return h
}

// Length returns the length of the body path.
func (h *BodyPathHeuristic) Length() float64 {
	if len(h.arc) == 0 {
		return 0
	}
	return h.arc[len(h.arc)-1]
}

// Compute implements Heuristic. It is zero exactly at the goal nodes.
func (h *BodyPathHeuristic) Compute(node FootstepNode) float64 {
	if h.distance.goal.Contains(node) {
		return 0
	}
	if len(h.points) < 2 {
		return h.distance.Compute(node)
	}
	arc, lateral, heading := h.project(node.XY())
	remaining := math.Max(0, h.Length()-arc)
	bodyTerm := h.params.DistanceWeight*remaining +
		h.params.BodyPathLateralWeight*math.Max(0, lateral-h.params.IdealFootstepWidth/2) +
		h.params.YawWeight*math.Abs(utils.AngleDiff(node.Yaw(), heading)) +
		h.params.CostPerStep*remaining/h.params.MaxStepReach
	alpha := 1 - utils.Clamp(remaining/h.params.GoalBlendDistance, 0, 1)
	return h.params.HeuristicsWeight * ((1-alpha)*bodyTerm + alpha*h.distance.raw(node))
}

// project finds the closest point of the path to p and returns its arc length, the distance to
// it and the heading of its segment. Earlier segments win ties.
func (h *BodyPathHeuristic) project(p r2.Point) (float64, float64, float64) {
	bestArc, bestDist, bestHeading := 0., math.Inf(1), 0.
	for i := 0; i+1 < len(h.points); i++ {
		a, b := h.points[i], h.points[i+1]
		closest := spatialmath.ClosestPointSegmentPoint(a, b, p)
		if d := p.Sub(closest).Norm(); d < bestDist {
			bestDist = d
			bestArc = h.arc[i] + closest.Sub(a).Norm()
			bestHeading = math.Atan2(b.Y-a.Y, b.X-a.X)
		}
	}
	return bestArc, bestDist, bestHeading
}
