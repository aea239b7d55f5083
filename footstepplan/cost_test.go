package footstepplan

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/terrain"
)

func TestCostFlatGround(t *testing.T) {
	params := NewDefaultParameters()
	cost := NewCostFunction(params, NewFootholdSnapper(params))
	stance := NewFootstepNode(0, -0.1, 0, Right)

	// the ideal placement is 0.22 to the left of the stance foot, the lattice puts it 0.02 short
	test.That(t, cost.Compute(stance, NewFootstepNode(0, 0.1, 0, Left)), test.ShouldAlmostEqual, 0.02+params.CostPerStep)
	test.That(t, cost.Compute(stance, NewFootstepNode(0.5, 0.1, 0, Left)), test.ShouldAlmostEqual,
		math.Hypot(0.5, 0.02)+params.CostPerStep)
	test.That(t, cost.Compute(stance, NewFootstepNode(0, 0.1, YawResolution, Left)), test.ShouldAlmostEqual,
		0.02+params.YawWeight*YawResolution+params.CostPerStep)

	// mirrored steps cost the same
	left := NewFootstepNode(0.2, 0.05, math.Pi/9, Left)
	child := NewFootstepNode(0.55, -0.2, math.Pi/18, Right)
	test.That(t, cost.Compute(left.Mirror(), child.Mirror()), test.ShouldEqual, cost.Compute(left, child))
}

func TestCostTerrain(t *testing.T) {
	params := NewDefaultParameters()
	flat := NewCostFunction(params, NewFootholdSnapper(params))

	snapper := NewFootholdSnapper(params)
	snapper.SetPlanarRegions(terrain.NewPlanarRegionSet(
		terrain.NewBoxTopRegion(0, r2.Point{}, 6, 6, 0),
		terrain.NewBoxTopRegion(1, r2.Point{X: 1}, 1, 1, 0.2),
	))
	cost := NewCostFunction(params, snapper)

	ground := NewFootstepNode(0.3, -0.1, 0, Right)
	platform := NewFootstepNode(0.8, 0.1, 0, Left)
	test.That(t, cost.Compute(ground, platform)-flat.Compute(ground, platform), test.ShouldAlmostEqual, params.StepUpWeight*0.2)

	platformRight := NewFootstepNode(0.8, -0.1, 0, Right)
	groundLeft := NewFootstepNode(1.7, 0.1, 0, Left)
	test.That(t, cost.Compute(platformRight, groundLeft)-flat.Compute(platformRight, groundLeft), test.ShouldAlmostEqual,
		params.StepDownWeight*0.2)
}

func TestDistanceAndYawHeuristic(t *testing.T) {
	params := NewDefaultParameters()
	goal := NewGoal(spatialmath.NewPoseFromXYYaw(2, 0, 0, 0), params.IdealFootstepWidth)
	h := NewDistanceAndYawHeuristic(params, goal)

	for _, side := range Sides {
		test.That(t, h.Compute(goal[side]), test.ShouldEqual, 0.)
	}
	// a left node standing on the right goal is not at the goal
	onRight := goal[Right]
	onRight.Side = Left
	test.That(t, h.Compute(onRight), test.ShouldBeGreaterThan, 0)

	node := NewFootstepNode(0, 0.1, YawResolution, Left)
	d := node.EuclideanDistance(goal[Left])
	test.That(t, d, test.ShouldAlmostEqual, 2)
	raw := params.DistanceWeight*d + params.YawWeight*YawResolution + params.CostPerStep*d/params.MaxStepReach
	test.That(t, h.Compute(node), test.ShouldAlmostEqual, params.HeuristicsWeight*raw)
	test.That(t, h.Compute(node.Mirror()), test.ShouldEqual, h.Compute(node))
}

func TestHeuristicIsZeroOnlyAtGoal(t *testing.T) {
	params := NewDefaultParameters()
	goalPose := spatialmath.NewPoseFromXYYaw(1, 0, 0, 0)
	goal := NewGoal(goalPose, params.IdealFootstepWidth)
	heuristics := map[string]Heuristic{
		"distance":  NewDistanceAndYawHeuristic(params, goal),
		"body path": NewBodyPathHeuristic(params, goal, []spatialmath.Pose{spatialmath.NewZeroPose(), goalPose}),
	}

	// wiggling this node on terrain ending just past the goal would move its foothold toward the
	// goal; the estimate must not depend on that
	snapper := NewFootholdSnapper(params)
	snapper.SetPlanarRegions(terrain.NewPlanarRegionSet(terrain.NewBoxTopRegion(0, r2.Point{X: 0.5}, 1.12, 2, 0)))
	for name, h := range heuristics {
		t.Run(name, func(t *testing.T) {
			for _, side := range Sides {
				test.That(t, h.Compute(goal[side]), test.ShouldEqual, 0.)
				for dx := -1; dx <= 1; dx++ {
					for dy := -1; dy <= 1; dy++ {
						for dyaw := -1; dyaw <= 1; dyaw++ {
							if dx == 0 && dy == 0 && dyaw == 0 {
								continue
							}
							node := goal[side]
							node.XIndex += dx
							node.YIndex += dy
							node.YawIndex = wrapYawIndex(node.YawIndex + dyaw)
							snapper.Snap(node)
							test.That(t, h.Compute(node), test.ShouldBeGreaterThan, 0)
						}
					}
				}
			}
		})
	}
}

func TestBodyPathHeuristic(t *testing.T) {
	params := NewDefaultParameters()
	goalPose := spatialmath.NewPoseFromXYYaw(4, 0, 0, 0)
	goal := NewGoal(goalPose, params.IdealFootstepWidth)
	distance := NewDistanceAndYawHeuristic(params, goal)

	t.Run("degenerate path falls back to distance", func(t *testing.T) {
		h := NewBodyPathHeuristic(params, goal, []spatialmath.Pose{goalPose})
		node := NewFootstepNode(1, 0.1, 0, Left)
		test.That(t, h.Compute(node), test.ShouldEqual, distance.Compute(node))
	})

	h := NewBodyPathHeuristic(params, goal, []spatialmath.Pose{spatialmath.NewZeroPose(), goalPose})
	test.That(t, h.Length(), test.ShouldAlmostEqual, 4)
	for _, side := range Sides {
		test.That(t, h.Compute(goal[side]), test.ShouldEqual, 0.)
	}

	// far from the end the path term alone counts and half a stance of lateral offset is free
	node := NewFootstepNode(1, 0.1, 0, Left)
	remaining := 3.
	test.That(t, h.Compute(node), test.ShouldAlmostEqual,
		params.HeuristicsWeight*(params.DistanceWeight*remaining+params.CostPerStep*remaining/params.MaxStepReach))

	wide := NewFootstepNode(1, 0.5, 0, Left)
	test.That(t, h.Compute(wide)-h.Compute(node), test.ShouldAlmostEqual,
		params.HeuristicsWeight*params.BodyPathLateralWeight*(0.5-params.IdealFootstepWidth/2))

	// near the end it blends into the distance heuristic
	near := NewFootstepNode(3.5, 0.1, 0, Left)
	alpha := 0.5
	bodyTerm := params.DistanceWeight*0.5 + params.CostPerStep*0.5/params.MaxStepReach
	test.That(t, h.Compute(near), test.ShouldAlmostEqual,
		(1-alpha)*params.HeuristicsWeight*bodyTerm+alpha*distance.Compute(near))
}
