package footstepplan

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/footsteps/utils"
)

// CostFunction scores an edge by how far the swing foot travels from where it would stand next to
// the stance foot, how much it turns, the terrain change and the foothold quality. It holds no
// state beyond its weights and the snapper, so costs never depend on search order.
type CostFunction struct {
	params  *Parameters
	snapper *FootholdSnapper
	weights [7]float64
}

// NewCostFunction returns the edge cost for params.
func NewCostFunction(params *Parameters, snapper *FootholdSnapper) *CostFunction {
	return &CostFunction{
		params:  params,
		snapper: snapper,
		weights: [7]float64{
			params.DistanceWeight,
			params.YawWeight,
			params.StepUpWeight,
			params.StepDownWeight,
			params.PitchWeight,
			params.RollWeight,
			params.FootholdAreaWeight,
		},
	}
}

// Compute returns the non-negative cost of stepping from parent to child.
func (c *CostFunction) Compute(parent, child FootstepNode) float64 {
	var terms [7]float64

	lateral := child.Side.Negate(c.params.IdealFootstepWidth)
	yaw := parent.Yaw()
	idealX := parent.X() - lateral*math.Sin(yaw)
	idealY := parent.Y() + lateral*math.Cos(yaw)
	terms[0] = math.Hypot(child.X()-idealX, child.Y()-idealY)
	terms[1] = math.Abs(utils.AngleDiff(child.Yaw(), parent.Yaw()))

	if !c.snapper.FlatGround() {
		parentSnap, childSnap := c.snapper.Snap(parent), c.snapper.Snap(child)
		if parentSnap.Snapped() && childSnap.Snapped() {
			dz := childSnap.Z() - parentSnap.Z()
			terms[2] = math.Max(dz, 0)
			terms[3] = math.Max(-dz, 0)
			parentAngles := parentSnap.Transform.Orientation().EulerAngles()
			childAngles := childSnap.Transform.Orientation().EulerAngles()
			terms[4] = math.Abs(utils.AngleDiff(childAngles.Pitch, parentAngles.Pitch))
			terms[5] = math.Abs(utils.AngleDiff(childAngles.Roll, parentAngles.Roll))
			terms[6] = 1 - utils.Clamp(childSnap.AreaFraction, 0, 1)
		}
	}
	return floats.Dot(c.weights[:], terms[:]) + c.params.CostPerStep
}
