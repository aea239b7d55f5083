package footstepplan

import "math"

// stepOffset is a reachable step for a left foot, relative to a right stance foot frame.
type stepOffset struct {
	dx, dy, dyaw float64
}

// NodeExpansion enumerates the lattice steps reachable from a stance foot. It never looks at the
// terrain.
type NodeExpansion struct {
	offsets []stepOffset
	buf     []FootstepNode
	seen    map[FootstepNode]struct{}
}

// NewNodeExpansion precomputes the step envelope described by params.
func NewNodeExpansion(params *Parameters) *NodeExpansion {
	const eps = 1e-9
	e := &NodeExpansion{seen: map[FootstepNode]struct{}{}}
	for xi := int(math.Ceil(params.MinStepLength/GridSizeXY - eps)); xi <= int(math.Floor(params.MaxStepLength/GridSizeXY+eps)); xi++ {
		for yi := int(math.Ceil(params.MinStepWidth/GridSizeXY - eps)); yi <= int(math.Floor(params.MaxStepWidth/GridSizeXY+eps)); yi++ {
			dx, dy := float64(xi)*GridSizeXY, float64(yi)*GridSizeXY
			if math.Hypot(dx, dy-params.IdealFootstepWidth) > params.MaxStepReach+eps {
				continue
			}
			minYaw := int(math.Ceil(params.MinStepYaw/YawResolution - eps))
			maxYaw := int(math.Floor(params.MaxStepYaw/YawResolution + eps))
			for yawi := minYaw; yawi <= maxYaw; yawi++ {
				e.offsets = append(e.offsets, stepOffset{dx: dx, dy: dy, dyaw: float64(yawi) * YawResolution})
			}
		}
	}
	return e
}

// NumOffsets returns the size of the step envelope.
func (e *NodeExpansion) NumOffsets() int {
	return len(e.offsets)
}

// Expand returns the children of parent for the opposite foot, ordered by step length, then
// width, then yaw. Children rounding onto the parent's position or onto an earlier child are
// dropped. The returned slice is reused by the next call.
func (e *NodeExpansion) Expand(parent FootstepNode) []FootstepNode {
	e.buf = e.buf[:0]
	clear(e.seen)

	side := parent.Side.Opposite()
	x, y, yaw := parent.X(), parent.Y(), parent.Yaw()
	cosYaw, sinYaw := math.Cos(yaw), math.Sin(yaw)
	for _, o := range e.offsets {
		dy := side.Negate(o.dy)
		child := NewFootstepNode(
			x+cosYaw*o.dx-sinYaw*dy,
			y+sinYaw*o.dx+cosYaw*dy,
			yaw+side.Negate(o.dyaw),
			side,
		)
		if child.XIndex == parent.XIndex && child.YIndex == parent.YIndex {
			continue
		}
		if _, dup := e.seen[child]; dup {
			continue
		}
		e.seen[child] = struct{}{}
		e.buf = append(e.buf, child)
	}
	return e.buf
}
