// Package bodypath plans a coarse route for the robot body around terrain obstacles. Obstacles
// are inflated by the body clearance and the route is the shortest path through the visibility
// graph of their vertices.
package bodypath

import (
	"context"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.viam.com/footsteps/footstepplan/graphsearch"
	"go.viam.com/footsteps/logging"
	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/terrain"
)

// ErrNoPath is returned when the goal cannot be reached around the obstacles.
var ErrNoPath = errors.New("body path planner could not reach the goal")

// Config configures the body path planner.
type Config struct {
	// Regions rising this far above the ground at the start are obstacles.
	ObstacleHeight float64
	// Regions steeper than this are obstacles.
	MaxSurfaceIncline float64
	// Obstacles are inflated by this distance.
	Clearance float64
	// Upper bound on visibility graph expansions, zero for no bound.
	MaxIterations int
}

// Planner plans body paths. It keeps the search of the last PlanWaypoints call so that a best
// effort plan can be extracted after a failure. A Planner is not safe for concurrent use.
type Planner struct {
	cfg    Config
	logger logging.Logger

	obstacles []spatialmath.ConvexPolygon
	vertices  []r2.Point
	indices   []int
	search    *graphsearch.Planner[int, struct{}]

	start, goal spatialmath.Pose
	terrain     *terrain.PlanarRegionSet
	planned     bool
}

const (
	startVertex = 0
	goalVertex  = 1
)

// NewPlanner returns a body path planner.
func NewPlanner(cfg Config, logger logging.Logger) *Planner {
	p := &Planner{cfg: cfg, logger: logger}
	p.search = graphsearch.NewPlanner[int, struct{}](
		func(int) []int { return p.indices },
		func(child, parent int) (struct{}, bool) { return struct{}{}, p.visible(p.vertices[parent], p.vertices[child]) },
		func(parent, child int) float64 { return p.vertices[parent].Sub(p.vertices[child]).Norm() },
		func(n int) float64 { return p.vertices[n].Sub(p.vertices[goalVertex]).Norm() },
		graphsearch.ImproveCost,
	)
	return p
}

// Obstacles returns the inflated obstacles of the last plan.
func (p *Planner) Obstacles() []spatialmath.ConvexPolygon {
	return p.obstacles
}

// PlanWaypoints returns body poses from start to goal avoiding the obstacles in set. A nil set
// is open flat ground and yields the straight line.
func (p *Planner) PlanWaypoints(ctx context.Context, start, goal spatialmath.Pose, set *terrain.PlanarRegionSet) ([]spatialmath.Pose, error) {
	ctx, span := trace.StartSpan(ctx, "bodypath::PlanWaypoints")
	defer span.End()

	p.start, p.goal, p.terrain = start, goal, set
	p.buildGraph()
	p.search.Initialize(startVertex)
	p.planned = true

	for iterations := 0; p.cfg.MaxIterations <= 0 || iterations < p.cfg.MaxIterations; iterations++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := p.search.DoPlanningIteration()
		if record.Exhausted() || record.Parent == goalVertex {
			break
		}
	}

	if !p.search.Graph().Contains(goalVertex) {
		p.logger.CDebugw(ctx, "no body path", "obstacles", len(p.obstacles), "explored", p.search.Graph().Size())
		return nil, ErrNoPath
	}
	waypoints := p.waypoints(p.search.Graph().PathFromStart(goalVertex), true)
	if len(waypoints) < 2 {
		return nil, ErrNoPath
	}
	p.logger.CDebugw(ctx, "body path planned", "waypoints", len(waypoints), "obstacles", len(p.obstacles))
	return waypoints, nil
}

// ComputeBestEffortPlan returns the path to the explored vertex closest to the goal among those
// within horizon of path length from the start. It returns nil when nothing beyond the start
// was reached.
func (p *Planner) ComputeBestEffortPlan(horizon float64) []spatialmath.Pose {
	if !p.planned {
		return nil
	}
	graph := p.search.Graph()
	best, bestDist := startVertex, p.vertices[startVertex].Sub(p.vertices[goalVertex]).Norm()
	for i := range p.vertices {
		if !graph.Contains(i) || graph.CostFromStart(i) > horizon {
			continue
		}
		if d := p.vertices[i].Sub(p.vertices[goalVertex]).Norm(); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == startVertex {
		return nil
	}
	return p.waypoints(graph.PathFromStart(best), best == goalVertex)
}

func (p *Planner) buildGraph() {
	p.obstacles = p.obstacles[:0]
	p.vertices = p.vertices[:0]
	p.indices = p.indices[:0]

	startXY := xy(p.start.Point())
	p.vertices = append(p.vertices, startXY, xy(p.goal.Point()))
	if p.terrain != nil {
		groundZ := p.start.Point().Z
		if _, z, ok := p.terrain.HighestRegionAt(startXY, math.Pi/2); ok {
			groundZ = z
		}
		for _, region := range p.terrain.Regions() {
			if region.IsVertical() {
				continue
			}
			if region.MaxHeight()-groundZ <= p.cfg.ObstacleHeight && region.Incline() <= p.cfg.MaxSurfaceIncline {
				continue
			}
			for _, poly := range region.WorldPolygons() {
				inflated := poly.Expand(p.cfg.Clearance)
				if inflated.SignedDistance(startXY) < 0 {
					// the robot is already standing inside it
					continue
				}
				p.obstacles = append(p.obstacles, inflated)
			}
		}
		for i, obstacle := range p.obstacles {
			for _, v := range obstacle.Vertices() {
				if !p.insideOther(v, i) {
					p.vertices = append(p.vertices, v)
				}
			}
		}
	}
	for i := range p.vertices {
		p.indices = append(p.indices, i)
	}
}

func (p *Planner) insideOther(v r2.Point, self int) bool {
	for j, other := range p.obstacles {
		if j != self && other.SignedDistance(v) < -1e-9 {
			return true
		}
	}
	return false
}

func (p *Planner) visible(a, b r2.Point) bool {
	for _, obstacle := range p.obstacles {
		if obstacle.IntersectsSegmentInterior(a, b) {
			return false
		}
	}
	return true
}

// waypoints shortcuts the vertex path and turns it into poses. Interior waypoints face along
// their outgoing segment; the last one takes the goal heading when it is the goal.
func (p *Planner) waypoints(path []int, reachesGoal bool) []spatialmath.Pose {
	if len(path) < 2 {
		return nil
	}
	points := make([]r2.Point, 0, len(path))
	for _, idx := range path {
		points = append(points, p.vertices[idx])
	}
	points = p.shortcut(points)

	poses := make([]spatialmath.Pose, 0, len(points))
	for i, pt := range points {
		var yaw float64
		switch {
		case i == 0:
			yaw = spatialmath.Yaw(p.start)
		case i == len(points)-1 && reachesGoal:
			yaw = spatialmath.Yaw(p.goal)
		case i == len(points)-1:
			prev := points[i-1]
			yaw = math.Atan2(pt.Y-prev.Y, pt.X-prev.X)
		default:
			next := points[i+1]
			yaw = math.Atan2(next.Y-pt.Y, next.X-pt.X)
		}
		poses = append(poses, spatialmath.NewPoseFromXYYaw(pt.X, pt.Y, p.heightAt(pt, float64(i)/float64(len(points)-1)), yaw))
	}
	return poses
}

// shortcut drops every waypoint whose neighbors can see each other.
func (p *Planner) shortcut(points []r2.Point) []r2.Point {
	out := []r2.Point{points[0]}
	for i := 0; i < len(points)-1; {
		j := len(points) - 1
		for j > i+1 && !p.visible(points[i], points[j]) {
			j--
		}
		out = append(out, points[j])
		i = j
	}
	return out
}

// heightAt is the terrain height under pt, or the start to goal height interpolated by fraction.
func (p *Planner) heightAt(pt r2.Point, fraction float64) float64 {
	if p.terrain != nil {
		if z, ok := p.terrain.HeightAt(pt); ok {
			return z
		}
	}
	return p.start.Point().Z + fraction*(p.goal.Point().Z-p.start.Point().Z)
}

func xy(v r3.Vector) r2.Point {
	return r2.Point{X: v.X, Y: v.Y}
}
