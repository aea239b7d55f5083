// Package footstepplan plans footstep sequences for a biped over planar-region terrain with an
// incremental weighted A* search. A Session owns one request at a time and drives the search
// iteration by iteration under a time budget, reporting progress to observers.
package footstepplan

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opencensus.io/trace"
	"go.viam.com/utils"

	"go.viam.com/footsteps/footstepplan/bodypath"
	"go.viam.com/footsteps/footstepplan/graphsearch"
	"go.viam.com/footsteps/logging"
	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/terrain"
)

// IterationRecord is the footstep instantiation of the search engine's per-iteration record.
type IterationRecord = graphsearch.IterationRecord[FootstepNode, RejectionReason]

// IterationObserver receives every search iteration on the planning goroutine. The record is
// reused by the next iteration.
type IterationObserver func(record *IterationRecord)

// StatusObserver receives status snapshots on the planning goroutine.
type StatusObserver func(status *Status)

// State is the lifecycle state of a Session.
type State int

const (
	// Idle sessions accept requests.
	Idle State = iota
	// Planning sessions reject requests.
	Planning
)

func (s State) String() string {
	if s == Planning {
		return "planning"
	}
	return "idle"
}

// Outcome is delivered by SubmitRequestAsync.
type Outcome struct {
	Status *Status
	Err    error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock replaces the wall clock, which lets tests control timeouts and publish periods.
func WithClock(c clock.Clock) SessionOption {
	return func(s *Session) {
		s.clock = c
	}
}

// Session plans one request at a time. Requests arriving while one is in flight are rejected
// rather than queued.
type Session struct {
	params *Parameters
	logger logging.Logger
	clock  clock.Clock

	snapper   *FootholdSnapper
	checker   *NodeChecker
	expansion *NodeExpansion
	cost      *CostFunction
	bodyPath  *bodypath.Planner
	planner   *graphsearch.Planner[FootstepNode, RejectionReason]
	heuristic Heuristic

	mu                 sync.Mutex
	state              State
	halted             bool
	iterationObservers []IterationObserver
	statusObservers    []StatusObserver
}

// NewSession validates params and wires the planner components together.
func NewSession(params *Parameters, logger logging.Logger, opts ...SessionOption) (*Session, error) {
	if params == nil {
		params = NewDefaultParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid planner parameters")
	}
	s := &Session{
		params: params,
		logger: logger,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snapper = NewFootholdSnapper(params)
	s.checker = NewNodeChecker(params, s.snapper)
	s.expansion = NewNodeExpansion(params)
	s.cost = NewCostFunction(params, s.snapper)
	s.bodyPath = bodypath.NewPlanner(bodypath.Config{
		ObstacleHeight:    params.ObstacleHeight,
		MaxSurfaceIncline: params.MaxSurfaceIncline,
		Clearance:         params.BodyPathClearance,
		MaxIterations:     params.MaxBodyPathIterations,
	}, logger.Sublogger("bodypath"))
	s.planner = graphsearch.NewPlanner(
		s.expansion.Expand,
		func(child, parent FootstepNode) (RejectionReason, bool) {
			return s.checker.IsValid(child, &parent)
		},
		s.cost.Compute,
		func(node FootstepNode) float64 {
			return s.heuristic.Compute(node)
		},
		graphsearch.FirstWriterWins,
	)
	return s, nil
}

// Parameters returns the session parameters.
func (s *Session) Parameters() *Parameters {
	return s.params
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AddIterationObserver registers an observer. Observers are called in registration order; ones
// added while planning take effect from the next request.
func (s *Session) AddIterationObserver(observer IterationObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.iterationObservers = append(s.iterationObservers, observer)
}

// AddStatusObserver registers an observer of status snapshots, called in registration order.
func (s *Session) AddStatusObserver(observer StatusObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusObservers = append(s.statusObservers, observer)
}

// Halt asks the in-flight request to stop. The flag is checked once per iteration, so one more
// iteration may run. Halting an idle session does nothing.
func (s *Session) Halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Planning {
		s.halted = true
	}
}

// SubmitRequest plans req on the calling goroutine and returns the final status. Planning
// outcomes, failures included, are reported through the status; errors are reserved for
// rejected or malformed requests. Cancelling ctx behaves like Halt.
func (s *Session) SubmitRequest(ctx context.Context, req *Request) (*Status, error) {
	if err := s.begin(req); err != nil {
		return nil, err
	}
	defer s.finish()
	return s.plan(ctx, req)
}

// SubmitRequestAsync plans req on a new goroutine. The returned channel receives exactly one
// outcome, sent once the session is idle again, and is then closed. A request rejected because another is in flight fails immediately.
func (s *Session) SubmitRequestAsync(ctx context.Context, req *Request) (<-chan Outcome, error) {
	if err := s.begin(req); err != nil {
		return nil, err
	}
	out := make(chan Outcome, 1)
	utils.PanicCapturingGo(func() {
		defer close(out)
		status, err := func() (*Status, error) {
			defer s.finish()
			return s.plan(ctx, req)
		}()
		out <- Outcome{Status: status, Err: err}
	})
	return out, nil
}

func (s *Session) begin(req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Planning {
		requestID := -1
		if req != nil {
			requestID = req.RequestID
		}
		s.logger.Warnw("rejecting planning request, another request is in flight", "request_id", requestID)
		return ErrRequestInFlight
	}
	s.state = Planning
	s.halted = false
	return nil
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle
	s.halted = false
}

func (s *Session) isHalted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

func (s *Session) observers() ([]IterationObserver, []StatusObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]IterationObserver(nil), s.iterationObservers...), append([]StatusObserver(nil), s.statusObservers...)
}

func validateRequest(req *Request) error {
	switch {
	case req == nil:
		return newInvalidRequestError("nil request")
	case req.StartPose == nil || req.GoalPose == nil:
		return newInvalidRequestError("start and goal poses are required")
	case spatialmath.PoseContainsNaN(req.StartPose) || spatialmath.PoseContainsNaN(req.GoalPose):
		return newInvalidRequestError("start or goal pose contains NaN")
	case req.StartSide != Left && req.StartSide != Right:
		return newInvalidRequestError("unknown start side")
	case req.PlannerType != GraphOnly && req.PlannerType != WithBodyPath:
		return newInvalidRequestError("unknown planner type")
	case req.Timeout < 0:
		return newInvalidRequestError("negative timeout")
	case req.Terrain == nil && !req.AssumeFlatGround:
		return newInvalidRequestError("terrain is required unless assuming flat ground")
	}
	return nil
}

// plan runs one request. It is only ever called between begin and finish.
func (s *Session) plan(ctx context.Context, req *Request) (*Status, error) {
	ctx, span := trace.StartSpan(ctx, "footstepplan::Session::plan")
	defer span.End()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	iterationObservers, statusObservers := s.observers()

	var set *terrain.PlanarRegionSet
	var version uint64
	if !req.AssumeFlatGround {
		set = req.Terrain
		version = set.Version()
	}
	s.snapper.SetPlanarRegions(set)
	s.checker.SetPlanarRegions(set)

	startNode := StanceNode(req.StartPose, req.StartSide, s.params.IdealFootstepWidth)
	goal := NewGoal(req.GoalPose, s.params.IdealFootstepWidth)
	if goal[startNode.Side] == startNode &&
		goal[startNode.Side.Opposite()] == StanceNode(req.StartPose, startNode.Side.Opposite(), s.params.IdealFootstepWidth) {
		return nil, ErrNoMotionRequired
	}

	// the planner reads the heuristic as soon as it is seeded
	s.heuristic = NewDistanceAndYawHeuristic(s.params, goal)
	s.planner.Initialize(startNode)

	logger := s.logger
	logger.CDebugw(ctx, "planning request", "request_id", req.RequestID, "start", startNode, "goal_left", goal[Left],
		"goal_right", goal[Right], "planner_type", req.PlannerType, "flat_ground", set == nil)

	run := &planRun{
		session:   s,
		observers: statusObservers,
		start:     s.clock.Now(),
		stats:     newStatisticsCollector(),
		status: &Status{
			RequestID: req.RequestID,
			PlanID:    uuid.New(),
			Result:    SolutionDoesNotReachGoal,
		},
		endNode: startNode,
	}

	if req.PlannerType == WithBodyPath {
		waypoints, err := s.bodyPath.PlanWaypoints(ctx, req.StartPose, req.GoalPose, set)
		if err != nil {
			if ctx.Err() != nil {
				return run.complete(TimedOutBeforeSolution, false), nil
			}
			logger.Infow("body path planning failed", "request_id", req.RequestID, "error", err,
				"best_effort", req.ReturnBestEffortPlan)
			if req.ReturnBestEffortPlan {
				waypoints = s.bodyPath.ComputeBestEffortPlan(s.params.BestEffortHorizon)
			}
			if len(waypoints) < 2 {
				return run.complete(PlannerFailed, false), nil
			}
		}
		run.status.BodyPathWaypoints = waypoints
		s.heuristic = NewBodyPathHeuristic(s.params, goal, waypoints)
		s.planner.Initialize(startNode)
	}

	goalsValid := true
	for _, side := range Sides {
		if reason, ok := s.checker.IsValid(goal[side], nil); !ok {
			logger.Infow("goal footstep is invalid", "request_id", req.RequestID, "side", side, "reason", reason)
			goalsValid = false
		}
	}
	if !goalsValid && !req.ReturnBestEffortPlan {
		return run.complete(InvalidGoal, false), nil
	}

	graph := s.planner.Graph()
	bestScore := math.Inf(1)
	lastPublish := run.start
	for {
		iterationStart := s.clock.Now()
		record := s.planner.DoPlanningIteration()
		run.stats.record(record, s.clock.Since(iterationStart))
		for _, observer := range iterationObservers {
			observer(record)
		}

		if set != nil && set.Version() != version {
			return nil, ErrTerrainModified
		}
		for _, child := range record.ValidChildren {
			if score := graph.CostFromStart(child) + s.heuristic.Compute(child); score < bestScore {
				bestScore = score
				run.endNode = child
			}
		}
		if s.clock.Since(run.start) >= req.Timeout || s.isHalted() || ctx.Err() != nil ||
			(s.params.MaxIterations > 0 && run.stats.iterations >= s.params.MaxIterations) {
			return run.complete(TimedOutBeforeSolution, req.ReturnBestEffortPlan), nil
		}
		if record.Exhausted() {
			return run.complete(NoPathExists, req.ReturnBestEffortPlan), nil
		}
		if goalsValid {
			if end, reached := closeGoal(graph, goal, record.ValidChildren); reached {
				run.endNode = end
				return run.complete(SubOptimalSolution, true), nil
			}
		}
		if now := s.clock.Now(); now.Sub(lastPublish) >= s.params.StatusPublishPeriod {
			lastPublish = now
			run.publish(run.snapshot(SolutionDoesNotReachGoal, true))
		}
	}
}

// closeGoal looks for a child on the goal of its side. On contact the other foot's goal is
// attached with a zero-cost edge and becomes the end of the plan.
func closeGoal(graph *graphsearch.Graph[FootstepNode], goal Goal, children []FootstepNode) (FootstepNode, bool) {
	for _, child := range children {
		if !goal.Contains(child) {
			continue
		}
		other := goal[child.Side.Opposite()]
		if graph.CheckAndSetEdge(child, other, 0) {
			return other, true
		}
		return child, true
	}
	return FootstepNode{}, false
}

// planRun holds the bookkeeping of one request.
type planRun struct {
	session   *Session
	observers []StatusObserver
	start     time.Time
	stats     *statisticsCollector
	status    *Status
	endNode   FootstepNode
}

// snapshot builds an immutable status. Footsteps are included only when withSteps is set.
func (r *planRun) snapshot(result Result, withSteps bool) *Status {
	s := r.session
	out := *r.status
	out.Result = result
	out.BodyPathWaypoints = append([]spatialmath.Pose(nil), r.status.BodyPathWaypoints...)
	out.Elapsed = s.clock.Since(r.start)
	out.Statistics = r.stats.snapshot(s.planner.Expansions(), s.planner.Graph().Size())
	if withSteps && s.planner.Graph().Contains(r.endNode) {
		path := s.planner.Graph().PathFromStart(r.endNode)
		out.Footsteps = lo.Map(path[1:], func(node FootstepNode, _ int) Footstep {
			snap := s.snapper.Snap(node)
			return Footstep{Side: node.Side, Node: node, Transform: snap.Transform, Foothold: snap.Foothold}
		})
	}
	return &out
}

func (r *planRun) publish(status *Status) {
	for _, observer := range r.observers {
		observer(status)
	}
}

// complete publishes and returns the final status.
func (r *planRun) complete(result Result, withSteps bool) *Status {
	status := r.snapshot(result, withSteps)
	r.session.logger.Infow("planning finished",
		"request_id", status.RequestID,
		"plan_id", status.PlanID,
		"result", status.Result,
		"footsteps", len(status.Footsteps),
		"iterations", status.Statistics.Iterations,
		"elapsed", status.Elapsed,
	)
	r.publish(status)
	return status
}
