package footstepplan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestParsePlannerType(t *testing.T) {
	for name, expected := range map[string]PlannerType{
		"":               GraphOnly,
		"graph_only":     GraphOnly,
		"WITH_BODY_PATH": WithBodyPath,
	} {
		plannerType, err := ParsePlannerType(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, plannerType, test.ShouldEqual, expected)
	}
	_, err := ParsePlannerType("rrt")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, WithBodyPath.String(), test.ShouldEqual, "with_body_path")
}

func TestRequestConfigInlineTerrain(t *testing.T) {
	cfg, err := ParseRequestConfig([]byte(`
request_id: 4
start: {x: 0, y: 0}
start_side: right
goal: {x: 1.5, y: 0.5, yaw: 0.5}
planner_type: with_body_path
return_best_effort_plan: true
terrain:
  regions:
    - id: 0
      polygons:
        - [{x: -1, y: -1}, {x: 3, y: -1}, {x: 3, y: 2}, {x: -1, y: 2}]
`), 5*time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Timeout, test.ShouldEqual, 5*time.Second)

	req, err := cfg.Request("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, req.RequestID, test.ShouldEqual, 4)
	test.That(t, req.StartSide, test.ShouldEqual, Right)
	test.That(t, req.PlannerType, test.ShouldEqual, WithBodyPath)
	test.That(t, req.ReturnBestEffortPlan, test.ShouldBeTrue)
	test.That(t, req.AssumeFlatGround, test.ShouldBeFalse)
	test.That(t, req.GoalPose.Point().X, test.ShouldAlmostEqual, 1.5)
	test.That(t, req.Terrain.Len(), test.ShouldEqual, 1)
}

func TestLoadRequestFile(t *testing.T) {
	dir := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(dir, "ground.yaml"), []byte(`
regions:
  - id: 2
    pose: {z: 0.1}
    polygons:
      - [{x: -2, y: -2}, {x: 2, y: -2}, {x: 2, y: 2}, {x: -2, y: 2}]
`), 0o600), test.ShouldBeNil)
	path := filepath.Join(dir, "request.yaml")
	test.That(t, os.WriteFile(path, []byte(`
start: {x: 0, y: 0}
start_side: left
goal: {x: 1, y: 0}
terrain_file: ground.yaml
timeout: 750ms
`), 0o600), test.ShouldBeNil)

	req, err := LoadRequestFile(path, time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, req.Timeout, test.ShouldEqual, 750*time.Millisecond)
	test.That(t, req.StartSide, test.ShouldEqual, Left)
	test.That(t, req.PlannerType, test.ShouldEqual, GraphOnly)
	height, ok := req.Terrain.HeightAt(r2.Point{X: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, height, test.ShouldAlmostEqual, 0.1)
}

func TestRequestConfigValidation(t *testing.T) {
	cfg, err := ParseRequestConfig([]byte(`
start_side: middle
planner_type: rrt
timeout: -1s
terrain_file: ground.yaml
terrain:
  regions: []
`), 0)
	test.That(t, err, test.ShouldBeNil)
	err = cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	for _, substring := range []string{"start pose", "goal pose", "middle", "rrt", "mutually exclusive", "timeout"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, substring)
	}
	_, err = cfg.Request("")
	test.That(t, err, test.ShouldNotBeNil)

	cfg, err = ParseRequestConfig([]byte("start: {}\ngoal: {x: 1}\nstart_side: left\n"), 0)
	test.That(t, err, test.ShouldBeNil)
	err = cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "assume_flat_ground")
}
