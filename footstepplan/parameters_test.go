package footstepplan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestDefaultParametersAreValid(t *testing.T) {
	test.That(t, NewDefaultParameters().Validate(), test.ShouldBeNil)
}

func TestParametersFromExtra(t *testing.T) {
	params, err := NewParametersFromExtra(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params, test.ShouldResemble, NewDefaultParameters())

	params, err = NewParametersFromExtra(map[string]interface{}{
		"max_step_length":               "0.45",
		"avoid_cliffs":                  false,
		"timeout":                       "250ms",
		"max_iterations":                1000,
		"check_for_body_box_collisions": "false",
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params.MaxStepLength, test.ShouldEqual, 0.45)
	test.That(t, params.AvoidCliffs, test.ShouldBeFalse)
	test.That(t, params.CheckForBodyBoxCollisions, test.ShouldBeFalse)
	test.That(t, params.Timeout, test.ShouldEqual, 250*time.Millisecond)
	test.That(t, params.MaxIterations, test.ShouldEqual, 1000)
	test.That(t, params.FootLength, test.ShouldEqual, NewDefaultParameters().FootLength)

	_, err = NewParametersFromExtra(map[string]interface{}{"max_step_lenght": 0.4})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_step_lenght")
}

func TestParametersValidate(t *testing.T) {
	params := NewDefaultParameters()
	params.FootLength = 0
	params.MinStepWidth = 0.5
	params.MinFootholdPercent = 1.5
	params.StatusPublishPeriod = 0
	err := params.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	for _, name := range []string{"foot_length", "min_step_width", "min_foothold_percent", "status_publish_period"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, name)
	}

	_, err = NewParametersFromExtra(map[string]interface{}{"yaw_weight": -1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "yaw_weight")
}

func TestLoadParametersFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yaml")
	test.That(t, os.WriteFile(path, []byte(`
max_step_reach: 0.6
wiggle_while_planning: false
timeout: 2s
`), 0o600), test.ShouldBeNil)

	params, err := LoadParametersFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params.MaxStepReach, test.ShouldEqual, 0.6)
	test.That(t, params.WiggleWhilePlanning, test.ShouldBeFalse)
	test.That(t, params.Timeout, test.ShouldEqual, 2*time.Second)
	test.That(t, params.HeuristicsWeight, test.ShouldEqual, NewDefaultParameters().HeuristicsWeight)

	_, err = LoadParametersFile(filepath.Join(dir, "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)

	bad := filepath.Join(dir, "bad.yaml")
	test.That(t, os.WriteFile(bad, []byte("foot_width: -1\n"), 0o600), test.ShouldBeNil)
	_, err = LoadParametersFile(bad)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "foot_width")

	t.Run("json5", func(t *testing.T) {
		path := filepath.Join(dir, "params.json5")
		test.That(t, os.WriteFile(path, []byte(`{
  // walk straight ahead only
  min_step_yaw: 0,
  max_step_yaw: 0,
  max_iterations: 50,
  timeout: "2s"
}`), 0o600), test.ShouldBeNil)
		params, err := LoadParametersFile(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, params.MinStepYaw, test.ShouldEqual, 0.)
		test.That(t, params.MaxStepYaw, test.ShouldEqual, 0.)
		test.That(t, params.MaxIterations, test.ShouldEqual, 50)
		test.That(t, params.Timeout, test.ShouldEqual, 2*time.Second)
		test.That(t, params.MaxStepReach, test.ShouldEqual, NewDefaultParameters().MaxStepReach)

		unknown := filepath.Join(dir, "unknown.json")
		test.That(t, os.WriteFile(unknown, []byte(`{"max_stride": 1}`), 0o600), test.ShouldBeNil)
		_, err = LoadParametersFile(unknown)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "unknown.json")
	})
}
