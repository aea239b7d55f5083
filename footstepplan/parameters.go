package footstepplan

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// default values for planner parameters. Distances are in meters, angles in radians.
const (
	// nominal distance between the feet when standing.
	defaultIdealFootstepWidth = 0.22

	// step envelope, expressed for a left foot stepping relative to a right stance foot.
	defaultMinStepLength = -0.15
	defaultMaxStepLength = 0.5
	defaultMinStepWidth  = 0.15
	defaultMaxStepWidth  = 0.4
	defaultMinStepYaw    = -math.Pi / 18
	defaultMaxStepYaw    = math.Pi / 6
	defaultMaxStepReach  = 0.52
	defaultMaxStepZ      = 0.25

	// foot geometry and foothold requirements.
	defaultFootLength         = 0.22
	defaultFootWidth          = 0.11
	defaultMinFootholdPercent = 0.9
	defaultMaxSurfaceIncline  = math.Pi / 4
	defaultMaxXYWiggle        = 0.03

	// body box checked against terrain between the stance feet.
	defaultBodyBoxDepth  = 0.3
	defaultBodyBoxWidth  = 0.6
	defaultBodyBoxBaseZ  = 0.25
	defaultBodyBoxHeight = 1.5

	// terrain overlapping a footprint higher than this above the foothold is a collision.
	defaultFootCollisionHeight = 0.05

	// cliff avoidance.
	defaultCliffHeightToAvoid    = 0.15
	defaultMinClearanceFromCliff = 0.05

	// edge cost weights.
	defaultDistanceWeight     = 1.0
	defaultYawWeight          = 0.1
	defaultStepUpWeight       = 0.5
	defaultStepDownWeight     = 0.3
	defaultPitchWeight        = 0.5
	defaultRollWeight         = 0.5
	defaultFootholdAreaWeight = 0.5
	defaultCostPerStep        = 0.15

	// heuristic inflation; anything above one trades optimality for speed.
	defaultHeuristicsWeight = 1.5

	// body path planning.
	defaultObstacleHeight        = 0.3
	defaultBodyPathClearance     = 0.4
	defaultGoalBlendDistance     = 1.0
	defaultBodyPathLateralWeight = 1.0
	defaultBestEffortHorizon     = 3.0
	defaultMaxBodyPathIterations = 5000

	// search budget and reporting.
	defaultTimeout             = 5 * time.Second
	defaultMaxIterations       = 50000
	defaultStatusPublishPeriod = time.Second
)

// Parameters configures every component of the footstep planner.
type Parameters struct {
	IdealFootstepWidth float64 `json:"ideal_footstep_width" yaml:"ideal_footstep_width" mapstructure:"ideal_footstep_width"`

	MinStepLength float64 `json:"min_step_length" yaml:"min_step_length" mapstructure:"min_step_length"`
	MaxStepLength float64 `json:"max_step_length" yaml:"max_step_length" mapstructure:"max_step_length"`
	MinStepWidth  float64 `json:"min_step_width"  yaml:"min_step_width"  mapstructure:"min_step_width"`
	MaxStepWidth  float64 `json:"max_step_width"  yaml:"max_step_width"  mapstructure:"max_step_width"`
	// Yaw limits are for a left step; they are mirrored for the right foot.
	MinStepYaw   float64 `json:"min_step_yaw"   yaml:"min_step_yaw"   mapstructure:"min_step_yaw"`
	MaxStepYaw   float64 `json:"max_step_yaw"   yaml:"max_step_yaw"   mapstructure:"max_step_yaw"`
	MaxStepReach float64 `json:"max_step_reach" yaml:"max_step_reach" mapstructure:"max_step_reach"`
	MaxStepZ     float64 `json:"max_step_z"     yaml:"max_step_z"     mapstructure:"max_step_z"`

	FootLength          float64 `json:"foot_length"           yaml:"foot_length"           mapstructure:"foot_length"`
	FootWidth           float64 `json:"foot_width"            yaml:"foot_width"            mapstructure:"foot_width"`
	MinFootholdPercent  float64 `json:"min_foothold_percent"  yaml:"min_foothold_percent"  mapstructure:"min_foothold_percent"`
	MaxSurfaceIncline   float64 `json:"max_surface_incline"   yaml:"max_surface_incline"   mapstructure:"max_surface_incline"`
	WiggleWhilePlanning bool    `json:"wiggle_while_planning" yaml:"wiggle_while_planning" mapstructure:"wiggle_while_planning"`
	MaxXYWiggle         float64 `json:"max_xy_wiggle"         yaml:"max_xy_wiggle"         mapstructure:"max_xy_wiggle"`

	CheckForBodyBoxCollisions bool    `json:"check_for_body_box_collisions" yaml:"check_for_body_box_collisions" mapstructure:"check_for_body_box_collisions"`
	BodyBoxDepth              float64 `json:"body_box_depth"                yaml:"body_box_depth"                mapstructure:"body_box_depth"`
	BodyBoxWidth              float64 `json:"body_box_width"                yaml:"body_box_width"                mapstructure:"body_box_width"`
	BodyBoxBaseZ              float64 `json:"body_box_base_z"               yaml:"body_box_base_z"               mapstructure:"body_box_base_z"`
	BodyBoxHeight             float64 `json:"body_box_height"               yaml:"body_box_height"               mapstructure:"body_box_height"`
	FootCollisionHeight       float64 `json:"foot_collision_height"         yaml:"foot_collision_height"         mapstructure:"foot_collision_height"`

	AvoidCliffs           bool    `json:"avoid_cliffs"             yaml:"avoid_cliffs"             mapstructure:"avoid_cliffs"`
	CliffHeightToAvoid    float64 `json:"cliff_height_to_avoid"    yaml:"cliff_height_to_avoid"    mapstructure:"cliff_height_to_avoid"`
	MinClearanceFromCliff float64 `json:"min_clearance_from_cliff" yaml:"min_clearance_from_cliff" mapstructure:"min_clearance_from_cliff"`

	DistanceWeight     float64 `json:"distance_weight"      yaml:"distance_weight"      mapstructure:"distance_weight"`
	YawWeight          float64 `json:"yaw_weight"           yaml:"yaw_weight"           mapstructure:"yaw_weight"`
	StepUpWeight       float64 `json:"step_up_weight"       yaml:"step_up_weight"       mapstructure:"step_up_weight"`
	StepDownWeight     float64 `json:"step_down_weight"     yaml:"step_down_weight"     mapstructure:"step_down_weight"`
	PitchWeight        float64 `json:"pitch_weight"         yaml:"pitch_weight"         mapstructure:"pitch_weight"`
	RollWeight         float64 `json:"roll_weight"          yaml:"roll_weight"          mapstructure:"roll_weight"`
	FootholdAreaWeight float64 `json:"foothold_area_weight" yaml:"foothold_area_weight" mapstructure:"foothold_area_weight"`
	CostPerStep        float64 `json:"cost_per_step"        yaml:"cost_per_step"        mapstructure:"cost_per_step"`
	HeuristicsWeight   float64 `json:"heuristics_weight"    yaml:"heuristics_weight"    mapstructure:"heuristics_weight"`

	ObstacleHeight        float64 `json:"obstacle_height"          yaml:"obstacle_height"          mapstructure:"obstacle_height"`
	BodyPathClearance     float64 `json:"body_path_clearance"      yaml:"body_path_clearance"      mapstructure:"body_path_clearance"`
	GoalBlendDistance     float64 `json:"goal_blend_distance"      yaml:"goal_blend_distance"      mapstructure:"goal_blend_distance"`
	BodyPathLateralWeight float64 `json:"body_path_lateral_weight" yaml:"body_path_lateral_weight" mapstructure:"body_path_lateral_weight"`
	BestEffortHorizon     float64 `json:"best_effort_horizon"      yaml:"best_effort_horizon"      mapstructure:"best_effort_horizon"`
	MaxBodyPathIterations int     `json:"max_body_path_iterations" yaml:"max_body_path_iterations" mapstructure:"max_body_path_iterations"`

	// Timeout is the default for request documents which do not set their own.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Stop after this many iterations, reported like a timeout. Zero disables the limit.
	MaxIterations       int           `json:"max_iterations"        yaml:"max_iterations"        mapstructure:"max_iterations"`
	StatusPublishPeriod time.Duration `json:"status_publish_period" yaml:"status_publish_period" mapstructure:"status_publish_period"`
}

// NewDefaultParameters returns the default parameter set.
func NewDefaultParameters() *Parameters {
	return &Parameters{
		IdealFootstepWidth: defaultIdealFootstepWidth,

		MinStepLength: defaultMinStepLength,
		MaxStepLength: defaultMaxStepLength,
		MinStepWidth:  defaultMinStepWidth,
		MaxStepWidth:  defaultMaxStepWidth,
		MinStepYaw:    defaultMinStepYaw,
		MaxStepYaw:    defaultMaxStepYaw,
		MaxStepReach:  defaultMaxStepReach,
		MaxStepZ:      defaultMaxStepZ,

		FootLength:          defaultFootLength,
		FootWidth:           defaultFootWidth,
		MinFootholdPercent:  defaultMinFootholdPercent,
		MaxSurfaceIncline:   defaultMaxSurfaceIncline,
		WiggleWhilePlanning: true,
		MaxXYWiggle:         defaultMaxXYWiggle,

		CheckForBodyBoxCollisions: true,
		BodyBoxDepth:              defaultBodyBoxDepth,
		BodyBoxWidth:              defaultBodyBoxWidth,
		BodyBoxBaseZ:              defaultBodyBoxBaseZ,
		BodyBoxHeight:             defaultBodyBoxHeight,
		FootCollisionHeight:       defaultFootCollisionHeight,

		AvoidCliffs:           true,
		CliffHeightToAvoid:    defaultCliffHeightToAvoid,
		MinClearanceFromCliff: defaultMinClearanceFromCliff,

		DistanceWeight:     defaultDistanceWeight,
		YawWeight:          defaultYawWeight,
		StepUpWeight:       defaultStepUpWeight,
		StepDownWeight:     defaultStepDownWeight,
		PitchWeight:        defaultPitchWeight,
		RollWeight:         defaultRollWeight,
		FootholdAreaWeight: defaultFootholdAreaWeight,
		CostPerStep:        defaultCostPerStep,
		HeuristicsWeight:   defaultHeuristicsWeight,

		ObstacleHeight:        defaultObstacleHeight,
		BodyPathClearance:     defaultBodyPathClearance,
		GoalBlendDistance:     defaultGoalBlendDistance,
		BodyPathLateralWeight: defaultBodyPathLateralWeight,
		BestEffortHorizon:     defaultBestEffortHorizon,
		MaxBodyPathIterations: defaultMaxBodyPathIterations,

		Timeout:             defaultTimeout,
		MaxIterations:       defaultMaxIterations,
		StatusPublishPeriod: defaultStatusPublishPeriod,
	}
}

// NewParametersFromExtra overlays the keys of an untyped map, such as the extra field of a
// request, onto the defaults.
func NewParametersFromExtra(extra map[string]interface{}) (*Parameters, error) {
	params := NewDefaultParameters()
	if len(extra) == 0 {
		return params, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           params,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build parameter decoder")
	}
	if err := decoder.Decode(extra); err != nil {
		return nil, errors.Wrap(err, "invalid planner parameters")
	}
	return params, params.Validate()
}

// LoadParametersFile reads a parameter file. Files ending in .json or .json5 are read as JSON5
// (comments and unquoted keys allowed, durations as strings like "2s"); anything else is YAML.
// Keys left out keep their defaults.
func LoadParametersFile(path string) (*Parameters, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read parameter file %q", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".json5":
		var extra map[string]interface{}
		if err := json5.Unmarshal(data, &extra); err != nil {
			return nil, errors.Wrapf(err, "failed to parse parameter file %q", path)
		}
		params, err := NewParametersFromExtra(extra)
		return params, errors.Wrapf(err, "parameter file %q", path)
	}
	params := NewDefaultParameters()
	if err := yaml.Unmarshal(data, params); err != nil {
		return nil, errors.Wrapf(err, "failed to parse parameter file %q", path)
	}
	return params, params.Validate()
}

// Validate reports every inconsistent parameter at once.
func (p *Parameters) Validate() error {
	var err error
	for _, v := range []namedValue{
		{"ideal_footstep_width", p.IdealFootstepWidth},
		{"max_step_reach", p.MaxStepReach},
		{"max_step_z", p.MaxStepZ},
		{"foot_length", p.FootLength},
		{"foot_width", p.FootWidth},
		{"goal_blend_distance", p.GoalBlendDistance},
	} {
		if !(v.value > 0) {
			err = multierr.Append(err, errors.Errorf("%s must be positive, got %v", v.name, v.value))
		}
	}
	if p.MinStepLength > p.MaxStepLength {
		err = multierr.Append(err, errors.Errorf("min_step_length %v exceeds max_step_length %v", p.MinStepLength, p.MaxStepLength))
	}
	if p.MinStepWidth > p.MaxStepWidth {
		err = multierr.Append(err, errors.Errorf("min_step_width %v exceeds max_step_width %v", p.MinStepWidth, p.MaxStepWidth))
	}
	if p.MinStepYaw > p.MaxStepYaw {
		err = multierr.Append(err, errors.Errorf("min_step_yaw %v exceeds max_step_yaw %v", p.MinStepYaw, p.MaxStepYaw))
	}
	if p.MinFootholdPercent < 0 || p.MinFootholdPercent > 1 {
		err = multierr.Append(err, errors.Errorf("min_foothold_percent must be within [0, 1], got %v", p.MinFootholdPercent))
	}
	if p.MaxSurfaceIncline < 0 || p.MaxSurfaceIncline > math.Pi/2 {
		err = multierr.Append(err, errors.Errorf("max_surface_incline must be within [0, pi/2], got %v", p.MaxSurfaceIncline))
	}
	if p.HeuristicsWeight < 0 {
		err = multierr.Append(err, errors.Errorf("heuristics_weight cannot be negative, got %v", p.HeuristicsWeight))
	}
	for _, v := range []namedValue{
		{"distance_weight", p.DistanceWeight},
		{"yaw_weight", p.YawWeight},
		{"step_up_weight", p.StepUpWeight},
		{"step_down_weight", p.StepDownWeight},
		{"pitch_weight", p.PitchWeight},
		{"roll_weight", p.RollWeight},
		{"foothold_area_weight", p.FootholdAreaWeight},
		{"cost_per_step", p.CostPerStep},
	} {
		if v.value < 0 {
			err = multierr.Append(err, errors.Errorf("%s cannot be negative, got %v", v.name, v.value))
		}
	}
	if p.MaxXYWiggle < 0 || p.BodyPathClearance < 0 || p.MinClearanceFromCliff < 0 {
		err = multierr.Append(err, errors.New("wiggle and clearance distances cannot be negative"))
	}
	if p.MaxIterations < 0 {
		err = multierr.Append(err, errors.Errorf("max_iterations cannot be negative, got %d", p.MaxIterations))
	}
	if p.StatusPublishPeriod <= 0 {
		err = multierr.Append(err, errors.Errorf("status_publish_period must be positive, got %v", p.StatusPublishPeriod))
	}
	return err
}

type namedValue struct {
	name  string
	value float64
}
