package footstepplan

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"go.viam.com/footsteps/spatialmath"
	"go.viam.com/footsteps/terrain"
)

// ParsePlannerType parses the String form of a PlannerType.
func ParsePlannerType(name string) (PlannerType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "graph_only":
		return GraphOnly, nil
	case "with_body_path":
		return WithBodyPath, nil
	default:
		return GraphOnly, errors.Errorf("unknown planner type %q", name)
	}
}

// RequestConfig is the serialized form of a Request. Terrain is given either inline or as a file
// path, which is resolved relative to the request document.
type RequestConfig struct {
	RequestID            int                     `json:"request_id"               yaml:"request_id"`
	Start                *spatialmath.PoseConfig `json:"start"                    yaml:"start"`
	StartSide            string                  `json:"start_side"               yaml:"start_side"`
	Goal                 *spatialmath.PoseConfig `json:"goal"                     yaml:"goal"`
	Terrain              *terrain.Config         `json:"terrain,omitempty"        yaml:"terrain,omitempty"`
	TerrainFile          string                  `json:"terrain_file,omitempty"   yaml:"terrain_file,omitempty"`
	AssumeFlatGround     bool                    `json:"assume_flat_ground"       yaml:"assume_flat_ground"`
	PlannerType          string                  `json:"planner_type"             yaml:"planner_type"`
	Timeout              time.Duration           `json:"timeout"                  yaml:"timeout"`
	ReturnBestEffortPlan bool                    `json:"return_best_effort_plan"  yaml:"return_best_effort_plan"`
}

// RequestSchema is the JSON schema of request documents, for editors and validators.
func RequestSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&RequestConfig{})
}

// Validate returns every problem with the config combined into one error.
func (cfg *RequestConfig) Validate() error {
	var err error
	if cfg.Start == nil {
		err = multierr.Append(err, errors.New("start pose is required"))
	}
	if cfg.Goal == nil {
		err = multierr.Append(err, errors.New("goal pose is required"))
	}
	if _, sideErr := ParseRobotSide(cfg.StartSide); sideErr != nil {
		err = multierr.Append(err, sideErr)
	}
	if _, typeErr := ParsePlannerType(cfg.PlannerType); typeErr != nil {
		err = multierr.Append(err, typeErr)
	}
	if cfg.Terrain != nil && cfg.TerrainFile != "" {
		err = multierr.Append(err, errors.New("terrain and terrain_file are mutually exclusive"))
	}
	if cfg.Terrain == nil && cfg.TerrainFile == "" && !cfg.AssumeFlatGround {
		err = multierr.Append(err, errors.New("terrain is required unless assume_flat_ground is set"))
	}
	if cfg.Timeout < 0 {
		err = multierr.Append(err, errors.Errorf("timeout must not be negative, got %v", cfg.Timeout))
	}
	return err
}

// Request builds the request the config describes. Relative terrain files are resolved against
// dir.
func (cfg *RequestConfig) Request(dir string) (*Request, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, err := cfg.Start.ParseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "start")
	}
	goal, err := cfg.Goal.ParseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "goal")
	}
	// both were checked by Validate
	side, _ := ParseRobotSide(cfg.StartSide)
	plannerType, _ := ParsePlannerType(cfg.PlannerType)

	req := &Request{
		RequestID:            cfg.RequestID,
		StartPose:            start,
		StartSide:            side,
		GoalPose:             goal,
		AssumeFlatGround:     cfg.AssumeFlatGround,
		PlannerType:          plannerType,
		Timeout:              cfg.Timeout,
		ReturnBestEffortPlan: cfg.ReturnBestEffortPlan,
	}
	switch {
	case cfg.Terrain != nil:
		if req.Terrain, err = cfg.Terrain.PlanarRegionSet(); err != nil {
			return nil, errors.Wrap(err, "terrain")
		}
	case cfg.TerrainFile != "":
		path := cfg.TerrainFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		if req.Terrain, err = terrain.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// ParseRequestConfig decodes a YAML request document. Unset timeouts default to the
// parameters' timeout when defaultTimeout is positive.
func ParseRequestConfig(data []byte, defaultTimeout time.Duration) (*RequestConfig, error) {
	cfg := RequestConfig{Timeout: defaultTimeout}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse request config")
	}
	return &cfg, nil
}

// LoadRequestFile reads a request document from disk and builds its request.
func LoadRequestFile(path string, defaultTimeout time.Duration) (*Request, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read request file %q", path)
	}
	cfg, err := ParseRequestConfig(data, defaultTimeout)
	if err != nil {
		return nil, err
	}
	req, err := cfg.Request(filepath.Dir(path))
	return req, errors.Wrapf(err, "request file %q", path)
}
