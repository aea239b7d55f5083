package terrain

import (
	"os"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"go.viam.com/footsteps/spatialmath"
)

// PointConfig is a serialized 2D vertex.
type PointConfig struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// RegionConfig is the serialized form of a PlanarRegion.
type RegionConfig struct {
	ID       int                     `json:"id"       yaml:"id"`
	Pose     *spatialmath.PoseConfig `json:"pose"     yaml:"pose"`
	Polygons [][]PointConfig         `json:"polygons" yaml:"polygons"`
}

// Config is the serialized form of a PlanarRegionSet.
type Config struct {
	Regions []RegionConfig `json:"regions" yaml:"regions"`
}

// Validate returns every problem with the config combined into one error.
func (cfg *Config) Validate() error {
	var err error
	seen := map[int]bool{}
	for i, region := range cfg.Regions {
		if seen[region.ID] {
			err = multierr.Append(err, errors.Errorf("regions[%d]: duplicate id %d", i, region.ID))
		}
		seen[region.ID] = true
		if len(region.Polygons) == 0 {
			err = multierr.Append(err, errors.Errorf("regions[%d]: no polygons", i))
		}
		for j, poly := range region.Polygons {
			if len(poly) < 3 {
				err = multierr.Append(err, errors.Errorf("regions[%d].polygons[%d]: need at least 3 vertices, got %d", i, j, len(poly)))
			}
		}
	}
	return err
}

// PlanarRegionSet builds the region set the config describes.
func (cfg *Config) PlanarRegionSet() (*PlanarRegionSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	set := NewPlanarRegionSet()
	for i, rc := range cfg.Regions {
		pose := spatialmath.NewZeroPose()
		if rc.Pose != nil {
			var err error
			if pose, err = rc.Pose.ParseConfig(); err != nil {
				return nil, errors.Wrapf(err, "regions[%d]", i)
			}
		}
		polygons := make([]spatialmath.ConvexPolygon, 0, len(rc.Polygons))
		for j, pc := range rc.Polygons {
			points := make([]r2.Point, 0, len(pc))
			for _, p := range pc {
				points = append(points, r2.Point{X: p.X, Y: p.Y})
			}
			poly := spatialmath.NewConvexPolygon(points...)
			if poly.IsEmpty() {
				return nil, errors.Errorf("regions[%d].polygons[%d] has no area", i, j)
			}
			polygons = append(polygons, poly)
		}
		set.regions = append(set.regions, NewPlanarRegion(rc.ID, pose, polygons...))
	}
	return set, nil
}

// NewConfig serializes a region set.
func NewConfig(set *PlanarRegionSet) *Config {
	cfg := &Config{}
	for _, region := range set.Regions() {
		rc := RegionConfig{ID: region.ID(), Pose: spatialmath.NewPoseConfig(region.Pose())}
		for _, poly := range region.Polygons() {
			var pc []PointConfig
			for _, v := range poly.Vertices() {
				pc = append(pc, PointConfig{X: v.X, Y: v.Y})
			}
			rc.Polygons = append(rc.Polygons, pc)
		}
		cfg.Regions = append(cfg.Regions, rc)
	}
	return cfg
}

// ParseConfig decodes a YAML (or JSON, which is a subset) terrain document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse terrain config")
	}
	return &cfg, nil
}

// LoadFile reads a terrain document from disk and builds its region set.
func LoadFile(path string) (*PlanarRegionSet, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read terrain file %q", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg.PlanarRegionSet()
}
