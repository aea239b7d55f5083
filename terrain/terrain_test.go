package terrain

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/footsteps/spatialmath"
)

func TestHorizontalRegion(t *testing.T) {
	region := NewBoxTopRegion(3, r2.Point{X: 1, Y: 0}, 2, 1, 0.4)
	test.That(t, region.ID(), test.ShouldEqual, 3)
	test.That(t, region.Incline(), test.ShouldAlmostEqual, 0)
	test.That(t, region.PlaneZ(5, 5), test.ShouldAlmostEqual, 0.4)
	test.That(t, region.ContainsXY(r2.Point{X: 1.9, Y: 0.4}), test.ShouldBeTrue)
	test.That(t, region.ContainsXY(r2.Point{X: 2.1, Y: 0}), test.ShouldBeFalse)
	test.That(t, region.DistanceXY(r2.Point{X: 2.5, Y: 0}), test.ShouldAlmostEqual, 0.5)
	test.That(t, region.MaxHeight(), test.ShouldAlmostEqual, 0.4)
}

func TestInclinedRegion(t *testing.T) {
	pitch := 0.3
	pose := spatialmath.NewPose(r3.Vector{X: 0, Y: 0, Z: 1}, &spatialmath.EulerAngles{Pitch: pitch})
	region := NewPlanarRegion(1, pose, spatialmath.NewRectangle(r2.Point{}, 0, 2, 2))
	test.That(t, region.Incline(), test.ShouldAlmostEqual, pitch)
	// positive pitch tilts +x downward
	test.That(t, region.PlaneZ(1, 0), test.ShouldAlmostEqual, 1-math.Tan(pitch))
	test.That(t, region.PlaneZ(0, 3), test.ShouldAlmostEqual, 1)
	// the projection shrinks along x
	lo, hi := region.WorldPolygons()[0].BoundingBox()
	test.That(t, hi.X-lo.X, test.ShouldAlmostEqual, 2*math.Cos(pitch))

	vertical := NewPlanarRegion(2, spatialmath.NewPose(r3.Vector{}, &spatialmath.EulerAngles{Roll: math.Pi / 2}),
		spatialmath.NewRectangle(r2.Point{}, 0, 1, 1))
	test.That(t, vertical.IsVertical(), test.ShouldBeTrue)
	test.That(t, math.IsNaN(vertical.PlaneZ(0, 0)), test.ShouldBeTrue)
}

func TestHighestRegionAt(t *testing.T) {
	ground := NewBoxTopRegion(0, r2.Point{}, 4, 4, 0)
	step := NewBoxTopRegion(1, r2.Point{X: 1}, 1, 1, 0.2)
	steep := NewPlanarRegion(2, spatialmath.NewPose(r3.Vector{X: 1, Z: 0.5}, &spatialmath.EulerAngles{Roll: 1.2}),
		spatialmath.NewRectangle(r2.Point{}, 0, 1, 1))
	set := NewPlanarRegionSet(ground, step, steep)

	region, z, ok := set.HighestRegionAt(r2.Point{X: 1}, math.Pi/4)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, region.ID(), test.ShouldEqual, 1)
	test.That(t, z, test.ShouldAlmostEqual, 0.2)

	region, _, ok = set.HighestRegionAt(r2.Point{X: -1}, math.Pi/4)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, region.ID(), test.ShouldEqual, 0)

	_, _, ok = set.HighestRegionAt(r2.Point{X: 10}, math.Pi/4)
	test.That(t, ok, test.ShouldBeFalse)

	z, ok = set.HeightAt(r2.Point{X: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, z, test.ShouldBeGreaterThan, 0.2)
}

func TestVersion(t *testing.T) {
	set := NewPlanarRegionSet()
	test.That(t, set.Version(), test.ShouldEqual, uint64(0))
	test.That(t, set.IsEmpty(), test.ShouldBeTrue)
	set.AddPlanarRegion(NewBoxTopRegion(0, r2.Point{}, 1, 1, 0))
	test.That(t, set.Version(), test.ShouldEqual, uint64(1))
	test.That(t, set.Len(), test.ShouldEqual, 1)
	set.Clear()
	test.That(t, set.Version(), test.ShouldEqual, uint64(2))
	test.That(t, set.Len(), test.ShouldEqual, 0)
}

func TestConfig(t *testing.T) {
	doc := `
regions:
  - id: 0
    polygons:
      - [{x: -1, y: -1}, {x: 1, y: -1}, {x: 1, y: 1}, {x: -1, y: 1}]
  - id: 1
    pose: {x: 2, y: 0, z: 0.3}
    polygons:
      - [{x: -0.5, y: -0.5}, {x: 0.5, y: -0.5}, {x: 0.5, y: 0.5}]
`
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	test.That(t, os.WriteFile(path, []byte(doc), 0o600), test.ShouldBeNil)

	set, err := LoadFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set.Len(), test.ShouldEqual, 2)
	region, z, ok := set.HighestRegionAt(r2.Point{X: 2.2, Y: -0.2}, 0.1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, region.ID(), test.ShouldEqual, 1)
	test.That(t, z, test.ShouldAlmostEqual, 0.3)

	again, err := NewConfig(set).PlanarRegionSet()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.Len(), test.ShouldEqual, 2)
	test.That(t, again.Regions()[1].WorldPolygons()[0].Area(), test.ShouldAlmostEqual, 0.5)

	bad := &Config{Regions: []RegionConfig{
		{ID: 4, Polygons: [][]PointConfig{{{X: 0}, {X: 1}}}},
		{ID: 4},
	}}
	err = bad.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate id 4")
	test.That(t, err.Error(), test.ShouldContainSubstring, "no polygons")
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least 3 vertices")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
}
