package terrain

import (
	"math"
	"sync"

	"github.com/golang/geo/r2"
)

// PlanarRegionSet is an ordered collection of regions. Every mutation bumps Version, which lets
// consumers notice the terrain changing underneath them.
type PlanarRegionSet struct {
	mu      sync.RWMutex
	regions []*PlanarRegion
	version uint64
}

// NewPlanarRegionSet returns a set holding the given regions at version zero.
func NewPlanarRegionSet(regions ...*PlanarRegion) *PlanarRegionSet {
	return &PlanarRegionSet{regions: append([]*PlanarRegion(nil), regions...)}
}

// AddPlanarRegion appends a region and bumps the version.
func (s *PlanarRegionSet) AddPlanarRegion(region *PlanarRegion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = append(s.regions, region)
	s.version++
}

// Clear removes every region and bumps the version.
func (s *PlanarRegionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions = nil
	s.version++
}

// Version returns the mutation counter.
func (s *PlanarRegionSet) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Regions returns a snapshot of the regions in insertion order.
func (s *PlanarRegionSet) Regions() []*PlanarRegion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*PlanarRegion(nil), s.regions...)
}

// Len returns the number of regions.
func (s *PlanarRegionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regions)
}

// IsEmpty reports whether the set has no regions.
func (s *PlanarRegionSet) IsEmpty() bool {
	return s.Len() == 0
}

// HighestRegionAt returns the highest region whose projection contains pt and whose incline does
// not exceed maxIncline, together with its height at pt. Earlier regions win exact ties.
func (s *PlanarRegionSet) HighestRegionAt(pt r2.Point, maxIncline float64) (*PlanarRegion, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HighestRegionIn(s.regions, pt, maxIncline)
}

// HighestRegionIn is HighestRegionAt over a snapshot of regions.
func HighestRegionIn(regions []*PlanarRegion, pt r2.Point, maxIncline float64) (*PlanarRegion, float64, bool) {
	var best *PlanarRegion
	bestZ := math.Inf(-1)
	for _, region := range regions {
		if region.IsVertical() || region.Incline() > maxIncline || !region.ContainsXY(pt) {
			continue
		}
		if z := region.PlaneZ(pt.X, pt.Y); z > bestZ {
			best, bestZ = region, z
		}
	}
	return best, bestZ, best != nil
}

// HeightAt returns the highest terrain height at pt over all non-vertical regions.
func (s *PlanarRegionSet) HeightAt(pt r2.Point) (float64, bool) {
	_, z, ok := s.HighestRegionAt(pt, math.Pi/2)
	return z, ok
}
