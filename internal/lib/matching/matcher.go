package matching

import (
	"math"
	"sort"

	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/geo"
)

// waypointMatcher implements the WaypointMatcher interface
type waypointMatcher struct {
	waypoints []dataset.Waypoint
}

// NewWaypointMatcher creates a matcher over a mile-ascending waypoint
// collection, normally TrailDataset.Waypoints.
func NewWaypointMatcher(waypoints []dataset.Waypoint) WaypointMatcher {
	return &waypointMatcher{waypoints: waypoints}
}

// NearestByCoordinate scans every waypoint; the collection is small enough
// that no spatial index is needed.
func (m *waypointMatcher) NearestByCoordinate(lat, lng float64) (Match, bool) {
	if len(m.waypoints) == 0 {
		return Match{}, false
	}

	best := -1
	bestDist := math.Inf(1)
	for i, wp := range m.waypoints {
		d := geo.Haversine(lat, lng, wp.Lat, wp.Lng)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Match{}, false
	}
	return Match{Waypoint: m.waypoints[best], DistanceMiles: bestDist}, true
}

// NearestByMile minimizes |waypoint.Mile - mile|
func (m *waypointMatcher) NearestByMile(mile float64) (dataset.Waypoint, bool) {
	if len(m.waypoints) == 0 || math.IsNaN(mile) {
		return dataset.Waypoint{}, false
	}

	best := 0
	bestDiff := math.Abs(m.waypoints[0].Mile - mile)
	for i := 1; i < len(m.waypoints); i++ {
		if diff := math.Abs(m.waypoints[i].Mile - mile); diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	return m.waypoints[best], true
}

// NearestAhead returns the smallest-mile waypoint with Mile > mile
func (m *waypointMatcher) NearestAhead(mile float64) (dataset.Waypoint, bool) {
	if math.IsNaN(mile) {
		return dataset.Waypoint{}, false
	}
	i := sort.Search(len(m.waypoints), func(i int) bool { return m.waypoints[i].Mile > mile })
	if i == len(m.waypoints) {
		return dataset.Waypoint{}, false
	}
	return m.waypoints[i], true
}

// NearestBehind returns the largest-mile waypoint with Mile < mile. When
// several share that mile the first of them is returned.
func (m *waypointMatcher) NearestBehind(mile float64) (dataset.Waypoint, bool) {
	if math.IsNaN(mile) {
		return dataset.Waypoint{}, false
	}
	i := sort.Search(len(m.waypoints), func(i int) bool { return m.waypoints[i].Mile >= mile })
	if i == 0 {
		return dataset.Waypoint{}, false
	}

	target := m.waypoints[i-1].Mile
	first := sort.Search(i, func(j int) bool { return m.waypoints[j].Mile >= target })
	return m.waypoints[first], true
}
