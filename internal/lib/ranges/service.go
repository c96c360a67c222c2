// Package ranges answers inclusive mile-range queries over the typed
// waypoint collections.
package ranges

import (
	"sort"

	"github.com/dpup/trailhead/server/internal/dataset"
)

// Service filters shelters, resupply points and features by mile.
//
// Callers pass start <= end; bounds are never reordered and an inverted range
// matches nothing.
type Service struct {
	ds *dataset.TrailDataset
}

// NewService creates a range query service over the dataset
func NewService(ds *dataset.TrailDataset) *Service {
	return &Service{ds: ds}
}

// SheltersInRange returns shelters with start <= mile <= end
func (s *Service) SheltersInRange(start, end float64) []dataset.Waypoint {
	return inRange(s.ds.Shelters, start, end)
}

// ResupplyInRange returns resupply points with start <= mile <= end
func (s *Service) ResupplyInRange(start, end float64) []dataset.Waypoint {
	return inRange(s.ds.Resupply, start, end)
}

// FeaturesInRange returns features with start <= mile <= end
func (s *Service) FeaturesInRange(start, end float64) []dataset.Waypoint {
	return inRange(s.ds.Features, start, end)
}

// WaypointsInRange returns every waypoint kind with start <= mile <= end
func (s *Service) WaypointsInRange(start, end float64) []dataset.Waypoint {
	return inRange(s.ds.Waypoints, start, end)
}

// inRange relies on waypoints being ascending by mile
func inRange(waypoints []dataset.Waypoint, start, end float64) []dataset.Waypoint {
	if !(start <= end) {
		return []dataset.Waypoint{}
	}

	i := sort.Search(len(waypoints), func(i int) bool { return waypoints[i].Mile >= start })
	j := sort.Search(len(waypoints), func(i int) bool { return waypoints[i].Mile > end })
	if i >= j {
		return []dataset.Waypoint{}
	}
	return append([]dataset.Waypoint(nil), waypoints[i:j]...)
}
