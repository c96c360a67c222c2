package matching

import (
	"github.com/dpup/trailhead/server/internal/dataset"
)

// Match is a waypoint paired with its great-circle distance from the query
type Match struct {
	Waypoint      dataset.Waypoint `json:"waypoint"`
	DistanceMiles float64          `json:"distanceMiles"`
}

// WaypointMatcher finds waypoints near a coordinate or a trail mile.
//
// Ties are resolved in favor of the first waypoint in ascending-mile order.
type WaypointMatcher interface {
	// Closest waypoint to a coordinate by haversine distance
	NearestByCoordinate(lat, lng float64) (Match, bool)

	// Closest waypoint by absolute mile difference
	NearestByMile(mile float64) (dataset.Waypoint, bool)

	// First waypoint strictly past mile in the northbound direction
	NearestAhead(mile float64) (dataset.Waypoint, bool)

	// Last waypoint strictly before mile in the northbound direction
	NearestBehind(mile float64) (dataset.Waypoint, bool)
}

// NewWaypointMatcher is implemented in matcher.go
