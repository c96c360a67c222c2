package forecast

import (
	"fmt"

	"github.com/dpup/trailhead/server/internal/lib/trail"
)

// LocationForMile builds a forecast location from the trail profile at mile.
// An empty name defaults to "Mile N".
func LocationForMile(store *trail.Store, mile float64, name string) WeatherLocation {
	pos := store.CoordinatesAt(mile)
	if name == "" {
		name = fmt.Sprintf("Mile %.1f", mile)
	}
	m := mile
	return WeatherLocation{
		Lat:       pos.Latitude,
		Lng:       pos.Longitude,
		Elevation: store.ElevationAt(mile),
		Name:      name,
		Mile:      &m,
	}
}
