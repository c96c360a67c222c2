package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/dpup/trailhead/server/internal/dataset"
)

// RangeGeoJSON builds a FeatureCollection with the trail slice as a
// LineString followed by one Point per waypoint
func RangeGeoJSON(points []dataset.TrailPoint, waypoints []dataset.Waypoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(points) >= 2 {
		line := make(orb.LineString, len(points))
		elevations := make([]float64, len(points))
		for i, p := range points {
			line[i] = orb.Point{p.Lng, p.Lat}
			elevations[i] = p.Elevation
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "trail"
		f.Properties["startMile"] = points[0].Mile
		f.Properties["endMile"] = points[len(points)-1].Mile
		f.Properties["elevations"] = elevations
		fc.Append(f)
	}

	for _, wp := range waypoints {
		f := geojson.NewFeature(orb.Point{wp.Lng, wp.Lat})
		f.ID = wp.ID
		f.Properties["kind"] = string(wp.Kind)
		f.Properties["name"] = wp.Name
		f.Properties["mile"] = wp.Mile
		f.Properties["soboMile"] = wp.SoboMile
		f.Properties["elevation"] = wp.Elevation
		fc.Append(f)
	}

	return fc
}
