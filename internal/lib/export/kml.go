// Package export renders trail slices and itineraries as KML and GeoJSON.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/twpayne/go-kml/v2"

	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/itinerary"
	"github.com/dpup/trailhead/server/internal/lib/trail"
	"github.com/dpup/trailhead/server/internal/lib/units"
)

// PlanKML writes an itinerary as a KML document with one folder per day.
// Each folder holds the day's track and its waypoints.
func PlanKML(w io.Writer, title string, plans []itinerary.DayPlan, store *trail.Store) error {
	folders := make([]kml.Element, 0, len(plans)+1)
	folders = append(folders, kml.Name(title))

	for _, day := range plans {
		lo, hi := math.Min(day.StartMile, day.EndMile), math.Max(day.StartMile, day.EndMile)
		children := []kml.Element{
			kml.Name(fmt.Sprintf("Day %d: mile %.1f to %.1f", day.Day, day.StartMile, day.EndMile)),
			kml.Description(fmt.Sprintf("%.1f miles", day.Miles())),
		}
		if track := trackPlacemark(fmt.Sprintf("Day %d track", day.Day), dayTrack(store, lo, hi)); track != nil {
			children = append(children, track)
		}
		for _, group := range [][]dataset.Waypoint{day.Shelters, day.Resupply, day.Features} {
			for _, wp := range group {
				children = append(children, waypointPlacemark(wp))
			}
		}
		folders = append(folders, kml.Folder(children...))
	}

	return kml.KML(kml.Document(folders...)).WriteIndent(w, "", "  ")
}

// RangeKML writes a trail slice and its waypoints as a KML document
func RangeKML(w io.Writer, title string, points []dataset.TrailPoint, waypoints []dataset.Waypoint) error {
	children := []kml.Element{kml.Name(title)}
	if track := trackPlacemark(title, points); track != nil {
		children = append(children, track)
	}
	for _, wp := range waypoints {
		children = append(children, waypointPlacemark(wp))
	}
	return kml.KML(kml.Document(children...)).WriteIndent(w, "", "  ")
}

// dayTrack is the stored points within a day plus interpolated end points
func dayTrack(store *trail.Store, lo, hi float64) []dataset.TrailPoint {
	interp := func(mile float64) dataset.TrailPoint {
		pos := store.CoordinatesAt(mile)
		return dataset.TrailPoint{Mile: mile, Elevation: store.ElevationAt(mile), Lat: pos.Latitude, Lng: pos.Longitude}
	}

	track := []dataset.TrailPoint{interp(lo)}
	for _, p := range store.RangeSlice(lo, hi) {
		if p.Mile > lo && p.Mile < hi {
			track = append(track, p)
		}
	}
	if hi > lo {
		track = append(track, interp(hi))
	}
	return track
}

func trackPlacemark(name string, points []dataset.TrailPoint) kml.Element {
	if len(points) < 2 {
		return nil
	}
	coords := make([]kml.Coordinate, len(points))
	for i, p := range points {
		coords[i] = kml.Coordinate{Lon: p.Lng, Lat: p.Lat, Alt: units.FeetToMeters(p.Elevation)}
	}
	return kml.Placemark(
		kml.Name(name),
		kml.LineString(kml.Coordinates(coords...)),
	)
}

func waypointPlacemark(wp dataset.Waypoint) kml.Element {
	return kml.Placemark(
		kml.Name(wp.Name),
		kml.Description(describe(wp)),
		kml.Point(kml.Coordinates(kml.Coordinate{Lon: wp.Lng, Lat: wp.Lat, Alt: units.FeetToMeters(wp.Elevation)})),
	)
}

func describe(wp dataset.Waypoint) string {
	parts := []string{fmt.Sprintf("%s at mile %.1f (SOBO %.1f), %.0f ft", wp.Kind, wp.Mile, wp.SoboMile, wp.Elevation)}
	switch wp.Kind {
	case dataset.KindShelter:
		if s := wp.Shelter; s != nil {
			parts = append(parts, fmt.Sprintf("capacity %d", s.Capacity))
			if s.HasWater {
				parts = append(parts, "water")
			}
			if s.Warning != "" {
				parts = append(parts, "warning: "+s.Warning)
			}
		}
	case dataset.KindResupply:
		if r := wp.Resupply; r != nil {
			parts = append(parts, fmt.Sprintf("%s resupply, %.1f mi %s", r.Quality, r.DistanceFromTrail, r.Direction))
		}
	}
	if wp.Notes != "" {
		parts = append(parts, wp.Notes)
	}
	return strings.Join(parts, "; ")
}
