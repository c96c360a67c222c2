// Package datasettest builds small synthetic trail datasets for tests.
package datasettest

import (
	"fmt"

	"github.com/dpup/trailhead/server/internal/dataset"
)

// TrailLength of the standard fixture
const TrailLength = 2197.9

// LatAt and LngAt place fixture geometry on a straight line so waypoints and
// points agree without a real survey.
func LatAt(mile float64) float64 { return 34.6266 + mile*0.005 }
func LngAt(mile float64) float64 { return -84.1938 + mile*0.007 }

// Point builds a trail point on the fixture line
func Point(mile, elevation float64) dataset.TrailPoint {
	return dataset.TrailPoint{Mile: mile, Elevation: elevation, Lat: LatAt(mile), Lng: LngAt(mile)}
}

// Shelter builds a shelter waypoint on the fixture line
func Shelter(id string, mile float64) dataset.Waypoint {
	wp := waypoint(id, dataset.KindShelter, mile)
	wp.Shelter = &dataset.ShelterInfo{Capacity: 12, HasWater: true, HasPrivy: true}
	return wp
}

// Resupply builds a resupply waypoint on the fixture line
func Resupply(id string, mile float64, quality dataset.ResupplyQuality) dataset.Waypoint {
	wp := waypoint(id, dataset.KindResupply, mile)
	wp.Resupply = &dataset.ResupplyInfo{
		HasGrocery:        quality != dataset.QualityMinimal,
		HasPostOffice:     quality == dataset.QualityFull,
		Quality:           quality,
		DistanceFromTrail: 2.5,
		Direction:         "E",
	}
	return wp
}

// Feature builds a landmark waypoint on the fixture line
func Feature(id string, mile float64) dataset.Waypoint {
	return waypoint(id, dataset.KindFeature, mile)
}

func waypoint(id string, kind dataset.Kind, mile float64) dataset.Waypoint {
	return dataset.Waypoint{
		ID:        id,
		Name:      id,
		Kind:      kind,
		Mile:      mile,
		SoboMile:  TrailLength - mile,
		Elevation: 3000,
		Lat:       LatAt(mile),
		Lng:       LngAt(mile),
		State:     "GA",
		Type:      string(kind),
	}
}

// Points returns the standard fixture profile: an approach prefix, a dense
// first fifty miles, then one point per hundred miles to the terminus.
func Points() []dataset.TrailPoint {
	points := []dataset.TrailPoint{
		Point(-8.8, 1800),
		Point(0, 3740),
		Point(10, 3200),
		Point(20, 4000),
		Point(30, 3100),
		Point(40, 3600),
		Point(50, 3000),
	}
	for k := 1; k <= 21; k++ {
		points = append(points, Point(float64(k*100), float64(2000+(k%5)*500)))
	}
	return append(points, Point(TrailLength, 5267))
}

// Waypoints returns the standard fixture waypoints in mixed order
func Waypoints() []dataset.Waypoint {
	return []dataset.Waypoint{
		Feature("amicalola-falls", -8.8),
		Feature("springer-mountain", 0),
		Shelter("stover-creek", 2.8),
		Shelter("hawk-mountain", 8.1),
		Shelter("gooch-mountain", 15.8),
		Resupply("suches", 20.5, dataset.QualityLimited),
		Feature("blood-mountain", 28.3),
		Resupply("neels-gap", 31.7, dataset.QualityFull),
		Shelter("low-gap", 42.3),
		Resupply("hiawassee", 69.2, dataset.QualityFull),
		Shelter("birches", 2192.6),
		Feature("katahdin", TrailLength),
	}
}

// Trail builds the standard fixture dataset
func Trail() *dataset.TrailDataset {
	return MustBuild(Points(), Waypoints())
}

// MustBuild builds a fixture-length dataset and panics on validation errors
func MustBuild(points []dataset.TrailPoint, waypoints []dataset.Waypoint) *dataset.TrailDataset {
	ds, err := dataset.New("fixture", TrailLength, points, waypoints)
	if err != nil {
		panic(fmt.Sprintf("invalid fixture dataset: %v", err))
	}
	return ds
}
