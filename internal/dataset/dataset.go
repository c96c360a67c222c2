package dataset

import (
	"sort"
)

// TrailDataset is the immutable trail model shared by every component.
//
// It is built once by New (or a loader) and never mutated afterwards; callers
// hold it by pointer and must not modify the slices it exposes.
type TrailDataset struct {
	Version       string
	TrailLength   float64
	ApproachStart float64

	Points []TrailPoint

	// Waypoints is the merged collection, ascending by mile.
	Waypoints []Waypoint
	Shelters  []Waypoint
	Resupply  []Waypoint
	Features  []Waypoint
}

// New validates the inputs and builds a TrailDataset.
//
// Points must already be strictly ascending by mile. Waypoints may arrive in
// any order; they are stably sorted by mile and partitioned by kind. A
// non-positive trailLength means "use the last point's mile".
func New(version string, trailLength float64, points []TrailPoint, waypoints []Waypoint) (*TrailDataset, error) {
	if trailLength <= 0 && len(points) > 0 {
		trailLength = points[len(points)-1].Mile
	}

	ds := &TrailDataset{
		Version:     version,
		TrailLength: trailLength,
		Points:      append([]TrailPoint(nil), points...),
		Waypoints:   append([]Waypoint(nil), waypoints...),
	}
	if len(points) > 0 && points[0].Mile < 0 {
		ds.ApproachStart = points[0].Mile
	}

	sort.SliceStable(ds.Waypoints, func(i, j int) bool {
		return ds.Waypoints[i].Mile < ds.Waypoints[j].Mile
	})

	if err := validate(ds); err != nil {
		return nil, err
	}

	for _, wp := range ds.Waypoints {
		switch wp.Kind {
		case KindShelter:
			ds.Shelters = append(ds.Shelters, wp)
		case KindResupply:
			ds.Resupply = append(ds.Resupply, wp)
		case KindFeature:
			ds.Features = append(ds.Features, wp)
		}
	}

	return ds, nil
}

// SoboMile converts a northbound mile into the southbound reference
func (d *TrailDataset) SoboMile(mile float64) float64 {
	return d.TrailLength - mile
}

// WaypointByID finds a waypoint by id
func (d *TrailDataset) WaypointByID(id string) (Waypoint, bool) {
	for _, wp := range d.Waypoints {
		if wp.ID == id {
			return wp, true
		}
	}
	return Waypoint{}, false
}

// Summary describes the dataset for logs and the API
type Summary struct {
	Version       string  `json:"version"`
	TrailLength   float64 `json:"trailLength"`
	ApproachStart float64 `json:"approachStart"`
	Points        int     `json:"points"`
	Shelters      int     `json:"shelters"`
	Resupply      int     `json:"resupply"`
	Features      int     `json:"features"`
}

// Summary returns counts for the dataset
func (d *TrailDataset) Summary() Summary {
	return Summary{
		Version:       d.Version,
		TrailLength:   d.TrailLength,
		ApproachStart: d.ApproachStart,
		Points:        len(d.Points),
		Shelters:      len(d.Shelters),
		Resupply:      len(d.Resupply),
		Features:      len(d.Features),
	}
}
