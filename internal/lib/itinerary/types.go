package itinerary

import (
	"fmt"
	"strings"

	"github.com/dpup/trailhead/server/internal/dataset"
)

// Direction of travel along the trail
type Direction string

const (
	Northbound Direction = "nobo"
	Southbound Direction = "sobo"
)

// ParseDirection accepts nobo/sobo in any case
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Northbound, Southbound:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q (want nobo or sobo)", s)
}

// DayPlan is one day of a generated itinerary. It is built once and never
// modified.
type DayPlan struct {
	Day       int                `json:"day"`
	StartMile float64            `json:"startMile"`
	EndMile   float64            `json:"endMile"`
	Shelters  []dataset.Waypoint `json:"shelters"`
	Resupply  []dataset.Waypoint `json:"resupply"`
	Features  []dataset.Waypoint `json:"features"`
}

// Miles is the distance covered that day
func (d DayPlan) Miles() float64 {
	if d.EndMile > d.StartMile {
		return d.EndMile - d.StartMile
	}
	return d.StartMile - d.EndMile
}

// RangeQuerier is the subset of the range query service the planner needs
type RangeQuerier interface {
	SheltersInRange(start, end float64) []dataset.Waypoint
	ResupplyInRange(start, end float64) []dataset.Waypoint
	FeaturesInRange(start, end float64) []dataset.Waypoint
}

// Bounds supplies the valid mile domain of the trail
type Bounds interface {
	ApproachStart() float64
	TrailLength() float64
}
