package itinerary

import "math"

// Summary aggregates a plan for display
type Summary struct {
	Days          int     `json:"days"`
	TotalMiles    float64 `json:"totalMiles"`
	ShelterCount  int     `json:"shelterCount"`
	ResupplyCount int     `json:"resupplyCount"`
	FeatureCount  int     `json:"featureCount"`
}

// TotalMiles is the distance between the first day's start and the last
// day's end
func TotalMiles(plans []DayPlan) float64 {
	if len(plans) == 0 {
		return 0
	}
	return math.Abs(plans[len(plans)-1].EndMile - plans[0].StartMile)
}

// ShelterCount sums shelters across days
func ShelterCount(plans []DayPlan) int {
	n := 0
	for _, d := range plans {
		n += len(d.Shelters)
	}
	return n
}

// ResupplyCount sums resupply points across days
func ResupplyCount(plans []DayPlan) int {
	n := 0
	for _, d := range plans {
		n += len(d.Resupply)
	}
	return n
}

// FeatureCount sums features across days
func FeatureCount(plans []DayPlan) int {
	n := 0
	for _, d := range plans {
		n += len(d.Features)
	}
	return n
}

// Summarize computes every aggregate at once
func Summarize(plans []DayPlan) Summary {
	return Summary{
		Days:          len(plans),
		TotalMiles:    TotalMiles(plans),
		ShelterCount:  ShelterCount(plans),
		ResupplyCount: ResupplyCount(plans),
		FeatureCount:  FeatureCount(plans),
	}
}
