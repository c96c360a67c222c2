// Package itinerary splits a hike into days of roughly equal mileage and
// lists the shelters, resupply points and features each day passes.
package itinerary

import (
	"math"
)

// MinMilesPerDay replaces non-positive paces
const MinMilesPerDay = 1.0

// Planner generates itineraries. It holds no mutable state; Generate is a
// pure function of its arguments and the dataset.
type Planner struct {
	ranges RangeQuerier
	bounds Bounds
}

// NewPlanner creates a planner
func NewPlanner(ranges RangeQuerier, bounds Bounds) *Planner {
	return &Planner{ranges: ranges, bounds: bounds}
}

// Generate builds up to days DayPlans starting at startMile.
//
// Northbound days stop at the terminus and southbound days stop at mile 0;
// the plan is truncated once that boundary is reached, so a start already at
// the boundary yields no days. Out-of-range starts are clamped into
// [ApproachStart, TrailLength] and paces <= 0 are raised to MinMilesPerDay.
func (p *Planner) Generate(startMile, milesPerDay float64, days int, direction Direction) []DayPlan {
	if days <= 0 || (direction != Northbound && direction != Southbound) {
		return []DayPlan{}
	}
	if !(milesPerDay > 0) || math.IsInf(milesPerDay, 1) {
		milesPerDay = MinMilesPerDay
	}

	lower, upper := p.bounds.ApproachStart(), p.bounds.TrailLength()
	current := clamp(startMile, lower, upper)

	step := milesPerDay
	boundary := upper
	if direction == Southbound {
		step = -milesPerDay
		boundary = 0
	}

	plans := make([]DayPlan, 0, dayCapacity(days, upper-lower, milesPerDay))
	for day := 1; day <= days; day++ {
		if reached(current, boundary, direction) {
			break
		}

		end := current + step
		if direction == Northbound {
			end = math.Min(end, boundary)
		} else {
			end = math.Max(end, boundary)
		}
		// A pace below float resolution at this mile can never advance
		if end == current {
			break
		}

		rangeStart, rangeEnd := current, end
		if direction == Southbound {
			rangeStart, rangeEnd = end, current
		}

		plans = append(plans, DayPlan{
			Day:       day,
			StartMile: current,
			EndMile:   end,
			Shelters:  p.ranges.SheltersInRange(rangeStart, rangeEnd),
			Resupply:  p.ranges.ResupplyInRange(rangeStart, rangeEnd),
			Features:  p.ranges.FeaturesInRange(rangeStart, rangeEnd),
		})

		current = end
	}

	return plans
}

func reached(mile, boundary float64, direction Direction) bool {
	if direction == Northbound {
		return mile >= boundary
	}
	return mile <= boundary
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// maxPreallocatedDays caps the initial plan slice; longer plans grow by append
const maxPreallocatedDays = 1024

// dayCapacity bounds the plan slice by the days the trail can actually hold
func dayCapacity(days int, span, milesPerDay float64) int {
	needed := math.Min(math.Ceil(span/milesPerDay)+1, maxPreallocatedDays)
	if needed >= float64(days) {
		return days
	}
	return int(needed)
}
