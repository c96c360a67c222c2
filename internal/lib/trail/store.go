// Package trail provides mile-indexed lookups over the trail profile.
package trail

import (
	"math"
	"sort"

	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/geo"
	"github.com/dpup/trailhead/server/internal/lib/units"
)

const maxProfileSamples = 500

// Store answers elevation and coordinate lookups by mile. It only reads the
// dataset and is safe for concurrent use.
type Store struct {
	ds     *dataset.TrailDataset
	points []dataset.TrailPoint
}

// ProfileSample is one point of an elevation chart
type ProfileSample struct {
	Mile      float64 `json:"mile"`
	Elevation float64 `json:"elevation"`
}

// NewStore creates a store over the dataset's trail points
func NewStore(ds *dataset.TrailDataset) *Store {
	return &Store{ds: ds, points: ds.Points}
}

// Dataset returns the underlying dataset
func (s *Store) Dataset() *dataset.TrailDataset {
	return s.ds
}

// TrailLength is the terminus mile
func (s *Store) TrailLength() float64 {
	return s.ds.TrailLength
}

// ApproachStart is the lowest valid mile (negative when an approach trail exists)
func (s *Store) ApproachStart() float64 {
	return s.ds.ApproachStart
}

// bracket locates low, high such that points[low].Mile <= mile < points[high].Mile.
// The second return is false when mile falls outside the interior of the
// profile, in which case low is the index of the clamped endpoint.
func (s *Store) bracket(mile float64) (int, int, bool) {
	n := len(s.points)
	if math.IsNaN(mile) || mile <= s.points[0].Mile {
		return 0, 0, false
	}
	if mile >= s.points[n-1].Mile {
		return n - 1, n - 1, false
	}

	low, high := 0, n-1
	for high-low > 1 {
		mid := (low + high) / 2
		if s.points[mid].Mile <= mile {
			low = mid
		} else {
			high = mid
		}
	}
	return low, high, true
}

// ElevationAt returns the interpolated elevation in feet, rounded to the
// nearest foot. Miles outside the profile clamp to the end points. A mile
// equal to a stored point returns that point's elevation unchanged.
func (s *Store) ElevationAt(mile float64) float64 {
	if len(s.points) == 0 {
		return 0
	}

	low, high, interior := s.bracket(mile)
	p1 := s.points[low]
	if !interior || mile == p1.Mile {
		return p1.Elevation
	}

	p2 := s.points[high]
	elev := p1.Elevation + (mile-p1.Mile)/(p2.Mile-p1.Mile)*(p2.Elevation-p1.Elevation)
	return units.RoundHalfUp(elev)
}

// CoordinatesAt interpolates latitude and longitude independently
func (s *Store) CoordinatesAt(mile float64) geo.Point {
	if len(s.points) == 0 {
		return geo.Point{}
	}

	low, high, interior := s.bracket(mile)
	p1 := s.points[low]
	if !interior || mile == p1.Mile {
		return geo.Point{Latitude: p1.Lat, Longitude: p1.Lng}
	}

	p2 := s.points[high]
	t := (mile - p1.Mile) / (p2.Mile - p1.Mile)
	return geo.Point{
		Latitude:  p1.Lat + t*(p2.Lat-p1.Lat),
		Longitude: p1.Lng + t*(p2.Lng-p1.Lng),
	}
}

// RangeSlice returns a copy of the points with start <= mile <= end, in
// order. It is empty when nothing qualifies, including when start > end.
func (s *Store) RangeSlice(start, end float64) []dataset.TrailPoint {
	if !(start <= end) {
		return []dataset.TrailPoint{}
	}

	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].Mile >= start })
	j := sort.Search(len(s.points), func(i int) bool { return s.points[i].Mile > end })
	if i >= j {
		return []dataset.TrailPoint{}
	}
	return append([]dataset.TrailPoint(nil), s.points[i:j]...)
}

// NearestPoint finds the stored trail point closest to a coordinate, used to
// estimate a hiker's mile from a GPS fix. Ties go to the lower mile.
func (s *Store) NearestPoint(lat, lng float64) (dataset.TrailPoint, float64, bool) {
	if len(s.points) == 0 {
		return dataset.TrailPoint{}, 0, false
	}

	best := 0
	bestDist := math.Inf(1)
	for i, p := range s.points {
		d := geo.Haversine(lat, lng, p.Lat, p.Lng)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return s.points[best], bestDist, true
}

// Profile samples elevation at evenly spaced miles across [start, end]
func (s *Store) Profile(start, end float64, samples int) []ProfileSample {
	if !(start <= end) || len(s.points) == 0 {
		return []ProfileSample{}
	}
	if samples < 2 {
		samples = 2
	}
	if samples > maxProfileSamples {
		samples = maxProfileSamples
	}
	if start == end {
		return []ProfileSample{{Mile: start, Elevation: s.ElevationAt(start)}}
	}

	step := (end - start) / float64(samples-1)
	profile := make([]ProfileSample, samples)
	for i := range profile {
		mile := start + float64(i)*step
		if i == samples-1 {
			mile = end
		}
		profile[i] = ProfileSample{Mile: mile, Elevation: s.ElevationAt(mile)}
	}
	return profile
}

// GainLoss totals climbing and descent in feet between two miles, using the
// interpolated end points and every stored point in between.
func (s *Store) GainLoss(start, end float64) (gain, loss float64) {
	if start > end {
		start, end = end, start
	}
	if len(s.points) == 0 || start == end {
		return 0, 0
	}

	prev := s.ElevationAt(start)
	step := func(elev float64) {
		if d := elev - prev; d > 0 {
			gain += d
		} else {
			loss -= d
		}
		prev = elev
	}

	for _, p := range s.RangeSlice(start, end) {
		if p.Mile > start && p.Mile < end {
			step(p.Elevation)
		}
	}
	step(s.ElevationAt(end))
	return gain, loss
}
