package trail

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/dataset/datasettest"
)

func fixtureStore() *Store {
	return NewStore(datasettest.Trail())
}

func TestStore_ElevationAtKnots(t *testing.T) {
	s := fixtureStore()

	assert.Equal(t, 3740.0, s.ElevationAt(0))
	for _, p := range s.Dataset().Points {
		assert.Equal(t, p.Elevation, s.ElevationAt(p.Mile), "knot at mile %v", p.Mile)
	}
}

func TestStore_ElevationAtFractionalKnot(t *testing.T) {
	ds := datasettest.MustBuild([]dataset.TrailPoint{
		datasettest.Point(0, 100.4),
		datasettest.Point(1, 200.6),
		datasettest.Point(datasettest.TrailLength, 300),
	}, nil)
	s := NewStore(ds)

	assert.Equal(t, 100.4, s.ElevationAt(0))
	assert.Equal(t, 200.6, s.ElevationAt(1))
}

func TestStore_ElevationAtInterpolates(t *testing.T) {
	s := fixtureStore()

	tests := []struct {
		mile float64
		want float64
	}{
		{5, 3470},
		{15, 3600},
		{2.5, 3605},
		{25, 3550},
		{-4.4, 2770},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.ElevationAt(tt.mile), "mile %v", tt.mile)
	}
}

func TestStore_ElevationAtRoundsHalfUp(t *testing.T) {
	ds := datasettest.MustBuild([]dataset.TrailPoint{
		datasettest.Point(0, 100),
		datasettest.Point(2, 101),
		datasettest.Point(datasettest.TrailLength, 300),
	}, nil)
	s := NewStore(ds)

	assert.Equal(t, 101.0, s.ElevationAt(1))
	assert.Equal(t, 100.0, s.ElevationAt(0.9))
}

func TestStore_ElevationAtClamps(t *testing.T) {
	s := fixtureStore()

	assert.Equal(t, 1800.0, s.ElevationAt(-100))
	assert.Equal(t, 1800.0, s.ElevationAt(-8.8))
	assert.Equal(t, 5267.0, s.ElevationAt(5000))
	assert.Equal(t, 5267.0, s.ElevationAt(datasettest.TrailLength))
	assert.Equal(t, 1800.0, s.ElevationAt(math.NaN()))
}

func TestStore_SinglePoint(t *testing.T) {
	ds, err := dataset.New("one", 0, []dataset.TrailPoint{datasettest.Point(0, 42)}, nil)
	require.NoError(t, err)
	s := NewStore(ds)

	assert.Equal(t, 42.0, s.ElevationAt(-1))
	assert.Equal(t, 42.0, s.ElevationAt(1))
	assert.Equal(t, datasettest.LatAt(0), s.CoordinatesAt(3).Latitude)
}

func TestStore_CoordinatesAt(t *testing.T) {
	s := fixtureStore()

	p := s.CoordinatesAt(5)
	assert.InDelta(t, datasettest.LatAt(5), p.Latitude, 1e-9)
	assert.InDelta(t, datasettest.LngAt(5), p.Longitude, 1e-9)

	for _, tp := range s.Dataset().Points {
		p := s.CoordinatesAt(tp.Mile)
		assert.Equal(t, tp.Lat, p.Latitude)
		assert.Equal(t, tp.Lng, p.Longitude)
	}

	below := s.CoordinatesAt(-50)
	assert.Equal(t, datasettest.LatAt(-8.8), below.Latitude)
	above := s.CoordinatesAt(9999)
	assert.Equal(t, datasettest.LngAt(datasettest.TrailLength), above.Longitude)
}

func TestStore_RangeSlice(t *testing.T) {
	s := fixtureStore()

	got := s.RangeSlice(0, 20)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{0, 10, 20}, []float64{got[0].Mile, got[1].Mile, got[2].Mile})

	assert.Empty(t, s.RangeSlice(20, 0))
	assert.Empty(t, s.RangeSlice(11, 19))
	assert.Len(t, s.RangeSlice(-100, 10000), len(s.Dataset().Points))
	assert.Len(t, s.RangeSlice(10, 10), 1)
}

func TestStore_RangeSliceProperties(t *testing.T) {
	s := fixtureStore()
	bounds := []float64{-20, -8.8, 0, 3, 10, 45, 100, 150, 1000, 2197.9, 3000}

	for _, m1 := range bounds {
		for _, m2 := range bounds {
			got := s.RangeSlice(m1, m2)
			if m1 > m2 {
				assert.Empty(t, got)
				continue
			}
			for i, p := range got {
				assert.GreaterOrEqual(t, p.Mile, m1)
				assert.LessOrEqual(t, p.Mile, m2)
				if i > 0 {
					assert.Less(t, got[i-1].Mile, p.Mile)
				}
			}
		}
	}
}

func TestStore_RangeSliceReturnsCopy(t *testing.T) {
	s := fixtureStore()
	got := s.RangeSlice(0, 0)
	require.Len(t, got, 1)
	got[0].Elevation = -1
	assert.Equal(t, 3740.0, s.ElevationAt(0))
}

func TestStore_NearestPoint(t *testing.T) {
	s := fixtureStore()

	p, dist, ok := s.NearestPoint(datasettest.LatAt(10)+0.001, datasettest.LngAt(10))
	require.True(t, ok)
	assert.Equal(t, 10.0, p.Mile)
	assert.InDelta(t, 0.069, dist, 0.01)
}

func TestStore_Profile(t *testing.T) {
	s := fixtureStore()

	profile := s.Profile(0, 20, 3)
	require.Len(t, profile, 3)
	assert.Equal(t, ProfileSample{Mile: 0, Elevation: 3740}, profile[0])
	assert.Equal(t, ProfileSample{Mile: 10, Elevation: 3200}, profile[1])
	assert.Equal(t, ProfileSample{Mile: 20, Elevation: 4000}, profile[2])

	assert.Len(t, s.Profile(0, 20, 1), 2)
	assert.Len(t, s.Profile(0, 20, 10000), maxProfileSamples)
	assert.Len(t, s.Profile(7, 7, 5), 1)
	assert.Empty(t, s.Profile(20, 0, 5))
}

func TestStore_GainLoss(t *testing.T) {
	s := fixtureStore()

	gain, loss := s.GainLoss(0, 20)
	assert.Equal(t, 800.0, gain)
	assert.Equal(t, 540.0, loss)

	gain, loss = s.GainLoss(15, 5)
	assert.Equal(t, 400.0, gain)
	assert.Equal(t, 270.0, loss)

	gain, loss = s.GainLoss(3, 3)
	assert.Zero(t, gain)
	assert.Zero(t, loss)
}
