package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 609.6 m is 2,000 ft once rounded
const stationMeters = 609.6

func sampleRaw() *RawForecast {
	return &RawForecast{
		ElevationMeters: stationMeters,
		Timezone:        "America/New_York",
		Hourly: HourlySeries{
			Time:                     []string{"2025-04-01T06:00", "2025-04-01T07:00"},
			Temperature:              []float64{60, 41.2},
			ApparentTemperature:      []float64{58, 37},
			PrecipitationProbability: []float64{10, 80},
			Precipitation:            []float64{0, 0.12},
			WeatherCode:              []int{1, 61},
			WindSpeed:                []float64{5, 12},
		},
		Daily: DailySeries{
			Time:                   []string{"2025-04-01"},
			WeatherCode:            []int{61},
			TemperatureMax:         []float64{64},
			TemperatureMin:         []float64{39},
			ApparentTemperatureMax: []float64{62},
			ApparentTemperatureMin: []float64{33},
			PrecipitationSum:       []float64{0.4},
			Sunrise:                []string{"2025-04-01T07:21"},
		},
	}
}

func TestStationElevationFeet(t *testing.T) {
	assert.Equal(t, 2000.0, StationElevationFeet(stationMeters))
	assert.Equal(t, 0.0, StationElevationFeet(0))
	assert.Equal(t, 3281.0, StationElevationFeet(1000))
}

func TestLapseAdjustment(t *testing.T) {
	tests := []struct {
		name    string
		trail   float64
		station float64
		want    float64
	}{
		{"trail above station cools", 5000, 2000, -10.5},
		{"trail below station warms", 1000, 2000, 3.5},
		{"same elevation", 3000, 3000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LapseAdjustment(tt.trail, tt.station, DefaultLapseRate), 1e-9)
		})
	}
}

func TestCompose_AdjustsTemperaturesOnly(t *testing.T) {
	raw := sampleRaw()
	loc := WeatherLocation{Lat: 35.5, Lng: -83.5, Elevation: 5000, Name: "Blood Mountain"}

	got := Compose(raw, loc, DefaultLapseRate)

	assert.Equal(t, 2000.0, got.StationElevation)
	assert.Equal(t, 3000.0, got.ElevationDifference)
	assert.Equal(t, -10.5, got.TemperatureAdjustment)
	assert.Equal(t, loc, got.Location)
	assert.Equal(t, "America/New_York", got.Timezone)

	// 60 - 10.5 = 49.5 rounds up to 50
	assert.Equal(t, []float64{50, 31}, got.Hourly.Temperature)
	assert.Equal(t, []float64{48, 27}, got.Hourly.ApparentTemperature)
	assert.Equal(t, []float64{54}, got.Daily.TemperatureMax)
	assert.Equal(t, []float64{29}, got.Daily.TemperatureMin)
	assert.Equal(t, []float64{52}, got.Daily.ApparentTemperatureMax)
	assert.Equal(t, []float64{23}, got.Daily.ApparentTemperatureMin)

	assert.Equal(t, raw.Hourly.PrecipitationProbability, got.Hourly.PrecipitationProbability)
	assert.Equal(t, raw.Hourly.WeatherCode, got.Hourly.WeatherCode)
	assert.Equal(t, raw.Hourly.WindSpeed, got.Hourly.WindSpeed)
	assert.Equal(t, raw.Daily.PrecipitationSum, got.Daily.PrecipitationSum)
	assert.Equal(t, raw.Daily.Sunrise, got.Daily.Sunrise)
	assert.Empty(t, got.Error)
}

func TestCompose_DoesNotModifyInput(t *testing.T) {
	raw := sampleRaw()
	_ = Compose(raw, WeatherLocation{Elevation: 5000}, DefaultLapseRate)

	assert.Equal(t, []float64{60, 41.2}, raw.Hourly.Temperature)
	assert.Equal(t, []float64{64}, raw.Daily.TemperatureMax)
}

func TestCompose_WarmsLowerTrail(t *testing.T) {
	raw := sampleRaw()
	got := Compose(raw, WeatherLocation{Elevation: 1000}, DefaultLapseRate)

	require.Len(t, got.Hourly.Temperature, 2)
	assert.Equal(t, 3.5, got.TemperatureAdjustment)
	// 60 + 3.5 = 63.5 rounds up to 64
	assert.Equal(t, 64.0, got.Hourly.Temperature[0])
	assert.Equal(t, -1000.0, got.ElevationDifference)
}

func TestCompose_MissingSeries(t *testing.T) {
	raw := &RawForecast{ElevationMeters: 100}
	got := Compose(raw, WeatherLocation{Elevation: 328}, DefaultLapseRate)

	assert.Nil(t, got.Hourly.Temperature)
	assert.Nil(t, got.Daily.TemperatureMax)
	assert.Equal(t, 328.0, got.StationElevation)
}
