package forecast

import (
	"context"
	"time"
)

// WeatherLocation is where a forecast is wanted; Elevation is the trail
// elevation in feet
type WeatherLocation struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Elevation float64  `json:"elevation"`
	Name      string   `json:"name"`
	Mile      *float64 `json:"mile,omitempty"`
}

// HourlySeries holds parallel hourly arrays. Temperatures are °F.
type HourlySeries struct {
	Time                     []string  `json:"time"`
	Temperature              []float64 `json:"temperature"`
	ApparentTemperature      []float64 `json:"apparentTemperature"`
	PrecipitationProbability []float64 `json:"precipitationProbability"`
	Precipitation            []float64 `json:"precipitation"`
	WeatherCode              []int     `json:"weatherCode"`
	WindSpeed                []float64 `json:"windSpeed"`
	WindGusts                []float64 `json:"windGusts"`
	WindDirection            []float64 `json:"windDirection"`
	RelativeHumidity         []float64 `json:"relativeHumidity"`
	UVIndex                  []float64 `json:"uvIndex"`
	CloudCover               []float64 `json:"cloudCover"`
	Visibility               []float64 `json:"visibility"`
}

// DailySeries holds parallel daily arrays
type DailySeries struct {
	Time                        []string  `json:"time"`
	WeatherCode                 []int     `json:"weatherCode"`
	TemperatureMax              []float64 `json:"temperatureMax"`
	TemperatureMin              []float64 `json:"temperatureMin"`
	ApparentTemperatureMax      []float64 `json:"apparentTemperatureMax"`
	ApparentTemperatureMin      []float64 `json:"apparentTemperatureMin"`
	PrecipitationSum            []float64 `json:"precipitationSum"`
	PrecipitationProbabilityMax []float64 `json:"precipitationProbabilityMax"`
	WindSpeedMax                []float64 `json:"windSpeedMax"`
	UVIndexMax                  []float64 `json:"uvIndexMax"`
	Sunrise                     []string  `json:"sunrise"`
	Sunset                      []string  `json:"sunset"`
}

// RawForecast is a provider forecast before elevation adjustment
type RawForecast struct {
	// ElevationMeters is the provider grid cell's ground elevation
	ElevationMeters float64
	Timezone        string
	Hourly          HourlySeries
	Daily           DailySeries
}

// WeatherData is a forecast adjusted to trail elevation. It is replaced
// wholesale on refresh and never patched.
type WeatherData struct {
	Location              WeatherLocation `json:"location"`
	Timezone              string          `json:"timezone,omitempty"`
	Hourly                HourlySeries    `json:"hourly"`
	Daily                 DailySeries     `json:"daily"`
	StationElevation      float64         `json:"stationElevation"`
	ElevationDifference   float64         `json:"elevationDifference"`
	TemperatureAdjustment float64         `json:"temperatureAdjustment"`
	FetchedAt             time.Time       `json:"fetchedAt"`

	// Error is set when the fetch failed. Stale marks cached data served
	// because a refresh failed.
	Error string `json:"error,omitempty"`
	Stale bool   `json:"stale,omitempty"`
}

// OK reports whether the forecast carries data
func (w *WeatherData) OK() bool {
	return w.Error == "" || w.Stale
}

// Fetcher retrieves a raw forecast for a coordinate
type Fetcher interface {
	Fetch(ctx context.Context, lat, lng float64) (*RawForecast, error)
}
