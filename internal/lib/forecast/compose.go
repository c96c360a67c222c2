// Package forecast adjusts provider weather forecasts to trail elevation.
package forecast

import (
	"github.com/dpup/trailhead/server/internal/lib/units"
)

// DefaultLapseRate is the environmental lapse rate in °F per 1,000 ft
const DefaultLapseRate = 3.5

// StationElevationFeet converts a provider elevation to whole feet
func StationElevationFeet(meters float64) float64 {
	return units.RoundHalfUp(units.MetersToFeet(meters))
}

// LapseAdjustment is the °F to add to station temperatures. It is positive
// when the trail is below the station and negative when above.
func LapseAdjustment(trailFeet, stationFeet, lapseRate float64) float64 {
	return -(lapseRate * (trailFeet - stationFeet) / 1000)
}

// Compose adjusts the temperature series of raw to the location's
// elevation. Non-temperature fields are copied unchanged. raw is not
// modified.
func Compose(raw *RawForecast, loc WeatherLocation, lapseRate float64) *WeatherData {
	station := StationElevationFeet(raw.ElevationMeters)
	adj := LapseAdjustment(loc.Elevation, station, lapseRate)

	hourly := raw.Hourly
	hourly.Temperature = adjust(raw.Hourly.Temperature, adj)
	hourly.ApparentTemperature = adjust(raw.Hourly.ApparentTemperature, adj)

	daily := raw.Daily
	daily.TemperatureMax = adjust(raw.Daily.TemperatureMax, adj)
	daily.TemperatureMin = adjust(raw.Daily.TemperatureMin, adj)
	daily.ApparentTemperatureMax = adjust(raw.Daily.ApparentTemperatureMax, adj)
	daily.ApparentTemperatureMin = adjust(raw.Daily.ApparentTemperatureMin, adj)

	return &WeatherData{
		Location:              loc,
		Timezone:              raw.Timezone,
		Hourly:                hourly,
		Daily:                 daily,
		StationElevation:      station,
		ElevationDifference:   loc.Elevation - station,
		TemperatureAdjustment: adj,
	}
}

func adjust(values []float64, adj float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = units.RoundHalfUp(v + adj)
	}
	return out
}
