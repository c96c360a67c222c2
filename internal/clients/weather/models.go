package weather

import "github.com/dpup/trailhead/server/internal/lib/forecast"

// ForecastAPIResponse is the Open-Meteo /v1/forecast payload
type ForecastAPIResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Elevation of the model grid cell in meters
	Elevation    float64        `json:"elevation"`
	Timezone     string         `json:"timezone"`
	UTCOffset    int            `json:"utc_offset_seconds"`
	HourlyUnits  map[string]any `json:"hourly_units,omitempty"`
	Hourly       HourlyData     `json:"hourly"`
	DailyUnits   map[string]any `json:"daily_units,omitempty"`
	Daily        DailyData      `json:"daily"`
	GenerationMs float64        `json:"generationtime_ms"`
}

type HourlyData struct {
	Time                     []string  `json:"time"`
	Temperature              []float64 `json:"temperature_2m"`
	ApparentTemperature      []float64 `json:"apparent_temperature"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	Precipitation            []float64 `json:"precipitation"`
	WeatherCode              []int     `json:"weather_code"`
	WindSpeed                []float64 `json:"wind_speed_10m"`
	WindGusts                []float64 `json:"wind_gusts_10m"`
	WindDirection            []float64 `json:"wind_direction_10m"`
	RelativeHumidity         []float64 `json:"relative_humidity_2m"`
	UVIndex                  []float64 `json:"uv_index"`
	CloudCover               []float64 `json:"cloud_cover"`
	Visibility               []float64 `json:"visibility"`
}

type DailyData struct {
	Time                        []string  `json:"time"`
	WeatherCode                 []int     `json:"weather_code"`
	TemperatureMax              []float64 `json:"temperature_2m_max"`
	TemperatureMin              []float64 `json:"temperature_2m_min"`
	ApparentTemperatureMax      []float64 `json:"apparent_temperature_max"`
	ApparentTemperatureMin      []float64 `json:"apparent_temperature_min"`
	PrecipitationSum            []float64 `json:"precipitation_sum"`
	PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
	WindSpeedMax                []float64 `json:"wind_speed_10m_max"`
	UVIndexMax                  []float64 `json:"uv_index_max"`
	Sunrise                     []string  `json:"sunrise"`
	Sunset                      []string  `json:"sunset"`
}

// ToRaw converts the payload into the provider-neutral forecast shape
func (r *ForecastAPIResponse) ToRaw() *forecast.RawForecast {
	return &forecast.RawForecast{
		ElevationMeters: r.Elevation,
		Timezone:        r.Timezone,
		Hourly: forecast.HourlySeries{
			Time:                     r.Hourly.Time,
			Temperature:              r.Hourly.Temperature,
			ApparentTemperature:      r.Hourly.ApparentTemperature,
			PrecipitationProbability: r.Hourly.PrecipitationProbability,
			Precipitation:            r.Hourly.Precipitation,
			WeatherCode:              r.Hourly.WeatherCode,
			WindSpeed:                r.Hourly.WindSpeed,
			WindGusts:                r.Hourly.WindGusts,
			WindDirection:            r.Hourly.WindDirection,
			RelativeHumidity:         r.Hourly.RelativeHumidity,
			UVIndex:                  r.Hourly.UVIndex,
			CloudCover:               r.Hourly.CloudCover,
			Visibility:               r.Hourly.Visibility,
		},
		Daily: forecast.DailySeries{
			Time:                        r.Daily.Time,
			WeatherCode:                 r.Daily.WeatherCode,
			TemperatureMax:              r.Daily.TemperatureMax,
			TemperatureMin:              r.Daily.TemperatureMin,
			ApparentTemperatureMax:      r.Daily.ApparentTemperatureMax,
			ApparentTemperatureMin:      r.Daily.ApparentTemperatureMin,
			PrecipitationSum:            r.Daily.PrecipitationSum,
			PrecipitationProbabilityMax: r.Daily.PrecipitationProbabilityMax,
			WindSpeedMax:                r.Daily.WindSpeedMax,
			UVIndexMax:                  r.Daily.UVIndexMax,
			Sunrise:                     r.Daily.Sunrise,
			Sunset:                      r.Daily.Sunset,
		},
	}
}
