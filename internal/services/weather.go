package services

import (
	"context"
	"math"
	"net/http"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/trailhead/server/internal/config"
	"github.com/dpup/trailhead/server/internal/lib/forecast"
	"github.com/dpup/trailhead/server/internal/lib/geo"
	"github.com/dpup/trailhead/server/internal/lib/trail"
)

// WeatherService serves elevation-adjusted forecasts for trail miles and
// arbitrary coordinates
type WeatherService struct {
	compositor *forecast.Compositor
	store      *trail.Store
	config     *config.WeatherConfig
}

// NewWeatherService creates a new WeatherService
func NewWeatherService(compositor *forecast.Compositor, store *trail.Store, config *config.WeatherConfig) *WeatherService {
	return &WeatherService{
		compositor: compositor,
		store:      store,
		config:     config,
	}
}

// ForMile returns the forecast at a trail mile, clamped to the trail
func (s *WeatherService) ForMile(ctx context.Context, mile float64, name string) *forecast.WeatherData {
	mile = math.Max(s.store.ApproachStart(), math.Min(mile, s.store.TrailLength()))
	return s.compositor.Forecast(ctx, forecast.LocationForMile(s.store, mile, name))
}

// Watched returns the configured locations resolved against the trail
func (s *WeatherService) Watched() []forecast.WeatherLocation {
	locations := make([]forecast.WeatherLocation, 0, len(s.config.Locations))
	for _, l := range s.config.Locations {
		locations = append(locations, forecast.LocationForMile(s.store, l.Mile, l.Name))
	}
	return locations
}

// RefreshWatched forces a provider fetch for every watched location and
// reports how many failed. Failures leave any cached forecast in place.
func (s *WeatherService) RefreshWatched(ctx context.Context) (refreshed, failed int) {
	ctx = logging.EnsureLogger(ctx)
	for _, loc := range s.Watched() {
		result := s.compositor.Refresh(ctx, forecast.CacheKey(loc), loc)
		if result.Error != "" {
			failed++
			logging.Warnw(ctx, "Weather refresh failed", "location", loc.Name, "error", result.Error)
			continue
		}
		refreshed++
	}
	return refreshed, failed
}

// Forecast handles GET /api/v1/weather.
//
//	?mile=N[&name=]                   forecast at a trail mile
//	?lat=&lng=&elevation=[&name=]     forecast at a coordinate and elevation in feet
//	(no parameters)                   forecasts for every watched location
//
// Provider failures are reported in the body's error field with status 200.
func (s *WeatherService) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("name")

	mile, hasMile, err := floatParam(r, "mile")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if hasMile {
		writeJSON(w, r, http.StatusOK, s.ForMile(ctx, mile, name))
		return
	}

	lat, hasLat, err := floatParam(r, "lat")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	lng, hasLng, err := floatParam(r, "lng")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if hasLat || hasLng {
		if !hasLat || !hasLng {
			writeError(w, r, http.StatusBadRequest, "lat and lng must be given together")
			return
		}
		if !geo.IsValid(geo.Point{Latitude: lat, Longitude: lng}) {
			writeError(w, r, http.StatusBadRequest, geo.ErrInvalidCoordinate.Error())
			return
		}
		elevation, err := requireFloat(r, "elevation")
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		loc := forecast.WeatherLocation{Lat: lat, Lng: lng, Elevation: elevation, Name: name}
		writeJSON(w, r, http.StatusOK, s.compositor.Forecast(ctx, loc))
		return
	}

	watched := s.Watched()
	results := make([]*forecast.WeatherData, 0, len(watched))
	for _, loc := range watched {
		results = append(results, s.compositor.Forecast(ctx, loc))
	}
	writeJSON(w, r, http.StatusOK, results)
}
