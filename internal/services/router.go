package services

import (
	"net/http"
)

// NewRouter mounts the JSON API under /api/v1/ and wraps it with request id
// and access logging
func NewRouter(trail *TrailService, plans *ItineraryService, weather *WeatherService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/trail", trail.Summary)
	mux.HandleFunc("GET /api/v1/trail/elevation", trail.Elevation)
	mux.HandleFunc("GET /api/v1/trail/coordinates", trail.Coordinates)
	mux.HandleFunc("GET /api/v1/trail/range", trail.Range)
	mux.HandleFunc("GET /api/v1/trail/profile", trail.Profile)

	mux.HandleFunc("GET /api/v1/waypoints/nearest", trail.NearestWaypoint)
	mux.HandleFunc("GET /api/v1/waypoints/ahead", trail.WaypointAhead)
	mux.HandleFunc("GET /api/v1/waypoints/behind", trail.WaypointBehind)
	mux.HandleFunc("GET /api/v1/waypoints/{id}", trail.Waypoint)

	mux.HandleFunc("GET /api/v1/shelters", trail.Shelters)
	mux.HandleFunc("GET /api/v1/resupply", trail.Resupply)
	mux.HandleFunc("GET /api/v1/resupply/{id}/businesses", trail.Businesses)
	mux.HandleFunc("GET /api/v1/features", trail.Features)

	mux.HandleFunc("GET /api/v1/locate", trail.Locate)
	mux.HandleFunc("GET /api/v1/plan", plans.Plan)
	mux.HandleFunc("GET /api/v1/weather", weather.Forecast)

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})

	return requestIDMiddleware(loggingMiddleware(mux))
}
