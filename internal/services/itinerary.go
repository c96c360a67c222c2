package services

import (
	"fmt"
	"net/http"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/trailhead/server/internal/config"
	"github.com/dpup/trailhead/server/internal/lib/export"
	"github.com/dpup/trailhead/server/internal/lib/itinerary"
	"github.com/dpup/trailhead/server/internal/lib/trail"
	"github.com/dpup/trailhead/server/internal/metrics"
)

// ItineraryService generates day-by-day plans
type ItineraryService struct {
	planner *itinerary.Planner
	store   *trail.Store
	config  *config.PlannerConfig
}

// PlanResponse is the JSON body of a generated plan
type PlanResponse struct {
	Start       float64             `json:"start"`
	MilesPerDay float64             `json:"milesPerDay"`
	Direction   itinerary.Direction `json:"direction"`
	Days        []itinerary.DayPlan `json:"days"`
	Summary     itinerary.Summary   `json:"summary"`
}

// NewItineraryService creates the planning service over a trail
func NewItineraryService(trailService *TrailService, cfg *config.PlannerConfig) *ItineraryService {
	store := trailService.Store()
	return &ItineraryService{
		planner: itinerary.NewPlanner(trailService.Ranges(), store),
		store:   store,
		config:  cfg,
	}
}

// Plan handles GET /api/v1/plan?start=&pace=&days=&direction=&format=
func (s *ItineraryService) Plan(w http.ResponseWriter, r *http.Request) {
	start, err := floatOr(r, "start", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pace, err := floatOr(r, "pace", s.config.DefaultMilesPerDay)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	days, err := intOr(r, "days", s.config.DefaultDays)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if days > s.config.MaxDays {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("days must be at most %d", s.config.MaxDays))
		return
	}

	direction := itinerary.Northbound
	if raw := r.URL.Query().Get("direction"); raw != "" {
		if direction, err = itinerary.ParseDirection(raw); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	plans := s.planner.Generate(start, pace, days, direction)
	metrics.PlansGenerated.WithLabelValues(string(direction)).Inc()
	metrics.PlanDays.Observe(float64(len(plans)))

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, r, http.StatusOK, PlanResponse{
			Start:       start,
			MilesPerDay: pace,
			Direction:   direction,
			Days:        plans,
			Summary:     itinerary.Summarize(plans),
		})
	case "kml":
		w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
		w.Header().Set("Content-Disposition", `attachment; filename="itinerary.kml"`)
		title := fmt.Sprintf("%d-day %s itinerary from mile %.1f", len(plans), direction, start)
		if err := export.PlanKML(w, title, plans, s.store); err != nil {
			logging.Errorw(r.Context(), "Failed to write itinerary KML", "error", err)
		}
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}
