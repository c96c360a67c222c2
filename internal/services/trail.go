package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dpup/trailhead/server/internal/clients/directory"
	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/export"
	"github.com/dpup/trailhead/server/internal/lib/geo"
	"github.com/dpup/trailhead/server/internal/lib/locate"
	"github.com/dpup/trailhead/server/internal/lib/matching"
	"github.com/dpup/trailhead/server/internal/lib/ranges"
	"github.com/dpup/trailhead/server/internal/lib/trail"
)

// TrailService serves the trail model, waypoint searches and position
// snapping. Everything it reads is immutable, so handlers need no locking.
type TrailService struct {
	ds        *dataset.TrailDataset
	store     *trail.Store
	matcher   matching.WaypointMatcher
	ranges    *ranges.Service
	directory *directory.Directory
	locator   *locate.Locator
	geo       geo.GeoUtils
}

// NewTrailService wires the lookup components over one dataset. dir may be
// nil when no business directory is configured.
func NewTrailService(ds *dataset.TrailDataset, dir *directory.Directory) *TrailService {
	if dir == nil {
		dir = directory.Empty()
	}
	store := trail.NewStore(ds)
	matcher := matching.NewWaypointMatcher(ds.Waypoints)
	return &TrailService{
		ds:        ds,
		store:     store,
		matcher:   matcher,
		ranges:    ranges.NewService(ds),
		directory: dir,
		locator:   locate.NewLocator(store, matcher),
		geo:       geo.NewGeoUtils(),
	}
}

// Store exposes the linear reference store for other services
func (s *TrailService) Store() *trail.Store {
	return s.store
}

// Ranges exposes the range query service for other services
func (s *TrailService) Ranges() *ranges.Service {
	return s.ranges
}

// Summary handles GET /api/v1/trail
func (s *TrailService) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ds.Summary())
}

// Elevation handles GET /api/v1/trail/elevation?mile=
func (s *TrailService) Elevation(w http.ResponseWriter, r *http.Request) {
	mile, err := requireFloat(r, "mile")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]float64{
		"mile":      mile,
		"soboMile":  s.ds.SoboMile(mile),
		"elevation": s.store.ElevationAt(mile),
	})
}

// Coordinates handles GET /api/v1/trail/coordinates?mile=
func (s *TrailService) Coordinates(w http.ResponseWriter, r *http.Request) {
	mile, err := requireFloat(r, "mile")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	pos := s.store.CoordinatesAt(mile)
	writeJSON(w, r, http.StatusOK, map[string]float64{
		"mile": mile,
		"lat":  pos.Latitude,
		"lng":  pos.Longitude,
	})
}

// Range handles GET /api/v1/trail/range?start=&end=&format=
func (s *TrailService) Range(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.rangeParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	points := s.store.RangeSlice(start, end)

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		gain, loss := s.store.GainLoss(start, end)
		writeJSON(w, r, http.StatusOK, map[string]any{
			"start":  start,
			"end":    end,
			"points": points,
			"gain":   gain,
			"loss":   loss,
		})
	case "polyline":
		coords := make([]geo.Point, len(points))
		for i, p := range points {
			coords[i] = geo.Point{Latitude: p.Lat, Longitude: p.Lng}
		}
		encoded, err := s.geo.EncodePolyline(coords)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "failed to encode polyline")
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"start":    start,
			"end":      end,
			"count":    len(points),
			"polyline": encoded,
		})
	case "geojson":
		fc := export.RangeGeoJSON(points, s.ranges.WaypointsInRange(start, end))
		body, err := fc.MarshalJSON()
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "failed to encode geojson")
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(body)
	case "kml":
		w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
		title := fmt.Sprintf("Mile %.1f to %.1f", start, end)
		if err := export.RangeKML(w, title, points, s.ranges.WaypointsInRange(start, end)); err != nil {
			writeError(w, r, http.StatusInternalServerError, "failed to encode kml")
		}
	default:
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
	}
}

// Profile handles GET /api/v1/trail/profile?start=&end=&samples=
func (s *TrailService) Profile(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.rangeParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	samples, err := intOr(r, "samples", 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	gain, loss := s.store.GainLoss(start, end)
	writeJSON(w, r, http.StatusOK, map[string]any{
		"start":   start,
		"end":     end,
		"samples": s.store.Profile(start, end, samples),
		"gain":    gain,
		"loss":    loss,
	})
}

// NearestWaypoint handles GET /api/v1/waypoints/nearest?lat=&lng= or ?mile=
func (s *TrailService) NearestWaypoint(w http.ResponseWriter, r *http.Request) {
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
		match, ok := s.matcher.NearestByCoordinate(lat, lng)
		if !ok {
			writeError(w, r, http.StatusNotFound, "no waypoints")
			return
		}
		writeJSON(w, r, http.StatusOK, match)
		return
	}

	mile, err := requireFloat(r, "mile")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "mile or lat/lng is required")
		return
	}
	wp, ok := s.matcher.NearestByMile(mile)
	if !ok {
		writeError(w, r, http.StatusNotFound, "no waypoints")
		return
	}
	writeJSON(w, r, http.StatusOK, wp)
}

// WaypointAhead handles GET /api/v1/waypoints/ahead?mile=
func (s *TrailService) WaypointAhead(w http.ResponseWriter, r *http.Request) {
	s.directional(w, r, s.matcher.NearestAhead, "no waypoint ahead")
}

// WaypointBehind handles GET /api/v1/waypoints/behind?mile=
func (s *TrailService) WaypointBehind(w http.ResponseWriter, r *http.Request) {
	s.directional(w, r, s.matcher.NearestBehind, "no waypoint behind")
}

func (s *TrailService) directional(w http.ResponseWriter, r *http.Request, find func(float64) (dataset.Waypoint, bool), missing string) {
	mile, err := requireFloat(r, "mile")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	wp, ok := find(mile)
	if !ok {
		writeError(w, r, http.StatusNotFound, missing)
		return
	}
	writeJSON(w, r, http.StatusOK, wp)
}

// Waypoint handles GET /api/v1/waypoints/{id}
func (s *TrailService) Waypoint(w http.ResponseWriter, r *http.Request) {
	wp, ok := s.ds.WaypointByID(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, "waypoint not found")
		return
	}
	resp := map[string]any{"waypoint": wp}
	if wp.Kind == dataset.KindResupply {
		if list, ok := s.directory.Lookup(wp.ID); ok {
			resp["businesses"] = list
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// Shelters handles GET /api/v1/shelters?start=&end=
func (s *TrailService) Shelters(w http.ResponseWriter, r *http.Request) {
	s.listRange(w, r, s.ranges.SheltersInRange)
}

// Resupply handles GET /api/v1/resupply?start=&end=
func (s *TrailService) Resupply(w http.ResponseWriter, r *http.Request) {
	s.listRange(w, r, s.ranges.ResupplyInRange)
}

// Features handles GET /api/v1/features?start=&end=
func (s *TrailService) Features(w http.ResponseWriter, r *http.Request) {
	s.listRange(w, r, s.ranges.FeaturesInRange)
}

func (s *TrailService) listRange(w http.ResponseWriter, r *http.Request, query func(start, end float64) []dataset.Waypoint) {
	start, end, err := s.rangeParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, query(start, end))
}

// Businesses handles GET /api/v1/resupply/{id}/businesses
func (s *TrailService) Businesses(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	wp, ok := s.ds.WaypointByID(id)
	if !ok || wp.Kind != dataset.KindResupply {
		writeError(w, r, http.StatusNotFound, "resupply point not found")
		return
	}
	list, ok := s.directory.Lookup(id)
	if !ok {
		list = []directory.Business{}
	}
	writeJSON(w, r, http.StatusOK, list)
}

// Locate handles GET /api/v1/locate?lat=&lng=&accuracy= or ?error=<kind>.
// The error form lets a client report a failed device fix and get back the
// message to show. Overlapping requests are ordered per X-Client-ID; without
// the header each request stands alone.
func (s *TrailService) Locate(w http.ResponseWriter, r *http.Request) {
	var src locate.PositionSource
	if kind := r.URL.Query().Get("error"); kind != "" {
		src = locate.Failed(locate.ParseFailureKind(kind))
	} else {
		lat, err := requireFloat(r, "lat")
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		lng, err := requireFloat(r, "lng")
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		accuracy, err := floatOr(r, "accuracy", 0)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		src = locate.StaticSource{Pos: locate.Position{Lat: lat, Lng: lng, Accuracy: accuracy}}
	}

	client := r.Header.Get("X-Client-ID")
	if client == "" {
		client = RequestID(r.Context())
	}

	snap, err := s.locator.Resolve(r.Context(), client, src)
	var failure *locate.Failure
	switch {
	case err == nil, errors.Is(err, locate.ErrSuperseded):
		writeJSON(w, r, http.StatusOK, snap)
	case errors.As(err, &failure):
		writeJSON(w, r, http.StatusUnprocessableEntity, map[string]string{
			"error": failure.Message(),
			"kind":  string(failure.Kind),
		})
	default:
		writeError(w, r, http.StatusInternalServerError, "failed to locate position")
	}
}

// rangeParams reads start/end, defaulting to the whole trail. An inverted
// range is passed through and matches nothing.
func (s *TrailService) rangeParams(r *http.Request) (float64, float64, error) {
	start, err := floatOr(r, "start", s.ds.ApproachStart)
	if err != nil {
		return 0, 0, err
	}
	end, err := floatOr(r, "end", s.ds.TrailLength)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
