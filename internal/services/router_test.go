package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/trailhead/server/internal/cache"
	"github.com/dpup/trailhead/server/internal/clients/directory"
	"github.com/dpup/trailhead/server/internal/config"
	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/dataset/datasettest"
	"github.com/dpup/trailhead/server/internal/lib/forecast"
	"github.com/dpup/trailhead/server/internal/lib/itinerary"
	"github.com/dpup/trailhead/server/internal/lib/locate"
	"github.com/dpup/trailhead/server/internal/lib/matching"
)

type stubFetcher struct {
	err error
}

func (f stubFetcher) Fetch(ctx context.Context, lat, lng float64) (*forecast.RawForecast, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &forecast.RawForecast{
		ElevationMeters: 609.6,
		Hourly:          forecast.HourlySeries{Time: []string{"2025-04-01T06:00"}, Temperature: []float64{60}},
	}, nil
}

type testServer struct {
	handler http.Handler
	weather *WeatherService
}

func newTestServer(t *testing.T, fetchErr error) *testServer {
	t.Helper()

	dir, err := directory.Decode(strings.NewReader(`{"neels-gap": [{"name": "Mountain Crossings", "type": "outfitter"}]}`))
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	trailSvc := NewTrailService(datasettest.Trail(), dir)
	compositor := forecast.NewCompositor(stubFetcher{err: fetchErr}, cache.NewCache(), forecast.Options{})
	weatherSvc := NewWeatherService(compositor, trailSvc.Store(), &cfg.Weather)
	plans := NewItineraryService(trailSvc, &cfg.Planner)

	return &testServer{
		handler: NewRouter(trailSvc, plans, weatherSvc),
		weather: weatherSvc,
	}
}

func (s *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func ids(wps []dataset.Waypoint) []string {
	out := make([]string, len(wps))
	for i, wp := range wps {
		out[i] = wp.ID
	}
	return out
}

func TestTrailSummary(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/trail")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	summary := decode[dataset.Summary](t, rec)
	assert.Equal(t, datasettest.TrailLength, summary.TrailLength)
	assert.Equal(t, -8.8, summary.ApproachStart)
	assert.Equal(t, 5, summary.Shelters)
	assert.Equal(t, 3, summary.Resupply)
	assert.Equal(t, 4, summary.Features)
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trail", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMiddleware_HandlersCanLogOnBareRequests(t *testing.T) {
	var sawID string
	h := requestIDMiddleware(loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Warnw(r.Context(), "handler log line")
		sawID = RequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, sawID)
	assert.Equal(t, sawID, rec.Header().Get("X-Request-ID"))
}

func TestElevationAndCoordinates(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/trail/elevation?mile=15")
	require.Equal(t, http.StatusOK, rec.Code)
	elev := decode[map[string]float64](t, rec)
	assert.Equal(t, 3600.0, elev["elevation"])
	assert.InDelta(t, datasettest.TrailLength-15, elev["soboMile"], 1e-9)

	rec = srv.get(t, "/api/v1/trail/elevation?mile=-50")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1800.0, decode[map[string]float64](t, rec)["elevation"])

	rec = srv.get(t, "/api/v1/trail/coordinates?mile=20")
	require.Equal(t, http.StatusOK, rec.Code)
	coords := decode[map[string]float64](t, rec)
	assert.InDelta(t, datasettest.LatAt(20), coords["lat"], 1e-9)
	assert.InDelta(t, datasettest.LngAt(20), coords["lng"], 1e-9)
}

func TestBadParameters(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, target := range []string{
		"/api/v1/trail/elevation",
		"/api/v1/trail/elevation?mile=abc",
		"/api/v1/trail/elevation?mile=NaN",
		"/api/v1/trail/range?start=x",
		"/api/v1/trail/range?format=svg",
		"/api/v1/trail/profile?samples=many",
		"/api/v1/waypoints/nearest",
		"/api/v1/waypoints/nearest?lat=34",
		"/api/v1/waypoints/nearest?lat=95&lng=0",
		"/api/v1/waypoints/ahead",
		"/api/v1/plan?direction=east",
		"/api/v1/plan?days=1000",
		"/api/v1/plan?pace=fast",
		"/api/v1/plan?format=gpx",
		"/api/v1/weather?lat=34&lng=-84",
		"/api/v1/weather?mile=Inf",
		"/api/v1/locate?lat=34",
	} {
		t.Run(target, func(t *testing.T) {
			rec := srv.get(t, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.get(t, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode[map[string]string](t, rec)["error"])
}

func TestRange(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/trail/range?start=0&end=30")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Points []dataset.TrailPoint `json:"points"`
		Gain   float64              `json:"gain"`
		Loss   float64              `json:"loss"`
	}](t, rec)
	require.Len(t, body.Points, 4)
	assert.Equal(t, 0.0, body.Points[0].Mile)
	assert.Equal(t, 30.0, body.Points[3].Mile)
	// 3740 -> 3200 -> 4000 -> 3100
	assert.Equal(t, 800.0, body.Gain)
	assert.Equal(t, 1440.0, body.Loss)

	rec = srv.get(t, "/api/v1/trail/range?start=30&end=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]any](t, rec)["points"])
}

func TestRange_Formats(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/trail/range?start=0&end=30&format=polyline")
	require.Equal(t, http.StatusOK, rec.Code)
	poly := decode[map[string]any](t, rec)
	assert.Equal(t, 4.0, poly["count"])
	assert.NotEmpty(t, poly["polyline"])

	rec = srv.get(t, "/api/v1/trail/range?start=0&end=30&format=geojson")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"FeatureCollection"`)
	assert.Contains(t, rec.Body.String(), "blood-mountain")

	rec = srv.get(t, "/api/v1/trail/range?start=0&end=30&format=kml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<LineString>")
}

func TestProfile(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/trail/profile?start=0&end=20&samples=3")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Samples []struct {
			Mile      float64 `json:"mile"`
			Elevation float64 `json:"elevation"`
		} `json:"samples"`
	}](t, rec)
	require.Len(t, body.Samples, 3)
	assert.Equal(t, 3740.0, body.Samples[0].Elevation)
	assert.Equal(t, 3200.0, body.Samples[1].Elevation)
	assert.Equal(t, 4000.0, body.Samples[2].Elevation)
}

func TestWaypointSearch(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/waypoints/nearest?mile=31")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "neels-gap", decode[dataset.Waypoint](t, rec).ID)

	target := "/api/v1/waypoints/nearest?lat=" + ftoa(datasettest.LatAt(8)) + "&lng=" + ftoa(datasettest.LngAt(8))
	rec = srv.get(t, target)
	require.Equal(t, http.StatusOK, rec.Code)
	match := decode[matching.Match](t, rec)
	assert.Equal(t, "hawk-mountain", match.Waypoint.ID)
	assert.Less(t, match.DistanceMiles, 1.0)

	rec = srv.get(t, "/api/v1/waypoints/ahead?mile=31.7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "low-gap", decode[dataset.Waypoint](t, rec).ID)

	rec = srv.get(t, "/api/v1/waypoints/behind?mile=31.7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "blood-mountain", decode[dataset.Waypoint](t, rec).ID)

	rec = srv.get(t, "/api/v1/waypoints/ahead?mile=2197.9")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.get(t, "/api/v1/waypoints/behind?mile=-8.8")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaypointByID(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/waypoints/neels-gap")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Waypoint   dataset.Waypoint     `json:"waypoint"`
		Businesses []directory.Business `json:"businesses"`
	}](t, rec)
	assert.Equal(t, dataset.KindResupply, body.Waypoint.Kind)
	require.NotNil(t, body.Waypoint.Resupply)
	assert.Equal(t, dataset.QualityFull, body.Waypoint.Resupply.Quality)
	require.Len(t, body.Businesses, 1)

	rec = srv.get(t, "/api/v1/waypoints/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRangeLists(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/shelters?start=0&end=20")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"stover-creek", "hawk-mountain", "gooch-mountain"}, ids(decode[[]dataset.Waypoint](t, rec)))

	rec = srv.get(t, "/api/v1/resupply?start=20.5&end=31.7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"suches", "neels-gap"}, ids(decode[[]dataset.Waypoint](t, rec)))

	rec = srv.get(t, "/api/v1/features")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"amicalola-falls", "springer-mountain", "blood-mountain", "katahdin"},
		ids(decode[[]dataset.Waypoint](t, rec)))

	rec = srv.get(t, "/api/v1/shelters?start=20&end=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]dataset.Waypoint](t, rec))
}

func TestBusinesses(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/resupply/neels-gap/businesses")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]directory.Business](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Mountain Crossings", list[0].Name)

	rec = srv.get(t, "/api/v1/resupply/suches/businesses")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]directory.Business](t, rec))

	rec = srv.get(t, "/api/v1/resupply/hawk-mountain/businesses")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlan(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/plan?start=0&pace=15&days=3&direction=NOBO")
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[PlanResponse](t, rec)

	assert.Equal(t, itinerary.Northbound, plan.Direction)
	require.Len(t, plan.Days, 3)
	assert.Equal(t, 45.0, plan.Days[2].EndMile)
	assert.Equal(t, 45.0, plan.Summary.TotalMiles)
	assert.Equal(t, 4, plan.Summary.ShelterCount)
	assert.Equal(t, 2, plan.Summary.ResupplyCount)
	assert.Equal(t, []string{"neels-gap"}, ids(plan.Days[2].Resupply))
}

func TestPlan_Defaults(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/plan")
	require.Equal(t, http.StatusOK, rec.Code)
	plan := decode[PlanResponse](t, rec)
	assert.Len(t, plan.Days, 7)
	assert.Equal(t, 15.0, plan.MilesPerDay)
	assert.Equal(t, 105.0, plan.Summary.TotalMiles)
}

func TestPlan_KML(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/plan?start=45&pace=20&days=2&direction=sobo&format=kml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.google-earth.kml+xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "<Folder>"))
}

func TestWeather(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/v1/weather?mile=20&name=Suches")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode[forecast.WeatherData](t, rec)
	assert.Equal(t, "Suches", data.Location.Name)
	assert.Equal(t, 4000.0, data.Location.Elevation)
	assert.Equal(t, 2000.0, data.StationElevation)
	assert.Equal(t, -7.0, data.TemperatureAdjustment)
	assert.Equal(t, []float64{53}, data.Hourly.Temperature)

	rec = srv.get(t, "/api/v1/weather?lat=34.74&lng=-83.94&elevation=5000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []float64{50}, decode[forecast.WeatherData](t, rec).Hourly.Temperature)

	rec = srv.get(t, "/api/v1/weather")
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]forecast.WeatherData](t, rec)
	require.Len(t, all, 2)
	assert.Equal(t, "Springer Mountain", all[0].Location.Name)
	assert.Equal(t, "Neels Gap", all[1].Location.Name)
}

func TestWeather_FailureIsReportedInBody(t *testing.T) {
	srv := newTestServer(t, errors.New("provider down"))

	rec := srv.get(t, "/api/v1/weather?mile=20")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode[forecast.WeatherData](t, rec)
	assert.NotEmpty(t, data.Error)
	assert.Empty(t, data.Hourly.Temperature)
}

func TestLocate(t *testing.T) {
	srv := newTestServer(t, nil)

	target := "/api/v1/locate?lat=" + ftoa(datasettest.LatAt(20)) + "&lng=" + ftoa(datasettest.LngAt(20)) + "&accuracy=12"
	rec := srv.get(t, target)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode[locate.Snapshot](t, rec)
	assert.Equal(t, 20.0, snap.Mile)
	assert.Equal(t, 12.0, snap.Position.Accuracy)
	require.NotNil(t, snap.Ahead)
	assert.Equal(t, "suches", snap.Ahead.ID)

	rec = srv.get(t, "/api/v1/locate?error=permission_denied")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "permission_denied", body["kind"])
	assert.Contains(t, body["error"], "denied")

	rec = srv.get(t, "/api/v1/locate?lat=95&lng=0")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "unavailable", decode[map[string]string](t, rec)["kind"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locate?lat="+ftoa(datasettest.LatAt(30))+"&lng="+ftoa(datasettest.LngAt(30)), nil)
	req.Header.Set("X-Client-ID", "hiker-1")
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 30.0, decode[locate.Snapshot](t, rec).Mile)
}

func TestRefreshWatched(t *testing.T) {
	ok := newTestServer(t, nil)
	refreshed, failed := ok.weather.RefreshWatched(context.Background())
	assert.Equal(t, 2, refreshed)
	assert.Equal(t, 0, failed)

	bad := newTestServer(t, errors.New("down"))
	refreshed, failed = bad.weather.RefreshWatched(context.Background())
	assert.Equal(t, 0, refreshed)
	assert.Equal(t, 2, failed)
}

func TestHomepage(t *testing.T) {
	rec := httptest.NewRecorder()
	HomepageHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/plan")

	rec = httptest.NewRecorder()
	HomepageHandler(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type countingRefresher struct {
	calls chan struct{}
}

func (c *countingRefresher) RefreshWatched(ctx context.Context) (int, int) {
	c.calls <- struct{}{}
	return 1, 0
}

func TestPeriodicRefresh(t *testing.T) {
	r := &countingRefresher{calls: make(chan struct{}, 10)}
	p := NewPeriodicRefreshService(r, 10*time.Millisecond, time.Second)

	require.NoError(t, p.StartPeriodicRefresh(context.Background()))
	require.NoError(t, p.StartPeriodicRefresh(context.Background()))
	assert.True(t, p.IsRunning())

	for i := 0; i < 2; i++ {
		select {
		case <-r.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("refresh did not run")
		}
	}

	p.Stop()
	assert.False(t, p.IsRunning())
	p.Stop()
}

func TestPeriodicRefresh_StopsWithContext(t *testing.T) {
	r := &countingRefresher{calls: make(chan struct{}, 10)}
	p := NewPeriodicRefreshService(r, time.Hour, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.StartPeriodicRefresh(ctx))

	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("initial refresh did not run")
	}
	cancel()

	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit on cancellation")
	}
}

type loggingRefresher struct {
	calls chan struct{}
}

func (l *loggingRefresher) RefreshWatched(ctx context.Context) (int, int) {
	logging.Infow(ctx, "refreshing watched locations")
	l.calls <- struct{}{}
	return 0, 0
}

func TestPeriodicRefresh_BareContextGetsLogger(t *testing.T) {
	r := &loggingRefresher{calls: make(chan struct{}, 10)}
	p := NewPeriodicRefreshService(r, time.Hour, time.Second)

	require.NoError(t, p.StartPeriodicRefresh(context.Background()))

	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not run")
	}
	p.Stop()
	assert.False(t, p.IsRunning())
}

type panickingRefresher struct{}

func (panickingRefresher) RefreshWatched(ctx context.Context) (int, int) {
	panic("upstream exploded")
}

func TestPeriodicRefresh_RecoversFromPanic(t *testing.T) {
	p := NewPeriodicRefreshService(panickingRefresher{}, time.Hour, time.Second)
	require.NoError(t, p.StartPeriodicRefresh(context.Background()))

	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit after panic")
	}
}
