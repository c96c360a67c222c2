package services

import (
	"fmt"
	"log/slog"
	"net/http"
)

// HomepageHandler serves a plain HTML index of the API at the server root
func HomepageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	html := `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>trailhead</title>
    <style>
        body {
            font-family: 'Courier New', Consolas, monospace;
            background: #0b1a0b;
            color: #cfe8cf;
            padding: 20px;
            line-height: 1.4;
        }
        a { color: #8fd18f; text-decoration: none; }
        a:hover { text-decoration: underline; }
        pre { margin: 0; }
        .header { color: #f0d060; }
    </style>
</head>
<body>
<pre>
<span class="header">trailhead</span>

Trail model, waypoint search, itinerary planning and elevation-adjusted
forecasts for long-distance hikers.

<span class="header">Trail:</span>
  <a href="/api/v1/trail">GET /api/v1/trail</a>                           - Dataset summary
  <a href="/api/v1/trail/elevation?mile=31.7">GET /api/v1/trail/elevation?mile=</a>          - Elevation at a mile
  <a href="/api/v1/trail/coordinates?mile=31.7">GET /api/v1/trail/coordinates?mile=</a>        - Coordinates at a mile
  <a href="/api/v1/trail/range?start=0&end=30">GET /api/v1/trail/range?start=&end=</a>        - Trail slice (format=json|polyline|geojson|kml)
  <a href="/api/v1/trail/profile?start=0&end=30">GET /api/v1/trail/profile?start=&end=</a>      - Elevation profile

<span class="header">Waypoints:</span>
  <a href="/api/v1/waypoints/nearest?mile=30">GET /api/v1/waypoints/nearest?mile=</a>        - Nearest waypoint (or lat=&lng=)
  <a href="/api/v1/waypoints/ahead?mile=30">GET /api/v1/waypoints/ahead?mile=</a>          - Next waypoint northbound
  <a href="/api/v1/waypoints/behind?mile=30">GET /api/v1/waypoints/behind?mile=</a>         - Previous waypoint
  <a href="/api/v1/shelters?start=0&end=50">GET /api/v1/shelters?start=&end=</a>           - Shelters in range
  <a href="/api/v1/resupply?start=0&end=50">GET /api/v1/resupply?start=&end=</a>           - Resupply in range
  <a href="/api/v1/features?start=0&end=50">GET /api/v1/features?start=&end=</a>           - Landmarks in range
  GET /api/v1/resupply/{id}/businesses       - Businesses at a resupply point

<span class="header">Planning:</span>
  <a href="/api/v1/plan?start=0&pace=15&days=5">GET /api/v1/plan?start=&pace=&days=</a>        - Itinerary (direction=nobo|sobo, format=kml)
  <a href="/api/v1/weather">GET /api/v1/weather</a>                         - Forecasts (mile= or lat=&lng=&elevation=)
  GET /api/v1/locate?lat=&lng=               - Place a GPS fix on the trail

<span class="header">Operations:</span>
  <a href="/metrics">GET /metrics</a>                               - Prometheus metrics
</pre>
</body>
</html>`

	if _, err := fmt.Fprint(w, html); err != nil {
		slog.Error("Failed to write homepage HTML", "error", err)
	}
}
