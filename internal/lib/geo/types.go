package geo

// EarthRadiusMiles is the mean Earth radius used for all trail distances
const EarthRadiusMiles = 3959.0

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// GeoUtils interface defines geographic encoding utilities
type GeoUtils interface {
	// Encode point sequence as a Google polyline string
	EncodePolyline(points []Point) (string, error)
}

// NewGeoUtils is implemented in geo.go
