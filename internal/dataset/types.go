package dataset

import "fmt"

// TrailPoint is one knot of the trail's linear reference
type TrailPoint struct {
	Mile      float64 `json:"mile"`
	Elevation float64 `json:"elevation"` // feet
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

// Kind tags which detail block a Waypoint carries
type Kind string

const (
	KindShelter  Kind = "shelter"
	KindResupply Kind = "resupply"
	KindFeature  Kind = "feature"
)

// ParseKind converts a stored kind name into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindShelter, KindResupply, KindFeature:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown waypoint kind %q", s)
}

// ResupplyQuality ranks how complete a resupply stop is
type ResupplyQuality string

const (
	QualityFull    ResupplyQuality = "full"
	QualityLimited ResupplyQuality = "limited"
	QualityMinimal ResupplyQuality = "minimal"
)

// Waypoint is a point of interest placed on the trail.
//
// Exactly one of Shelter or Resupply is set when Kind is shelter or resupply;
// features carry neither.
type Waypoint struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	Mile      float64 `json:"mile"`
	SoboMile  float64 `json:"soboMile"`
	Elevation float64 `json:"elevation"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	State     string  `json:"state"`
	Type      string  `json:"type"`
	Notes     string  `json:"notes,omitempty"`

	Shelter  *ShelterInfo  `json:"shelter,omitempty"`
	Resupply *ResupplyInfo `json:"resupply,omitempty"`
}

// ShelterInfo holds shelter capability flags
type ShelterInfo struct {
	Capacity   int    `json:"capacity"`
	HasWater   bool   `json:"hasWater"`
	HasPrivy   bool   `json:"hasPrivy"`
	HasBearBox bool   `json:"hasBearBox"`
	HasShower  bool   `json:"hasShower"`
	HasView    bool   `json:"hasView"`
	Warning    string `json:"warning,omitempty"`
}

// ResupplyInfo holds services available at a resupply stop
type ResupplyInfo struct {
	HasGrocery        bool            `json:"hasGrocery"`
	HasPostOffice     bool            `json:"hasPostOffice"`
	HasLodging        bool            `json:"hasLodging"`
	HasRestaurant     bool            `json:"hasRestaurant"`
	HasLaundry        bool            `json:"hasLaundry"`
	HasShower         bool            `json:"hasShower"`
	Quality           ResupplyQuality `json:"resupplyQuality"`
	DistanceFromTrail float64         `json:"distanceFromTrail"` // miles
	Direction         string          `json:"direction,omitempty"`
	Businesses        []string        `json:"businesses,omitempty"`
}

// Position returns the waypoint's mile and coordinates
func (w Waypoint) Position() (mile, lat, lng float64) {
	return w.Mile, w.Lat, w.Lng
}
