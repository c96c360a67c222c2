package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// fileDocument is the on-disk JSON layout produced by the dataset build step
type fileDocument struct {
	Version     string         `json:"version"`
	TrailLength float64        `json:"trailLength"`
	Points      []TrailPoint   `json:"points"`
	Shelters    []fileShelter  `json:"shelters"`
	Resupply    []fileResupply `json:"resupply"`
	Features    []fileWaypoint `json:"features"`
}

type fileWaypoint struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Mile      float64  `json:"mile"`
	SoboMile  *float64 `json:"soboMile"`
	Elevation float64  `json:"elevation"`
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	State     string   `json:"state"`
	Type      string   `json:"type"`
	Notes     string   `json:"notes"`
}

type fileShelter struct {
	fileWaypoint
	ShelterInfo
}

type fileResupply struct {
	fileWaypoint
	ResupplyInfo
}

// LoadFile reads and validates a dataset JSON file
func LoadFile(path string) (*TrailDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Decode parses a dataset JSON document and validates it
func Decode(r io.Reader) (*TrailDataset, error) {
	var doc fileDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	length := doc.TrailLength
	if length <= 0 && len(doc.Points) > 0 {
		length = doc.Points[len(doc.Points)-1].Mile
	}

	waypoints := make([]Waypoint, 0, len(doc.Shelters)+len(doc.Resupply)+len(doc.Features))
	for _, s := range doc.Shelters {
		wp := s.fileWaypoint.toWaypoint(KindShelter, length)
		info := s.ShelterInfo
		wp.Shelter = &info
		waypoints = append(waypoints, wp)
	}
	for _, rs := range doc.Resupply {
		wp := rs.fileWaypoint.toWaypoint(KindResupply, length)
		info := rs.ResupplyInfo
		wp.Resupply = &info
		waypoints = append(waypoints, wp)
	}
	for _, ft := range doc.Features {
		waypoints = append(waypoints, ft.toWaypoint(KindFeature, length))
	}

	return New(doc.Version, length, doc.Points, waypoints)
}

func (f fileWaypoint) toWaypoint(kind Kind, trailLength float64) Waypoint {
	sobo := trailLength - f.Mile
	if f.SoboMile != nil {
		sobo = *f.SoboMile
	}
	return Waypoint{
		ID:        f.ID,
		Name:      f.Name,
		Kind:      kind,
		Mile:      f.Mile,
		SoboMile:  sobo,
		Elevation: f.Elevation,
		Lat:       f.Lat,
		Lng:       f.Lng,
		State:     f.State,
		Type:      f.Type,
		Notes:     f.Notes,
	}
}
