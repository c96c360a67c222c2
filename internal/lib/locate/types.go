package locate

import (
	"context"
	"fmt"

	"github.com/dpup/trailhead/server/internal/dataset"
	"github.com/dpup/trailhead/server/internal/lib/matching"
)

// Position is a device fix. Accuracy is the reported radius in meters.
type Position struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

// FailureKind categorizes why a position could not be acquired
type FailureKind string

const (
	PermissionDenied FailureKind = "permission_denied"
	Unavailable      FailureKind = "unavailable"
	Timeout          FailureKind = "timeout"
	Unknown          FailureKind = "unknown"
)

// ParseFailureKind maps a kind name to a FailureKind, defaulting to Unknown
func ParseFailureKind(s string) FailureKind {
	switch FailureKind(s) {
	case PermissionDenied, Unavailable, Timeout:
		return FailureKind(s)
	default:
		return Unknown
	}
}

// Failure is a categorized position error
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("locate %s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("locate %s", f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Message is a sentence suitable for showing to the hiker
func (f *Failure) Message() string {
	switch f.Kind {
	case PermissionDenied:
		return "Location access was denied. Enable location permissions to find your trail mile."
	case Unavailable:
		return "Your location is unavailable right now. Check that GPS is on and try again."
	case Timeout:
		return "Finding your location took too long. Move to open sky and try again."
	default:
		return "Could not determine your location."
	}
}

// Snapshot places a position on the trail
type Snapshot struct {
	Position Position `json:"position"`
	// Mile and Elevation of the closest stored trail point
	Mile      float64 `json:"mile"`
	SoboMile  float64 `json:"soboMile"`
	Elevation float64 `json:"elevation"`
	// DistanceToTrail is miles from the fix to that trail point
	DistanceToTrail float64           `json:"distanceToTrail"`
	Nearest         *matching.Match   `json:"nearest,omitempty"`
	Ahead           *dataset.Waypoint `json:"ahead,omitempty"`
	Behind          *dataset.Waypoint `json:"behind,omitempty"`
}

// PositionSource acquires a device position
type PositionSource interface {
	Acquire(ctx context.Context) (Position, error)
}

// StaticSource returns a fixed position or error
type StaticSource struct {
	Pos Position
	Err error
}

func (s StaticSource) Acquire(ctx context.Context) (Position, error) {
	return s.Pos, s.Err
}

// Failed is a source that always fails with kind
func Failed(kind FailureKind) StaticSource {
	return StaticSource{Err: &Failure{Kind: kind}}
}
