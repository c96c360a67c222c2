package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dpup/trailhead/server/internal/lib/geo"
)

// SoboTolerance absorbs one-decimal rounding of stored southbound miles
const SoboTolerance = 0.05

var (
	ErrNoPoints          = errors.New("dataset has no trail points")
	ErrUnsorted          = errors.New("trail points are not ascending by mile")
	ErrDuplicateMile     = errors.New("duplicate trail point mile")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrTrailLength       = errors.New("trail length is shorter than the last trail point")
	ErrMissingID         = errors.New("waypoint has no id")
	ErrDuplicateID       = errors.New("duplicate waypoint id")
	ErrUnknownKind       = errors.New("unknown waypoint kind")
	ErrDetailMismatch    = errors.New("waypoint detail does not match its kind")
	ErrSoboMismatch      = errors.New("soboMile does not equal trail length minus mile")
	ErrMileOutOfRange    = errors.New("waypoint mile outside trail bounds")
)

// ValidationError collects every inconsistency found while loading a dataset
type ValidationError struct {
	Issues []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Error()
	}
	return fmt.Sprintf("dataset validation failed with %d issue(s): %s", len(e.Issues), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual issues to errors.Is and errors.As
func (e *ValidationError) Unwrap() []error {
	return e.Issues
}

func (e *ValidationError) add(sentinel error, format string, args ...interface{}) {
	e.Issues = append(e.Issues, fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)))
}

func validate(ds *TrailDataset) error {
	verr := &ValidationError{}

	if len(ds.Points) == 0 {
		verr.Issues = append(verr.Issues, ErrNoPoints)
		return verr
	}

	for i, p := range ds.Points {
		if !validPosition(p.Mile, p.Lat, p.Lng) || !isFinite(p.Elevation) {
			verr.add(ErrInvalidCoordinate, "point %d (mile %.2f)", i, p.Mile)
		}
		if i == 0 {
			continue
		}
		prev := ds.Points[i-1].Mile
		switch {
		case p.Mile == prev:
			verr.add(ErrDuplicateMile, "points %d and %d at mile %.2f", i-1, i, p.Mile)
		case p.Mile < prev:
			verr.add(ErrUnsorted, "point %d mile %.2f follows mile %.2f", i, p.Mile, prev)
		}
	}

	last := ds.Points[len(ds.Points)-1].Mile
	if ds.TrailLength < last-SoboTolerance {
		verr.add(ErrTrailLength, "trail length %.2f, last point %.2f", ds.TrailLength, last)
	}

	seen := make(map[string]bool, len(ds.Waypoints))
	for _, wp := range ds.Waypoints {
		label := wp.ID
		if label == "" {
			label = wp.Name
		}

		if wp.ID == "" {
			verr.add(ErrMissingID, "waypoint %q at mile %.2f", wp.Name, wp.Mile)
		} else if seen[wp.ID] {
			verr.add(ErrDuplicateID, "%s", wp.ID)
		}
		seen[wp.ID] = true

		if _, err := ParseKind(string(wp.Kind)); err != nil {
			verr.add(ErrUnknownKind, "%s has kind %q", label, wp.Kind)
		} else if !detailMatchesKind(wp) {
			verr.add(ErrDetailMismatch, "%s (%s)", label, wp.Kind)
		}

		if !validPosition(wp.Mile, wp.Lat, wp.Lng) {
			verr.add(ErrInvalidCoordinate, "waypoint %s", label)
		}

		if wp.Mile < ds.ApproachStart-SoboTolerance || wp.Mile > ds.TrailLength+SoboTolerance {
			verr.add(ErrMileOutOfRange, "%s at mile %.2f not in [%.2f, %.2f]", label, wp.Mile, ds.ApproachStart, ds.TrailLength)
		}

		want := ds.TrailLength - wp.Mile
		if math.Abs(wp.SoboMile-want) > SoboTolerance {
			verr.add(ErrSoboMismatch, "%s soboMile %.2f, expected %.2f", label, wp.SoboMile, want)
		}
	}

	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}

func detailMatchesKind(wp Waypoint) bool {
	switch wp.Kind {
	case KindShelter:
		return wp.Shelter != nil && wp.Resupply == nil
	case KindResupply:
		if wp.Resupply == nil || wp.Shelter != nil {
			return false
		}
		switch wp.Resupply.Quality {
		case QualityFull, QualityLimited, QualityMinimal:
			return true
		}
		return false
	case KindFeature:
		return wp.Shelter == nil && wp.Resupply == nil
	}
	return false
}

func validPosition(mile, lat, lng float64) bool {
	if !isFinite(mile) || !isFinite(lat) || !isFinite(lng) {
		return false
	}
	return geo.IsValid(geo.Point{Latitude: lat, Longitude: lng})
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
