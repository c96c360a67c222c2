// Package locate snaps device positions onto the trail.
package locate

import (
	"context"
	"errors"

	"github.com/dpup/trailhead/server/internal/lib/generation"
	"github.com/dpup/trailhead/server/internal/lib/geo"
	"github.com/dpup/trailhead/server/internal/lib/matching"
	"github.com/dpup/trailhead/server/internal/lib/trail"
	"github.com/dpup/trailhead/server/internal/metrics"
)

// ErrSuperseded is returned by Resolve when a newer request from the same
// client was started before this one finished. The returned snapshot was not
// applied.
var ErrSuperseded = errors.New("position request superseded")

// Locator turns positions into trail snapshots. Overlapping requests are
// ordered per client so one hiker's fix never supersedes another's.
type Locator struct {
	store       *trail.Store
	matcher     matching.WaypointMatcher
	generations *generation.Keyed[Snapshot]
}

// NewLocator creates a locator over the trail profile and waypoints
func NewLocator(store *trail.Store, matcher matching.WaypointMatcher) *Locator {
	return &Locator{store: store, matcher: matcher, generations: generation.NewKeyed[Snapshot]()}
}

// Snap places pos on the trail. Invalid coordinates are an Unavailable failure.
func (l *Locator) Snap(pos Position) (Snapshot, error) {
	if !geo.IsValid(geo.Point{Latitude: pos.Lat, Longitude: pos.Lng}) {
		return Snapshot{}, &Failure{Kind: Unavailable, Err: geo.ErrInvalidCoordinate}
	}

	point, dist, ok := l.store.NearestPoint(pos.Lat, pos.Lng)
	if !ok {
		return Snapshot{}, &Failure{Kind: Unavailable, Err: errors.New("trail has no points")}
	}

	snap := Snapshot{
		Position:        pos,
		Mile:            point.Mile,
		SoboMile:        l.store.Dataset().SoboMile(point.Mile),
		Elevation:       point.Elevation,
		DistanceToTrail: dist,
	}
	if m, ok := l.matcher.NearestByCoordinate(pos.Lat, pos.Lng); ok {
		snap.Nearest = &m
	}
	if wp, ok := l.matcher.NearestAhead(point.Mile); ok {
		snap.Ahead = &wp
	}
	if wp, ok := l.matcher.NearestBehind(point.Mile); ok {
		snap.Behind = &wp
	}
	return snap, nil
}

// Resolve acquires a position from src and snaps it. When requests from the
// same client overlap, only the newest one's result is applied; an older one
// that completes later gets its snapshot back with ErrSuperseded. Acquisition
// errors are returned as *Failure.
func (l *Locator) Resolve(ctx context.Context, client string, src PositionSource) (Snapshot, error) {
	tracker, gen := l.generations.Begin(client)
	defer l.generations.Done(client)

	pos, err := src.Acquire(ctx)
	if err != nil {
		f := classify(ctx, err)
		metrics.LocateFailures.WithLabelValues(string(f.Kind)).Inc()
		return Snapshot{}, f
	}

	snap, err := l.Snap(pos)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			metrics.LocateFailures.WithLabelValues(string(f.Kind)).Inc()
		}
		return Snapshot{}, err
	}

	if !tracker.Apply(gen, snap) {
		metrics.StaleResponses.WithLabelValues("locate").Inc()
		return snap, ErrSuperseded
	}
	return snap, nil
}

func classify(ctx context.Context, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Failure{Kind: Timeout, Err: err}
	}
	return &Failure{Kind: Unknown, Err: err}
}
