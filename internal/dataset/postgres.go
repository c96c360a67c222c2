package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier represents the minimal database operations the loader needs.
// Both *pgxpool.Pool and pgxmock pools satisfy this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource loads a published dataset version from Postgres
type PostgresSource struct {
	db Querier
}

// NewPostgresSource creates a source backed by the given querier
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// ConnectPostgres opens a pool and verifies connectivity
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Load reads the given dataset version. An empty version selects the most
// recently published one.
func (s *PostgresSource) Load(ctx context.Context, version string) (*TrailDataset, error) {
	var length float64
	row := s.db.QueryRow(ctx, `
		SELECT version, trail_length
		FROM dataset_versions
		WHERE ($1 = '' OR version = $1)
		ORDER BY published_at DESC
		LIMIT 1
	`, version)
	if err := row.Scan(&version, &length); err != nil {
		return nil, fmt.Errorf("failed to load dataset version: %w", err)
	}

	points, err := s.points(ctx, version)
	if err != nil {
		return nil, err
	}

	waypoints, err := s.waypoints(ctx, version)
	if err != nil {
		return nil, err
	}

	return New(version, length, points, waypoints)
}

func (s *PostgresSource) points(ctx context.Context, version string) ([]TrailPoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT mile, elevation_ft, lat, lng
		FROM trail_points WHERE version=$1
		ORDER BY seq
	`, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query trail points: %w", err)
	}
	defer rows.Close()

	var points []TrailPoint
	for rows.Next() {
		var p TrailPoint
		if err := rows.Scan(&p.Mile, &p.Elevation, &p.Lat, &p.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan trail point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *PostgresSource) waypoints(ctx context.Context, version string) ([]Waypoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, kind, mile, sobo_mile, elevation_ft, lat, lng,
		       state, type, COALESCE(notes,''), details
		FROM waypoints WHERE version=$1
		ORDER BY mile, id
	`, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query waypoints: %w", err)
	}
	defer rows.Close()

	var waypoints []Waypoint
	for rows.Next() {
		var (
			wp      Waypoint
			kind    string
			details []byte
		)
		if err := rows.Scan(&wp.ID, &wp.Name, &kind, &wp.Mile, &wp.SoboMile, &wp.Elevation,
			&wp.Lat, &wp.Lng, &wp.State, &wp.Type, &wp.Notes, &details); err != nil {
			return nil, fmt.Errorf("failed to scan waypoint: %w", err)
		}
		// Unknown kinds are kept so validation reports them.
		wp.Kind = Kind(kind)

		if err := decodeDetails(&wp, details); err != nil {
			return nil, fmt.Errorf("waypoint %s: %w", wp.ID, err)
		}
		waypoints = append(waypoints, wp)
	}
	return waypoints, rows.Err()
}

func decodeDetails(wp *Waypoint, details []byte) error {
	if len(details) == 0 {
		return nil
	}
	switch wp.Kind {
	case KindShelter:
		wp.Shelter = &ShelterInfo{}
		return json.Unmarshal(details, wp.Shelter)
	case KindResupply:
		wp.Resupply = &ResupplyInfo{}
		return json.Unmarshal(details, wp.Resupply)
	}
	return nil
}
