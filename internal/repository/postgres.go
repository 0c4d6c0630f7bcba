package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

const schemaQuery = `
	CREATE TABLE IF NOT EXISTS observations (
		id          BIGSERIAL PRIMARY KEY,
		captured_at TIMESTAMPTZ NOT NULL,
		ip          TEXT NOT NULL,
		lat         TEXT NOT NULL,
		lon         TEXT NOT NULL,
		user_agent  TEXT NOT NULL
	);
`

// EnsureSchema creates the observations table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaQuery); err != nil {
		return fmt.Errorf("failed to create observations table: %w", err)
	}

	return nil
}

// Save inserts one observation.
func (r *Repository) Save(ctx context.Context, obs models.Observation) error {
	query := `
		INSERT INTO observations (captured_at, ip, lat, lon, user_agent)
		VALUES ($1, $2, $3, $4, $5);
	`

	_, err := r.db.Exec(ctx, query, obs.Timestamp, obs.IP, obs.Lat, obs.Lon, obs.UserAgent)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}

	return nil
}

// FindAllNewestFirst returns every stored observation ordered by capture time, newest first.
func (r *Repository) FindAllNewestFirst(ctx context.Context) ([]models.Observation, error) {
	query := `
		SELECT captured_at, ip, lat, lon, user_agent
		FROM observations
		ORDER BY captured_at DESC, id DESC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	observations := []models.Observation{}
	for rows.Next() {
		var obs models.Observation
		if errScan := rows.Scan(&obs.Timestamp, &obs.IP, &obs.Lat, &obs.Lon, &obs.UserAgent); errScan != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", errScan)
		}
		observations = append(observations, obs)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.DebugContext(ctx, "Observations loaded from primary store", "count", len(observations))

	return observations, nil
}
