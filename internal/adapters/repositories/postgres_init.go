package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS bus_routes_taken (
		id UUID PRIMARY KEY,
		bus_route TEXT NOT NULL,
		user_uuid TEXT NOT NULL,
		user_email TEXT NOT NULL DEFAULT '',
		started_stop TEXT NOT NULL,
		ended_stop TEXT NOT NULL,
		percentage_travelled INTEGER NOT NULL
			CHECK (percentage_travelled BETWEEN 0 AND 100),
		bus_route_taken BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_bus_routes_taken_user
	ON bus_routes_taken(user_uuid, created_at DESC);
	`

	statements := []string{
		createRoutesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type RouteSeed struct {
	ID                  string `json:"id"`
	BusRoute            string `json:"bus_route"`
	UserUUID            string `json:"user_uuid"`
	UserEmail           string `json:"user_email"`
	StartedStop         string `json:"started_stop"`
	EndedStop           string `json:"ended_stop"`
	PercentageTravelled int    `json:"percentage_travelled"`
}

// Populate the database with demo route records from a JSON file.
// Seeding is idempotent: rows are upserted by id.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed routes: read %q: %w", jsonPath, err)
	}

	var data []RouteSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed routes: parse json: %w", err)
	}

	rows := make([]RouteSeed, 0, len(data))
	for i, item := range data {
		if _, err := uuid.Parse(item.ID); err != nil {
			return fmt.Errorf("seed routes: invalid id at index %d: %q", i+1, item.ID)
		}

		item.BusRoute = strings.TrimSpace(item.BusRoute)
		if item.BusRoute == "" || item.UserUUID == "" || item.StartedStop == "" || item.EndedStop == "" {
			return fmt.Errorf("seed routes: item at index %d: route, user and stops are required", i+1)
		}
		if item.PercentageTravelled < 0 || item.PercentageTravelled > 100 {
			return fmt.Errorf("seed routes: item at index %d: percentage %d out of range", i+1, item.PercentageTravelled)
		}
		rows = append(rows, item)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed routes: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO bus_routes_taken (
		id,
		bus_route,
		user_uuid,
		user_email,
		started_stop,
		ended_stop,
		percentage_travelled
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE
	SET bus_route = EXCLUDED.bus_route,
		user_uuid = EXCLUDED.user_uuid,
		user_email = EXCLUDED.user_email,
		started_stop = EXCLUDED.started_stop,
		ended_stop = EXCLUDED.ended_stop,
		percentage_travelled = EXCLUDED.percentage_travelled,
		updated_at = now();
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed routes: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.ID, r.BusRoute, r.UserUUID, r.UserEmail, r.StartedStop, r.EndedStop, r.PercentageTravelled); err != nil {
			return fmt.Errorf("seed routes: insert id=%s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed routes: commit tx: %w", err)
	}

	return nil
}
