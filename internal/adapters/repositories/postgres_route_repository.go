package repositories

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/ports"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the RouteRepository port.
type PostgresRouteRepository struct{ DB *sql.DB }

func NewPostgresRouteRepository(db *sql.DB) *PostgresRouteRepository {
	return &PostgresRouteRepository{DB: db}
}

const routeColumns = `
	id,
	bus_route,
	user_uuid,
	user_email,
	started_stop,
	ended_stop,
	percentage_travelled,
	created_at,
	updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoute(row rowScanner) (*domain.RouteProgressRecord, error) {
	var r domain.RouteProgressRecord
	err := row.Scan(
		&r.ID,
		&r.RouteIdentifier,
		&r.UserID,
		&r.UserEmail,
		&r.StartStopID,
		&r.EndStopID,
		&r.PercentageTravelled,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *PostgresRouteRepository) Create(ctx context.Context, d domain.RouteDraft) (_ *domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "routes.Create")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

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
	RETURNING` + routeColumns + `;`

	rec, err := scanRoute(p.DB.QueryRowContext(ctx, query,
		uuid.NewString(), d.RouteIdentifier, d.UserID, d.UserEmail, d.StartStopID, d.EndStopID, d.PercentageTravelled,
	))
	if err != nil {
		return nil, fmt.Errorf("create route: insert: %w", err)
	}

	return rec, nil
}

func (p *PostgresRouteRepository) Update(ctx context.Context, id string, d domain.RouteDraft) (_ *domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "routes.Update")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	query := `
	UPDATE bus_routes_taken
	SET bus_route = $2,
		user_email = CASE WHEN $4 = '' THEN user_email ELSE $4 END,
		started_stop = $5,
		ended_stop = $6,
		percentage_travelled = $7,
		updated_at = now()
	WHERE id = $1 AND user_uuid = $3
	RETURNING` + routeColumns + `;`

	rec, err := scanRoute(p.DB.QueryRowContext(ctx, query,
		id, d.RouteIdentifier, d.UserID, d.UserEmail, d.StartStopID, d.EndStopID, d.PercentageTravelled,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update route id=%s: %w", id, err)
	}

	return rec, nil
}

func (p *PostgresRouteRepository) Get(ctx context.Context, id string) (_ *domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "routes.Get")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrRouteNotFound
	}

	query := `SELECT` + routeColumns + `FROM bus_routes_taken WHERE id = $1;`

	rec, err := scanRoute(p.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route id=%s: %w", id, err)
	}

	return rec, nil
}

func (p *PostgresRouteRepository) ListByUser(ctx context.Context, userID string) (_ []*domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "routes.ListByUser")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres route repository: DB is nil")
	}

	query := `
	SELECT` + routeColumns + `
	FROM bus_routes_taken
	WHERE user_uuid = $1
	ORDER BY created_at DESC, id;
	`
	rows, err := p.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list routes: query bus_routes_taken table: %w", err)
	}
	defer rows.Close()

	routes := make([]*domain.RouteProgressRecord, 0, 16)
	for rows.Next() {
		rec, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("list routes: scan row: %w", err)
		}
		routes = append(routes, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: row iteration: %w", err)
	}

	return routes, nil
}

func (p *PostgresRouteRepository) Delete(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "routes.Delete")(&err)

	if p.DB == nil {
		return errors.New("postgres route repository: DB is nil")
	}
	if _, err := uuid.Parse(id); err != nil {
		return ports.ErrRouteNotFound
	}

	res, err := p.DB.ExecContext(ctx, `DELETE FROM bus_routes_taken WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete route id=%s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete route id=%s: rows affected: %w", id, err)
	}
	if n == 0 {
		return ports.ErrRouteNotFound
	}

	return nil
}
