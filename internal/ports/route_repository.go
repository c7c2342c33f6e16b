package ports

import (
	"bussd-route-service/internal/domain"
	"context"
)

// Port: a boundary for storing and retrieving route progress records.
type RouteRepository interface {
	// Persist a new record and return it with its assigned ID.
	Create(ctx context.Context, draft domain.RouteDraft) (*domain.RouteProgressRecord, error)
	// Replace the mutable fields of an existing record.
	// A nil record with a nil error means no record was updated.
	Update(ctx context.Context, id string, draft domain.RouteDraft) (*domain.RouteProgressRecord, error)
	// Return a single record, or ErrRouteNotFound.
	Get(ctx context.Context, id string) (*domain.RouteProgressRecord, error)
	// Return every record owned by a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.RouteProgressRecord, error)
	// Remove a record, or return ErrRouteNotFound.
	Delete(ctx context.Context, id string) error
}
