package ports

import (
	"bussd-route-service/internal/domain"
	"context"
)

// Port: the source of stop sequences and backend-owned stop span counts.
type StopDirectory interface {
	// Return the ordered stops of a line in the given direction.
	LineStops(ctx context.Context, lineID string, direction string) (domain.LineStops, error)
	// Return the full stop sequence of a line and how many stops lie between two of them.
	StopsBetween(ctx context.Context, lineID string, fromStopID string, toStopID string) (domain.StopSpan, error)
}
