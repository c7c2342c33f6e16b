package ports

import (
	"bussd-route-service/internal/domain"
	"context"
	"errors"
)

// ErrRouteNotFound is returned by repositories when no record has the given ID.
var ErrRouteNotFound = errors.New("route not found")

// ErrLineNotFound is returned by sequence providers when the upstream does not know the line.
var ErrLineNotFound = errors.New("line not found")

// Contract for retrieving the ordered stop sequence of a transit line.
type LineSequenceProvider interface {
	// Return the stops of the first stop sequence of a line in the given direction.
	RouteSequence(ctx context.Context, lineID string, direction string) ([]domain.StopReference, error)
}

// ErrStopNotFound is returned by stop point providers when the upstream does not know the stop.
var ErrStopNotFound = errors.New("stop not found")

// Contract for looking up a single stop point.
type StopPointProvider interface {
	StopPoint(ctx context.Context, stopID string) (domain.StopPoint, error)
}

// Contract for sizing the whole bus network.
type BusNetworkProvider interface {
	// Return the number of bus lines currently operated.
	BusLineCount(ctx context.Context) (int, error)
}
