package events

import (
	"bussd-route-service/internal/domain"
	"context"
)

// NoopPublisher discards route events. Wired when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRouteEvent(ctx context.Context, ev domain.RouteEvent) error { return nil }
