package ports

import (
	"bussd-route-service/internal/domain"
	"context"
)

// Port: fan-out of route record changes to interested subscribers.
type RouteEventPublisher interface {
	PublishRouteEvent(ctx context.Context, event domain.RouteEvent) error
}
