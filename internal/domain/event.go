package domain

import "time"

type RouteEventKind string

const (
	RouteCreated RouteEventKind = "created"
	RouteUpdated RouteEventKind = "updated"
	RouteDeleted RouteEventKind = "deleted"
)

// Notification emitted after a route record changes in the store.
type RouteEvent struct {
	Kind  RouteEventKind
	Route RouteProgressRecord
	At    time.Time
}
