package domain

import (
	"strings"
	"time"
)

// Represents a persisted record of how much of a bus line a user has travelled.
// ID is assigned by the store on creation. Updates replace the line, stops and
// percentage as a whole.
type RouteProgressRecord struct {
	ID                  string
	RouteIdentifier     string
	UserID              string
	UserEmail           string
	StartStopID         string
	EndStopID           string
	PercentageTravelled int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RouteDraft is the writable part of a RouteProgressRecord.
type RouteDraft struct {
	RouteIdentifier     string
	UserID              string
	UserEmail           string
	StartStopID         string
	EndStopID           string
	PercentageTravelled int
}

// Validate checks the invariants every stored record must hold.
func (d RouteDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.RouteIdentifier) == "":
		return &ValidationError{Reason: "bus_route is required"}
	case strings.TrimSpace(d.UserID) == "":
		return &ValidationError{Reason: "user_uuid is required"}
	case strings.TrimSpace(d.StartStopID) == "":
		return &ValidationError{Reason: "started_stop is required"}
	case strings.TrimSpace(d.EndStopID) == "":
		return &ValidationError{Reason: "ended_stop is required"}
	case d.PercentageTravelled < 0 || d.PercentageTravelled > 100:
		return &ValidationError{Reason: "percentage must be between 0 and 100"}
	}
	return nil
}

// Apply replaces the mutable fields of the record with the draft.
// The owner is fixed at creation and never taken from the draft.
func (r *RouteProgressRecord) Apply(d RouteDraft, now time.Time) {
	r.RouteIdentifier = d.RouteIdentifier
	if d.UserEmail != "" {
		r.UserEmail = d.UserEmail
	}
	r.StartStopID = d.StartStopID
	r.EndStopID = d.EndStopID
	r.PercentageTravelled = d.PercentageTravelled
	r.UpdatedAt = now
}

// Share of the bus network a user has recorded at least once.
type NetworkCoverage struct {
	UserRouteCount    int
	NetworkRouteCount int
	Percentage        float64
}
