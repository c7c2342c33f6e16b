package dto

import (
	"bussd-route-service/internal/domain"
	"time"
)

type RouteResponse struct {
	ID                  string    `json:"id"`
	BusRoute            string    `json:"bus_route"`
	UserUUID            string    `json:"user_uuid"`
	UserEmail           string    `json:"user_email,omitempty"`
	StartedStop         string    `json:"started_stop"`
	EndedStop           string    `json:"ended_stop"`
	PercentageTravelled int       `json:"percentage_travelled"`
	BusRouteTaken       bool      `json:"bus_route_taken"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewRouteResponse(r *domain.RouteProgressRecord) RouteResponse {
	return RouteResponse{
		ID:                  r.ID,
		BusRoute:            r.RouteIdentifier,
		UserUUID:            r.UserID,
		UserEmail:           r.UserEmail,
		StartedStop:         r.StartStopID,
		EndedStop:           r.EndStopID,
		PercentageTravelled: r.PercentageTravelled,
		BusRouteTaken:       true,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func (r RouteResponse) Record() *domain.RouteProgressRecord {
	return &domain.RouteProgressRecord{
		ID:                  r.ID,
		RouteIdentifier:     r.BusRoute,
		UserID:              r.UserUUID,
		UserEmail:           r.UserEmail,
		StartStopID:         r.StartedStop,
		EndStopID:           r.EndedStop,
		PercentageTravelled: r.PercentageTravelled,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

type AddRouteRequest struct {
	BusRoute    string `json:"bus_route"`
	Percentage  int    `json:"percentage"`
	UserUUID    string `json:"user_uuid"`
	UserEmail   string `json:"user_email,omitempty"`
	StartedStop string `json:"started_stop"`
	EndedStop   string `json:"ended_stop"`
}

func (r AddRouteRequest) Draft() domain.RouteDraft {
	return domain.RouteDraft{
		RouteIdentifier:     r.BusRoute,
		UserID:              r.UserUUID,
		UserEmail:           r.UserEmail,
		StartStopID:         r.StartedStop,
		EndStopID:           r.EndedStop,
		PercentageTravelled: r.Percentage,
	}
}

type UpdateRouteRequest struct {
	UserEmail           string `json:"user_email"`
	BusRoute            string `json:"bus_route"`
	PercentageTravelled int    `json:"percentage_travelled"`
	StartedStop         string `json:"started_stop"`
	EndedStop           string `json:"ended_stop"`
	UserUUID            string `json:"user_uuid"`
}

func (r UpdateRouteRequest) Draft() domain.RouteDraft {
	return domain.RouteDraft{
		RouteIdentifier:     r.BusRoute,
		UserID:              r.UserUUID,
		UserEmail:           r.UserEmail,
		StartStopID:         r.StartedStop,
		EndStopID:           r.EndedStop,
		PercentageTravelled: r.PercentageTravelled,
	}
}

// RouteDataResponse wraps records the way the add, update and get endpoints
// return them. An empty Data slice means nothing matched.
type RouteDataResponse struct {
	Message string          `json:"message,omitempty"`
	Data    []RouteResponse `json:"data"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}

type CoverageResponse struct {
	UserUUID      string  `json:"user_uuid"`
	UserRoutes    int     `json:"user_routes"`
	NetworkRoutes int     `json:"network_routes"`
	Percentage    float64 `json:"percentage"`
}
