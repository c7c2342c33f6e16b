package api

import (
	"bussd-route-service/internal/adapters/events"
	"bussd-route-service/internal/api/handlers"
	"bussd-route-service/internal/platform/metrics"
	"bussd-route-service/internal/ports"
	"net/http"
)

// Dependencies of the HTTP API.
type Deps struct {
	Routes  ports.RouteRepository
	Lines   ports.LineSequenceProvider
	Stops   ports.StopPointProvider
	Network ports.BusNetworkProvider
	Events  ports.RouteEventPublisher
	Metrics *metrics.Collector
	// Named probes reported by GET /health, e.g. "postgres" or "redis".
	Checks map[string]handlers.HealthCheck
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	if deps.Events == nil {
		deps.Events = events.NoopPublisher{}
	}

	mux := http.NewServeMux()

	stopsHandler := &handlers.StopsHandler{Provider: deps.Lines, Points: deps.Stops}
	routesHandler := &handlers.RoutesHandler{
		Repo:    deps.Routes,
		Events:  deps.Events,
		Metrics: deps.Metrics,
	}
	coverageHandler := &handlers.CoverageHandler{Repo: deps.Routes, Network: deps.Network}

	healthHandler := &handlers.HealthHandler{Checks: deps.Checks}

	mux.HandleFunc("GET /health", healthHandler.Health)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	mux.HandleFunc("GET /stops", stopsHandler.Stops)
	mux.HandleFunc("GET /stops/{stop_id}", stopsHandler.Stop)
	mux.HandleFunc("GET /stops-between", stopsHandler.StopsBetween)

	mux.HandleFunc("POST /add-bus-route", routesHandler.Add)
	mux.HandleFunc("POST /update-bus-route/{id}", routesHandler.Update)
	mux.HandleFunc("GET /routes", routesHandler.List)
	mux.HandleFunc("GET /routes/{id}", routesHandler.Get)
	mux.HandleFunc("DELETE /routes/{id}", routesHandler.Delete)

	mux.HandleFunc("GET /coverage", coverageHandler.Coverage)

	return chain(mux, requestID, loggingMiddleware(deps.Metrics), recovery)
}
