package handlers

import (
	"bussd-route-service/internal/api/dto"
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/metrics"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/ports"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// RoutesHandler exposes the route progress record endpoints.
type RoutesHandler struct {
	Repo    ports.RouteRepository
	Events  ports.RouteEventPublisher
	Metrics *metrics.Collector
}

// publish announces a change. Failures are logged and never fail the request.
func (h *RoutesHandler) publish(ctx context.Context, kind domain.RouteEventKind, rec *domain.RouteProgressRecord) {
	if h.Metrics != nil {
		h.Metrics.RoutesWritten.WithLabelValues(string(kind)).Inc()
	}
	if h.Events == nil {
		return
	}

	ev := domain.RouteEvent{Kind: kind, Route: *rec, At: time.Now().UTC()}
	if err := h.Events.PublishRouteEvent(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("req_id", obs.RequestID(ctx)).
			Str("kind", string(kind)).
			Str("route_id", rec.ID).
			Msg("route event publish failed")
	}
}

// Add records a new route.
func (h *RoutesHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft := req.Draft()
	if err := draft.Validate(); err != nil {
		writeValidation(w, r, err)
		return
	}

	rec, err := h.Repo.Create(r.Context(), draft)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		writeInternal(w, r, "add_route", err)
		return
	}

	h.publish(r.Context(), domain.RouteCreated, rec)

	writeJSON(w, r, http.StatusOK, dto.RouteDataResponse{
		Message: "bus route added",
		Data:    []dto.RouteResponse{dto.NewRouteResponse(rec)},
	})
}

// Update replaces the line, stops and percentage of a route. A route that
// does not exist yields an empty data list rather than an error status.
func (h *RoutesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req dto.UpdateRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft := req.Draft()
	if err := draft.Validate(); err != nil {
		writeValidation(w, r, err)
		return
	}

	rec, err := h.Repo.Update(r.Context(), id, draft)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		writeInternal(w, r, "update_route", err)
		return
	}

	res := dto.RouteDataResponse{Data: []dto.RouteResponse{}}
	if rec != nil {
		h.publish(r.Context(), domain.RouteUpdated, rec)
		res.Data = append(res.Data, dto.NewRouteResponse(rec))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// List returns every route recorded by a user.
func (h *RoutesHandler) List(w http.ResponseWriter, r *http.Request) {
	q, ok := requiredQuery(w, r, "user_uuid")
	if !ok {
		return
	}

	recs, err := h.Repo.ListByUser(r.Context(), q[0])
	if err != nil {
		writeInternal(w, r, "list_routes", err)
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(recs))}
	for _, rec := range recs {
		res.Routes = append(res.Routes, dto.NewRouteResponse(rec))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns a single route, used to seed the edit flow.
func (h *RoutesHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Repo.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, ports.ErrRouteNotFound) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	if err != nil {
		writeInternal(w, r, "get_route", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RouteDataResponse{
		Data: []dto.RouteResponse{dto.NewRouteResponse(rec)},
	})
}

func (h *RoutesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.Repo.Get(r.Context(), id)
	if err == nil {
		err = h.Repo.Delete(r.Context(), id)
	}
	if errors.Is(err, ports.ErrRouteNotFound) {
		writeError(w, r, http.StatusNotFound, "route not found")
		return
	}
	if err != nil {
		writeInternal(w, r, "delete_route", err)
		return
	}

	h.publish(r.Context(), domain.RouteDeleted, rec)

	writeJSON(w, r, http.StatusOK, map[string]string{"message": "bus route deleted"})
}
