package handlers

import (
	"bussd-route-service/internal/api/dto"
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/ports"
	"bussd-route-service/internal/services"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// StopsHandler exposes stop sequence lookups backed by a LineSequenceProvider,
// and single stop lookups when Points is set.
type StopsHandler struct {
	Provider ports.LineSequenceProvider
	Points   ports.StopPointProvider
}

func direction(r *http.Request) string {
	if d := strings.TrimSpace(r.URL.Query().Get("direction")); d != "" {
		return d
	}
	return domain.DirectionOutbound
}

// sequence fetches a line's stops, writing the error response itself on failure.
// A known line with no stop points is not a failure.
func (h *StopsHandler) sequence(w http.ResponseWriter, r *http.Request, lineID, dir string) ([]domain.StopReference, bool) {
	stops, err := h.Provider.RouteSequence(r.Context(), lineID, dir)
	if err != nil {
		switch {
		case writeValidation(w, r, err):
		case errors.Is(err, ports.ErrLineNotFound):
			writeError(w, r, http.StatusNotFound, "route not found")
		default:
			log.Error().Err(err).Str("line", lineID).Msg("route sequence lookup failed")
			writeError(w, r, http.StatusBadGateway, "unable to fetch stops from transit provider")
		}
		return nil, false
	}

	return stops, true
}

// Stops returns the ordered stops of a line.
func (h *StopsHandler) Stops(w http.ResponseWriter, r *http.Request) {
	q, ok := requiredQuery(w, r, "route_id")
	if !ok {
		return
	}
	lineID, dir := q[0], direction(r)

	stops, ok := h.sequence(w, r, lineID, dir)
	if !ok {
		return
	}

	res := dto.LineStopsResponse{
		RouteID:   lineID,
		Direction: strings.ToLower(dir),
		StopCount: len(stops),
		Stops:     make([]dto.StopResponse, 0, len(stops)),
	}
	for _, s := range stops {
		res.Stops = append(res.Stops, dto.StopResponse{ID: s.ID, Name: s.DisplayName})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// StopsBetween measures the span between two stops of a line.
func (h *StopsHandler) StopsBetween(w http.ResponseWriter, r *http.Request) {
	q, ok := requiredQuery(w, r, "route_id", "from_stop_id", "to_stop_id")
	if !ok {
		return
	}

	stops, ok := h.sequence(w, r, q[0], direction(r))
	if !ok {
		return
	}
	if len(stops) == 0 {
		writeError(w, r, http.StatusNotFound, "no stop sequences found")
		return
	}

	span, err := services.SpanBetween(stops, q[1], q[2])
	if errors.Is(err, services.ErrStopNotOnRoute) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeInternal(w, r, "stops_between", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.StopsBetweenResponse{
		Count:          span.Count,
		FromIndex:      span.FromIndex,
		ToIndex:        span.ToIndex,
		StopIDsBetween: span.Between,
		AllStopIDs:     span.AllStopIDs,
	})
}

// Stop returns the directory entry of one stop.
func (h *StopsHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if h.Points == nil {
		writeError(w, r, http.StatusNotImplemented, "stop lookup is not configured")
		return
	}

	stopID := strings.TrimSpace(r.PathValue("stop_id"))
	sp, err := h.Points.StopPoint(r.Context(), stopID)
	if err != nil {
		switch {
		case writeValidation(w, r, err):
		case errors.Is(err, ports.ErrStopNotFound):
			writeError(w, r, http.StatusNotFound, "stop not found")
		default:
			log.Error().Err(err).Str("stop", stopID).Msg("stop point lookup failed")
			writeError(w, r, http.StatusBadGateway, "unable to fetch stop from transit provider")
		}
		return
	}

	res := dto.StopPointResponse{
		ID:        sp.ID,
		Name:      sp.Name,
		Latitude:  sp.Latitude,
		Longitude: sp.Longitude,
		Modes:     sp.Modes,
		Lines:     sp.LineIDs,
	}
	if res.Modes == nil {
		res.Modes = []string{}
	}
	if res.Lines == nil {
		res.Lines = []string{}
	}

	writeJSON(w, r, http.StatusOK, res)
}
