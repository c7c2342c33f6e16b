package handlers

import (
	"bussd-route-service/internal/api/dto"
	"bussd-route-service/internal/ports"
	"bussd-route-service/internal/services"
	"net/http"

	"github.com/rs/zerolog/log"
)

type CoverageHandler struct {
	Repo    ports.RouteRepository
	Network ports.BusNetworkProvider
}

// Coverage reports the share of all bus lines a user has recorded.
func (h *CoverageHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	q, ok := requiredQuery(w, r, "user_uuid")
	if !ok {
		return
	}

	cov, err := services.NetworkCoverage(r.Context(), q[0], h.Repo, h.Network)
	if err != nil {
		if writeValidation(w, r, err) {
			return
		}
		log.Error().Err(err).Str("user", q[0]).Msg("network coverage failed")
		writeError(w, r, http.StatusBadGateway, "unable to compute network coverage")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.CoverageResponse{
		UserUUID:      q[0],
		UserRoutes:    cov.UserRouteCount,
		NetworkRoutes: cov.NetworkRouteCount,
		Percentage:    cov.Percentage,
	})
}
