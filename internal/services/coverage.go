package services

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"
)

// NetworkCoverage reports how much of the bus network a user has recorded.
// The user's records and the network size are fetched concurrently.
func NetworkCoverage(
	ctx context.Context,
	userID string,
	routes ports.RouteRepository,
	network ports.BusNetworkProvider,
) (_ domain.NetworkCoverage, err error) {
	defer obs.Time(ctx, "services.NetworkCoverage")(&err)

	if strings.TrimSpace(userID) == "" {
		return domain.NetworkCoverage{}, &domain.ValidationError{Reason: "user_uuid is required"}
	}

	var (
		records []*domain.RouteProgressRecord
		lines   int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = routes.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("list user routes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lines, err = network.BusLineCount(gctx)
		if err != nil {
			return fmt.Errorf("count bus lines: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.NetworkCoverage{}, fmt.Errorf("network coverage: %w", err)
	}

	if lines <= 0 {
		return domain.NetworkCoverage{}, errors.New("network coverage: bus network reports no lines")
	}

	distinct := make(map[string]struct{}, len(records))
	for _, r := range records {
		id := strings.ToUpper(strings.TrimSpace(r.RouteIdentifier))
		if id == "" {
			continue
		}
		distinct[id] = struct{}{}
	}

	pct := float64(len(distinct)) / float64(lines) * 100
	return domain.NetworkCoverage{
		UserRouteCount:    len(distinct),
		NetworkRouteCount: lines,
		Percentage:        math.Round(pct*10) / 10,
	}, nil
}
