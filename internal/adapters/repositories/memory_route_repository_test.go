package repositories

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/ports"
	"context"
	"errors"
	"testing"
	"time"
)

func draft(line string, pct int) domain.RouteDraft {
	return domain.RouteDraft{
		RouteIdentifier:     line,
		UserID:              "u-1",
		StartStopID:         "a",
		EndStopID:           "b",
		PercentageTravelled: pct,
	}
}

func TestMemoryRouteRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryRouteRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, draft("87", 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an id to be assigned")
	}

	updated, err := repo.Update(ctx, created.ID, draft("88", 75))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil || updated.RouteIdentifier != "88" || updated.PercentageTravelled != 75 {
		t.Fatalf("updated = %+v", updated)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PercentageTravelled != 75 {
		t.Fatalf("percentage = %d, want 75", got.PercentageTravelled)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, ports.ErrRouteNotFound) {
		t.Fatalf("err = %v, want ErrRouteNotFound", err)
	}
}

func TestMemoryRouteRepositoryUpdateMissing(t *testing.T) {
	repo := NewMemoryRouteRepository()

	rec, err := repo.Update(context.Background(), "missing", draft("87", 10))
	if err != nil || rec != nil {
		t.Fatalf("rec = %v, err = %v, want nil, nil", rec, err)
	}
}

func TestMemoryRouteRepositoryUpdateKeepsOwner(t *testing.T) {
	repo := NewMemoryRouteRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, draft("87", 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	other := draft("88", 90)
	other.UserID = "u-2"
	rec, err := repo.Update(ctx, created.ID, other)
	if err != nil || rec != nil {
		t.Fatalf("rec = %v, err = %v, want nil, nil", rec, err)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u-1" || got.RouteIdentifier != "87" || got.PercentageTravelled != 50 {
		t.Fatalf("record changed by another user: %+v", got)
	}
	if list, _ := repo.ListByUser(ctx, "u-2"); len(list) != 0 {
		t.Fatalf("u-2 routes = %d, want 0", len(list))
	}
}

func TestMemoryRouteRepositoryRejectsInvalidDraft(t *testing.T) {
	repo := NewMemoryRouteRepository()

	_, err := repo.Create(context.Background(), draft("87", 120))

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestMemoryRouteRepositoryListByUserNewestFirst(t *testing.T) {
	repo := NewMemoryRouteRepository()
	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	ctx := context.Background()
	for _, line := range []string{"87", "12", "N29"} {
		if _, err := repo.Create(ctx, draft(line, 10)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	other := draft("1", 10)
	other.UserID = "u-2"
	if _, err := repo.Create(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := repo.ListByUser(ctx, "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("routes = %d, want 3", len(list))
	}
	if list[0].RouteIdentifier != "N29" || list[2].RouteIdentifier != "87" {
		t.Fatalf("order = %s,%s,%s", list[0].RouteIdentifier, list[1].RouteIdentifier, list[2].RouteIdentifier)
	}
}
