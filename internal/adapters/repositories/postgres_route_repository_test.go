package repositories

import (
	"bussd-route-service/internal/platform/db"
	"bussd-route-service/internal/ports"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// Runs against a real database only when BUSSD_TEST_DATABASE_URL is set.
func openTestDB(t *testing.T) *PostgresRouteRepository {
	t.Helper()

	url := os.Getenv("BUSSD_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("BUSSD_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, url)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(ctx, conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return NewPostgresRouteRepository(conn)
}

func TestPostgresRouteRepositoryLifecycle(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	d := draft("87", 50)
	d.UserID = "test-" + uuid.NewString()

	created, err := repo.Create(ctx, d)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, created.ID) })

	d.PercentageTravelled = 63
	updated, err := repo.Update(ctx, created.ID, d)
	if err != nil || updated == nil {
		t.Fatalf("update: rec = %v, err = %v", updated, err)
	}
	if updated.PercentageTravelled != 63 {
		t.Fatalf("percentage = %d, want 63", updated.PercentageTravelled)
	}

	list, err := repo.ListByUser(ctx, d.UserID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: len = %d, err = %v", len(list), err)
	}

	other := d
	other.UserID = "test-" + uuid.NewString()
	if rec, err := repo.Update(ctx, created.ID, other); err != nil || rec != nil {
		t.Fatalf("update by another user: rec = %v, err = %v", rec, err)
	}

	missing, err := repo.Update(ctx, uuid.NewString(), d)
	if err != nil || missing != nil {
		t.Fatalf("update missing: rec = %v, err = %v", missing, err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, ports.ErrRouteNotFound) {
		t.Fatalf("get deleted: err = %v", err)
	}
}

func TestSeedFromJSON(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	id := uuid.NewString()
	user := "seed-" + uuid.NewString()
	path := filepath.Join(t.TempDir(), "routes.json")
	seed := `[{"id":"` + id + `","bus_route":"87","user_uuid":"` + user + `","started_stop":"a","ended_stop":"b","percentage_travelled":25}]`
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := SeedFromJSON(ctx, repo.DB, path); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, id) })

	list, err := repo.ListByUser(ctx, user)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: len = %d, err = %v", len(list), err)
	}
}
