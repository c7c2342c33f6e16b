package repositories

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/ports"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory implementation of the RouteRepository port, used for local runs
// without Postgres and in tests.
type MemoryRouteRepository struct {
	mu     sync.RWMutex
	routes map[string]domain.RouteProgressRecord
	now    func() time.Time
}

func NewMemoryRouteRepository() *MemoryRouteRepository {
	return &MemoryRouteRepository{
		routes: make(map[string]domain.RouteProgressRecord),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRouteRepository) Create(ctx context.Context, d domain.RouteDraft) (*domain.RouteProgressRecord, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	now := m.now()
	rec := domain.RouteProgressRecord{ID: uuid.NewString(), UserID: d.UserID, CreatedAt: now}
	rec.Apply(d, now)

	m.mu.Lock()
	m.routes[rec.ID] = rec
	m.mu.Unlock()

	return &rec, nil
}

func (m *MemoryRouteRepository) Update(ctx context.Context, id string, d domain.RouteDraft) (*domain.RouteProgressRecord, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.routes[id]
	if !ok || rec.UserID != d.UserID {
		return nil, nil
	}
	rec.Apply(d, m.now())
	m.routes[id] = rec

	return &rec, nil
}

func (m *MemoryRouteRepository) Get(ctx context.Context, id string) (*domain.RouteProgressRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.routes[id]
	if !ok {
		return nil, ports.ErrRouteNotFound
	}
	return &rec, nil
}

func (m *MemoryRouteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RouteProgressRecord, error) {
	m.mu.RLock()
	out := make([]*domain.RouteProgressRecord, 0)
	for _, r := range m.routes {
		if r.UserID == userID {
			rec := r
			out = append(out, &rec)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (m *MemoryRouteRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[id]; !ok {
		return ports.ErrRouteNotFound
	}
	delete(m.routes, id)
	return nil
}
