package tfl

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/ports"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MockSequenceProvider serves fixed stop sequences and a fixed network size.
type MockSequenceProvider struct {
	mu        sync.Mutex
	sequences map[string][]domain.StopReference
	lines     int
	calls     int
}

func NewMockSequenceProvider(lines int) *MockSequenceProvider {
	return &MockSequenceProvider{
		sequences: make(map[string][]domain.StopReference),
		lines:     lines,
	}
}

func mockKey(lineID, direction string) string {
	return strings.ToLower(lineID) + "|" + strings.ToLower(direction)
}

// Add registers the stops of a line; each id doubles as its display name.
func (m *MockSequenceProvider) Add(lineID, direction string, stopIDs ...string) *MockSequenceProvider {
	stops := make([]domain.StopReference, 0, len(stopIDs))
	for _, id := range stopIDs {
		stops = append(stops, domain.NewStopReference(id, ""))
	}

	m.mu.Lock()
	m.sequences[mockKey(lineID, direction)] = stops
	m.mu.Unlock()

	return m
}

func (m *MockSequenceProvider) RouteSequence(ctx context.Context, lineID, direction string) ([]domain.StopReference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	stops, ok := m.sequences[mockKey(lineID, direction)]
	if !ok {
		return nil, fmt.Errorf("mock line %q: %w", lineID, ports.ErrLineNotFound)
	}
	return stops, nil
}

// StopPoint finds a stop on any registered line. Unknown stops yield ErrStopNotFound.
func (m *MockSequenceProvider) StopPoint(ctx context.Context, stopID string) (domain.StopPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	var out domain.StopPoint
	seen := map[string]bool{}
	for key, stops := range m.sequences {
		line := key[:strings.Index(key, "|")]
		for _, s := range stops {
			if s.ID != stopID {
				continue
			}
			out.ID, out.Name = s.ID, s.DisplayName
			if !seen[line] {
				seen[line] = true
				out.LineIDs = append(out.LineIDs, line)
			}
		}
	}
	if out.ID == "" {
		return domain.StopPoint{}, fmt.Errorf("mock stop %q: %w", stopID, ports.ErrStopNotFound)
	}

	sort.Strings(out.LineIDs)
	out.Modes = []string{"bus"}
	return out, nil
}

func (m *MockSequenceProvider) BusLineCount(ctx context.Context) (int, error) {
	return m.lines, nil
}

// Calls reports how many sequence lookups were served.
func (m *MockSequenceProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
