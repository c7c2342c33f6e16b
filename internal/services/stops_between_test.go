package services

import (
	"bussd-route-service/internal/domain"
	"errors"
	"reflect"
	"testing"
)

func refs(ids ...string) []domain.StopReference {
	out := make([]domain.StopReference, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.StopReference{ID: id})
	}
	return out
}

func TestSpanBetween(t *testing.T) {
	tests := []struct {
		name        string
		from, to    string
		wantCount   int
		wantBetween []string
	}{
		{"forward", "a", "d", 3, []string{"b", "c"}},
		{"reverse", "d", "a", 3, []string{"b", "c"}},
		{"adjacent", "b", "c", 1, []string{}},
		{"same stop", "c", "c", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SpanBetween(refs("a", "b", "c", "d"), tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Count != tt.wantCount {
				t.Fatalf("count = %d, want %d", res.Count, tt.wantCount)
			}
			if !reflect.DeepEqual(res.Between, tt.wantBetween) {
				t.Fatalf("between = %v, want %v", res.Between, tt.wantBetween)
			}
			if len(res.AllStopIDs) != 4 {
				t.Fatalf("all stops = %d, want 4", len(res.AllStopIDs))
			}
		})
	}
}

func TestSpanBetweenUnknownStop(t *testing.T) {
	_, err := SpanBetween(refs("x", "y"), "a", "z")
	if !errors.Is(err, ErrStopNotOnRoute) {
		t.Fatalf("err = %v, want ErrStopNotOnRoute", err)
	}
}
