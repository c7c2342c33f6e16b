package tfl

import (
	"bussd-route-service/internal/adapters/cache"
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/metrics"
	"bussd-route-service/internal/ports"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const sequence87 = `{
	"lineName": "87",
	"direction": "outbound",
	"stopPointSequences": [
		{"branchId": 0, "stopPoint": [
			{"id": "490000001A", "name": "Aldwych"},
			{"id": "490000002B", "name": ""},
			{"id": "490000003C", "name": "Wandsworth"}
		]},
		{"branchId": 1, "stopPoint": [{"id": "ignored", "name": "Other branch"}]}
	]
}`

func newTestProvider(t *testing.T, h http.Handler, c *cache.RedisSequenceCache) *TfLProvider {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := NewTfLProvider(srv.URL, "secret", 2*time.Second, c, metrics.NewCollector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.retryInitial = time.Millisecond
	return p
}

func TestRouteSequenceFirstSequence(t *testing.T) {
	var gotKey, gotPath string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("app_key")
		gotPath = r.URL.Path
		w.Write([]byte(sequence87))
	}), nil)

	stops, err := p.RouteSequence(context.Background(), "87", "Outbound")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/Line/87/Route/Sequence/outbound" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("app_key = %q, want secret", gotKey)
	}
	if len(stops) != 3 {
		t.Fatalf("stops = %d, want 3", len(stops))
	}
	if stops[1].DisplayName != "490000002B" {
		t.Fatalf("fallback name = %q, want id", stops[1].DisplayName)
	}
}

func TestRouteSequenceRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sequence87))
	}), nil)

	stops, err := p.RouteSequence(context.Background(), "87", "outbound")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stops) != 3 {
		t.Fatalf("stops = %d, want 3", len(stops))
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestRouteSequenceNotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}), nil)

	_, err := p.RouteSequence(context.Background(), "nope", "outbound")
	if !errors.Is(err, ports.ErrLineNotFound) {
		t.Fatalf("err = %v, want ErrLineNotFound", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestRouteSequenceGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}), nil)

	_, err := p.RouteSequence(context.Background(), "87", "outbound")

	var he *httpStatusError
	if !errors.As(err, &he) || he.Code != http.StatusBadGateway {
		t.Fatalf("err = %v, want 502 status error", err)
	}
	if calls.Load() != 4 {
		t.Fatalf("calls = %d, want 4", calls.Load())
	}
}

func TestRouteSequenceRejectsBadDirection(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler(), nil)

	_, err := p.RouteSequence(context.Background(), "87", "sideways")

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestRouteSequenceUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(sequence87))
	}), cache.NewRedisSequenceCache(client, time.Minute))

	for i := 0; i < 3; i++ {
		stops, err := p.RouteSequence(context.Background(), "87", "outbound")
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if len(stops) != 3 || stops[0].DisplayName != "Aldwych" {
			t.Fatalf("call %d: stops = %+v", i, stops)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("upstream calls = %d, want 1", calls.Load())
	}
}

func TestStopPoint(t *testing.T) {
	var gotPath string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"naptanId": "490000001A",
			"commonName": "Aldwych / Drury Lane",
			"lat": 51.512,
			"lon": -0.118,
			"modes": ["bus"],
			"lines": [{"id": "87"}, {"id": "N29"}]
		}`))
	}), nil)

	sp, err := p.StopPoint(context.Background(), "490000001A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/StopPoint/490000001A" {
		t.Fatalf("path = %q", gotPath)
	}
	if sp.ID != "490000001A" || sp.Name != "Aldwych / Drury Lane" {
		t.Fatalf("stop = %+v", sp)
	}
	if len(sp.LineIDs) != 2 || sp.LineIDs[1] != "N29" {
		t.Fatalf("lines = %v, want [87 N29]", sp.LineIDs)
	}
}

func TestStopPointNotFound(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}), nil)

	_, err := p.StopPoint(context.Background(), "nope")
	if !errors.Is(err, ports.ErrStopNotFound) {
		t.Fatalf("err = %v, want ErrStopNotFound", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestBusLineCount(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Line/Mode/bus" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"id":"1"},{"id":"87"},{"id":"N29"},{"id":"n29"}]`))
	}), nil)

	n, err := p.BusLineCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("lines = %d, want 3", n)
	}
}
