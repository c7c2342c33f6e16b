package backend

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/api/tfl", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "   ", "localhost:8000", "/relative"} {
		if _, err := NewClient(raw, time.Second); err == nil {
			t.Fatalf("NewClient(%q) expected error", raw)
		}
	}
}

func TestLineStops(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tfl/stops" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("route_id") != "87" || r.URL.Query().Get("direction") != "outbound" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"route_id":"87","direction":"outbound","stop_count":2,"stops":[{"id":"a","name":"Aldwych"},{"id":"b"}]}`))
	})

	ls, err := c.LineStops(context.Background(), "87", "outbound")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ls.Stops) != 2 {
		t.Fatalf("stops = %d, want 2", len(ls.Stops))
	}
	if ls.Stops[1].DisplayName != "b" {
		t.Fatalf("name = %q, want b", ls.Stops[1].DisplayName)
	}
}

func TestOversizedResponseIsNotDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"route_id":"` + strings.Repeat("x", 2*maxResponseBytes) + `","stops":[]}`))
	})

	_, err := c.LineStops(context.Background(), "87", "outbound")

	var re *domain.RemoteError
	if !errors.As(err, &re) || re.StatusCode != http.StatusOK {
		t.Fatalf("err = %v, want RemoteError with status 200", err)
	}
}

func TestStopsBetween(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from_stop_id") != "s1" || q.Get("to_stop_id") != "s5" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"count":4,"from_index":0,"to_index":4,"stop_ids_between":["s2","s3","s4"],"all_stop_ids":["s1","s2","s3","s4","s5","s6","s7","s8"]}`))
	})

	span, err := c.StopsBetween(context.Background(), "87", "s1", "s5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if span.CoveredCount != 4 || len(span.AllStopIDs) != 8 {
		t.Fatalf("span = %+v", span)
	}
}

func TestRemoteErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"error field", http.StatusBadRequest, `{"error":"one or both stop ids not found on this route"}`, 400, "one or both stop ids not found on this route"},
		{"detail field", http.StatusNotFound, `{"detail":"No stop sequences found."}`, 404, "No stop sequences found."},
		{"no message", http.StatusInternalServerError, `oops`, 500, ""},
		{"error on success status", http.StatusOK, `{"error":"quota exceeded"}`, 200, "quota exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.StopsBetween(context.Background(), "87", "a", "b")

			var re *domain.RemoteError
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want RemoteError", err)
			}
			if re.StatusCode != tt.wantStatus || re.Message != tt.wantMsg {
				t.Fatalf("remote = %d %q, want %d %q", re.StatusCode, re.Message, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestTransportErrorOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = c.LineStops(context.Background(), "87", "outbound")

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Err == nil {
		t.Fatal("transport error should keep its cause")
	}
}

func TestCreateSendsStructuredBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tfl/add-bus-route" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"message":"bus route added","data":[{"id":"r-1","bus_route":"87","user_uuid":"u-1","started_stop":"s1","ended_stop":"s5","percentage_travelled":50}]}`))
	})

	rec, err := c.Create(context.Background(), domain.RouteDraft{
		RouteIdentifier: "87", UserID: "u-1", StartStopID: "s1", EndStopID: "s5", PercentageTravelled: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "r-1" || rec.PercentageTravelled != 50 {
		t.Fatalf("record = %+v", rec)
	}
	if got["percentage"] != float64(50) || got["bus_route"] != "87" || got["started_stop"] != "s1" {
		t.Fatalf("body = %v", got)
	}
}

func TestUpdateEmptyDataMeansNothingUpdated(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tfl/update-bus-route/r-9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"data":[]}`))
	})

	rec, err := c.Update(context.Background(), "r-9", domain.RouteDraft{
		RouteIdentifier: "87", UserID: "u-1", UserEmail: "a@b.c", StartStopID: "s1", EndStopID: "s5", PercentageTravelled: 50,
	})
	if err != nil || rec != nil {
		t.Fatalf("rec = %v, err = %v, want nil, nil", rec, err)
	}
	if got["percentage_travelled"] != float64(50) || got["user_email"] != "a@b.c" {
		t.Fatalf("body = %v", got)
	}
}

func TestGetAndDeleteNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"route not found"}`))
	})

	if _, err := c.Get(context.Background(), "r-1"); !errors.Is(err, ports.ErrRouteNotFound) {
		t.Fatalf("get err = %v, want ErrRouteNotFound", err)
	}
	if err := c.Delete(context.Background(), "r-1"); !errors.Is(err, ports.ErrRouteNotFound) {
		t.Fatalf("delete err = %v, want ErrRouteNotFound", err)
	}
}
