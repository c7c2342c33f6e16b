package events

import (
	"bussd-route-service/internal/domain"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ev := domain.RouteEvent{
		Kind: domain.RouteCreated,
		Route: domain.RouteProgressRecord{
			ID:                  "r-1",
			RouteIdentifier:     "87",
			UserID:              "user.one",
			UserEmail:           "one@example.com",
			StartStopID:         "a",
			EndStopID:           "b",
			PercentageTravelled: 50,
		},
		At: at,
	}

	subject, payload, err := encodeEvent(ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if subject != "bussd.routes.created.user_one" {
		t.Fatalf("subject = %q", subject)
	}

	var msg map[string]any
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if msg["kind"] != "created" {
		t.Fatalf("kind = %v, want created", msg["kind"])
	}
	route, _ := msg["route"].(map[string]any)
	if route["percentage_travelled"] != float64(50) {
		t.Fatalf("percentage = %v, want 50", route["percentage_travelled"])
	}
	if strings.Contains(string(payload), "one@example.com") {
		t.Fatal("payload must not carry the user email")
	}
}

func TestSubjectToken(t *testing.T) {
	tests := map[string]string{
		"":          "_",
		" abc ":     "abc",
		"a.b*c>d/e": "a_b_c_d_e",
	}
	for in, want := range tests {
		if got := subjectToken(in); got != want {
			t.Fatalf("subjectToken(%q) = %q, want %q", in, got, want)
		}
	}
}
