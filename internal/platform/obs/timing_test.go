package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = prev })

	return &buf
}

func TestTimeLogsRequestIDAndError(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRequestID(context.Background(), "abc")
	func() (err error) {
		defer Time(ctx, "tfl.RouteSequence")(&err)
		return errors.New("upstream 503")
	}()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}

	if entry["req_id"] != "abc" {
		t.Fatalf("req_id = %v, want abc", entry["req_id"])
	}
	if entry["op"] != "tfl.RouteSequence" {
		t.Fatalf("op = %v, want tfl.RouteSequence", entry["op"])
	}
	if entry["error"] != "upstream 503" {
		t.Fatalf("error = %v, want upstream 503", entry["error"])
	}
	if _, ok := entry["dur_ms"]; !ok {
		t.Fatal("dur_ms missing")
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("request id = %q, want empty", got)
	}
}
