package cache

import (
	"bussd-route-service/internal/domain"
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisSequenceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSequenceCache(client, ttl), mr
}

func TestRedisSequenceCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	stops := []domain.StopReference{
		{ID: "490000001A", DisplayName: "Aldwych"},
		{ID: "490000002B", DisplayName: "Waterloo"},
	}
	if err := c.Put(ctx, "87", "outbound", stops); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mr.Exists("bussd:sequence:87:outbound") {
		t.Fatal("expected key bussd:sequence:87:outbound")
	}

	got, ok, err := c.Get(ctx, "87", "Outbound")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !reflect.DeepEqual(got, stops) {
		t.Fatalf("stops = %+v, want %+v", got, stops)
	}
}

func TestRedisSequenceCacheMissAndExpiry(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "87", "outbound"); err != nil || ok {
		t.Fatalf("miss: ok = %v, err = %v", ok, err)
	}

	if err := c.Put(ctx, "87", "outbound", []domain.StopReference{{ID: "a", DisplayName: "a"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(31 * time.Second)

	if _, ok, err := c.Get(ctx, "87", "outbound"); err != nil || ok {
		t.Fatalf("after ttl: ok = %v, err = %v", ok, err)
	}
}

func TestRedisSequenceCacheSkipsEmpty(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)

	if err := c.Put(context.Background(), "87", "outbound", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("keys = %v, want none", mr.Keys())
	}
}
