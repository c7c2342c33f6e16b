package cache

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/obs"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
)

// RedisSequenceCache is a Redis-backed cache of line stop sequences.
type RedisSequenceCache struct {
	cache *gocache.Cache[string]
}

type cachedStop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewRedisSequenceCache(client *redis.Client, ttl time.Duration) *RedisSequenceCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

	return &RedisSequenceCache{cache: gocache.New[string](redisStore)}
}

func sequenceKey(lineID, direction string) string {
	return fmt.Sprintf(
		"bussd:sequence:%s:%s",
		strings.ToLower(strings.TrimSpace(lineID)),
		strings.ToLower(strings.TrimSpace(direction)),
	)
}

// Get returns the cached stops of a line. ok is false on a miss.
func (c *RedisSequenceCache) Get(
	ctx context.Context,
	lineID string,
	direction string,
) (_ []domain.StopReference, ok bool, err error) {
	defer obs.Time(ctx, "sequence.cache.Get")(&err)

	if lineID == "" || direction == "" {
		return nil, false, errors.New("get sequence cache: line and direction must not be empty")
	}

	raw, err := c.cache.Get(ctx, sequenceKey(lineID, direction))
	if err != nil {
		var nf *store.NotFound
		if errors.As(err, &nf) || errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get sequence cache: %w", err)
	}

	var stops []cachedStop
	if err := json.Unmarshal([]byte(raw), &stops); err != nil {
		return nil, false, fmt.Errorf("get sequence cache: decode %q: %w", sequenceKey(lineID, direction), err)
	}

	out := make([]domain.StopReference, 0, len(stops))
	for _, s := range stops {
		out = append(out, domain.StopReference{ID: s.ID, DisplayName: s.Name})
	}

	return out, true, nil
}

// Put stores the stops of a line. Empty sequences are not cached.
func (c *RedisSequenceCache) Put(
	ctx context.Context,
	lineID string,
	direction string,
	stops []domain.StopReference,
) error {
	if lineID == "" || direction == "" {
		return errors.New("put sequence cache: line and direction must not be empty")
	}
	if len(stops) == 0 {
		return nil
	}

	rows := make([]cachedStop, 0, len(stops))
	for _, s := range stops {
		rows = append(rows, cachedStop{ID: s.ID, Name: s.DisplayName})
	}

	b, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("put sequence cache: encode: %w", err)
	}

	if err := c.cache.Set(ctx, sequenceKey(lineID, direction), string(b)); err != nil {
		return fmt.Errorf("put sequence cache line=%q: %w", lineID, err)
	}

	return nil
}
