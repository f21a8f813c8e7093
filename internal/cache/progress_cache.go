package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"dietcascade/portal-api/internal/domain"
)

const (
	progressKeyPrefix           = "progress:history:"
	progressGenerationKeyPrefix = "progress:gen:"

	// Outlives any history TTL; an expired counter only ever causes a skipped fill.
	generationTTL = 24 * time.Hour
)

// ProgressCache holds the full, date-ordered progress history of a client.
// Writers invalidate, which also bumps the client's generation. Readers take
// the generation before reading the store and fill the cache only if it is
// still the same, so a list read before a write never lands after it.
type ProgressCache interface {
	Get(ctx context.Context, clientID string) (entries []domain.ProgressEntry, ok bool, err error)
	Generation(ctx context.Context, clientID string) (int64, error)
	// SetIfUnchanged stores entries unless the generation moved past gen.
	SetIfUnchanged(ctx context.Context, clientID string, gen int64, entries []domain.ProgressEntry) (stored bool, err error)
	Invalidate(ctx context.Context, clientID string) error
}

// setIfGeneration writes KEYS[2] only while KEYS[1] still holds ARGV[1].
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then current = '0' end
if current ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

type redisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProgressCache(client *redis.Client, ttl time.Duration) ProgressCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisProgressCache{client: client, ttl: ttl}
}

func progressKey(clientID string) string {
	return progressKeyPrefix + clientID
}

func generationKey(clientID string) string {
	return progressGenerationKeyPrefix + clientID
}

func (c *redisProgressCache) Get(ctx context.Context, clientID string) ([]domain.ProgressEntry, bool, error) {
	raw, err := c.client.Get(ctx, progressKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []domain.ProgressEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Corrupt payload counts as a miss; the caller rewrites it.
		return nil, false, nil
	}
	return entries, true, nil
}

// Generation returns the client's write generation, 0 when none was recorded.
func (c *redisProgressCache) Generation(ctx context.Context, clientID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(clientID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisProgressCache) SetIfUnchanged(ctx context.Context, clientID string, gen int64, entries []domain.ProgressEntry) (bool, error) {
	if entries == nil {
		entries = []domain.ProgressEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return false, err
	}

	keys := []string{generationKey(clientID), progressKey(clientID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate bumps the generation and drops the cached list in one transaction.
func (c *redisProgressCache) Invalidate(ctx context.Context, clientID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(clientID))
		pipe.Expire(ctx, generationKey(clientID), generationTTL)
		pipe.Del(ctx, progressKey(clientID))
		return nil
	})
	return err
}

// noopProgressCache is used when Redis is not configured.
type noopProgressCache struct{}

func NewNoopProgressCache() ProgressCache { return noopProgressCache{} }

func (noopProgressCache) Get(context.Context, string) ([]domain.ProgressEntry, bool, error) {
	return nil, false, nil
}

func (noopProgressCache) Generation(context.Context, string) (int64, error) { return 0, nil }

func (noopProgressCache) SetIfUnchanged(context.Context, string, int64, []domain.ProgressEntry) (bool, error) {
	return false, nil
}

func (noopProgressCache) Invalidate(context.Context, string) error { return nil }
