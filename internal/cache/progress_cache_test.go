package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"dietcascade/portal-api/internal/domain"
)

func TestNoopProgressCacheAlwaysMisses(t *testing.T) {
	c := NewNoopProgressCache()
	ctx := context.Background()

	stored, err := c.SetIfUnchanged(ctx, "client1", 0, []domain.ProgressEntry{{Notes: "x"}})
	if err != nil || stored {
		t.Fatalf("SetIfUnchanged = %v, %v; want nothing stored", stored, err)
	}
	if gen, err := c.Generation(ctx, "client1"); err != nil || gen != 0 {
		t.Errorf("Generation = %d, %v", gen, err)
	}
	entries, ok, err := c.Get(ctx, "client1")
	if err != nil || ok || entries != nil {
		t.Errorf("Get = %v, %v, %v; want miss", entries, ok, err)
	}
	if err := c.Invalidate(ctx, "client1"); err != nil {
		t.Errorf("Invalidate: %v", err)
	}
}

func TestProgressKey(t *testing.T) {
	if got := progressKey("abc"); got != "progress:history:abc" {
		t.Errorf("progressKey = %q", got)
	}
	if got := generationKey("abc"); got != "progress:gen:abc" {
		t.Errorf("generationKey = %q", got)
	}
}

func TestRedisProgressCacheDefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	c := NewRedisProgressCache(client, 0).(*redisProgressCache)
	if c.ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m default", c.ttl)
	}
}
