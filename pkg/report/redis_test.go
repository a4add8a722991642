package report

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to REDIS_ADDR (default localhost:6379) and skips the
// test when no server answers.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   1, // Use a test database
	})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	return rdb
}

func TestRedisReporterDefaults(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer func() { _ = rdb.Close() }()

	r, err := NewRedisReporter(RedisConfig{Client: rdb})
	require.NoError(t, err)

	assert.Equal(t, "taskpool:stats:ingest:5f0c", r.Key("ingest", "5f0c"))
	assert.Equal(t, time.Minute, r.ttl)
	assert.Equal(t, 500*time.Millisecond, r.timeout)
}

func TestRedisReporter(t *testing.T) {
	rdb := newTestClient(t)
	ctx := context.Background()

	r, err := NewRedisReporter(RedisConfig{
		Client:    rdb,
		KeyPrefix: "taskpool:test:" + t.Name(),
		TTL:       30 * time.Second,
	})
	require.NoError(t, err)

	snap := Collect(sampleStats(), time.Now())
	key := r.Key(snap.Pool.Name, snap.Pool.ID)
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	require.NoError(t, r.Report(ctx, snap))

	fields, err := r.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "ingest", fields["name"])
	assert.Equal(t, "111", fields["completed"])

	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)

	missing, err := r.Load(ctx, r.Key("absent", "0"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}
