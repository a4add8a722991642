package report

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
)

// RedisConfig holds configuration for a RedisReporter.
type RedisConfig struct {
	// Client is the Redis connection. Required.
	Client redis.UniversalClient

	// KeyPrefix is prepended to every snapshot key (defaults to "taskpool:stats")
	KeyPrefix string

	// TTL is how long a snapshot survives without being refreshed (defaults to 1 minute)
	TTL time.Duration

	// Timeout bounds each write (defaults to 500ms)
	Timeout time.Duration
}

// DefaultRedisConfig returns a configuration without a client.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		KeyPrefix: "taskpool:stats",
		TTL:       time.Minute,
		Timeout:   500 * time.Millisecond,
	}
}

// RedisReporter stores the latest snapshot of each pool in a Redis hash that
// expires when the process stops reporting. It only publishes; nothing reads
// the hashes back to coordinate work.
type RedisReporter struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisReporter validates config and applies defaults.
func NewRedisReporter(config RedisConfig) (*RedisReporter, error) {
	if config.Client == nil {
		return nil, tperrors.NewValidationError("report", "redis_client", nil, "cannot be nil").
			WithHint("pass a client from redis.NewClient")
	}
	if err := validation.ValidateDuration("report", "ttl", config.TTL); err != nil {
		return nil, err
	}
	if err := validation.ValidateDuration("report", "timeout", config.Timeout); err != nil {
		return nil, err
	}

	defaults := DefaultRedisConfig()
	if config.KeyPrefix == "" {
		config.KeyPrefix = defaults.KeyPrefix
	}
	if config.TTL == 0 {
		config.TTL = defaults.TTL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}

	return &RedisReporter{
		client:  config.Client,
		prefix:  config.KeyPrefix,
		ttl:     config.TTL,
		timeout: config.Timeout,
	}, nil
}

// Key returns the hash key a snapshot of the named pool instance is stored under.
func (r *RedisReporter) Key(name, id string) string {
	return r.prefix + ":" + name + ":" + id
}

// Report implements Reporter. The hash is written and its TTL refreshed in
// one transaction.
func (r *RedisReporter) Report(ctx context.Context, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	key := r.Key(snap.Pool.Name, snap.Pool.ID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, snapshotFields(snap))
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return tperrors.NewOperationError("report", "redis_write", err).WithContext(key)
	}
	return nil
}

// Load reads back a stored snapshot hash. It returns an empty map if the key
// does not exist.
func (r *RedisReporter) Load(ctx context.Context, key string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return nil, tperrors.NewOperationError("report", "redis_read", err).WithContext(key)
	}
	return fields, nil
}

func snapshotFields(snap Snapshot) map[string]interface{} {
	s := snap.Pool
	return map[string]interface{}{
		"time":           snap.Time.UTC().Format(time.RFC3339Nano),
		"name":           s.Name,
		"workers":        strconv.Itoa(s.Workers),
		"active":         strconv.Itoa(s.ActiveWorkers),
		"queued":         strconv.Itoa(s.QueueSize),
		"queue_capacity": strconv.Itoa(s.QueueCapacity),
		"submitted":      strconv.FormatInt(s.TotalSubmitted, 10),
		"completed":      strconv.FormatInt(s.TotalCompleted, 10),
		"failed":         strconv.FormatInt(s.TotalFailed, 10),
		"panicked":       strconv.FormatInt(s.TotalPanicked, 10),
		"closed":         strconv.FormatBool(s.Closed),
	}
}
