// Package config loads settings for the demo programs from a YAML file and
// TASKPOOL_* environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	tperrors "github.com/vnykmshr/taskpool/pkg/common/errors"
	"github.com/vnykmshr/taskpool/pkg/common/validation"
	"github.com/vnykmshr/taskpool/pkg/metrics"
	"github.com/vnykmshr/taskpool/pkg/workerpool"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TASKPOOL"

// Config is the top-level demo configuration.
type Config struct {
	Pool    PoolConfig    `yaml:"pool"`
	Metrics MetricsConfig `yaml:"metrics"`
	Report  ReportConfig  `yaml:"report"`
	Log     LogConfig     `yaml:"log"`
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	Name            string        `yaml:"name"`
	Workers         int           `yaml:"workers"`
	QueueCapacity   int           `yaml:"queue_capacity"`
	TaskTimeout     time.Duration `yaml:"task_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Addr      string `yaml:"addr"`
	Namespace string `yaml:"namespace"`
}

// ReportConfig configures periodic statistics reports. Redis reporting is
// off while RedisAddr is empty.
type ReportConfig struct {
	Spec      string        `yaml:"spec"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisTTL  time.Duration `yaml:"redis_ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file or variable says otherwise.
func Default() Config {
	return Config{
		Pool: PoolConfig{
			Name:            "demo",
			Workers:         workerpool.DefaultWorkerCount(),
			QueueCapacity:   128,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Addr:      ":2112",
			Namespace: metrics.DefaultNamespace,
		},
		Report: ReportConfig{
			Spec:     "@every 10s",
			RedisTTL: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 -- the path comes from the operator's command line.
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []error{
		validation.ValidateNotEmpty("config", "pool.name", c.Pool.Name),
		validation.ValidateNonNegative("config", "pool.workers", c.Pool.Workers),
		validation.ValidateNonNegative("config", "pool.queue_capacity", c.Pool.QueueCapacity),
		validation.ValidateDuration("config", "pool.task_timeout", c.Pool.TaskTimeout),
		validation.ValidateDuration("config", "pool.shutdown_timeout", c.Pool.ShutdownTimeout),
		validation.ValidateDuration("config", "report.redis_ttl", c.Report.RedisTTL),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if c.Metrics.Enabled {
		if err := validation.ValidateNotEmpty("config", "metrics.addr", c.Metrics.Addr); err != nil {
			return err
		}
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return tperrors.NewValidationError("config", "log.format", c.Log.Format, "unknown format").
			WithHint("use text or json")
	}
	return nil
}

// WorkerPool converts the pool section into a workerpool.Config.
func (c Config) WorkerPool(logger *slog.Logger, reg *metrics.Registry) workerpool.Config {
	return workerpool.Config{
		Name:          c.Pool.Name,
		WorkerCount:   c.Pool.Workers,
		QueueCapacity: c.Pool.QueueCapacity,
		TaskTimeout:   c.Pool.TaskTimeout,
		Logger:        logger,
		Metrics:       reg,
	}
}

// NewLogger builds a logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return level, tperrors.NewValidationError("config", "log.level", c.Level, "unknown level").
			WithHint("use debug, info, warn or error")
	}
	return level, nil
}

// applyEnv overlays PREFIX_SECTION_FIELD variables, for example
// TASKPOOL_POOL_WORKERS=16.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"POOL_NAME":         &c.Pool.Name,
		"METRICS_ADDR":      &c.Metrics.Addr,
		"METRICS_NAMESPACE": &c.Metrics.Namespace,
		"REPORT_SPEC":       &c.Report.Spec,
		"REPORT_REDIS_ADDR": &c.Report.RedisAddr,
		"LOG_LEVEL":         &c.Log.Level,
		"LOG_FORMAT":        &c.Log.Format,
	}
	ints := map[string]*int{
		"POOL_WORKERS":        &c.Pool.Workers,
		"POOL_QUEUE_CAPACITY": &c.Pool.QueueCapacity,
	}
	durations := map[string]*time.Duration{
		"POOL_TASK_TIMEOUT":     &c.Pool.TaskTimeout,
		"POOL_SHUTDOWN_TIMEOUT": &c.Pool.ShutdownTimeout,
		"REPORT_REDIS_TTL":      &c.Report.RedisTTL,
	}
	bools := map[string]*bool{
		"METRICS_ENABLED": &c.Metrics.Enabled,
	}

	env := func(key string) (string, string, bool) {
		name := EnvPrefix + "_" + key
		v, ok := lookup(name)
		return name, strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	for key, dst := range strs {
		if _, v, ok := env(key); ok {
			*dst = v
		}
	}
	for key, dst := range ints {
		if name, v, ok := env(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("failed to set %s: invalid integer value: %s", name, v)
			}
			*dst = n
		}
	}
	for key, dst := range durations {
		if name, v, ok := env(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("failed to set %s: %w", name, err)
			}
			*dst = d
		}
	}
	for key, dst := range bools {
		if name, v, ok := env(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("failed to set %s: invalid boolean value: %s", name, v)
			}
			*dst = b
		}
	}
	return nil
}
