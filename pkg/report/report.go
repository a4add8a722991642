package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vnykmshr/taskpool/pkg/workerpool"
)

// Snapshot is the statistics of one pool at a point in time.
type Snapshot struct {
	Time time.Time
	Pool workerpool.Stats
}

// Source provides pool statistics. *workerpool.Pool implements it.
type Source interface {
	Stats() workerpool.Stats
}

// Reporter publishes snapshots somewhere.
type Reporter interface {
	Report(ctx context.Context, snap Snapshot) error
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, snap Snapshot) error

// Report implements Reporter.
func (f ReporterFunc) Report(ctx context.Context, snap Snapshot) error {
	return f(ctx, snap)
}

// Collect takes a snapshot of src.
func Collect(src Source, now time.Time) Snapshot {
	return Snapshot{Time: now, Pool: src.Stats()}
}

// ReportAll hands snap to every reporter and joins their errors.
func ReportAll(ctx context.Context, snap Snapshot, reporters ...Reporter) error {
	var errs []error
	for _, r := range reporters {
		if err := r.Report(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogReporter writes snapshots as structured log records.
type LogReporter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogReporter returns a reporter logging at INFO level. A nil logger
// means slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger, level: slog.LevelInfo}
}

// WithLevel sets the level records are logged at.
func (r *LogReporter) WithLevel(level slog.Level) *LogReporter {
	r.level = level
	return r
}

// Report implements Reporter.
func (r *LogReporter) Report(ctx context.Context, snap Snapshot) error {
	s := snap.Pool
	r.logger.LogAttrs(ctx, r.level, "pool stats",
		slog.String("pool", s.Name),
		slog.String("id", s.ID),
		slog.Int("workers", s.Workers),
		slog.Int("active", s.ActiveWorkers),
		slog.Int("queued", s.QueueSize),
		slog.Int("queue_capacity", s.QueueCapacity),
		slog.Int64("submitted", s.TotalSubmitted),
		slog.Int64("completed", s.TotalCompleted),
		slog.Int64("failed", s.TotalFailed),
		slog.Int64("panicked", s.TotalPanicked),
		slog.Int64("blocked_pushes", s.Queue.BlockedPushes),
		slog.Bool("closed", s.Closed),
	)
	return nil
}
