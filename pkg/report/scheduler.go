package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/taskpool/pkg/common/validation"
)

// DefaultSpec reports every ten seconds.
const DefaultSpec = "@every 10s"

// SchedulerConfig holds configuration for a Scheduler.
type SchedulerConfig struct {
	// Timeout bounds one reporting round (defaults to 5s)
	Timeout time.Duration

	// Location is the time zone cron specs are interpreted in (defaults to time.Local)
	Location *time.Location

	// Logger receives reporting failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Scheduler runs reporting rounds on cron schedules. Specs accept an
// optional leading seconds field and descriptors such as "@every 30s".
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(config SchedulerConfig) (*Scheduler, error) {
	if err := validation.ValidateDuration("report", "timeout", config.Timeout); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	logger := config.Logger.With("component", "report")
	cl := cronLogger{logger: logger}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(config.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		timeout: config.Timeout,
		logger:  logger,
	}, nil
}

// Schedule reports src to every reporter on the given cron spec.
func (s *Scheduler) Schedule(spec string, src Source, reporters ...Reporter) (cron.EntryID, error) {
	if err := validation.ValidateNotEmpty("report", "spec", spec); err != nil {
		return 0, err
	}
	if len(reporters) == 0 {
		return 0, fmt.Errorf("report: schedule %q: no reporters", spec)
	}

	id, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.round(ctx, src, reporters)
	})
	if err != nil {
		return 0, fmt.Errorf("report: invalid cron spec %q: %w", spec, err)
	}
	return id, nil
}

// Remove stops a scheduled report.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// Next returns when the entry runs next, or the zero time if the scheduler
// is not running.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// Start begins running scheduled reports in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once running
// rounds have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) round(ctx context.Context, src Source, reporters []Reporter) {
	snap := Collect(src, time.Now())
	if err := ReportAll(ctx, snap, reporters...); err != nil {
		s.logger.Warn("report failed", "pool", snap.Pool.Name, "error", err)
	}
}

// cronLogger routes cron's own diagnostics to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
