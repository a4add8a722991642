// Package report publishes worker pool statistics on a schedule.
//
// A Scheduler takes snapshots of a pool on a cron spec and hands them to
// Reporters. LogReporter writes a structured log record per snapshot;
// RedisReporter keeps the latest snapshot of each pool instance in an
// expiring Redis hash so dashboards can list live pools.
//
//	sched, _ := report.NewScheduler(report.SchedulerConfig{})
//	sched.Schedule("@every 30s", pool, report.NewLogReporter(logger))
//	sched.Start()
//	defer sched.Stop()
package report
