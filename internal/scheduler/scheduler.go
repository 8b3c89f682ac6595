// Package scheduler runs recurring jobs on a cron schedule.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"uptask/internal/config"
	"uptask/internal/logging"
)

// Service wraps cron-based jobs.
type Service struct {
	cron *cron.Cron
}

type cronLogger struct{}

func (cronLogger) Printf(format string, args ...interface{}) {
	logging.Errorf(format, args...)
}

// New creates a stopped scheduler evaluating daily times in loc. A nil loc means local time.
func New(loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.PrintfLogger(cronLogger{}))),
		),
	}
}

// ScheduleDaily registers a daily job at the given HH:MM time string.
func (s *Service) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	hour, minute, err := config.ParseClock(timeStr)
	if err != nil {
		return 0, err
	}
	// cron format: second minute hour dom month dow
	return s.cron.AddFunc(fmt.Sprintf("0 %d %d * * *", minute, hour), job)
}

// ScheduleInterval registers a periodic job every given duration, rounded down to whole seconds.
func (s *Service) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// Next returns when the job runs next, or the zero time when the scheduler is stopped.
func (s *Service) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

// Start runs the scheduler in its own goroutine.
func (s *Service) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
