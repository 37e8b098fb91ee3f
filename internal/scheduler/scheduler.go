// Package scheduler runs the periodic refresh and daily summary jobs.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/ibeckermayer/sentiview/internal/config"
)

// Job names
const (
	JobRefresh = "refresh"
	JobSummary = "summary"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 30 * time.Minute

// Job represents a scheduled task
type Job func(ctx context.Context) error

// Scheduler manages periodic tasks
type Scheduler struct {
	cron     *cron.Cron
	mu       sync.Mutex
	jobs     map[string]cron.EntryID
	timezone *time.Location
	logger   *log.Logger
}

// New creates a new scheduler with the given timezone
func New(timezone string, logger *log.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		jobs:     make(map[string]cron.EntryID),
		timezone: loc,
		logger:   logger.WithPrefix("scheduler"),
	}, nil
}

// Location is the timezone schedules are evaluated in.
func (s *Scheduler) Location() *time.Location {
	return s.timezone
}

// AddJob adds a job with a cron schedule, replacing any job with the same
// name. schedule format: "0 18 * * *" (at 6:00 PM daily)
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(name, job); err != nil {
			s.logger.Error("Job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.mu.Lock()
	if old, ok := s.jobs[name]; ok {
		s.cron.Remove(old)
	}
	s.jobs[name] = entryID
	s.mu.Unlock()

	s.logger.Info("Added job", "job", name, "schedule", schedule)
	return nil
}

// AddRefreshJob runs job every intervalHours, on the hour.
func (s *Scheduler) AddRefreshJob(intervalHours int, job Job) error {
	if intervalHours <= 0 || intervalHours > 23 {
		return fmt.Errorf("refresh interval must be between 1 and 23 hours, got %d", intervalHours)
	}
	return s.AddJob(JobRefresh, RefreshSchedule(intervalHours), job)
}

// AddSummaryJob runs job daily at timeStr ("18:00").
func (s *Scheduler) AddSummaryJob(timeStr string, job Job) error {
	schedule, err := DailySchedule(timeStr)
	if err != nil {
		return err
	}
	return s.AddJob(JobSummary, schedule, job)
}

// RefreshSchedule returns the cron spec for an hourly-interval job.
func RefreshSchedule(intervalHours int) string {
	return fmt.Sprintf("0 */%d * * *", intervalHours)
}

// DailySchedule converts "15:04" to a daily cron spec.
func DailySchedule(timeStr string) (string, error) {
	t, err := time.Parse("15:04", timeStr)
	if err != nil {
		return "", fmt.Errorf("invalid time format %s: %w", timeStr, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

// Apply (re)schedules the refresh job, and the summary job when summaries
// is true. A disabled summary job is removed. cfg.Timezone must match the
// scheduler's location; a different zone is reported as an error since cron
// cannot move existing entries.
func (s *Scheduler) Apply(cfg config.ScheduleConfig, summaries bool, refresh, summary Job) error {
	if cfg.Timezone != s.Location().String() {
		return fmt.Errorf("timezone changed from %s to %s; restart to apply", s.Location(), cfg.Timezone)
	}
	if err := s.AddRefreshJob(cfg.RefreshIntervalHours, refresh); err != nil {
		return err
	}
	if !summaries {
		s.RemoveJob(JobSummary)
		return nil
	}
	return s.AddSummaryJob(cfg.SummaryTime, summary)
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.Info("Removed job", "job", name)
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler", "timezone", s.timezone.String())
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler")
	return s.cron.Stop()
}

// RunNow immediately executes a job outside the schedule.
func (s *Scheduler) RunNow(name string, job Job) error {
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.logger.Info("Starting job", "job", name)
	start := time.Now()

	if err := job(ctx); err != nil {
		return err
	}
	s.logger.Info("Job completed", "job", name, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// ListJobs returns info about scheduled jobs, sorted by name
func (s *Scheduler) ListJobs() []JobInfo {
	entries := s.cron.Entries()

	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{
					Name:    name,
					NextRun: entry.Next,
					LastRun: entry.Prev,
				})
				break
			}
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}
