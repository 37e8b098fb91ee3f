package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/logging"
)

func noop(context.Context) error { return nil }

func TestSchedules(t *testing.T) {
	assert.Equal(t, "0 */2 * * *", RefreshSchedule(2))

	spec, err := DailySchedule("18:05")
	require.NoError(t, err)
	assert.Equal(t, "5 18 * * *", spec)

	_, err = DailySchedule("6pm")
	assert.Error(t, err)
}

func TestNew_BadTimezone(t *testing.T) {
	_, err := New("Mars/Olympus_Mons", logging.Discard())
	assert.Error(t, err)
}

func TestAddAndRemoveJobs(t *testing.T) {
	s, err := New("UTC", logging.Discard())
	require.NoError(t, err)

	require.NoError(t, s.AddRefreshJob(1, noop))
	require.NoError(t, s.AddSummaryJob("18:00", noop))
	assert.Error(t, s.AddRefreshJob(0, noop))
	assert.Error(t, s.AddSummaryJob("25:00", noop))

	// Re-adding replaces the existing entry
	require.NoError(t, s.AddRefreshJob(2, noop))

	jobs := s.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, JobRefresh, jobs[0].Name)
	assert.Equal(t, JobSummary, jobs[1].Name)
	assert.Len(t, s.cron.Entries(), 2)

	s.RemoveJob(JobRefresh)
	assert.Len(t, s.ListJobs(), 1)
}

func TestApply(t *testing.T) {
	s, err := New("America/New_York", logging.Discard())
	require.NoError(t, err)

	cfg := config.ScheduleConfig{
		RefreshIntervalHours: 2,
		SummaryTime:          "18:00",
		Timezone:             "America/New_York",
	}
	require.NoError(t, s.Apply(cfg, true, noop, noop))
	assert.Len(t, s.ListJobs(), 2)

	// Turning summaries off drops the daily job
	require.NoError(t, s.Apply(cfg, false, noop, noop))
	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, JobRefresh, jobs[0].Name)

	cfg.Timezone = "UTC"
	assert.Error(t, s.Apply(cfg, true, noop, noop))
	assert.Len(t, s.ListJobs(), 1)
}

func TestRunNow(t *testing.T) {
	s, err := New("UTC", logging.Discard())
	require.NoError(t, err)

	ran := false
	require.NoError(t, s.RunNow("adhoc", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		ran = true
		return nil
	}))
	assert.True(t, ran)

	boom := errors.New("boom")
	assert.ErrorIs(t, s.RunNow("adhoc", func(context.Context) error { return boom }), boom)
}
