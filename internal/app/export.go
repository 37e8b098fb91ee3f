package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/browser"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/report"
	"github.com/ibeckermayer/sentiview/internal/selection"
	"github.com/ibeckermayer/sentiview/internal/sentiment"
	"github.com/ibeckermayer/sentiview/internal/store"
	"github.com/ibeckermayer/sentiview/internal/types"
)

// ExportRecord is written to the exported step cache for every saved report.
type ExportRecord struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	PostIDs  []string `json:"post_ids"`
	Format   string   `json:"format"`
	Path     string   `json:"path"`
}

// Export renders the selected posts of username as a report file and
// returns its path. An empty format uses report.format from the config.
func (a *App) Export(ctx context.Context, username string, sel *selection.Set, format string) (string, error) {
	s := a.getSnapshot()

	posts, err := a.store.UserPosts(ctx, username)
	if err != nil {
		return "", err
	}
	if sel != nil {
		posts = sel.Pick(posts)
	}
	if len(posts) == 0 {
		return "", ErrEmptySelection
	}

	if format == "" {
		format = s.config.Report.Format
	}
	r, err := s.reports.Build(username, posts, sentiment.Tally(posts), a.clock())
	if err != nil {
		return "", err
	}
	return a.saveReport(ctx, s.config, r, format)
}

func (a *App) saveReport(ctx context.Context, cfg *config.Config, r *report.Report, format string) (string, error) {
	dir, err := cfg.ReportDir()
	if err != nil {
		return "", err
	}
	path, err := r.Save(ctx, dir, format)
	if err != nil {
		return "", err
	}

	record := ExportRecord{ID: uuid.NewString(), Username: r.Username, PostIDs: r.PostIDs, Format: format, Path: path}
	if _, err := store.SaveStepOutput(a.snapshots, store.StepExported, record); err != nil {
		a.logger.Warn("Failed to record export", "error", err)
	}

	a.logger.Info("Report saved", "id", record.ID, "path", path, "posts", len(r.PostIDs))
	return path, nil
}

// SendSummary emails the daily summary covering schedule.summary_window,
// evaluated in schedule.timezone. Hidden authors are left out. Nothing is sent when there are no posts.
func (a *App) SendSummary(ctx context.Context) error {
	s := a.getSnapshot()
	if s.notifier == nil {
		return ErrNoNotifier
	}

	r, err := a.buildSummary(ctx, s)
	if errors.Is(err, report.ErrNoPosts) {
		a.logger.Info("No posts in summary window - skipping email")
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.notifier.SendReport(r, s.config.Email.ToAddr); err != nil {
		return err
	}
	if _, err := store.SaveTextOutput(a.snapshots, store.StepSummary, r.PlainBody, ".txt"); err != nil {
		a.logger.Warn("Failed to keep a copy of the summary", "error", err)
	}
	return nil
}

// SaveSummary writes the summary report to the report directory instead of
// sending it.
func (a *App) SaveSummary(ctx context.Context, format string) (string, error) {
	s := a.getSnapshot()
	r, err := a.buildSummary(ctx, s)
	if err != nil {
		return "", err
	}
	if format == "" {
		format = s.config.Report.Format
	}
	return a.saveReport(ctx, s.config, r, format)
}

func (a *App) buildSummary(ctx context.Context, s snapshot) (*report.Report, error) {
	window, err := sentiment.ParseWindow(s.config.Schedule.SummaryWindow)
	if err != nil {
		return nil, err
	}

	all, err := a.store.Posts(ctx)
	if err != nil {
		return nil, err
	}

	var posts []types.Post
	for _, p := range all {
		if !s.roster.IsHidden(p.Username) {
			posts = append(posts, p)
		}
	}

	// The job fires in the schedule's timezone, so "today" means its day
	now := a.clock().In(s.location)
	posts = sentiment.Filter(posts, sentiment.Criteria{DateRange: window}, now)
	return s.reports.Build("", posts, sentiment.Tally(posts), now)
}

// LastReport returns the path of the most recently saved report.
func (a *App) LastReport() (string, error) {
	record, _, err := store.LoadLatestStepOutput[ExportRecord](a.snapshots, store.StepExported)
	if err != nil {
		return "", fmt.Errorf("no report found: %w", err)
	}
	return record.Path, nil
}

// ViewLastReport opens the most recent report with the system viewer.
func (a *App) ViewLastReport() error {
	path, err := a.LastReport()
	if err != nil {
		return err
	}

	a.logger.Info("Opening report", "path", path)
	return browser.OpenFile(path)
}

// ReloadConfig reloads the configuration from disk.
func (a *App) ReloadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFrom(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Rebuild everything derived from the config
	s, err := a.build(cfg, Deps{})
	if err != nil {
		return err
	}
	a.apply(s)

	a.logger.Info("Configuration reloaded")
	return nil
}
