// Package app wires the source, store, analyzer and reporting together
// behind the operations the CLI and daemon expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ibeckermayer/sentiview/internal/analyzer"
	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/notifier"
	"github.com/ibeckermayer/sentiview/internal/report"
	"github.com/ibeckermayer/sentiview/internal/sentiment"
	"github.com/ibeckermayer/sentiview/internal/source"
	"github.com/ibeckermayer/sentiview/internal/store"
	"github.com/ibeckermayer/sentiview/internal/types"
	"github.com/ibeckermayer/sentiview/internal/users"
)

var (
	// ErrNoAnalyzer is returned by Label when no labelling provider is configured.
	ErrNoAnalyzer = errors.New("no analyzer configured")
	// ErrNoNotifier is returned by SendSummary when email is not configured.
	ErrNoNotifier = errors.New("no notifier configured")
	// ErrEmptySelection is returned by Export when no selected post belongs to the user.
	ErrEmptySelection = errors.New("no posts selected")
)

// Deps are the collaborators of an App. Nil fields are built from the config
// where possible.
type Deps struct {
	Store      *store.Store
	Source     source.Source
	Analyzer   *analyzer.Analyzer
	Notifier   *notifier.Notifier
	Snapshots  store.Snapshots
	Logger     *log.Logger
	Clock      sentiment.Clock
	ConfigPath string // where hide/restore persist; empty means the default path
}

// App holds the application state.
type App struct {
	mu sync.RWMutex

	// Immutable after creation
	store      *store.Store
	snapshots  store.Snapshots
	logger     *log.Logger
	clock      sentiment.Clock
	configPath string

	// Mutable fields - use getSnapshot() for concurrent access.
	config   *config.Config
	source   source.Source
	analyzer *analyzer.Analyzer
	notifier *notifier.Notifier
	reports  *report.Builder
	roster   *users.Roster
	location *time.Location
}

// snapshot holds fields that may be replaced by ReloadConfig or hide/restore.
// Use getSnapshot() to obtain a consistent, point-in-time copy.
type snapshot struct {
	config   *config.Config
	source   source.Source
	analyzer *analyzer.Analyzer
	notifier *notifier.Notifier
	reports  *report.Builder
	roster   *users.Roster
	location *time.Location // schedule.timezone; summaries are cut in it
}

// getSnapshot returns a snapshot of mutable fields under read lock.
func (a *App) getSnapshot() snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshot{
		config:   a.config,
		source:   a.source,
		analyzer: a.analyzer,
		notifier: a.notifier,
		reports:  a.reports,
		roster:   a.roster,
		location: a.location,
	}
}

// New creates a new App instance. deps.Store is required.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if deps.Store == nil {
		return nil, errors.New("app requires a store")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Clock == nil {
		deps.Clock = sentiment.SystemClock
	}

	a := &App{
		store:      deps.Store,
		snapshots:  deps.Snapshots,
		logger:     deps.Logger,
		clock:      deps.Clock,
		configPath: deps.ConfigPath,
	}

	s, err := a.build(cfg, deps)
	if err != nil {
		return nil, err
	}
	a.apply(s)
	return a, nil
}

// build derives the mutable collaborators from cfg, preferring any supplied in deps.
func (a *App) build(cfg *config.Config, deps Deps) (snapshot, error) {
	s := snapshot{
		config:   cfg,
		source:   deps.Source,
		analyzer: deps.Analyzer,
		notifier: deps.Notifier,
		roster:   users.NewRoster(cfg.Display.HiddenUsers...),
	}

	var err error
	if s.source == nil {
		s.source, err = source.New(cfg.Source, a.store, a.logger.WithPrefix("source"))
		if err != nil {
			return s, err
		}
	}

	// Labelling and email are optional; the views work without them.
	if s.analyzer == nil && cfg.Analysis.APIKey != "" {
		s.analyzer, err = analyzer.New(cfg.Analysis, a.snapshots, a.logger.WithPrefix("analyzer"))
		if err != nil {
			return s, err
		}
	}
	if s.notifier == nil && cfg.Email.SMTPHost != "" {
		s.notifier, err = notifier.NewFromConfig(cfg.Email, a.logger.WithPrefix("notifier"))
		if err != nil {
			return s, err
		}
	}

	s.location, err = time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return s, fmt.Errorf("schedule timezone: %w", err)
	}

	s.reports, err = report.New(cfg.Report.MaxPosts)
	if err != nil {
		return s, err
	}
	return s, nil
}

func (a *App) apply(s snapshot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config = s.config
	a.source = s.source
	a.analyzer = s.analyzer
	a.notifier = s.notifier
	a.reports = s.reports
	a.roster = s.roster
	a.location = s.location
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	return a.getSnapshot().config
}

// Now returns the app clock's current time.
func (a *App) Now() time.Time {
	return a.clock()
}

// Refresh copies posts from the configured source into the store and
// returns how many were saved. It is a no-op when the store is the source.
func (a *App) Refresh(ctx context.Context) (int, error) {
	s := a.getSnapshot()
	if s.config.Source.Kind == config.SourceStore {
		a.logger.Debug("Source is the local store - nothing to refresh")
		return 0, nil
	}

	a.logger.Info("Fetching posts", "source", s.config.Source.Kind)
	posts, err := s.source.Posts(ctx)
	if err != nil {
		return 0, err
	}
	return a.save(ctx, posts)
}

// RefreshUser is Refresh restricted to one author.
func (a *App) RefreshUser(ctx context.Context, username string) (int, error) {
	s := a.getSnapshot()
	if s.config.Source.Kind == config.SourceStore {
		return 0, nil
	}

	posts, err := s.source.UserPosts(ctx, username)
	if err != nil {
		return 0, err
	}
	return a.save(ctx, posts)
}

func (a *App) save(ctx context.Context, posts []types.Post) (int, error) {
	if cachePath, err := store.SaveStepOutput(a.snapshots, store.StepFetched, posts); err != nil {
		a.logger.Warn("Failed to cache fetched posts", "error", err)
	} else {
		a.logger.Debug("Cached fetched posts", "path", cachePath)
	}

	before, err := a.store.CountPosts(ctx)
	if err != nil {
		return 0, err
	}
	if err := a.store.SavePosts(ctx, posts); err != nil {
		return 0, fmt.Errorf("save posts: %w", err)
	}
	after, err := a.store.CountPosts(ctx)
	if err != nil {
		return 0, err
	}
	a.logger.Info("Saved posts", "count", len(posts), "new", after-before, "stored", after)
	return len(posts), nil
}

// StoredPosts returns how many posts the local database holds.
func (a *App) StoredPosts(ctx context.Context) (int, error) {
	return a.store.CountPosts(ctx)
}

// Usernames lists every author in the local database, alphabetically.
func (a *App) Usernames(ctx context.Context) ([]string, error) {
	return a.store.Usernames(ctx)
}

// Label sends unlabelled posts to the analyzer and stores the results.
// It returns the number of posts labelled.
func (a *App) Label(ctx context.Context) (int, error) {
	s := a.getSnapshot()
	if s.analyzer == nil {
		return 0, ErrNoAnalyzer
	}

	posts, err := a.store.UnlabeledPosts(ctx, s.config.Analysis.MaxPerRun)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		a.logger.Info("No unlabelled posts")
		return 0, nil
	}

	a.logger.Info("Labelling posts", "count", len(posts))
	labels, err := s.analyzer.LabelPosts(ctx, posts)
	if err != nil {
		return 0, err
	}

	if cachePath, err := store.SaveStepOutput(a.snapshots, store.StepLabeled, labels); err != nil {
		a.logger.Warn("Failed to cache labels", "error", err)
	} else {
		a.logger.Debug("Cached labels", "path", cachePath)
	}

	n, err := a.store.SaveLabels(ctx, labels)
	if err != nil {
		return 0, err
	}
	if n < len(posts) {
		a.logger.Warn("Some posts came back without a label", "sent", len(posts), "labelled", n)
	}
	return n, nil
}
