package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/sentiment"
	"github.com/ibeckermayer/sentiview/internal/types"
	"github.com/ibeckermayer/sentiview/internal/users"
)

// OverviewOptions selects what the overview aggregates over.
type OverviewOptions struct {
	Window     sentiment.Window
	Month      time.Month // non-zero aggregates over that month of the current year instead of Window
	ShowHidden bool       // list hidden authors instead of visible ones
}

// Overview is the all-users screen: the breakdown plus the author roll-up.
type Overview struct {
	Window sentiment.Window `json:"window,omitempty"`
	Month  string           `json:"month,omitempty"`
	Result sentiment.Result `json:"result"`
	Users  []users.Summary  `json:"users"`
	Hidden int              `json:"hidden"`
	AsOf   time.Time        `json:"as_of"`
}

// Overview aggregates every stored post.
func (a *App) Overview(ctx context.Context, opts OverviewOptions) (*Overview, error) {
	s := a.getSnapshot()
	now := a.clock()

	posts, err := a.store.Posts(ctx)
	if err != nil {
		return nil, err
	}

	ov := &Overview{AsOf: now}
	if opts.Month != 0 {
		ov.Month = opts.Month.String()
		ov.Result = sentiment.AggregateCalendarMonth(posts, opts.Month, now)
	} else {
		if opts.Window == "" {
			opts.Window = sentiment.All
		}
		ov.Window = opts.Window
		ov.Result = sentiment.Aggregate(posts, opts.Window, now)
	}

	summaries := users.Summarize(posts, now)
	ov.Users = s.roster.Visible(summaries, opts.ShowHidden)
	ov.Hidden = len(s.roster.Visible(summaries, true))
	return ov, nil
}

// UserView is one author's screen.
type UserView struct {
	Username string             `json:"username"`
	Result   sentiment.Result   `json:"result"` // over all of the author's posts
	Posts    []types.Post       `json:"posts"`  // after Criteria
	Total    int                `json:"total"`
	Criteria sentiment.Criteria `json:"criteria"`
}

// UserView returns the author's breakdown and their posts filtered by c.
func (a *App) UserView(ctx context.Context, username string, c sentiment.Criteria) (*UserView, error) {
	posts, err := a.store.UserPosts(ctx, username)
	if err != nil {
		return nil, err
	}

	return &UserView{
		Username: username,
		Result:   sentiment.Tally(posts),
		Posts:    sentiment.Filter(posts, c, a.clock()),
		Total:    len(posts),
		Criteria: c,
	}, nil
}

// Hide hides an author from the overview and persists the change.
func (a *App) Hide(name string) error {
	return a.updateRoster(func(r *users.Roster) { r.Hide(name) })
}

// Restore unhides an author and persists the change.
func (a *App) Restore(name string) error {
	return a.updateRoster(func(r *users.Roster) { r.Restore(name) })
}

// Hidden lists the hidden authors.
func (a *App) Hidden() []string {
	return a.getSnapshot().roster.Hidden()
}

func (a *App) updateRoster(change func(*users.Roster)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	roster := users.NewRoster(a.roster.Hidden()...)
	change(roster)

	path, err := a.resolveConfigPath()
	if err != nil {
		return err
	}
	// Only hidden_users is rewritten; environment overrides stay in memory
	if err := config.SaveHiddenUsers(path, roster.Hidden()); err != nil {
		return fmt.Errorf("save hidden users: %w", err)
	}

	cfg := *a.config
	cfg.Display.HiddenUsers = roster.Hidden()
	a.config = &cfg
	a.roster = roster
	return nil
}

func (a *App) resolveConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.ConfigPath()
}
