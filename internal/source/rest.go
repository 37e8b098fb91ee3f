package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/codeGROOVE-dev/retry"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/types"
)

// REST reads posts from a PostgREST endpoint such as a Supabase project.
type REST struct {
	baseURL    string
	apiKey     string
	table      string
	attempts   uint
	delay      time.Duration
	httpClient *http.Client
	logger     *log.Logger
}

// NewREST creates a REST source from cfg.
func NewREST(cfg config.SourceConfig, logger *log.Logger) *REST {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	return &REST{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		apiKey:   cfg.APIKey,
		table:    cfg.Table,
		attempts: uint(attempts),
		delay:    time.Second,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// statusError is a non-2xx response from the endpoint.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// retryable reports whether a failed request is worth repeating. Client
// errors other than timeouts and rate limits will not change on retry.
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusRequestTimeout || se.Code == http.StatusTooManyRequests
	}
	return true
}

// Posts fetches every post, newest first.
func (r *REST) Posts(ctx context.Context) ([]types.Post, error) {
	return r.fetch(ctx, nil)
}

// UserPosts fetches the posts authored by username, newest first.
func (r *REST) UserPosts(ctx context.Context, username string) ([]types.Post, error) {
	return r.fetch(ctx, url.Values{"username": {"eq." + username}})
}

func (r *REST) endpoint(filters url.Values) string {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "timestamp.desc")
	for k, v := range filters {
		q[k] = v
	}
	return fmt.Sprintf("%s/rest/v1/%s?%s", r.baseURL, url.PathEscape(r.table), q.Encode())
}

func (r *REST) fetch(ctx context.Context, filters url.Values) ([]types.Post, error) {
	endpoint := r.endpoint(filters)
	var posts []types.Post

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")
			if r.apiKey != "" {
				req.Header.Set("apikey", r.apiKey)
				req.Header.Set("Authorization", "Bearer "+r.apiKey)
			}

			start := time.Now()
			resp, err := r.httpClient.Do(req)
			if err != nil {
				r.logger.Warn("Fetch failed", "table", r.table, "error", err)
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return &statusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
			}

			posts = types.DecodePosts(body)
			r.logger.Debug("Fetched posts",
				"table", r.table,
				"count", len(posts),
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		},
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(r.delay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Info("Retrying fetch after error", "attempt", n+1, "error", err)
		}),
		retry.RetryIf(retryable),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.table, err)
	}

	return posts, nil
}

// truncate shortens s to at most maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}
