// Package analyzer labels unlabelled posts with an LLM.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ibeckermayer/sentiview/internal/analyzer/providers"
	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/store"
	"github.com/ibeckermayer/sentiview/internal/types"
)

// Provider defines the interface for LLM providers
type Provider interface {
	Classify(ctx context.Context, posts []types.Post) ([]types.Label, error)
}

// Analyzer handles LLM-based sentiment labelling
type Analyzer struct {
	provider  Provider
	batchSize int
	limiter   *rate.Limiter
	logger    *log.Logger
}

// New creates a new analyzer with the appropriate provider based on config
func New(analysisConfig config.AnalysisConfig, snapshots store.Snapshots, logger *log.Logger) (*Analyzer, error) {
	var provider Provider

	switch analysisConfig.LLMProvider {
	case config.ProviderAnthropic:
		provider = providers.NewAnthropicProvider(analysisConfig.APIKey, analysisConfig.Model, snapshots, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", analysisConfig.LLMProvider)
	}

	a := NewWithProvider(provider, analysisConfig.BatchSize, logger)
	a.SetRequestsPerMinute(analysisConfig.RequestsPerMinute)
	return a, nil
}

// NewWithProvider wraps an already constructed provider.
func NewWithProvider(provider Provider, batchSize int, logger *log.Logger) *Analyzer {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Analyzer{
		provider:  provider,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(rate.Inf, 1),
		logger:    logger,
	}
}

// SetRequestsPerMinute caps how often batches are sent to the provider.
// n <= 0 removes the cap.
func (a *Analyzer) SetRequestsPerMinute(n int) {
	if n <= 0 {
		a.limiter.SetLimit(rate.Inf)
		return
	}
	a.limiter.SetLimit(rate.Every(time.Minute / time.Duration(n)))
}

// LabelPosts labels posts in concurrent batches. Labels come back in batch
// order; a failed batch fails the whole call.
func (a *Analyzer) LabelPosts(ctx context.Context, posts []types.Post) ([]types.Label, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	numBatches := (len(posts) + a.batchSize - 1) / a.batchSize

	// One slice per batch so goroutines never share a slot
	results := make([][]types.Label, numBatches)

	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < len(posts); i += a.batchSize {
		batchIdx := i / a.batchSize
		batch := posts[i:min(i+a.batchSize, len(posts))]

		g.Go(func() error {
			if err := a.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
			labels, err := a.provider.Classify(ctx, batch)
			if err != nil {
				return fmt.Errorf("failed to label batch %d: %w", batchIdx, err)
			}
			a.logger.Debug("Labelled batch", "batch", batchIdx, "posts", len(batch), "labels", len(labels))
			results[batchIdx] = labels
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.Label
	for _, batchResult := range results {
		all = append(all, batchResult...)
	}

	return all, nil
}
