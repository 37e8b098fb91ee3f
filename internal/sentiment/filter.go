package sentiment

import (
	"fmt"
	"strings"
	"time"

	"github.com/ibeckermayer/sentiview/internal/types"
)

// SentimentFilter selects posts by bucket; FilterAll keeps everything.
type SentimentFilter string

const (
	FilterAll      SentimentFilter = "all"
	FilterPositive SentimentFilter = SentimentFilter(Positive)
	FilterNeutral  SentimentFilter = SentimentFilter(Neutral)
	FilterNegative SentimentFilter = SentimentFilter(Negative)
)

// ParseSentimentFilter parses a filter name case-insensitively.
func ParseSentimentFilter(s string) (SentimentFilter, error) {
	switch f := SentimentFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterPositive, FilterNeutral, FilterNegative:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sentiment filter %q (want all, positive, neutral or negative)", s)
	}
}

// Matches reports whether a raw label passes the filter. Neutral is the
// catch-all for anything that is not positive or negative.
func (f SentimentFilter) Matches(label string) bool {
	if f == FilterAll {
		return true
	}
	return Classify(label) == Bucket(f)
}

// Criteria is the display filter state owned by the caller.
type Criteria struct {
	Sentiment SentimentFilter `json:"sentiment"`
	DateRange Window          `json:"date_range"`
}

// DefaultCriteria keeps every post.
func DefaultCriteria() Criteria {
	return Criteria{Sentiment: FilterAll, DateRange: All}
}

// HasActive reports whether either filter narrows the view.
func (c Criteria) HasActive() bool {
	return c.sentiment() != FilterAll || c.dateRange() != All
}

// Reset clears both filters.
func (c *Criteria) Reset() {
	*c = DefaultCriteria()
}

// zero-valued fields behave like "all"
func (c Criteria) sentiment() SentimentFilter {
	if c.Sentiment == "" {
		return FilterAll
	}
	return c.Sentiment
}

func (c Criteria) dateRange() Window {
	if c.DateRange == "" {
		return All
	}
	return c.DateRange
}

// Filter returns the posts matching both the sentiment and date-range
// predicates, preserving input order. The result is never nil.
func Filter(posts []types.Post, c Criteria, now time.Time) []types.Post {
	sf, dr := c.sentiment(), c.dateRange()

	out := make([]types.Post, 0, len(posts))
	for _, p := range posts {
		if sf.Matches(p.Sentiment) && dr.Contains(p.Timestamp, now) {
			out = append(out, p)
		}
	}
	return out
}
