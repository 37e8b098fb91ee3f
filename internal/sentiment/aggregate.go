package sentiment

import (
	"time"

	"github.com/ibeckermayer/sentiview/internal/types"
)

// Result is a percentage breakdown of posts by bucket. The percentages are
// rounded independently and may not sum to exactly 100.
type Result struct {
	Positive int `json:"positive_pct"`
	Negative int `json:"negative_pct"`
	Neutral  int `json:"neutral_pct"`
	Total    int `json:"total"`
}

// Aggregate computes the breakdown for posts inside window at now.
func Aggregate(posts []types.Post, window Window, now time.Time) Result {
	return tally(posts, func(p types.Post) bool {
		return window.Contains(p.Timestamp, now)
	})
}

// AggregateCalendarMonth computes the breakdown for posts dated in month of
// now's year.
func AggregateCalendarMonth(posts []types.Post, month time.Month, now time.Time) Result {
	return tally(posts, func(p types.Post) bool {
		return InCalendarMonth(p.Timestamp, month, now)
	})
}

// Tally computes the breakdown over every post, ignoring timestamps.
func Tally(posts []types.Post) Result {
	return tally(posts, nil)
}

func tally(posts []types.Post, keep func(types.Post) bool) Result {
	var pos, neg, neu int
	for _, p := range posts {
		if keep != nil && !keep(p) {
			continue
		}
		switch Classify(p.Sentiment) {
		case Positive:
			pos++
		case Negative:
			neg++
		default:
			neu++
		}
	}

	total := pos + neg + neu
	return Result{
		Positive: percent(pos, total),
		Negative: percent(neg, total),
		Neutral:  percent(neu, total),
		Total:    total,
	}
}

// percent rounds count/total*100 half-up using integer arithmetic.
func percent(count, total int) int {
	if total == 0 {
		return 0
	}
	return (200*count + total) / (2 * total)
}

// Dominant returns the bucket whose percentage is strictly greater than both
// others, or Neutral when there is no strict maximum.
func (r Result) Dominant() Bucket {
	switch {
	case r.Positive > r.Negative && r.Positive > r.Neutral:
		return Positive
	case r.Negative > r.Positive && r.Negative > r.Neutral:
		return Negative
	default:
		return Neutral
	}
}

// Summary is the one-line description shown under the breakdown.
func (r Result) Summary() string {
	return "Overall sentiment is " + string(r.Dominant())
}

// Pct returns the percentage for b.
func (r Result) Pct(b Bucket) int {
	switch b {
	case Positive:
		return r.Positive
	case Negative:
		return r.Negative
	default:
		return r.Neutral
	}
}
