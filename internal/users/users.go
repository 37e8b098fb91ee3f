// Package users rolls posts up per author and tracks which authors the
// viewer has hidden.
package users

import (
	"slices"
	"time"

	"github.com/ibeckermayer/sentiview/internal/sentiment"
	"github.com/ibeckermayer/sentiview/internal/types"
)

// RecentWindow is how far back a post counts as recent.
const RecentWindow = 24 * time.Hour

// Summary is the per-author roll-up shown in the user list
type Summary struct {
	Name          string `json:"name"`
	PostCount     int    `json:"post_count"`
	PositiveCount int    `json:"positive_count"` // recent posts only
	NegativeCount int    `json:"negative_count"` // recent posts only

	// RecentSentiment is the bucket of the first recent post seen, which is
	// the latest one when posts are newest first. Empty when nothing is recent.
	RecentSentiment sentiment.Bucket `json:"recent_sentiment,omitempty"`
}

// HasRecent reports whether the author posted within RecentWindow.
func (s Summary) HasRecent() bool {
	return s.RecentSentiment != ""
}

// Summarize groups posts by username in first-appearance order.
func Summarize(posts []types.Post, now time.Time) []Summary {
	cutoff := now.Add(-RecentWindow)
	index := make(map[string]int)
	var out []Summary

	for _, p := range posts {
		i, ok := index[p.Username]
		if !ok {
			i = len(out)
			index[p.Username] = i
			out = append(out, Summary{Name: p.Username})
		}
		s := &out[i]
		s.PostCount++

		if !p.HasTimestamp() || p.Timestamp.Before(cutoff) {
			continue
		}

		b := sentiment.Classify(p.Sentiment)
		switch b {
		case sentiment.Positive:
			s.PositiveCount++
		case sentiment.Negative:
			s.NegativeCount++
		}
		if s.RecentSentiment == "" {
			s.RecentSentiment = b
		}
	}

	if out == nil {
		return []Summary{}
	}
	return out
}

// Roster holds the set of hidden authors. The zero value hides nobody.
type Roster struct {
	hidden []string
}

// NewRoster returns a roster with the given names hidden.
func NewRoster(hidden ...string) *Roster {
	r := &Roster{}
	for _, name := range hidden {
		r.Hide(name)
	}
	return r
}

// Hide marks name as hidden. Hiding twice is a no-op.
func (r *Roster) Hide(name string) {
	if !r.IsHidden(name) {
		r.hidden = append(r.hidden, name)
	}
}

// Restore unhides name.
func (r *Roster) Restore(name string) {
	r.hidden = slices.DeleteFunc(r.hidden, func(h string) bool { return h == name })
}

// IsHidden reports whether name is hidden.
func (r *Roster) IsHidden(name string) bool {
	return slices.Contains(r.hidden, name)
}

// Hidden returns the hidden names in the order they were hidden.
func (r *Roster) Hidden() []string {
	return slices.Clone(r.hidden)
}

// Visible returns the summaries to display. With showHidden the hidden
// authors are returned instead of the visible ones.
func (r *Roster) Visible(summaries []Summary, showHidden bool) []Summary {
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		if r.IsHidden(s.Name) == showHidden {
			out = append(out, s)
		}
	}
	return out
}
