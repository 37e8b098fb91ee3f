// Package sentiment aggregates and filters sentiment-labelled posts.
//
// Everything here is a pure function of its arguments. The current time is
// always passed in explicitly, so results are deterministic for a given
// clock value and the functions are safe for concurrent use.
package sentiment

import (
	"fmt"
	"strings"
	"time"
)

// Bucket is one of the three sentiment classes every post falls into.
type Bucket string

const (
	Positive Bucket = "positive"
	Negative Bucket = "negative"
	Neutral  Bucket = "neutral"
)

// Clock returns the evaluation instant for window computations.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }

// Classify maps a raw label to its bucket. Matching is case-insensitive;
// anything that is not "positive" or "negative", including "", is Neutral.
func Classify(label string) Bucket {
	switch strings.ToLower(label) {
	case string(Positive):
		return Positive
	case string(Negative):
		return Negative
	default:
		return Neutral
	}
}

// Window selects a time range relative to the evaluation instant.
type Window string

const (
	Today Window = "today"
	Week  Window = "week"
	Month Window = "month"
	All   Window = "all"
)

// ParseWindow parses a window name case-insensitively.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case Today, Week, Month, All:
		return w, nil
	default:
		return "", fmt.Errorf("unknown window %q (want today, week, month or all)", s)
	}
}

// Contains reports whether ts falls inside the window evaluated at now.
// A zero ts is outside every window except All.
func (w Window) Contains(ts, now time.Time) bool {
	if w == All {
		return true
	}
	if ts.IsZero() {
		return false
	}

	switch w {
	case Today:
		ty, tm, td := ts.In(now.Location()).Date()
		ny, nm, nd := now.Date()
		return ty == ny && tm == nm && td == nd
	case Week:
		return !ts.Before(now.AddDate(0, 0, -7))
	case Month:
		return !ts.Before(now.AddDate(0, -1, 0))
	default:
		return false
	}
}

// MonthFromIndex converts a 0-based month index (0 = January) to a time.Month.
func MonthFromIndex(i int) (time.Month, bool) {
	if i < 0 || i > 11 {
		return 0, false
	}
	return time.Month(i + 1), true
}

// InCalendarMonth reports whether ts falls in the given month of now's year,
// both evaluated in now's location.
func InCalendarMonth(ts time.Time, month time.Month, now time.Time) bool {
	if ts.IsZero() {
		return false
	}
	local := ts.In(now.Location())
	return local.Month() == month && local.Year() == now.Year()
}
