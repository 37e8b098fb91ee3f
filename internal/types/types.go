package types

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Post represents a sentiment-labelled post as returned by the data source
type Post struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment"` // raw label; "" when absent
	Timestamp time.Time `json:"timestamp"` // zero when absent or unparseable
}

// Label is a sentiment label produced by the analyzer for one post
type Label struct {
	PostID     string    `json:"post_id"`
	Sentiment  string    `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	LabeledAt  time.Time `json:"labeled_at"`
}

// HasTimestamp reports whether the post carries a usable timestamp.
func (p Post) HasTimestamp() bool {
	return !p.Timestamp.IsZero()
}

// wirePost mirrors Post with loosely typed fields so that bad data from the
// source degrades instead of failing the whole decode.
type wirePost struct {
	ID        json.RawMessage `json:"id"`
	Username  json.RawMessage `json:"username"`
	Content   json.RawMessage `json:"content"`
	Sentiment json.RawMessage `json:"sentiment"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// UnmarshalJSON decodes a post leniently: ids may be strings or integers,
// non-string sentiments become "" and unparseable timestamps become zero.
func (p *Post) UnmarshalJSON(data []byte) error {
	var w wirePost
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = Post{
		ID:        rawID(w.ID),
		Username:  rawString(w.Username),
		Content:   rawString(w.Content),
		Sentiment: rawString(w.Sentiment),
		Timestamp: rawTimestamp(w.Timestamp),
	}
	return nil
}

// MarshalJSON writes a missing timestamp as null.
func (p Post) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        string  `json:"id"`
		Username  string  `json:"username"`
		Content   string  `json:"content"`
		Sentiment *string `json:"sentiment"`
		Timestamp *string `json:"timestamp"`
	}{
		ID:       p.ID,
		Username: p.Username,
		Content:  p.Content,
	}
	if p.Sentiment != "" {
		out.Sentiment = &p.Sentiment
	}
	if p.HasTimestamp() {
		ts := p.Timestamp.Format(time.RFC3339Nano)
		out.Timestamp = &ts
	}
	return json.Marshal(out)
}

// DecodePosts decodes a JSON array of posts. Anything that is not an array
// yields an empty slice, and array elements that are not objects are skipped.
func DecodePosts(data []byte) []Post {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []Post{}
	}

	posts := make([]Post, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var p Post
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		posts = append(posts, p)
	}
	return posts
}

// SortNewestFirst sorts posts by timestamp descending. Posts without a
// timestamp keep their relative order and go last.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.HasTimestamp() {
			return false
		}
		if !b.HasTimestamp() {
			return true
		}
		return a.Timestamp.After(b.Timestamp)
	})
}

// Layouts accepted for timestamp strings, tried in order. Layouts with an
// explicit offset come first; the rest are read in local time except the
// bare date, which is UTC.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999Z07",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimestamp parses the timestamp formats the data source is known to
// emit. ok is false when s matches none of them.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func rawID(raw json.RawMessage) string {
	if s := rawString(raw); s != "" {
		return s
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return ""
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	return n.String()
}

func rawTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}
	if s := rawString(raw); s != "" {
		t, _ := ParseTimestamp(s)
		return t
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}
