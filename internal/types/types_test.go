package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePosts_LenientFields(t *testing.T) {
	data := []byte(`[
		{"id": 42, "username": "alice", "content": "hi", "sentiment": "Positive", "timestamp": "2025-03-01T10:00:00+00:00"},
		{"id": "abc", "username": "bob", "content": "meh", "sentiment": null, "timestamp": "not a date"},
		{"id": "def", "username": "bob", "content": "x", "sentiment": 7},
		"not an object",
		null
	]`)

	posts := DecodePosts(data)
	require.Len(t, posts, 3)

	assert.Equal(t, "42", posts[0].ID)
	assert.Equal(t, "Positive", posts[0].Sentiment)
	assert.True(t, posts[0].HasTimestamp())
	assert.True(t, posts[0].Timestamp.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, "abc", posts[1].ID)
	assert.Equal(t, "", posts[1].Sentiment)
	assert.False(t, posts[1].HasTimestamp())

	assert.Equal(t, "", posts[2].Sentiment)
	assert.False(t, posts[2].HasTimestamp())
}

func TestDecodePosts_NotAnArray(t *testing.T) {
	for _, in := range []string{``, `null`, `{}`, `"posts"`, `[1, 2`} {
		posts := DecodePosts([]byte(in))
		assert.NotNil(t, posts, "input %q", in)
		assert.Empty(t, posts, "input %q", in)
	}
}

func TestDecodePosts_NullTimestampIsMissing(t *testing.T) {
	posts := DecodePosts([]byte(`[{"id": "1", "timestamp": null}]`))
	require.Len(t, posts, 1)
	assert.False(t, posts[0].HasTimestamp())
}

func TestDecodePosts_EpochMillis(t *testing.T) {
	posts := DecodePosts([]byte(`[{"id": "1", "timestamp": 1700000000000}]`))
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Timestamp.Equal(time.UnixMilli(1700000000000)))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2025-03-01T10:00:00Z", true, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2025-03-01T10:00:00.123456+00:00", true, time.Date(2025, 3, 1, 10, 0, 0, 123456000, time.UTC)},
		{"2025-03-01 10:00:00+00", true, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2025-03-01 12:00:00.5+02:00", true, time.Date(2025, 3, 1, 10, 0, 0, 500000000, time.UTC)},
		{"2025-03-01T10:00:00", true, time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)},
		{"2025-03-01", true, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
		{"2025-13-45", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestPostMarshalJSON_MissingFieldsAreNull(t *testing.T) {
	data, err := json.Marshal(Post{ID: "1", Username: "alice"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","username":"alice","content":"","sentiment":null,"timestamp":null}`, string(data))

	// The lenient decoder reads it back to the same value.
	var back Post
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Post{ID: "1", Username: "alice"}, back)
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []Post{
		{ID: "old", Timestamp: base},
		{ID: "none-1"},
		{ID: "new", Timestamp: base.Add(2 * time.Hour)},
		{ID: "none-2"},
		{ID: "mid", Timestamp: base.Add(time.Hour)},
	}

	SortNewestFirst(posts)

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"new", "mid", "old", "none-1", "none-2"}, ids)
}
