package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/sentiview/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "db", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func postIDs(posts []types.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

var base = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestSaveAndListPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	posts := []types.Post{
		{ID: "old", Username: "alice", Content: "a", Sentiment: "positive", Timestamp: base.Add(-time.Hour)},
		{ID: "none", Username: "bob", Content: "b"},
		{ID: "new", Username: "bob", Content: "c", Sentiment: "Negative", Timestamp: base},
		{ID: "", Username: "skipped"},
	}
	require.NoError(t, s.SavePosts(ctx, posts))

	got, err := s.Posts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old", "none"}, postIDs(got))

	assert.True(t, got[0].Timestamp.Equal(base))
	assert.Equal(t, "Negative", got[0].Sentiment)
	assert.False(t, got[2].HasTimestamp())

	n, err := s.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUserPostsAndUsernames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePosts(ctx, []types.Post{
		{ID: "1", Username: "carol", Timestamp: base},
		{ID: "2", Username: "alice", Timestamp: base.Add(-time.Minute)},
		{ID: "3", Username: "alice", Timestamp: base},
	}))

	got, err := s.UserPosts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, postIDs(got))

	none, err := s.UserPosts(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	names, err := s.Usernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, names)
}

func TestSavePosts_KeepsExistingLabel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	save := func(p types.Post) { require.NoError(t, s.SavePosts(ctx, []types.Post{p})) }

	save(types.Post{ID: "1", Username: "alice", Content: "v1", Sentiment: "positive"})
	save(types.Post{ID: "1", Username: "alice", Content: "v2"})

	got, err := s.Posts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].Content)
	assert.Equal(t, "positive", got[0].Sentiment)

	save(types.Post{ID: "1", Username: "alice", Content: "v3", Sentiment: "negative"})
	got, err = s.Posts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "negative", got[0].Sentiment)
}

func TestUnlabeledPostsAndSaveLabels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePosts(ctx, []types.Post{
		{ID: "1", Username: "alice", Sentiment: "positive", Timestamp: base},
		{ID: "2", Username: "alice", Timestamp: base.Add(-time.Hour)},
		{ID: "3", Username: "bob", Timestamp: base},
	}))

	unlabeled, err := s.UnlabeledPosts(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2"}, postIDs(unlabeled))

	limited, err := s.UnlabeledPosts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	n, err := s.SaveLabels(ctx, []types.Label{
		{PostID: "2", Sentiment: "negative"},
		{PostID: "3", Sentiment: "neutral"},
		{PostID: "ghost", Sentiment: "positive"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	unlabeled, err = s.UnlabeledPosts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unlabeled)

	total, err := s.CountPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestSnapshots(t *testing.T) {
	sn := Snapshots{Root: t.TempDir()}

	_, _, err := LoadLatestStepOutput[[]types.Post](sn, StepFetched)
	assert.Error(t, err)

	first := []types.Post{{ID: "1", Username: "alice"}}
	_, err = SaveStepOutput(sn, StepFetched, first)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	second := []types.Post{{ID: "2", Username: "bob"}}
	path, err := SaveStepOutput(sn, StepFetched, second)
	require.NoError(t, err)

	got, gotPath, err := LoadLatestStepOutput[[]types.Post](sn, StepFetched)
	require.NoError(t, err)
	assert.Equal(t, path, gotPath)
	assert.Equal(t, second, got)

	textPath, err := SaveTextOutput(sn, StepSummary, "hello", ".txt")
	require.NoError(t, err)
	data, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	latest, err := sn.LatestStepFile(StepSummary, ".txt")
	require.NoError(t, err)
	assert.Equal(t, textPath, latest)

	// JSON lookups ignore text snapshots in the same step
	_, _, err = LoadLatestStepOutput[string](sn, StepSummary)
	assert.Error(t, err)

	llmPath, err := sn.SaveLLMExchange(LLMExchange{Provider: "anthropic", Prompt: "p", Response: "r"})
	require.NoError(t, err)
	assert.FileExists(t, llmPath)
}

func TestSnapshots_SameInstantNeverCollides(t *testing.T) {
	sn := Snapshots{Root: t.TempDir()}

	for i := range 20 {
		_, err := SaveStepOutput(sn, StepExported, i)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Join(sn.Root, string(StepExported)))
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestSnapshotName_UTCOrdering(t *testing.T) {
	// 01:30 EDT and 01:10 EST on the fall-back night; local names would sort backwards
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	first := time.Date(2025, 11, 2, 5, 30, 0, 0, time.UTC).In(ny)
	second := time.Date(2025, 11, 2, 6, 10, 0, 0, time.UTC).In(ny)

	a, b := snapshotName(first, ".json"), snapshotName(second, ".json")
	assert.Less(t, a, b)
	assert.True(t, strings.HasPrefix(a, "2025-11-02T05-30-00.000000000Z-"))
}
