package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/sentiview/internal/types"
)

func TestParseLabelResponse(t *testing.T) {
	batch := []types.Post{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	raw := `[
		{"post_id": "1", "sentiment": "Positive", "confidence": 0.9},
		{"post_id": "2", "sentiment": " NEGATIVE ", "confidence": 1.4},
		{"post_id": "3", "sentiment": "mixed", "confidence": -1},
		{"post_id": "99", "sentiment": "positive", "confidence": 0.5}
	]`

	labels, err := ParseLabelResponse([]byte(raw), batch)
	require.NoError(t, err)
	require.Len(t, labels, 3)

	assert.Equal(t, "positive", labels[0].Sentiment)
	assert.Equal(t, 0.9, labels[0].Confidence)
	assert.Equal(t, "negative", labels[1].Sentiment)
	assert.Equal(t, 1.0, labels[1].Confidence)
	assert.Equal(t, "neutral", labels[2].Sentiment)
	assert.Equal(t, 0.0, labels[2].Confidence)
	assert.False(t, labels[0].LabeledAt.IsZero())
}

func TestParseLabelResponse_Invalid(t *testing.T) {
	_, err := ParseLabelResponse([]byte(`[{"post_id": `), nil)
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt([]types.Post{{ID: "42", Username: "alice", Content: "lovely day"}})
	assert.Contains(t, prompt, "(ID: 42)")
	assert.Contains(t, prompt, "Author: alice")
	assert.Contains(t, prompt, "lovely day")
	assert.Contains(t, prompt, `"positive", "negative" or "neutral"`)
}
