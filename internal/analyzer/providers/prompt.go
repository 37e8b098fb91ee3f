package providers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ibeckermayer/sentiview/internal/types"
)

// LabelResult represents the expected JSON structure from any LLM provider
type LabelResult struct {
	PostID     string  `json:"post_id"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// ParseLabelResponse parses raw JSON bytes from an LLM provider into labels.
// Each provider is responsible for assembling the complete JSON before calling this.
// Labels are normalised to positive, negative or neutral; results naming a
// post outside the batch are dropped.
func ParseLabelResponse(jsonBytes []byte, batch []types.Post) ([]types.Label, error) {
	var results []LabelResult
	if err := json.Unmarshal(jsonBytes, &results); err != nil {
		return nil, fmt.Errorf("failed to parse label JSON: %w (response was: %.500s)", err, string(jsonBytes))
	}

	known := make(map[string]bool, len(batch))
	for _, p := range batch {
		known[p.ID] = true
	}

	now := time.Now()
	labels := make([]types.Label, 0, len(results))
	for _, r := range results {
		if !known[r.PostID] {
			continue
		}
		labels = append(labels, types.Label{
			PostID:     r.PostID,
			Sentiment:  normalizeLabel(r.Sentiment),
			Confidence: min(max(r.Confidence, 0), 1),
			LabeledAt:  now,
		})
	}

	return labels, nil
}

func normalizeLabel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return "positive"
	case "negative":
		return "negative"
	default:
		return "neutral"
	}
}

// buildPrompt constructs the LLM prompt for labelling posts
func buildPrompt(posts []types.Post) string {
	var sb strings.Builder

	sb.WriteString("You are labelling the sentiment of social media posts.\n\n")

	sb.WriteString("## Posts to Label\n\n")

	for i, p := range posts {
		sb.WriteString(fmt.Sprintf("### Post %d (ID: %s)\n", i+1, p.ID))
		sb.WriteString(fmt.Sprintf("Author: %s\n", p.Username))
		sb.WriteString(fmt.Sprintf("Content: %s\n", p.Content))
		sb.WriteString("\n")
	}

	sb.WriteString("## Task\n\n")
	sb.WriteString("For each post, provide:\n")
	sb.WriteString("1. sentiment: exactly one of \"positive\", \"negative\" or \"neutral\"\n")
	sb.WriteString("2. confidence (0.0 to 1.0): How sure you are of the label\n\n")

	sb.WriteString("IMPORTANT: Respond with ONLY a valid JSON array. No markdown, no code blocks, no explanation - just the raw JSON starting with [ and ending with ].\n\n")
	sb.WriteString("Example structure:\n")
	sb.WriteString(`[{"post_id": "...", "sentiment": "positive", "confidence": 0.9}]`)
	sb.WriteString("\n")

	return sb.String()
}
