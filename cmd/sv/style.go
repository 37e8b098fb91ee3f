package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ibeckermayer/sentiview/internal/sentiment"
)

// Lipgloss styles; colour is dropped automatically when stdout is not a terminal
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160")).
			Bold(true)
)

func bucketStyle(b sentiment.Bucket) lipgloss.Style {
	switch b {
	case sentiment.Positive:
		return positiveStyle
	case sentiment.Negative:
		return negativeStyle
	default:
		return neutralStyle
	}
}

// styled renders s in the colour of bucket b.
func styled(b sentiment.Bucket, s string) string {
	return bucketStyle(b).Render(s)
}
