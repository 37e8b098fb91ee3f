package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "warn")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown", "user", "alice")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "user=alice")
}

func TestNewWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := NewWriter(&bytes.Buffer{}, "loud")
	assert.Equal(t, log.InfoLevel, logger.GetLevel())
}
