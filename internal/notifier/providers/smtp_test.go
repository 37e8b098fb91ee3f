package providers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	date := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	msg := string(BuildMessage("bot@example.com", "me@example.com", "Sentiment Report · alice", "<p>hi</p>", "hi", date))

	assert.True(t, strings.HasPrefix(msg, "From: bot@example.com\r\nTo: me@example.com\r\n"))
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.Contains(t, msg, "Date: Sun, 15 Jun 2025 18:00:00 +0000\r\n")
	assert.Contains(t, msg, `boundary="sentiview-report-boundary"`)

	plain := strings.Index(msg, "text/plain")
	html := strings.Index(msg, "text/html")
	assert.Greater(t, plain, 0)
	assert.Greater(t, html, plain)
	assert.True(t, strings.HasSuffix(msg, "--sentiview-report-boundary--\r\n"))
}

func TestBuildMessage_ASCIISubjectUnchanged(t *testing.T) {
	msg := string(BuildMessage("a@x", "b@x", "Daily summary", "", "", time.Unix(0, 0).UTC()))
	assert.Contains(t, msg, "Subject: Daily summary\r\n")
}
