package notifier

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/logging"
	"github.com/ibeckermayer/sentiview/internal/report"
)

type fakeSender struct {
	failures int
	calls    int
	to       string
	subject  string
}

func (f *fakeSender) Send(to, subject, htmlBody, plainBody string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	f.to = to
	f.subject = subject
	return nil
}

func testNotifier(s Sender) *Notifier {
	n := New(s, logging.Discard())
	n.delay = time.Millisecond
	return n
}

func TestSendReport(t *testing.T) {
	s := &fakeSender{failures: 1}
	n := testNotifier(s)

	err := n.SendReport(&report.Report{Subject: "Daily"}, "me@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
	assert.Equal(t, "me@example.com", s.to)
	assert.Equal(t, "Daily", s.subject)
}

func TestSendReport_GivesUp(t *testing.T) {
	s := &fakeSender{failures: 10}
	n := testNotifier(s)

	err := n.SendReport(&report.Report{Subject: "Daily"}, "me@example.com")
	assert.Error(t, err)
	assert.Equal(t, 3, s.calls)
}

func TestSendReport_NoRecipient(t *testing.T) {
	s := &fakeSender{}
	err := testNotifier(s).SendReport(&report.Report{}, "")
	assert.ErrorIs(t, err, ErrNoRecipient)
	assert.Zero(t, s.calls)
}

func TestNewFromConfig(t *testing.T) {
	_, err := NewFromConfig(config.EmailConfig{Provider: "smtp", SMTPHost: "localhost", SMTPPort: 25}, logging.Discard())
	assert.NoError(t, err)

	_, err = NewFromConfig(config.EmailConfig{Provider: "carrier-pigeon"}, logging.Discard())
	assert.Error(t, err)
}
