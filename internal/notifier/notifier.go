// Package notifier emails reports.
package notifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeGROOVE-dev/retry"

	"github.com/ibeckermayer/sentiview/internal/config"
	"github.com/ibeckermayer/sentiview/internal/notifier/providers"
	"github.com/ibeckermayer/sentiview/internal/report"
)

// ErrNoRecipient is returned when a report has nowhere to go.
var ErrNoRecipient = errors.New("no recipient address configured")

// Notifier handles sending report notifications
type Notifier struct {
	sender   Sender
	logger   *log.Logger
	attempts uint
	delay    time.Duration
}

// Sender defines the interface for email sending
type Sender interface {
	Send(to, subject, htmlBody, plainBody string) error
}

// New creates a new notifier with the given sender
func New(sender Sender, logger *log.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		logger:   logger,
		attempts: 3,
		delay:    5 * time.Second,
	}
}

// NewFromConfig creates a notifier based on configuration
func NewFromConfig(cfg config.EmailConfig, logger *log.Logger) (*Notifier, error) {
	var sender Sender

	switch cfg.Provider {
	case "smtp":
		sender = providers.NewSMTPSender(
			cfg.SMTPHost,
			cfg.SMTPPort,
			cfg.SMTPUser,
			cfg.SMTPPass,
			cfg.FromAddr,
		)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}

	return New(sender, logger), nil
}

// SendReport emails a report, retrying transient failures.
func (n *Notifier) SendReport(r *report.Report, toAddr string) error {
	if toAddr == "" {
		return ErrNoRecipient
	}

	err := retry.Do(
		func() error {
			return n.sender.Send(toAddr, r.Subject, r.HTMLBody, r.PlainBody)
		},
		retry.Attempts(n.attempts),
		retry.Delay(n.delay),
		retry.MaxJitter(n.delay),
		retry.OnRetry(func(attempt uint, err error) {
			n.logger.Warn("Retrying report email", "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("send report %q: %w", r.Subject, err)
	}

	n.logger.Info("Sent report", "to", toAddr, "subject", r.Subject, "posts", len(r.PostIDs))
	return nil
}
