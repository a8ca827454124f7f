package alerts

import (
	"context"
	"log/slog"

	"github.com/CallForge/DrillLine/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config holds the channel settings, resolved once at process start. A zero
// value for a channel's settings means that channel is skipped.
type Config struct {
	SlackWebhookURL string
	WebhookURL      string
	EmailTo         string
	SMTPHost        string
	SMTPPort        int
	SMTPUser        string
	SMTPPass        string
	EmailFrom       string
}

// Fanout delivers each alert concurrently to every configured channel.
type Fanout struct {
	notifiers []Notifier
}

// NewFanout builds the fan-out from the resolved configuration, constructing
// only the channels whose configuration is present. Email needs a recipient,
// an SMTP host, and a sender address; anything less skips the channel.
func NewFanout(cfg Config) *Fanout {
	var notifiers []Notifier
	if cfg.SlackWebhookURL != "" {
		notifiers = append(notifiers, &SlackNotifier{WebhookURL: cfg.SlackWebhookURL})
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, &WebhookNotifier{URL: cfg.WebhookURL})
	}
	if cfg.EmailTo != "" && cfg.SMTPHost != "" && cfg.EmailFrom != "" {
		notifiers = append(notifiers, &EmailNotifier{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.EmailFrom,
			To:   cfg.EmailTo,
		})
	}
	slog.Debug("NewFanout: configured alert channels", "count", len(notifiers))
	return &Fanout{notifiers: notifiers}
}

// NewFanoutWithNotifiers builds a fan-out over explicit notifiers.
func NewFanoutWithNotifiers(notifiers ...Notifier) *Fanout {
	return &Fanout{notifiers: notifiers}
}

// Channels returns the names of the configured channels.
func (f *Fanout) Channels() []string {
	names := make([]string, len(f.notifiers))
	for i, n := range f.notifiers {
		names[i] = n.Name()
	}
	return names
}

// Deliver attempts the alert on every configured channel concurrently. All
// channels are attempted regardless of individual failures, failures are
// logged locally, and the per-channel outcomes are returned. Deliver never
// returns an error: callers must not need to handle a rejected alert.
func (f *Fanout) Deliver(ctx context.Context, alert models.Alert) []models.DeliveryOutcome {
	if len(f.notifiers) == 0 {
		slog.Debug("Fanout.Deliver: no alert channels configured", "title", alert.Title)
		return nil
	}

	id := uuid.NewString()
	slog.Info("Fanout.Deliver: dispatching alert", "alert_id", id, "kind", alert.Kind, "title", alert.Title, "channels", len(f.notifiers))

	outcomes := make([]models.DeliveryOutcome, len(f.notifiers))
	var g errgroup.Group
	for i, n := range f.notifiers {
		i, n := i, n
		g.Go(func() error {
			err := n.Send(ctx, alert)
			outcomes[i] = models.DeliveryOutcome{Channel: n.Name(), Err: err}
			if err != nil {
				slog.Error("Fanout.Deliver: channel delivery failed", "alert_id", id, "channel", n.Name(), "error", err)
			} else {
				slog.Debug("Fanout.Deliver: channel delivery succeeded", "alert_id", id, "channel", n.Name())
			}
			// Errors stay in the outcome slice so one channel's failure
			// never cancels the others.
			return nil
		})
	}
	// Wait returns nil because the goroutines never do.
	_ = g.Wait()
	return outcomes
}
