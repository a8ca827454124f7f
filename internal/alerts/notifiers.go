// Package alerts delivers operational alerts to external channels
// (Slack webhook, generic webhook, email).
//
// Every channel is independently optional: a channel with absent
// configuration is never constructed, and delivery failures are logged
// locally but never propagated to whatever raised the alert.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/CallForge/DrillLine/internal/models"
)

// DefaultHTTPTimeout bounds outbound webhook deliveries.
const DefaultHTTPTimeout = 10 * time.Second

// Notifier is the interface for all notification channels.
type Notifier interface {
	// Name identifies the channel in outcomes and logs.
	Name() string
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert models.Alert) error
}

// SlackNotifier posts alerts as text messages to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	HTTP       *http.Client
}

// Name implements Notifier.
func (n *SlackNotifier) Name() string { return "slack" }

// Send implements Notifier.
func (n *SlackNotifier) Send(ctx context.Context, alert models.Alert) error {
	text := fmt.Sprintf("*%s* [%s]\n%s", alert.Title, alert.Kind, alert.Message)
	if len(alert.Details) > 0 {
		detail, err := json.Marshal(alert.Details)
		if err != nil {
			return fmt.Errorf("failed to encode alert details: %w", err)
		}
		text += "\n```" + string(detail) + "```"
	}
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode slack payload: %w", err)
	}
	return n.post(ctx, payload)
}

func (n *SlackNotifier) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", res.StatusCode)
	}
	return nil
}

func (n *SlackNotifier) httpClient() *http.Client {
	if n.HTTP != nil {
		return n.HTTP
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// WebhookNotifier posts the full alert as JSON to a generic webhook endpoint.
type WebhookNotifier struct {
	URL  string
	HTTP *http.Client
}

// Name implements Notifier.
func (n *WebhookNotifier) Name() string { return "webhook" }

// Send implements Notifier.
func (n *WebhookNotifier) Send(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.HTTP
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status %d", res.StatusCode)
	}
	return nil
}

// EmailNotifier delivers alerts over SMTP. Auth is omitted when no user is
// configured (open relay / local MTA setups).
type EmailNotifier struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string

	// sendMail is swappable for tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Name implements Notifier.
func (n *EmailNotifier) Name() string { return "email" }

// Send implements Notifier.
func (n *EmailNotifier) Send(ctx context.Context, alert models.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", n.From)
	fmt.Fprintf(&body, "To: %s\r\n", n.To)
	fmt.Fprintf(&body, "Subject: [DrillLine %s] %s\r\n", alert.Kind, alert.Title)
	body.WriteString("\r\n")
	body.WriteString(alert.Message)
	body.WriteString("\r\n")
	if len(alert.Details) > 0 {
		detail, err := json.MarshalIndent(alert.Details, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode alert details: %w", err)
		}
		body.WriteString("\r\n")
		body.Write(detail)
		body.WriteString("\r\n")
	}

	var auth smtp.Auth
	if n.User != "" {
		auth = smtp.PlainAuth("", n.User, n.Pass, n.Host)
	}

	send := n.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	return send(addr, auth, n.From, []string{n.To}, []byte(body.String()))
}
