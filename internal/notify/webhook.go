// Package notify delivers notifications to external collaborators. Delivery
// is strictly fire-and-forget: the database row is the durable record, and
// no delivery failure may surface to the caller that stored it.
package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"pitaka/internal/logger"
)

const webhookTimeout = 10 * time.Second

// Notifier sends a stored notification to an external channel.
type Notifier interface {
	Send(userID, title, message string)
}

// WebhookNotifier posts Discord-style embeds to a configured webhook URL.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// Send posts the notification in the background. Errors are logged and
// otherwise swallowed.
func (n *WebhookNotifier) Send(userID, title, message string) {
	if n.url == "" {
		return
	}

	payload := map[string]interface{}{
		"embeds": []map[string]interface{}{
			{
				"title":       title,
				"description": message,
				"color":       0x5865F2,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	go func() {
		resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(body))
		if err != nil {
			logger.Get().Debugw("webhook delivery failed", "user_id", userID, "error", err.Error())
			return
		}
		_ = resp.Body.Close()
		if resp.StatusCode >= 300 {
			logger.Get().Debugw("webhook delivery rejected", "user_id", userID, "status", resp.StatusCode)
		}
	}()
}

// NoopNotifier discards everything. Used in tests and when no webhook is
// configured.
type NoopNotifier struct{}

// Send implements Notifier.
func (NoopNotifier) Send(userID, title, message string) {}
