package gatekeep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// WebhookNotifier posts check-in notifications to an external
// endpoint. Delivery is best-effort: a failed notification is logged
// and never fails the check-in that triggered it.
type WebhookNotifier struct {
	URL    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given URL. A nil
// notifier (or an empty URL) disables notifications.
func NewWebhookNotifier(url string) *WebhookNotifier {
	if url == "" {
		return nil
	}
	return &WebhookNotifier{
		URL:    url,
		client: &http.Client{Timeout: WEBHOOK_TIMEOUT},
	}
}

// Notify posts the payload as JSON. Safe to call on a nil notifier.
func (w *WebhookNotifier) Notify(ctx context.Context, payload any) error {
	if w == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Webhook notification failed.")
		return err
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		err = fmt.Errorf("webhook request failed with status %d", res.StatusCode)
		log.Warn().Err(err).Msg("Webhook notification failed.")
		return err
	}

	return nil
}
