package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type webhookChannel struct {
	endpoint string
	client   *http.Client
}

func newWebhookChannel(url string, timeout time.Duration) *webhookChannel {
	return &webhookChannel{
		endpoint: strings.TrimSpace(url),
		client:   &http.Client{Timeout: timeout},
	}
}

type webhookField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type webhookPayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []webhookField `json:"fields,omitempty"`
	Footer      string         `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

func (w *webhookChannel) deliver(ctx context.Context, msg Message) error {
	if w == nil || w.client == nil {
		return nil
	}

	payload := webhookPayload{
		Title:       msg.Subject,
		Description: msg.Body,
		Footer:      msg.Footer,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, field := range msg.Fields {
		payload.Fields = append(payload.Fields, webhookField{Name: field.Label, Value: field.Value})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		trailer, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(trailer)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
