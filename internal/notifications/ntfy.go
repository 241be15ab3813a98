package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ntfyChannel struct {
	endpoint string
	client   *http.Client
}

func newNtfyChannel(topic string, timeout time.Duration) *ntfyChannel {
	return &ntfyChannel{
		endpoint: strings.TrimSpace(topic),
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *ntfyChannel) deliver(ctx context.Context, msg Message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(flatten(msg)))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.Subject != "" {
		req.Header.Set("Title", msg.Subject)
	}
	if len(msg.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.Tags, ","))
	}
	if msg.Priority != "" && msg.Priority != "default" {
		req.Header.Set("Priority", msg.Priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
