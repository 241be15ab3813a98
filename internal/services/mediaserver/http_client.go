package mediaserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"streamwarden/internal/logging"
	"streamwarden/internal/services"
	"streamwarden/internal/session"
)

const productName = "streamwarden"

type httpClient struct {
	baseURL string
	token   string
	client  HTTPDoer
	logger  *slog.Logger
}

// NewHTTPClient constructs a media server client using the provided HTTP
// backend. Malformed session entries in a listing are logged and skipped so
// one bad payload cannot blank the whole snapshot.
func NewHTTPClient(baseURL, token string, client HTTPDoer, logger *slog.Logger) Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
		logger:  logger.With(logging.String("component", "media-server")),
	}
}

func (c *httpClient) ListSessions(ctx context.Context) ([]session.Session, error) {
	var payload sessionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/status/sessions", &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "media-server", "list sessions", "", err)
	}

	sessions := make([]session.Session, 0, len(payload.MediaContainer.Metadata))
	for _, item := range payload.MediaContainer.Metadata {
		parsed, err := parseSession(item)
		if err != nil {
			c.logger.Warn("skipping malformed session entry", logging.Error(err))
			continue
		}
		sessions = append(sessions, parsed)
	}
	return sessions, nil
}

func (c *httpClient) Terminate(ctx context.Context, sessionID, message string) (bool, error) {
	query := url.Values{}
	query.Set("sessionId", sessionID)
	query.Set("reason", message)
	path := "/status/sessions/terminate?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("build terminate request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, services.Wrap(services.ErrTransientAction, "media-server", "terminate", sessionID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Session already gone; idempotent no-op.
		c.logger.Info("terminate found no live session", logging.String("session_id", sessionID))
		return false, nil
	case resp.StatusCode >= 400:
		return false, services.Wrap(services.ErrTransientAction, "media-server", "terminate",
			fmt.Sprintf("%s returned %d", sessionID, resp.StatusCode), nil)
	default:
		return true, nil
	}
}

func (c *httpClient) doJSON(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.applyHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("media server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("media server %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *httpClient) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Product", productName)
}
