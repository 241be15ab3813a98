package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamwarden/internal/services"
	"streamwarden/internal/session"
)

type httpClient struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	now     func() time.Time
}

// NewHTTPClient constructs a monitoring service client using the provided
// HTTP backend.
func NewHTTPClient(baseURL, apiKey string, client HTTPDoer) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		now:     time.Now,
	}
}

type historyEnvelope struct {
	Response struct {
		Result  string `json:"result"`
		Message string `json:"message"`
		Data    struct {
			Records []historyRecord `json:"data"`
		} `json:"data"`
	} `json:"response"`
}

type historyRecord struct {
	UserID             json.Number `json:"user_id"`
	WatchedStatus      float64     `json:"watched_status"`
	Duration           int64       `json:"duration"`
	TranscodeDecision  string      `json:"transcode_decision"`
	Started            int64       `json:"started"`
	GrandparentRatingK string      `json:"grandparent_rating_key"`
	Player             string      `json:"player"`
}

func (c *httpClient) PlayHistory(ctx context.Context, userID string, window time.Duration) ([]session.PlayRecord, error) {
	cutoff := c.now().Add(-window)

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("cmd", "get_history")
	query.Set("user_id", userID)
	query.Set("after", cutoff.UTC().Format("2006-01-02"))
	query.Set("length", "1000")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "monitor", "get history", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, services.Wrap(services.ErrTransient, "monitor", "get history",
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	var envelope historyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, services.Wrap(services.ErrTransient, "monitor", "get history", "decode response", err)
	}
	if envelope.Response.Result != "success" {
		return nil, services.Wrap(services.ErrTransient, "monitor", "get history", envelope.Response.Message, nil)
	}

	records := make([]session.PlayRecord, 0, len(envelope.Response.Data.Records))
	for _, raw := range envelope.Response.Data.Records {
		record := session.PlayRecord{
			UserID:   raw.UserID.String(),
			Watched:  raw.WatchedStatus >= 1,
			Duration: time.Duration(raw.Duration) * time.Second,
			ShowID:   raw.GrandparentRatingK,
			Player:   raw.Player,
		}
		switch raw.TranscodeDecision {
		case "transcode":
			record.Decision = session.DecisionTranscode
		case "copy":
			record.Decision = session.DecisionCopy
		default:
			record.Decision = session.DecisionDirectPlay
		}
		if raw.Started > 0 {
			record.StartedAt = time.Unix(raw.Started, 0).UTC()
		}
		// The "after" parameter is date-granular; trim to the exact window
		// so rules see precisely the trailing period they asked for.
		if record.StartedAt.Before(cutoff) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
