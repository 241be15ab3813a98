package monitor

import (
	"context"
	"net/http"
	"time"

	"streamwarden/internal/session"
)

// Client handles HTTP communication with the monitoring service's history
// endpoint.
type Client interface {
	// PlayHistory returns the user's play records inside the trailing
	// window. Transport failures are tagged services.ErrTransient and must
	// never be read as "no history".
	PlayHistory(ctx context.Context, userID string, window time.Duration) ([]session.PlayRecord, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}
