package mediaserver

import (
	"context"
	"net/http"

	"streamwarden/internal/session"
)

// Client handles HTTP communication with the media server's session
// endpoints.
type Client interface {
	// ListSessions returns the current full snapshot of active sessions.
	// The result is always a total replace, never a diff. Transport
	// failures are tagged services.ErrTransient.
	ListSessions(ctx context.Context) ([]session.Session, error)
	// Terminate asks the server to end a session with a user-visible
	// reason. Terminating an already-gone session is a no-op; the bool
	// reports whether a live session was actually found and killed.
	Terminate(ctx context.Context, sessionID, message string) (bool, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}
