package policy

import (
	"context"

	"streamwarden/internal/session"
)

// GeoFence terminates remote sessions for users restricted to local-only
// access.
type GeoFence struct {
	LocalOnlyUsers []string
}

func (r GeoFence) Name() string { return "geofence" }

func (r GeoFence) Evaluate(_ context.Context, _ Env, sessions []session.Session) ([]Violation, error) {
	var violations []Violation
	for _, s := range sessions {
		if s.LocalNetwork {
			continue
		}
		if !r.restricted(s) {
			continue
		}
		violations = append(violations, violation(s, r, "remote access is not permitted for this account", ActionTerminateNotify))
	}
	return violations, nil
}

func (r GeoFence) restricted(s session.Session) bool {
	for _, user := range r.LocalOnlyUsers {
		if user == s.UserID || user == s.Username {
			return true
		}
	}
	return false
}
