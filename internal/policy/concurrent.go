package policy

import (
	"context"
	"fmt"
	"sort"

	"streamwarden/internal/session"
)

// ConcurrentStreamLimit caps the number of simultaneous sessions per user.
// The default variant keeps the earliest-started sessions and kills only
// the excess; KillAll terminates every session of an offending user.
type ConcurrentStreamLimit struct {
	MaxPerUser  int
	KillAll     bool
	ExemptUsers []string
}

func (r ConcurrentStreamLimit) Name() string { return "concurrent-streams" }

func (r ConcurrentStreamLimit) Evaluate(_ context.Context, _ Env, sessions []session.Session) ([]Violation, error) {
	grouped := session.ByUser(sessions)

	userIDs := make([]string, 0, len(grouped))
	for userID := range grouped {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	var violations []Violation
	for _, userID := range userIDs {
		streams := grouped[userID]
		if len(streams) <= r.MaxPerUser {
			continue
		}
		if r.exempt(streams[0]) {
			continue
		}

		reason := fmt.Sprintf("too many concurrent streams (%d active, limit %d)", len(streams), r.MaxPerUser)

		offenders := streams
		if !r.KillAll {
			ordered := append([]session.Session{}, streams...)
			session.SortByStart(ordered)
			offenders = ordered[r.MaxPerUser:]
		}
		for _, s := range offenders {
			violations = append(violations, violation(s, r, reason, ActionTerminateNotify))
		}
	}
	return violations, nil
}

func (r ConcurrentStreamLimit) exempt(s session.Session) bool {
	for _, user := range r.ExemptUsers {
		if user == s.UserID || user == s.Username {
			return true
		}
	}
	return false
}
