package policy

import (
	"context"
	"fmt"
	"sort"

	"streamwarden/internal/session"
)

// ContentionArbitration frees server capacity when an admin's stream is
// buffering while non-admin transcodes run. The victim is the non-admin
// transcoding session farthest from finishing (lowest completion ratio);
// the termination message carries the surviving stream's ETA so the killed
// user knows when to retry.
type ContentionArbitration struct {
	AdminUsers []string
}

func (r ContentionArbitration) Name() string { return "contention" }

func (r ContentionArbitration) Evaluate(_ context.Context, _ Env, sessions []session.Session) ([]Violation, error) {
	if !r.adminBuffering(sessions) {
		return nil, nil
	}

	var candidates []session.Session
	for _, s := range sessions {
		if r.isAdmin(s) || s.Decision != session.DecisionTranscode {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].CompletionRatio(), candidates[j].CompletionRatio()
		if ri == rj {
			return candidates[i].ID < candidates[j].ID
		}
		return ri < rj
	})
	victim := candidates[0]

	reason := "the server is out of capacity; this stream was stopped to recover playback for others"
	if len(candidates) > 1 {
		survivor := candidates[len(candidates)-1]
		reason = fmt.Sprintf("%s. Try again in about %s, when %q finishes",
			reason, formatETA(survivor.Remaining()), survivor.DisplayTitle())
	}

	return []Violation{violation(victim, r, reason, ActionTerminateNotify)}, nil
}

func (r ContentionArbitration) adminBuffering(sessions []session.Session) bool {
	for _, s := range sessions {
		if s.State == session.StateBuffering && r.isAdmin(s) {
			return true
		}
	}
	return false
}

func (r ContentionArbitration) isAdmin(s session.Session) bool {
	for _, user := range r.AdminUsers {
		if user == s.UserID || user == s.Username {
			return true
		}
	}
	return false
}
