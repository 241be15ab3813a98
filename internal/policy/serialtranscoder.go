package policy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"streamwarden/internal/services"
	"streamwarden/internal/session"
)

// Serial transcoder grouping keys.
const (
	GroupByPlayer = "player"
	GroupByUser   = "user"
)

// SerialTranscoderBan terminates sessions from players or users whose
// historical share of transcoded plays meets a threshold over a trailing
// window.
type SerialTranscoderBan struct {
	Window           time.Duration
	ThresholdPercent float64
	GroupBy          string
}

func (r SerialTranscoderBan) Name() string { return "serial-transcoder" }

func (r SerialTranscoderBan) Evaluate(ctx context.Context, env Env, sessions []session.Session) ([]Violation, error) {
	if env.History == nil {
		return nil, services.Wrap(services.ErrEvaluation, "policy", r.Name(), "no history source configured", nil)
	}

	grouped := session.ByUser(sessions)
	userIDs := make([]string, 0, len(grouped))
	for userID := range grouped {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	var violations []Violation
	for _, userID := range userIDs {
		records, err := env.History.PlayHistory(ctx, userID, r.Window)
		if err != nil {
			return nil, err
		}

		type tally struct{ total, transcoded int }
		tallies := map[string]*tally{}
		for _, record := range records {
			key := record.Player
			if r.GroupBy == GroupByUser {
				key = record.UserID
			}
			if key == "" {
				continue
			}
			t := tallies[key]
			if t == nil {
				t = &tally{}
				tallies[key] = t
			}
			t.total++
			if record.Decision == session.DecisionTranscode {
				t.transcoded++
			}
		}

		for _, s := range grouped[userID] {
			key := s.Player
			if r.GroupBy == GroupByUser {
				key = s.UserID
			}
			t := tallies[key]
			if t == nil || t.total == 0 {
				continue
			}
			percent := float64(t.transcoded) / float64(t.total) * 100
			if percent < r.ThresholdPercent {
				continue
			}
			subject := fmt.Sprintf("player %q", s.Player)
			if r.GroupBy == GroupByUser {
				subject = "this account"
			}
			reason := fmt.Sprintf("%s transcoded %.0f%% of its plays over the last %s; transcoding abuse is not permitted",
				subject, percent, windowLabel(r.Window))
			violations = append(violations, violation(s, r, reason, ActionTerminateBan))
		}
	}
	return violations, nil
}
