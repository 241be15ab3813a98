package policy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"streamwarden/internal/services"
	"streamwarden/internal/session"
)

// Watch quota counting modes.
const (
	QuotaPlays   = "plays"
	QuotaSeconds = "seconds"
	QuotaShow    = "show"
)

// WatchQuota terminates a user's sessions once their consumption inside a
// trailing window exceeds the limit. Mode selects what is counted:
// completed plays, cumulative watched seconds, or completed plays of the
// show currently on screen.
type WatchQuota struct {
	Limit  int
	Window time.Duration
	Mode   string
}

func (r WatchQuota) Name() string { return "watch-quota" }

func (r WatchQuota) Evaluate(ctx context.Context, env Env, sessions []session.Session) ([]Violation, error) {
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
		switch r.Mode {
		case QuotaSeconds:
			violations = append(violations, r.secondsViolations(grouped[userID], records)...)
		case QuotaShow:
			violations = append(violations, r.showViolations(grouped[userID], records)...)
		default:
			violations = append(violations, r.playsViolations(grouped[userID], records)...)
		}
	}
	return violations, nil
}

func (r WatchQuota) playsViolations(streams []session.Session, records []session.PlayRecord) []Violation {
	count := 0
	for _, record := range records {
		if record.Watched {
			count++
		}
	}
	if count <= r.Limit {
		return nil
	}
	reason := fmt.Sprintf("watch limit reached: %d plays in the last %s (limit %d)", count, windowLabel(r.Window), r.Limit)
	return r.flagAll(streams, reason)
}

func (r WatchQuota) secondsViolations(streams []session.Session, records []session.PlayRecord) []Violation {
	var total time.Duration
	for _, record := range records {
		total += record.Duration
	}
	limit := time.Duration(r.Limit) * time.Second
	if total <= limit {
		return nil
	}
	reason := fmt.Sprintf("watch limit reached: %s watched in the last %s (limit %s)",
		total.Round(time.Minute), windowLabel(r.Window), limit.Round(time.Minute))
	return r.flagAll(streams, reason)
}

func (r WatchQuota) showViolations(streams []session.Session, records []session.PlayRecord) []Violation {
	var violations []Violation
	for _, s := range streams {
		if s.MediaType != session.MediaEpisode || s.ShowID == "" {
			continue
		}
		count := 0
		for _, record := range records {
			if record.Watched && record.ShowID == s.ShowID {
				count++
			}
		}
		if count <= r.Limit {
			continue
		}
		reason := fmt.Sprintf("watch limit reached for %q: %d plays in the last %s (limit %d)",
			s.ShowTitle, count, windowLabel(r.Window), r.Limit)
		violations = append(violations, violation(s, r, reason, ActionTerminateNotify))
	}
	return violations
}

func (r WatchQuota) flagAll(streams []session.Session, reason string) []Violation {
	violations := make([]Violation, 0, len(streams))
	for _, s := range streams {
		violations = append(violations, violation(s, r, reason, ActionTerminateNotify))
	}
	return violations
}

func windowLabel(window time.Duration) string {
	if window >= 24*time.Hour && window%(24*time.Hour) == 0 {
		days := int(window / (24 * time.Hour))
		if days == 1 {
			return "day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(window / time.Hour)
	if hours == 1 {
		return "hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
