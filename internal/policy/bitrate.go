package policy

import (
	"context"
	"fmt"

	"streamwarden/internal/session"
)

// BitrateCeiling terminates sessions whose reported bitrate exceeds a cap.
// Sessions without bitrate information never violate.
type BitrateCeiling struct {
	MaxKbps int
}

func (r BitrateCeiling) Name() string { return "bitrate" }

func (r BitrateCeiling) Evaluate(_ context.Context, _ Env, sessions []session.Session) ([]Violation, error) {
	var violations []Violation
	for _, s := range sessions {
		if s.BitrateKbps <= 0 || s.BitrateKbps <= r.MaxKbps {
			continue
		}
		reason := fmt.Sprintf("stream bitrate %d kbps exceeds the %d kbps limit", s.BitrateKbps, r.MaxKbps)
		violations = append(violations, violation(s, r, reason, ActionTerminateNotify))
	}
	return violations, nil
}
