package policy

import (
	"context"
	"fmt"
	"strings"

	"streamwarden/internal/session"
)

// DeviceBan denies a configured list of client platforms outright,
// regardless of any other session state.
type DeviceBan struct {
	Platforms []string
}

func (r DeviceBan) Name() string { return "device-ban" }

func (r DeviceBan) Evaluate(_ context.Context, _ Env, sessions []session.Session) ([]Violation, error) {
	var violations []Violation
	for _, s := range sessions {
		for _, platform := range r.Platforms {
			if strings.EqualFold(platform, s.Platform) {
				reason := fmt.Sprintf("the %s app is not allowed on this server", DisplayName(s.Platform))
				violations = append(violations, violation(s, r, reason, ActionTerminate))
				break
			}
		}
	}
	return violations, nil
}
