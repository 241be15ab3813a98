package policy

import (
	"context"
	"fmt"
	"strings"

	"streamwarden/internal/session"
)

// Transcode restriction modes.
const (
	TranscodeAlways      = "always"
	TranscodeLibraries   = "libraries"
	TranscodeResolutions = "resolutions"
)

// TranscodeRestriction terminates transcoded playback: unconditionally,
// for protected libraries, or for protected source resolutions.
type TranscodeRestriction struct {
	Mode        string
	LibraryIDs  []string
	Resolutions []string
}

func (r TranscodeRestriction) Name() string { return "transcode" }

func (r TranscodeRestriction) Evaluate(_ context.Context, _ Env, sessions []session.Session) ([]Violation, error) {
	var violations []Violation
	for _, s := range sessions {
		if s.Decision != session.DecisionTranscode {
			continue
		}
		var reason string
		switch r.Mode {
		case TranscodeLibraries:
			if !r.protectedLibrary(s) {
				continue
			}
			reason = fmt.Sprintf("transcoding is not permitted from the %s library", s.LibraryName)
		case TranscodeResolutions:
			if !r.protectedResolution(s) {
				continue
			}
			reason = fmt.Sprintf("transcoding %s content is not permitted", s.Resolution)
		default:
			reason = "transcoded playback is not permitted on this server"
		}
		violations = append(violations, violation(s, r, reason, ActionTerminateNotify))
	}
	return violations, nil
}

func (r TranscodeRestriction) protectedLibrary(s session.Session) bool {
	for _, id := range r.LibraryIDs {
		if id == s.LibraryID || strings.EqualFold(id, s.LibraryName) {
			return true
		}
	}
	return false
}

func (r TranscodeRestriction) protectedResolution(s session.Session) bool {
	for _, res := range r.Resolutions {
		if strings.EqualFold(res, s.Resolution) {
			return true
		}
	}
	return false
}
