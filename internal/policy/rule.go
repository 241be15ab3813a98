package policy

import (
	"context"
	"time"

	"streamwarden/internal/session"
)

// Action tells the engine what to do about a violation.
type Action string

const (
	ActionTerminate       Action = "terminate"
	ActionTerminateNotify Action = "terminate_and_notify"
	ActionTerminateBan    Action = "terminate_and_ban"
)

// Violation is the result of evaluating a rule against a session. Consumed
// once by the engine to drive termination; never persisted by rules.
type Violation struct {
	SessionID string
	UserID    string
	Username  string
	Rule      string
	Reason    string
	Action    Action
}

// HistorySource supplies trailing play history for history-backed rules.
type HistorySource interface {
	PlayHistory(ctx context.Context, userID string, window time.Duration) ([]session.PlayRecord, error)
}

// Env carries the collaborators a rule may consult beyond the session
// snapshot itself. Rules without history needs ignore it entirely.
type Env struct {
	History HistorySource
	Now     func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Rule is a pure predicate over one immutable session snapshot. Every rule
// sees the same snapshot within a cycle; evaluation order must not matter.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, env Env, sessions []session.Session) ([]Violation, error)
}

func violation(s session.Session, rule Rule, reason string, action Action) Violation {
	return Violation{
		SessionID: s.ID,
		UserID:    s.UserID,
		Username:  s.Username,
		Rule:      rule.Name(),
		Reason:    reason,
		Action:    action,
	}
}
