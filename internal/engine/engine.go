package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"streamwarden/internal/journal"
	"streamwarden/internal/logging"
	"streamwarden/internal/notifications"
	"streamwarden/internal/policy"
	"streamwarden/internal/services"
	"streamwarden/internal/services/mediaserver"
	"streamwarden/internal/session"
)

// ActionOutcome records what happened to one flagged session.
type ActionOutcome struct {
	Violation policy.Violation
	Outcome   string
	Err       error
}

// CycleResult summarizes one evaluation pass.
type CycleResult struct {
	CycleID      string
	SessionCount int
	Violations   []policy.Violation
	Actions      []ActionOutcome
	RuleErrors   map[string]error
}

// Journal is the subset of the journal store the engine appends to.
type Journal interface {
	Append(ctx context.Context, entry journal.Entry) error
}

// Engine fetches active sessions, evaluates policy rules, and terminates
// violating sessions.
type Engine struct {
	server   mediaserver.Client
	rules    []policy.Rule
	env      policy.Env
	notifier notifications.Service
	journal  Journal
	logger   *slog.Logger
	retry    services.RetryPolicy
	dryRun   bool
	channel  string
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithDryRun reports what would be terminated without acting.
func WithDryRun(enabled bool) Option {
	return func(e *Engine) { e.dryRun = enabled }
}

// WithJournal enables write-behind journaling of enforcement decisions.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithHistory supplies the play-history source consulted by history-backed
// rules.
func WithHistory(h policy.HistorySource) Option {
	return func(e *Engine) { e.env.History = h }
}

// WithRetryPolicy overrides the transient-failure retry policy.
func WithRetryPolicy(p services.RetryPolicy) Option {
	return func(e *Engine) { e.retry = p }
}

// WithNotificationChannel routes termination notices to a specific channel
// instead of the default.
func WithNotificationChannel(id string) Option {
	return func(e *Engine) { e.channel = id }
}

// New constructs an engine over the given server client and rule set.
func New(server mediaserver.Client, rules []policy.Rule, notifier notifications.Service, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	e := &Engine{
		server:   server,
		rules:    rules,
		notifier: notifier,
		logger:   logger.With(logging.String("component", "engine")),
		retry:    services.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunCycle executes one fetch-evaluate-enforce pass. A transient fetch
// failure is not an error: the cycle is skipped and the next one retries
// from scratch. Rule evaluation failures disable only the failing rule for
// the cycle; the remaining rules still run.
func (e *Engine) RunCycle(ctx context.Context) (CycleResult, error) {
	result := CycleResult{
		CycleID:    uuid.NewString(),
		RuleErrors: map[string]error{},
	}
	logger := e.logger.With(logging.String("cycle", result.CycleID))

	var sessions []session.Session
	err := e.retry.Do(ctx, func() error {
		var listErr error
		sessions, listErr = e.server.ListSessions(ctx)
		return listErr
	})
	if err != nil {
		if services.IsTransient(err) {
			logger.Warn("session fetch failed, skipping cycle", logging.Error(err))
			return result, nil
		}
		return result, err
	}
	result.SessionCount = len(sessions)
	logger.Debug("sessions fetched", logging.Int("count", len(sessions)))

	result.Violations = e.evaluate(ctx, logger, sessions, result.RuleErrors)
	if len(result.Violations) == 0 {
		return result, nil
	}

	for _, v := range result.Violations {
		outcome := e.enforce(ctx, logger, v)
		result.Actions = append(result.Actions, outcome)
		e.record(ctx, logger, result.CycleID, outcome)
	}
	return result, nil
}

// evaluate runs every rule in priority order and dedups violations by
// session: the first rule to flag a session owns its termination reason.
func (e *Engine) evaluate(ctx context.Context, logger *slog.Logger, sessions []session.Session, ruleErrors map[string]error) []policy.Violation {
	flagged := map[string]bool{}
	var violations []policy.Violation
	for _, rule := range e.rules {
		ruleViolations, err := rule.Evaluate(ctx, e.env, sessions)
		if err != nil {
			ruleErrors[rule.Name()] = err
			logger.Error("rule evaluation failed",
				logging.String("rule", rule.Name()),
				logging.Error(err))
			continue
		}
		sort.Slice(ruleViolations, func(i, j int) bool {
			return ruleViolations[i].SessionID < ruleViolations[j].SessionID
		})
		for _, v := range ruleViolations {
			if flagged[v.SessionID] {
				continue
			}
			flagged[v.SessionID] = true
			violations = append(violations, v)
		}
	}
	return violations
}

func (e *Engine) enforce(ctx context.Context, logger *slog.Logger, v policy.Violation) ActionOutcome {
	logger = logger.With(
		logging.String("rule", v.Rule),
		logging.String("session", v.SessionID),
		logging.String("user", v.Username),
	)

	if e.dryRun {
		logger.Info("dry run, would terminate", logging.String("reason", v.Reason))
		return ActionOutcome{Violation: v, Outcome: journal.OutcomeDryRun}
	}

	var terminated bool
	err := e.retry.Do(ctx, func() error {
		var termErr error
		terminated, termErr = e.server.Terminate(ctx, v.SessionID, v.Reason)
		return termErr
	})
	if err != nil {
		logger.Error("termination failed", logging.Error(err))
		return ActionOutcome{Violation: v, Outcome: journal.OutcomeFailed, Err: err}
	}
	if !terminated {
		logger.Info("session already gone")
		return ActionOutcome{Violation: v, Outcome: journal.OutcomeGone}
	}

	logger.Info("session terminated", logging.String("reason", v.Reason))
	if v.Action != policy.ActionTerminate {
		e.notify(ctx, logger, v)
	}
	return ActionOutcome{Violation: v, Outcome: journal.OutcomeTerminated}
}

// notify sends a termination notice. Delivery failures never fail
// enforcement.
func (e *Engine) notify(ctx context.Context, logger *slog.Logger, v policy.Violation) {
	msg := notifications.Message{
		Subject:  "StreamWarden - Session Terminated",
		Body:     v.Reason,
		Priority: "high",
		Tags:     []string{"streamwarden", "enforcement", v.Rule},
		Fields: []notifications.Field{
			{Label: "User", Value: v.Username},
			{Label: "Rule", Value: v.Rule},
			{Label: "Session", Value: v.SessionID},
		},
	}
	if err := e.notifier.Send(ctx, e.channel, msg); err != nil {
		logger.Warn("termination notice failed", logging.Error(err))
	}
}

// record appends the outcome to the journal. Journal failures are logged,
// never propagated.
func (e *Engine) record(ctx context.Context, logger *slog.Logger, cycleID string, outcome ActionOutcome) {
	if e.journal == nil {
		return
	}
	entry := journal.Entry{
		CycleID:   cycleID,
		SessionID: outcome.Violation.SessionID,
		User:      outcome.Violation.Username,
		Rule:      outcome.Violation.Rule,
		Reason:    outcome.Violation.Reason,
		Action:    string(outcome.Violation.Action),
		Outcome:   outcome.Outcome,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.journal.Append(ctx, entry); err != nil {
		logger.Warn("journal append failed", logging.Error(err))
	}
}
