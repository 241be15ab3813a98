// Package policy implements the session policy rule set. Each rule is a
// pure predicate over one immutable session snapshot that yields
// violations with human-readable termination reasons; the engine decides
// what to do with them. Rules backed by play history receive a
// HistorySource through Env.
package policy
