// Package engine orchestrates enforcement cycles: fetch the live session
// snapshot, evaluate policy rules in priority order, terminate flagged
// sessions, and notify.
//
// A cycle is fail-soft end to end. Transient fetch failures skip the cycle
// rather than erroring, a failing rule disables only itself for the cycle,
// and failed terminations or notifications are recorded and logged without
// stopping the remaining actions.
package engine
