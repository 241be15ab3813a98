// Package journal persists enforcement decisions in a local SQLite
// database.
//
// Every termination attempt, including dry-run decisions and failures, is
// appended as an immutable log entry so operators can audit what was
// enforced and why after the fact. The journal is write-behind: enforcement
// never blocks on it, and journal failures are logged rather than surfaced.
package journal
