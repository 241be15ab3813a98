// Package watchdaemon runs the resident pause-watch process.
//
// The daemon periodically scans the live session snapshot and spawns one
// pausewatch monitor per paused session, deduplicating by session ID so a
// session paused across several scans gets exactly one watch. A flock on
// the state directory enforces a single instance per host.
package watchdaemon
