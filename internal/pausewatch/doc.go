// Package pausewatch runs long-lived watches over paused playback
// sessions.
//
// A monitor polls one session until it resumes, vanishes from the
// snapshot, or stays paused past the configured timeout and is killed.
// Absence from the snapshot is treated as the session having ended; it is
// never a kill. Monitors cancel cooperatively through their context, so a
// host daemon can stop every watch on shutdown without leaking goroutines.
package pausewatch
