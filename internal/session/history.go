package session

import "time"

// PlayRecord is one completed or in-progress play from the monitor
// service's history endpoint.
type PlayRecord struct {
	UserID    string
	Watched   bool
	Duration  time.Duration
	Decision  TranscodeDecision
	StartedAt time.Time
	ShowID    string
	Player    string
}
