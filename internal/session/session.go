package session

import (
	"sort"
	"time"
)

// State is the playback state reported by the media server.
type State string

const (
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateBuffering State = "buffering"
)

// TranscodeDecision describes how the server delivers the stream.
type TranscodeDecision string

const (
	DecisionDirectPlay TranscodeDecision = "direct_play"
	DecisionCopy       TranscodeDecision = "copy"
	DecisionTranscode  TranscodeDecision = "transcode"
)

// MediaType classifies the item being played.
type MediaType string

const (
	MediaMovie   MediaType = "movie"
	MediaEpisode MediaType = "episode"
	MediaTrack   MediaType = "track"
)

// Session is an immutable snapshot of one active playback stream. A session
// is never partially updated; each poll fully replaces the snapshot, and
// absence from a listing is the end-of-stream signal.
type Session struct {
	ID           string
	Key          int
	UserID       string
	Username     string
	IPAddress    string
	Platform     string
	Player       string
	LocalNetwork bool
	MediaTitle   string
	MediaType    MediaType
	ShowTitle    string
	ShowID       string
	LibraryID    string
	LibraryName  string
	Resolution   string
	State        State
	Decision     TranscodeDecision
	BitrateKbps  int
	ViewOffsetMS int64
	DurationMS   int64
	StartedAt    time.Time
}

// CompletionRatio reports how far through the media the session is, in the
// range [0, 1]. Sessions with unknown duration report 0.
func (s Session) CompletionRatio() float64 {
	if s.DurationMS <= 0 {
		return 0
	}
	ratio := float64(s.ViewOffsetMS) / float64(s.DurationMS)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Remaining reports the wall-clock playback time left, assuming real-time
// consumption. Zero when the duration is unknown.
func (s Session) Remaining() time.Duration {
	if s.DurationMS <= 0 || s.ViewOffsetMS >= s.DurationMS {
		return 0
	}
	return time.Duration(s.DurationMS-s.ViewOffsetMS) * time.Millisecond
}

// DisplayTitle renders the session's media as "Show - Episode" for episodes
// and the plain title otherwise.
func (s Session) DisplayTitle() string {
	if s.MediaType == MediaEpisode && s.ShowTitle != "" {
		return s.ShowTitle + " - " + s.MediaTitle
	}
	return s.MediaTitle
}

// ByUser groups sessions by user ID, preserving input order within a group.
func ByUser(sessions []Session) map[string][]Session {
	grouped := make(map[string][]Session)
	for _, s := range sessions {
		grouped[s.UserID] = append(grouped[s.UserID], s)
	}
	return grouped
}

// Find returns the session with the given ID, or false when absent.
func Find(sessions []Session, id string) (Session, bool) {
	for _, s := range sessions {
		if s.ID == id {
			return s, true
		}
	}
	return Session{}, false
}

// SortByStart orders sessions by start time ascending; ties prefer the lower
// session key so repeated evaluations stay deterministic.
func SortByStart(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].Key < sessions[j].Key
		}
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
}
