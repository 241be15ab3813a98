package session_test

import (
	"testing"
	"time"

	"streamwarden/internal/session"
)

func TestCompletionRatioBounds(t *testing.T) {
	tests := []struct {
		name     string
		offset   int64
		duration int64
		want     float64
	}{
		{"half", 30_000, 60_000, 0.5},
		{"unknown duration", 30_000, 0, 0},
		{"overrun clamps", 70_000, 60_000, 1},
		{"negative offset clamps", -5, 60_000, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := session.Session{ViewOffsetMS: tc.offset, DurationMS: tc.duration}
			if got := s.CompletionRatio(); got != tc.want {
				t.Fatalf("CompletionRatio() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	s := session.Session{ViewOffsetMS: 45_000, DurationMS: 60_000}
	if got := s.Remaining(); got != 15*time.Second {
		t.Fatalf("Remaining() = %v, want 15s", got)
	}
	done := session.Session{ViewOffsetMS: 60_000, DurationMS: 60_000}
	if got := done.Remaining(); got != 0 {
		t.Fatalf("Remaining() = %v, want 0", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	episode := session.Session{MediaType: session.MediaEpisode, ShowTitle: "Severance", MediaTitle: "Half Loop"}
	if got := episode.DisplayTitle(); got != "Severance - Half Loop" {
		t.Fatalf("DisplayTitle() = %q", got)
	}
	movie := session.Session{MediaType: session.MediaMovie, MediaTitle: "Arrival"}
	if got := movie.DisplayTitle(); got != "Arrival" {
		t.Fatalf("DisplayTitle() = %q", got)
	}
}

func TestSortByStartTieBreaksOnKey(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 20, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		{ID: "b", Key: 7, StartedAt: t0},
		{ID: "a", Key: 3, StartedAt: t0},
		{ID: "c", Key: 1, StartedAt: t0.Add(-time.Minute)},
	}
	session.SortByStart(sessions)
	got := []string{sessions[0].ID, sessions[1].ID, sessions[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestByUserPreservesOrder(t *testing.T) {
	sessions := []session.Session{
		{ID: "1", UserID: "u1"},
		{ID: "2", UserID: "u2"},
		{ID: "3", UserID: "u1"},
	}
	grouped := session.ByUser(sessions)
	if len(grouped["u1"]) != 2 || grouped["u1"][0].ID != "1" || grouped["u1"][1].ID != "3" {
		t.Fatalf("unexpected grouping %v", grouped)
	}
}
