package policy_test

import (
	"errors"
	"testing"

	"streamwarden/internal/config"
	"streamwarden/internal/policy"
	"streamwarden/internal/services"
)

func TestFromConfigBuildsEnabledRulesInPriorityOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Policies.ConcurrentStreams.Enabled = true
	cfg.Policies.Bitrate.Enabled = true
	cfg.Policies.Bitrate.MaxKbps = 8000
	cfg.Policies.Contention.Enabled = true
	cfg.Policies.Contention.AdminUsers = []string{"admin"}

	rules := policy.FromConfig(&cfg)
	got := make([]string, 0, len(rules))
	for _, rule := range rules {
		got = append(got, rule.Name())
	}
	want := []string{"concurrent-streams", "bitrate", "contention"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectPreservesOrderAndRejectsUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Policies.ConcurrentStreams.Enabled = true
	cfg.Policies.DeviceBan.Enabled = true
	cfg.Policies.DeviceBan.Platforms = []string{"chromecast"}
	cfg.Policies.Bitrate.Enabled = true
	cfg.Policies.Bitrate.MaxKbps = 8000
	rules := policy.FromConfig(&cfg)

	selected, err := policy.Select(rules, []string{"bitrate", "concurrent-streams"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(selected) != 2 || selected[0].Name() != "concurrent-streams" || selected[1].Name() != "bitrate" {
		t.Fatalf("expected priority order regardless of flag order, got %v", selected)
	}

	if _, err := policy.Select(rules, []string{"no-such-rule"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown rule, got %v", err)
	}

	all, err := policy.Select(rules, nil)
	if err != nil || len(all) != len(rules) {
		t.Fatalf("empty selection should return every rule, got %v (%v)", all, err)
	}
}
