package policy

import (
	"fmt"
	"time"

	"streamwarden/internal/config"
	"streamwarden/internal/services"
)

// FromConfig builds the enabled rule set in priority order. The order is
// fixed so that when several rules flag the same session, the surviving
// reason is deterministic.
func FromConfig(cfg *config.Config) []Rule {
	p := cfg.Policies

	var rules []Rule
	if p.ConcurrentStreams.Enabled {
		rules = append(rules, ConcurrentStreamLimit{
			MaxPerUser:  p.ConcurrentStreams.MaxPerUser,
			KillAll:     p.ConcurrentStreams.KillAll,
			ExemptUsers: p.ConcurrentStreams.ExemptUsers,
		})
	}
	if p.DeviceBan.Enabled {
		rules = append(rules, DeviceBan{Platforms: p.DeviceBan.Platforms})
	}
	if p.IPAllowlist.Enabled {
		rules = append(rules, IPAllowlist{Entries: p.IPAllowlist.Entries})
	}
	if p.GeoFence.Enabled {
		rules = append(rules, GeoFence{LocalOnlyUsers: p.GeoFence.LocalOnlyUsers})
	}
	if p.Bitrate.Enabled {
		rules = append(rules, BitrateCeiling{MaxKbps: p.Bitrate.MaxKbps})
	}
	if p.Transcode.Enabled {
		rules = append(rules, TranscodeRestriction{
			Mode:        p.Transcode.Mode,
			LibraryIDs:  p.Transcode.LibraryIDs,
			Resolutions: p.Transcode.Resolutions,
		})
	}
	if p.Contention.Enabled {
		rules = append(rules, ContentionArbitration{AdminUsers: p.Contention.AdminUsers})
	}
	if p.WatchQuota.Enabled {
		rules = append(rules, WatchQuota{
			Limit:  p.WatchQuota.Limit,
			Window: time.Duration(p.WatchQuota.WindowHours) * time.Hour,
			Mode:   p.WatchQuota.Mode,
		})
	}
	if p.SerialTranscode.Enabled {
		rules = append(rules, SerialTranscoderBan{
			Window:           time.Duration(p.SerialTranscode.WindowDays) * 24 * time.Hour,
			ThresholdPercent: p.SerialTranscode.ThresholdPercent,
			GroupBy:          p.SerialTranscode.GroupBy,
		})
	}
	return rules
}

// Select filters rules by name, preserving priority order. Unknown names
// are configuration errors so typos in --rule flags fail loudly.
func Select(rules []Rule, names []string) ([]Rule, error) {
	if len(names) == 0 {
		return rules, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = false
	}
	var selected []Rule
	for _, rule := range rules {
		if _, ok := wanted[rule.Name()]; ok {
			wanted[rule.Name()] = true
			selected = append(selected, rule)
		}
	}
	for name, found := range wanted {
		if !found {
			return nil, services.Wrap(services.ErrConfiguration, "policy", "select",
				fmt.Sprintf("rule %q is unknown or not enabled", name), nil)
		}
	}
	return selected, nil
}
