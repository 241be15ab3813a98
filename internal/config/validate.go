package config

import (
	"fmt"
	"net/url"

	"streamwarden/internal/services"
)

// Validate ensures the configuration is usable. Violations are tagged with
// services.ErrConfiguration so the CLI can exit non-zero before any cycle.
func (c *Config) Validate() error {
	if err := c.validateMediaServer(); err != nil {
		return err
	}
	if err := c.validateMonitorService(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validatePolicies(); err != nil {
		return err
	}
	if err := c.validatePause(); err != nil {
		return err
	}
	return nil
}

func configError(format string, args ...any) error {
	return services.Wrap(services.ErrConfiguration, "config", "", fmt.Sprintf(format, args...), nil)
}

func (c *Config) validateMediaServer() error {
	if c.MediaServer.URL == "" {
		return configError("media_server.url is required (set MEDIA_SERVER_URL or edit the config file; create one with 'streamwarden config init')")
	}
	if _, err := url.ParseRequestURI(c.MediaServer.URL); err != nil {
		return configError("media_server.url is not a valid URL: %v", err)
	}
	if c.MediaServer.Token == "" {
		return configError("media_server.token is required (set MEDIA_SERVER_TOKEN or edit the config file)")
	}
	return nil
}

func (c *Config) validateMonitorService() error {
	if !c.HistoryRuleEnabled() {
		return nil
	}
	if c.MonitorService.URL == "" {
		return configError("monitor_service.url is required when watch_quota or serial_transcode is enabled (set MONITOR_SERVICE_URL)")
	}
	if _, err := url.ParseRequestURI(c.MonitorService.URL); err != nil {
		return configError("monitor_service.url is not a valid URL: %v", err)
	}
	if c.MonitorService.APIKey == "" {
		return configError("monitor_service.api_key is required when watch_quota or serial_transcode is enabled (set MONITOR_SERVICE_APIKEY)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	seen := map[string]struct{}{}
	for _, ch := range c.Notifications.Channels {
		if ch.ID == "" {
			return configError("notifications.channels entries require an id")
		}
		if _, dup := seen[ch.ID]; dup {
			return configError("notifications.channels id %q is duplicated", ch.ID)
		}
		seen[ch.ID] = struct{}{}
		switch ch.Type {
		case ChannelNtfy:
			if ch.Topic == "" {
				return configError("notifications channel %q requires a topic", ch.ID)
			}
		case ChannelWebhook:
			if ch.URL == "" {
				return configError("notifications channel %q requires a url", ch.ID)
			}
		default:
			return configError("notifications channel %q has unsupported type %q", ch.ID, ch.Type)
		}
	}
	if c.Notifications.DefaultChannel != "" {
		if _, ok := seen[c.Notifications.DefaultChannel]; !ok {
			return configError("notifications.default_channel %q does not match any channel id", c.Notifications.DefaultChannel)
		}
	}
	return nil
}

func (c *Config) validatePolicies() error {
	p := &c.Policies
	if p.ConcurrentStreams.Enabled && p.ConcurrentStreams.MaxPerUser <= 0 {
		return configError("policies.concurrent_streams.max_per_user must be positive")
	}
	if p.DeviceBan.Enabled && len(p.DeviceBan.Platforms) == 0 {
		return configError("policies.device_ban.platforms must list at least one platform")
	}
	if p.IPAllowlist.Enabled && len(p.IPAllowlist.Entries) == 0 {
		return configError("policies.ip_allowlist.entries must list at least one address or subnet")
	}
	if p.GeoFence.Enabled && len(p.GeoFence.LocalOnlyUsers) == 0 {
		return configError("policies.geofence.local_only_users must list at least one user")
	}
	if p.Bitrate.Enabled && p.Bitrate.MaxKbps <= 0 {
		return configError("policies.bitrate.max_kbps must be positive")
	}
	if p.Transcode.Enabled {
		switch p.Transcode.Mode {
		case "always":
		case "libraries":
			if len(p.Transcode.LibraryIDs) == 0 {
				return configError("policies.transcode.library_ids must be set for mode \"libraries\"")
			}
		case "resolutions":
			if len(p.Transcode.Resolutions) == 0 {
				return configError("policies.transcode.resolutions must be set for mode \"resolutions\"")
			}
		default:
			return configError("policies.transcode.mode must be one of always, libraries, resolutions")
		}
	}
	if p.Contention.Enabled && len(p.Contention.AdminUsers) == 0 {
		return configError("policies.contention.admin_users must list at least one user")
	}
	if p.WatchQuota.Enabled {
		if p.WatchQuota.Limit <= 0 {
			return configError("policies.watch_quota.limit must be positive")
		}
		switch p.WatchQuota.Mode {
		case "plays", "seconds", "show":
		default:
			return configError("policies.watch_quota.mode must be one of plays, seconds, show")
		}
	}
	if p.SerialTranscode.Enabled {
		if p.SerialTranscode.ThresholdPercent <= 0 || p.SerialTranscode.ThresholdPercent > 100 {
			return configError("policies.serial_transcode.threshold_percent must be in (0, 100]")
		}
		switch p.SerialTranscode.GroupBy {
		case "player", "user":
		default:
			return configError("policies.serial_transcode.group_by must be player or user")
		}
	}
	return nil
}

func (c *Config) validatePause() error {
	if c.Pause.PollIntervalSeconds >= c.Pause.TimeoutSeconds {
		return configError("pause.poll_interval_seconds must be less than pause.timeout_seconds")
	}
	return nil
}
