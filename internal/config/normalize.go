package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServers()
	c.normalizeNotifications()
	c.normalizePause()
	c.normalizePolicies()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeServers() {
	c.MediaServer.URL = strings.TrimRight(strings.TrimSpace(c.MediaServer.URL), "/")
	c.MediaServer.Token = strings.TrimSpace(c.MediaServer.Token)
	if c.MediaServer.RequestTimeout <= 0 {
		c.MediaServer.RequestTimeout = defaultRequestTimeout
	}
	if c.MediaServer.RetryAttempts <= 0 {
		c.MediaServer.RetryAttempts = defaultRetryAttempts
	}

	c.MonitorService.URL = strings.TrimRight(strings.TrimSpace(c.MonitorService.URL), "/")
	c.MonitorService.APIKey = strings.TrimSpace(c.MonitorService.APIKey)
	if c.MonitorService.RequestTimeout <= 0 {
		c.MonitorService.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	for i := range c.Notifications.Channels {
		ch := &c.Notifications.Channels[i]
		ch.ID = strings.TrimSpace(ch.ID)
		ch.Type = strings.ToLower(strings.TrimSpace(ch.Type))
		ch.Topic = strings.TrimSpace(ch.Topic)
		ch.URL = strings.TrimSpace(ch.URL)
	}
	c.Notifications.DefaultChannel = strings.TrimSpace(c.Notifications.DefaultChannel)
	if c.Notifications.DefaultChannel == "" && len(c.Notifications.Channels) > 0 {
		c.Notifications.DefaultChannel = c.Notifications.Channels[0].ID
	}
}

func (c *Config) normalizePause() {
	if c.Pause.TimeoutSeconds <= 0 {
		c.Pause.TimeoutSeconds = defaultPauseTimeoutSeconds
	}
	if c.Pause.PollIntervalSeconds <= 0 {
		c.Pause.PollIntervalSeconds = defaultPausePollSeconds
	}
	if c.Pause.ScanIntervalSeconds <= 0 {
		c.Pause.ScanIntervalSeconds = defaultPauseScanSeconds
	}
	if strings.TrimSpace(c.Pause.Message) == "" {
		c.Pause.Message = defaultPauseMessage
	}
}

func (c *Config) normalizePolicies() {
	p := &c.Policies
	p.Transcode.Mode = strings.ToLower(strings.TrimSpace(p.Transcode.Mode))
	if p.Transcode.Mode == "" {
		p.Transcode.Mode = defaultTranscodeMode
	}
	p.WatchQuota.Mode = strings.ToLower(strings.TrimSpace(p.WatchQuota.Mode))
	if p.WatchQuota.Mode == "" {
		p.WatchQuota.Mode = defaultQuotaMode
	}
	if p.WatchQuota.WindowHours <= 0 {
		p.WatchQuota.WindowHours = defaultQuotaWindowHours
	}
	p.SerialTranscode.GroupBy = strings.ToLower(strings.TrimSpace(p.SerialTranscode.GroupBy))
	if p.SerialTranscode.GroupBy == "" {
		p.SerialTranscode.GroupBy = defaultSerialGroupBy
	}
	if p.SerialTranscode.WindowDays <= 0 {
		p.SerialTranscode.WindowDays = defaultSerialWindowDays
	}

	p.DeviceBan.Platforms = trimAll(p.DeviceBan.Platforms)
	p.IPAllowlist.Entries = trimAll(p.IPAllowlist.Entries)
	p.GeoFence.LocalOnlyUsers = trimAll(p.GeoFence.LocalOnlyUsers)
	p.Contention.AdminUsers = trimAll(p.Contention.AdminUsers)
	p.ConcurrentStreams.ExemptUsers = trimAll(p.ConcurrentStreams.ExemptUsers)
	p.Transcode.LibraryIDs = trimAll(p.Transcode.LibraryIDs)
	p.Transcode.Resolutions = trimAll(p.Transcode.Resolutions)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
