package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// MediaServer contains connection settings for the media server whose
// sessions are policed. Credentials may come from the TOML file or the
// environment; both are required.
type MediaServer struct {
	URL            string `toml:"url"`
	Token          string `toml:"token"`
	RequestTimeout int    `toml:"request_timeout"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// MonitorService contains connection settings for the companion monitoring
// service that serves play history. Only required when a history-backed
// rule is enabled.
type MonitorService struct {
	URL            string `toml:"url"`
	APIKey         string `toml:"api_key"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Supported notification channel types.
const (
	ChannelNtfy    = "ntfy"
	ChannelWebhook = "webhook"
)

// Channel describes one notification delivery target.
type Channel struct {
	ID    string `toml:"id"`
	Type  string `toml:"type"`
	Topic string `toml:"topic"`
	URL   string `toml:"url"`
}

// Notifications contains notification channel configuration.
type Notifications struct {
	DefaultChannel string    `toml:"default_channel"`
	RequestTimeout int       `toml:"request_timeout"`
	Channels       []Channel `toml:"channels"`
}

// Pause contains pause-timeout watch settings.
type Pause struct {
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	Message             string `toml:"message"`
	ScanIntervalSeconds int    `toml:"scan_interval_seconds"`
}

// Journal contains enforcement journal settings.
type Journal struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	ToFile bool   `toml:"to_file"`
}

// ConcurrentStreams limits simultaneous sessions per user.
type ConcurrentStreams struct {
	Enabled     bool     `toml:"enabled"`
	MaxPerUser  int      `toml:"max_per_user"`
	KillAll     bool     `toml:"kill_all"`
	ExemptUsers []string `toml:"exempt_users"`
}

// DeviceBan denies a list of client platforms outright.
type DeviceBan struct {
	Enabled   bool     `toml:"enabled"`
	Platforms []string `toml:"platforms"`
}

// IPAllowlist restricts sessions to known addresses. Entries may be exact
// IPs, CIDR blocks, or bare prefixes such as "10.10.".
type IPAllowlist struct {
	Enabled bool     `toml:"enabled"`
	Entries []string `toml:"entries"`
}

// GeoFence restricts listed users to the local network.
type GeoFence struct {
	Enabled        bool     `toml:"enabled"`
	LocalOnlyUsers []string `toml:"local_only_users"`
}

// Bitrate caps the stream bitrate.
type Bitrate struct {
	Enabled bool `toml:"enabled"`
	MaxKbps int  `toml:"max_kbps"`
}

// Transcode restricts transcoded playback. Mode selects which sessions are
// affected: "always", "libraries" (LibraryIDs), or "resolutions"
// (source Resolutions).
type Transcode struct {
	Enabled     bool     `toml:"enabled"`
	Mode        string   `toml:"mode"`
	LibraryIDs  []string `toml:"library_ids"`
	Resolutions []string `toml:"resolutions"`
}

// Contention frees server capacity for admins whose streams are buffering.
type Contention struct {
	Enabled    bool     `toml:"enabled"`
	AdminUsers []string `toml:"admin_users"`
}

// WatchQuota limits how much a user may watch inside a trailing window.
// Mode is "plays", "seconds", or "show".
type WatchQuota struct {
	Enabled     bool   `toml:"enabled"`
	Limit       int    `toml:"limit"`
	WindowHours int    `toml:"window_hours"`
	Mode        string `toml:"mode"`
}

// SerialTranscode bans players or users whose historical transcode share
// exceeds a threshold.
type SerialTranscode struct {
	Enabled          bool    `toml:"enabled"`
	WindowDays       int     `toml:"window_days"`
	ThresholdPercent float64 `toml:"threshold_percent"`
	GroupBy          string  `toml:"group_by"`
}

// Policies aggregates the per-rule configuration tables.
type Policies struct {
	ConcurrentStreams ConcurrentStreams `toml:"concurrent_streams"`
	DeviceBan         DeviceBan         `toml:"device_ban"`
	IPAllowlist       IPAllowlist       `toml:"ip_allowlist"`
	GeoFence          GeoFence          `toml:"geofence"`
	Bitrate           Bitrate           `toml:"bitrate"`
	Transcode         Transcode         `toml:"transcode"`
	Contention        Contention        `toml:"contention"`
	WatchQuota        WatchQuota        `toml:"watch_quota"`
	SerialTranscode   SerialTranscode   `toml:"serial_transcode"`
}

// Config encapsulates all configuration values for streamwarden.
type Config struct {
	Paths          Paths          `toml:"paths"`
	MediaServer    MediaServer    `toml:"media_server"`
	MonitorService MonitorService `toml:"monitor_service"`
	Notifications  Notifications  `toml:"notifications"`
	Pause          Pause          `toml:"pause"`
	Journal        Journal        `toml:"journal"`
	Logging        Logging        `toml:"logging"`
	Policies       Policies       `toml:"policies"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/streamwarden/config.toml")
}

// Load locates, parses, and validates a configuration file, applying the
// environment overlay on top. The returned config has all path fields
// expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("streamwarden.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// JournalPath returns the sqlite journal location inside the state dir.
func (c *Config) JournalPath() string {
	return filepath.Join(c.Paths.StateDir, "journal.db")
}

// LockPath returns the pause-watch daemon lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "watchd.lock")
}

// HistoryRuleEnabled reports whether any enabled rule needs the monitor
// service's history endpoint.
func (c *Config) HistoryRuleEnabled() bool {
	return c.Policies.WatchQuota.Enabled || c.Policies.SerialTranscode.Enabled
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
