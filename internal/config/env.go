package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type envOverlay struct {
	MediaServerURL       string `env:"MEDIA_SERVER_URL"`
	MediaServerToken     string `env:"MEDIA_SERVER_TOKEN"`
	MonitorServiceURL    string `env:"MONITOR_SERVICE_URL"`
	MonitorServiceAPIKey string `env:"MONITOR_SERVICE_APIKEY"`
}

// applyEnv overlays environment variables onto the config. Set variables take
// precedence over file values so credentials never need to live on disk;
// empty values are treated as unset.
func applyEnv(cfg *Config) error {
	var overlay envOverlay
	if err := env.Parse(&overlay); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if overlay.MediaServerURL != "" {
		cfg.MediaServer.URL = overlay.MediaServerURL
	}
	if overlay.MediaServerToken != "" {
		cfg.MediaServer.Token = overlay.MediaServerToken
	}
	if overlay.MonitorServiceURL != "" {
		cfg.MonitorService.URL = overlay.MonitorServiceURL
	}
	if overlay.MonitorServiceAPIKey != "" {
		cfg.MonitorService.APIKey = overlay.MonitorServiceAPIKey
	}
	return nil
}
