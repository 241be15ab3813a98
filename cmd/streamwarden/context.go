package main

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"streamwarden/internal/config"
	"streamwarden/internal/journal"
	"streamwarden/internal/logging"
	"streamwarden/internal/notifications"
	"streamwarden/internal/policy"
	"streamwarden/internal/services"
	"streamwarden/internal/services/mediaserver"
	"streamwarden/internal/services/monitor"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{"stdout"}
	if cfg.Logging.ToFile {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "streamwarden.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

func (c *commandContext) newServerClient(cfg *config.Config, logger *slog.Logger) mediaserver.Client {
	timeout := time.Duration(cfg.MediaServer.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return mediaserver.NewHTTPClient(cfg.MediaServer.URL, cfg.MediaServer.Token, httpClient, logger)
}

func (c *commandContext) newHistorySource(cfg *config.Config) policy.HistorySource {
	if !cfg.HistoryRuleEnabled() {
		return nil
	}
	timeout := time.Duration(cfg.MonitorService.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	return monitor.NewHTTPClient(cfg.MonitorService.URL, cfg.MonitorService.APIKey, httpClient)
}

// openJournal returns nil when journaling is disabled; callers treat a nil
// journal as "don't record".
func (c *commandContext) openJournal(cfg *config.Config, logger *slog.Logger) *journal.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	store, err := journal.Open(cfg.JournalPath())
	if err != nil {
		logger.Warn("journal unavailable", logging.Error(err))
		return nil
	}
	return store
}

func (c *commandContext) newNotifier(cfg *config.Config, logger *slog.Logger) notifications.Service {
	return notifications.NewService(cfg, logger)
}

func (c *commandContext) retryPolicy(cfg *config.Config) services.RetryPolicy {
	p := services.DefaultRetryPolicy()
	if cfg.MediaServer.RetryAttempts > 0 {
		p.Attempts = cfg.MediaServer.RetryAttempts
	}
	return p
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
