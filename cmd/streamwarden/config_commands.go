package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"streamwarden/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigPathCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set the media server url and token (or export MEDIA_SERVER_URL / MEDIA_SERVER_TOKEN) before running streamwarden.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the resolved configuration file path",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, exists, err := config.Load("")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, path)
			if !exists {
				fmt.Fprintln(out, "(file does not exist yet; run `streamwarden config init`)")
			}
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file does not exist; showing defaults with environment overrides")
			}
			fmt.Fprintf(out, "Media server: %s\n", valueOrUnset(cfg.MediaServer.URL))
			fmt.Fprintf(out, "Monitor service: %s\n", valueOrUnset(cfg.MonitorService.URL))
			fmt.Fprintf(out, "State dir: %s\n", cfg.Paths.StateDir)
			fmt.Fprintf(out, "Journal enabled: %s\n", yesNo(cfg.Journal.Enabled))
			fmt.Fprintf(out, "Notification channels: %d\n", len(cfg.Notifications.Channels))
			fmt.Fprintln(out, "Enabled rules:")
			for _, name := range enabledRuleNames(cfg) {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func enabledRuleNames(cfg *config.Config) []string {
	var names []string
	p := cfg.Policies
	if p.ConcurrentStreams.Enabled {
		names = append(names, "concurrent-streams")
	}
	if p.DeviceBan.Enabled {
		names = append(names, "device-ban")
	}
	if p.IPAllowlist.Enabled {
		names = append(names, "ip-allowlist")
	}
	if p.GeoFence.Enabled {
		names = append(names, "geofence")
	}
	if p.Bitrate.Enabled {
		names = append(names, "bitrate")
	}
	if p.Transcode.Enabled {
		names = append(names, "transcode")
	}
	if p.Contention.Enabled {
		names = append(names, "contention")
	}
	if p.WatchQuota.Enabled {
		names = append(names, "watch-quota")
	}
	if p.SerialTranscode.Enabled {
		names = append(names, "serial-transcoder")
	}
	if len(names) == 0 {
		names = append(names, "(none)")
	}
	return names
}

func valueOrUnset(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(unset)"
	}
	return value
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
