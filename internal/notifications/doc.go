// Package notifications delivers enforcement events via pluggable channels.
//
// Channels are configured in config.toml; ntfy topics receive flattened
// plain-text messages and webhooks receive a rich JSON payload. When no
// channel is configured a no-op implementation is returned so callers never
// branch on notification availability.
package notifications
