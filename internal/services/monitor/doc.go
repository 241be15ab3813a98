// Package monitor implements the history contract against the monitoring
// service's HTTP API. History-backed rules (watch quotas, serial
// transcoder detection) consume this client; the live session snapshot
// comes from mediaserver instead.
package monitor
