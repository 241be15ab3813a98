// Package logging builds the slog loggers used across streamwarden.
//
// Two output formats are supported: a console handler that renders compact
// "<time> LEVEL component: msg k=v" lines for interactive use, and a JSON
// handler for scheduled invocations whose output lands in a log collector.
// Attr helpers re-export the slog constructors so call sites stay terse.
package logging
