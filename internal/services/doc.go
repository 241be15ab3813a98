// Package services defines shared utilities consumed by the policy engine
// and the external API clients.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that distinguish
//     transient transport failures from configuration and evaluation errors,
//     so callers never conflate "network down" with "no sessions".
//   - A bounded RetryPolicy applied to terminate/notify calls.
//
// Use these helpers when wiring new client logic so operational behaviour
// (error classification, retries) stays uniform across the module.
package services
