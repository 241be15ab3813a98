// Package mediaserver implements the session controller contract against
// the media server's HTTP API: full-snapshot session listings and
// idempotent stream termination, authenticated by an opaque bearer token.
package mediaserver
