// Package session defines the typed snapshot model for active playback
// streams and play-history records. Values are constructed by the API
// clients through validated parsing; rule logic never touches raw
// response maps.
package session
