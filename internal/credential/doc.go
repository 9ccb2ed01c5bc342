// Package credential persists DNS provider API credentials on disk.
//
// Each provider gets one key=value file under the credentials directory,
// written with owner-only permissions (0600, directory 0700). The file
// holds the provider name, the secret token, and a creation timestamp:
//
//	provider=cloudflare
//	token=cf-api-token-value
//	created_at=2026-08-23T10:00:00Z
//
// Saving is guarded by an advisory file lock so concurrent invocations
// for different domains cannot corrupt the store; loading does not lock.
// An existing file is never overwritten unless explicitly requested.
package credential
