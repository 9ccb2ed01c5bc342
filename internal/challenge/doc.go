// Package challenge abstracts DNS-01 challenge record publication.
//
// A Provider publishes and removes the TXT record a certificate
// authority checks to validate domain control. Providers register
// themselves by name (the cloudflare provider registers in its init),
// so alternate DNS vendors can be added without touching the
// certificate client.
//
// Publish upserts the record by name, making repeated calls safe, and
// waits the configured propagation delay before returning so DNS caches
// can converge. Cleanup is best-effort: a stale validation record is
// harmless, so callers log cleanup failures instead of propagating them.
package challenge
