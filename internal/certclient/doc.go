// Package certclient drives certificate issuance and renewal against an
// ACME-compatible certificate authority.
//
// The authority itself is abstracted behind the Authority interface so
// the lifecycle logic can be tested with a stub instead of a live CA.
// The production implementation speaks ACME through the go-acme/lego
// low-level API.
//
// Issue runs the full flow: account registration, order creation, DNS-01
// challenge publication through a challenge.Provider, validation polling
// with exponential backoff under an overall deadline, and finally
// certificate download and on-disk placement. Challenge record cleanup is
// guaranteed on every exit path. Renew reuses the account and refuses to
// run while the current certificate's remaining validity exceeds the
// renewal threshold, so it is safe to invoke from a scheduler.
package certclient
