package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/ksyq12/certman/internal/credential"
)

// Request describes one DNS-01 validation record. Instances are
// short-lived: created per issuance attempt and discarded after the
// record is cleaned up.
type Request struct {
	Domain      string // domain under validation
	Token       string // challenge token from the authority
	RecordName  string // TXT record FQDN (_acme-challenge.<domain>)
	RecordValue string // expected TXT record content
}

// Provider publishes and removes DNS-01 challenge records.
type Provider interface {
	// Name returns the provider name (cloudflare, ...).
	Name() string

	// Publish upserts the TXT record and waits for the propagation
	// delay before returning.
	Publish(ctx context.Context, req Request) error

	// Cleanup removes the TXT record. Idempotent; removing an absent
	// record is not an error.
	Cleanup(ctx context.Context, req Request) error
}

// Options carries provider tuning shared across vendors.
type Options struct {
	// PropagationDelay is how long Publish waits after the record
	// upsert so the authority's resolvers can observe it.
	PropagationDelay time.Duration
}

// Factory builds a Provider from a stored credential.
type Factory func(cred *credential.Credential, opts Options) (Provider, error)

// registry holds all registered provider factories.
var registry = make(map[string]Factory)

// Register adds a provider factory to the registry.
func Register(name string, factory Factory) {
	registry[name] = factory
}

// New builds the named provider from a credential.
func New(name string, cred *credential.Credential, opts Options) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown DNS provider: %s (available: %v)", name, Available())
	}
	return factory(cred, opts)
}

// Available returns all registered provider names.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// wait blocks for the given delay or until the context is done.
func wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
