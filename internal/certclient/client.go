package certclient

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ksyq12/certman/internal/challenge"
	"github.com/ksyq12/certman/internal/config"
	"github.com/ksyq12/certman/internal/errors"
	"github.com/ksyq12/certman/internal/logger"
)

// Default lifecycle tuning.
const (
	DefaultRenewalThreshold  = 30 * 24 * time.Hour
	DefaultValidationTimeout = 5 * time.Minute

	// transientAttempts bounds retries of individual authority calls.
	transientAttempts = 3

	chainFileName = "fullchain.pem"
	keyFileName   = "privkey.pem"
)

// Options tunes the certificate client.
type Options struct {
	// CertDir is where issued chains and keys are placed, one
	// subdirectory per domain.
	CertDir string

	// RenewalThreshold is the remaining validity below which renewal
	// proceeds. Zero means DefaultRenewalThreshold.
	RenewalThreshold time.Duration

	// ValidationTimeout bounds challenge validation polling.
	// Zero means DefaultValidationTimeout.
	ValidationTimeout time.Duration
}

// Client orchestrates issuance and renewal.
type Client struct {
	authority Authority
	provider  challenge.Provider
	opts      Options

	// Backoff tuning, overridden in tests.
	retryInterval time.Duration
	pollInterval  time.Duration
}

// New creates a certificate client.
func New(authority Authority, provider challenge.Provider, opts Options) *Client {
	if opts.RenewalThreshold <= 0 {
		opts.RenewalThreshold = DefaultRenewalThreshold
	}
	if opts.ValidationTimeout <= 0 {
		opts.ValidationTimeout = DefaultValidationTimeout
	}
	return &Client{
		authority:     authority,
		provider:      provider,
		opts:          opts,
		retryInterval: 500 * time.Millisecond,
		pollInterval:  2 * time.Second,
	}
}

// hostnameRe matches one DNS label: alphanumeric with inner hyphens.
var hostnameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// ValidateDomain checks that domain is a syntactically valid hostname.
func ValidateDomain(domain string) error {
	if domain == "" || len(domain) > 253 {
		return errors.InvalidDomain(domain)
	}
	labels := strings.Split(strings.TrimSuffix(domain, "."), ".")
	if len(labels) < 2 {
		return errors.InvalidDomain(domain)
	}
	for _, label := range labels {
		if len(label) > 63 || !hostnameRe.MatchString(label) {
			return errors.InvalidDomain(domain)
		}
	}
	return nil
}

// Issue obtains a fresh certificate for the domain. agreeTerms must be
// true; the CA requires explicit agreement to its subscriber terms.
func (c *Client) Issue(ctx context.Context, domain, email string, agreeTerms bool) (*config.CertificateRecord, error) {
	if !agreeTerms {
		return nil, errors.TermsNotAccepted(domain)
	}
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}

	return c.obtain(ctx, domain, email, "issue")
}

// Renew reissues the certificate for a domain. When the current record's
// remaining validity exceeds the renewal threshold it fails with
// ErrNotDueForRenewal without contacting the authority, so scheduled
// invocations are cheap no-ops most of the time. force bypasses the
// threshold check.
func (c *Client) Renew(ctx context.Context, domain, email string, current *config.CertificateRecord, force bool) (*config.CertificateRecord, error) {
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}

	if current != nil && !force {
		now := time.Now()
		if !current.DueForRenewal(now, c.opts.RenewalThreshold) {
			daysLeft := int(current.RemainingValidity(now).Hours() / 24)
			return nil, errors.NotDueForRenewal(domain, daysLeft)
		}
	}

	return c.obtain(ctx, domain, email, "renew")
}

// obtain runs the shared issuance flow: register, order, publish the
// challenge, poll validation, finalize, and write the artifacts.
// Challenge cleanup runs exactly once on every exit path past order
// creation.
func (c *Client) obtain(ctx context.Context, domain, email, op string) (record *config.CertificateRecord, err error) {
	deadline := c.opts.ValidationTimeout
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	logger.InfoFields("starting certificate order", map[string]interface{}{
		"domain": domain,
		"op":     op,
	})

	if err := c.retryTransient(ctx, func() error {
		return c.authority.RegisterAccount(ctx, email)
	}); err != nil {
		return nil, c.classify(domain, op, "account registration failed", err)
	}

	var order *Order
	if err := c.retryTransient(ctx, func() error {
		var err error
		order, err = c.authority.NewOrder(ctx, domain)
		return err
	}); err != nil {
		return nil, c.classify(domain, op, "order creation failed", err)
	}

	req := challenge.Request{
		Domain:      domain,
		Token:       order.Token,
		RecordName:  order.RecordName,
		RecordValue: order.RecordValue,
	}

	// From here on the DNS record may exist; remove it no matter how we
	// leave this function. Cleanup failures are warnings only, a stale
	// TXT record is harmless.
	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		if cleanupErr := c.provider.Cleanup(cleanupCtx, req); cleanupErr != nil {
			logger.Warn("cleanup of challenge record for %s failed: %v", domain, cleanupErr)
		}
	}()

	if err := c.provider.Publish(ctx, req); err != nil {
		if ctx.Err() != nil {
			return nil, errors.ValidationTimeout(domain, op, err)
		}
		return nil, errors.WrapOp(errors.ErrCodeDNS, domain, op, "challenge publication failed", err)
	}

	if err := c.retryTransient(ctx, func() error {
		return c.authority.AcceptChallenge(ctx, order)
	}); err != nil {
		return nil, c.classify(domain, op, "challenge acceptance failed", err)
	}

	if err := c.pollValidation(ctx, domain, op, order); err != nil {
		return nil, err
	}

	var issued *IssuedCertificate
	if err := c.retryTransient(ctx, func() error {
		var err error
		issued, err = c.authority.Finalize(ctx, order)
		return err
	}); err != nil {
		return nil, c.classify(domain, op, "finalization failed", err)
	}
	if issued == nil || len(issued.ChainPEM) == 0 || len(issued.KeyPEM) == 0 {
		return nil, errors.Authority(domain, op, fmt.Errorf("authority returned an empty certificate"))
	}

	record, err = c.writeArtifacts(domain, issued)
	if err != nil {
		return nil, err
	}

	logger.InfoFields("certificate obtained", map[string]interface{}{
		"domain":  domain,
		"expires": record.ExpiresAt.Format(time.RFC3339),
	})
	return record, nil
}

// pollValidation polls the authority with exponential backoff until the
// order validates, fails, or the deadline expires.
func (c *Client) pollValidation(ctx context.Context, domain, op string, order *Order) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.pollInterval
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = c.opts.ValidationTimeout

	err := backoff.Retry(func() error {
		status, err := c.authority.OrderStatus(ctx, order)
		if err != nil {
			if errors.IsTransient(err) {
				return err
			}
			return backoff.Permanent(c.classify(domain, op, "status poll failed", err))
		}
		switch status {
		case StatusValid:
			return nil
		case StatusInvalid:
			return backoff.Permanent(errors.Authority(domain, op, fmt.Errorf("challenge validation failed")))
		default:
			return fmt.Errorf("order for %s still pending", domain)
		}
	}, backoff.WithContext(policy, ctx))

	if err == nil {
		return nil
	}
	var certErr *errors.CertError
	if errors.As(err, &certErr) {
		return err
	}
	// Deadline expired or polling gave up while still pending.
	return errors.ValidationTimeout(domain, op, err)
}

// writeArtifacts places the chain and key under the cert directory and
// builds the record.
func (c *Client) writeArtifacts(domain string, issued *IssuedCertificate) (*config.CertificateRecord, error) {
	dir := filepath.Join(c.opts.CertDir, domain)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, "failed to create certificate directory", err)
	}

	chainPath := filepath.Join(dir, chainFileName)
	keyPath := filepath.Join(dir, keyFileName)

	if err := os.WriteFile(keyPath, issued.KeyPEM, 0600); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, "failed to write private key", err)
	}
	if err := os.WriteFile(chainPath, issued.ChainPEM, 0644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, "failed to write certificate chain", err)
	}

	issuedAt := time.Now().UTC()
	expiresAt, err := chainExpiry(issued.ChainPEM)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to parse issued certificate", err)
	}

	return &config.CertificateRecord{
		Domain:    domain,
		ChainPath: chainPath,
		KeyPath:   keyPath,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// chainExpiry extracts the leaf certificate's NotAfter from a PEM chain.
func chainExpiry(chainPEM []byte) (time.Time, error) {
	block, _ := pem.Decode(chainPEM)
	if block == nil {
		return time.Time{}, fmt.Errorf("no PEM block in certificate chain")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return time.Time{}, err
	}
	return cert.NotAfter.UTC(), nil
}

// retryTransient retries an authority call on transient errors with
// bounded exponential backoff; permanent errors propagate immediately.
func (c *Client) retryTransient(ctx context.Context, op func() error) error {
	base := backoff.NewExponentialBackOff()
	base.InitialInterval = c.retryInterval
	policy := backoff.WithMaxRetries(base, transientAttempts-1)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.IsTransient(err) {
			logger.Debug("transient authority error, retrying: %v", err)
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(policy, ctx))
}

// classify maps a failed authority call to the error taxonomy.
func (c *Client) classify(domain, op, msg string, err error) error {
	if ctxErr := contextError(err); ctxErr != nil {
		return errors.ValidationTimeout(domain, op, err)
	}
	var certErr *errors.CertError
	if errors.As(err, &certErr) {
		return err
	}
	return errors.Authority(domain, op, fmt.Errorf("%s: %w", msg, err))
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
