package challenge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	cloudflare "github.com/cloudflare/cloudflare-go"

	"github.com/ksyq12/certman/internal/credential"
	"github.com/ksyq12/certman/internal/logger"
)

const (
	// cloudflareTTL is short so stale challenge records age out quickly.
	cloudflareTTL = 120

	// apiAttempts bounds retries of individual Cloudflare API calls.
	apiAttempts = 3
)

func init() {
	Register("cloudflare", func(cred *credential.Credential, opts Options) (Provider, error) {
		api, err := cloudflare.NewWithAPIToken(cred.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloudflare client: %w", err)
		}
		return &CloudflareProvider{
			api:         api,
			propagation: opts.PropagationDelay,
		}, nil
	})
}

// cloudflareAPI is the subset of the Cloudflare client used by the
// provider, extracted so tests can substitute a double.
type cloudflareAPI interface {
	ZoneIDByName(zoneName string) (string, error)
	ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error)
	CreateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.CreateDNSRecordParams) (cloudflare.DNSRecord, error)
	UpdateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UpdateDNSRecordParams) (cloudflare.DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, recordID string) error
}

// CloudflareProvider publishes DNS-01 TXT records through the Cloudflare
// DNS API.
type CloudflareProvider struct {
	api         cloudflareAPI
	propagation time.Duration
}

// NewCloudflareProvider creates a provider from an explicit API client.
// Exposed for tests; production code goes through the registry.
func NewCloudflareProvider(api cloudflareAPI, propagation time.Duration) *CloudflareProvider {
	return &CloudflareProvider{api: api, propagation: propagation}
}

// Name returns the provider name.
func (p *CloudflareProvider) Name() string {
	return "cloudflare"
}

// Publish upserts the challenge TXT record, then waits for propagation.
func (p *CloudflareProvider) Publish(ctx context.Context, req Request) error {
	zoneID, err := p.zoneID(ctx, req.RecordName)
	if err != nil {
		return fmt.Errorf("cloudflare: %w", err)
	}
	rc := cloudflare.ZoneIdentifier(zoneID)

	existing, err := p.findRecord(ctx, rc, req.RecordName)
	if err != nil {
		return fmt.Errorf("cloudflare: failed to list TXT records: %w", err)
	}

	if existing != nil {
		// Same name, fresh value: update in place so repeated publishes
		// never accumulate records.
		err = retryAPI(ctx, func() error {
			_, err := p.api.UpdateDNSRecord(ctx, rc, cloudflare.UpdateDNSRecordParams{
				ID:      existing.ID,
				Type:    "TXT",
				Name:    req.RecordName,
				Content: req.RecordValue,
				TTL:     cloudflareTTL,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("cloudflare: failed to update TXT record: %w", err)
		}
		logger.DebugFields("updated challenge record", map[string]interface{}{
			"record": req.RecordName,
			"zone":   zoneID,
		})
	} else {
		err = retryAPI(ctx, func() error {
			_, err := p.api.CreateDNSRecord(ctx, rc, cloudflare.CreateDNSRecordParams{
				Type:    "TXT",
				Name:    req.RecordName,
				Content: req.RecordValue,
				TTL:     cloudflareTTL,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("cloudflare: failed to create TXT record: %w", err)
		}
		logger.DebugFields("created challenge record", map[string]interface{}{
			"record": req.RecordName,
			"zone":   zoneID,
		})
	}

	logger.Info("waiting %s for DNS propagation", p.propagation)
	return wait(ctx, p.propagation)
}

// Cleanup removes the challenge TXT record. An absent record is a no-op.
func (p *CloudflareProvider) Cleanup(ctx context.Context, req Request) error {
	zoneID, err := p.zoneID(ctx, req.RecordName)
	if err != nil {
		return fmt.Errorf("cloudflare: %w", err)
	}
	rc := cloudflare.ZoneIdentifier(zoneID)

	existing, err := p.findRecord(ctx, rc, req.RecordName)
	if err != nil {
		return fmt.Errorf("cloudflare: failed to list TXT records: %w", err)
	}
	if existing == nil {
		return nil
	}

	err = retryAPI(ctx, func() error {
		return p.api.DeleteDNSRecord(ctx, rc, existing.ID)
	})
	if err != nil {
		return fmt.Errorf("cloudflare: failed to delete TXT record: %w", err)
	}

	logger.DebugFields("removed challenge record", map[string]interface{}{
		"record": req.RecordName,
		"zone":   zoneID,
	})
	return nil
}

// zoneID resolves the Cloudflare zone containing the record by walking up
// the FQDN's parent labels until one matches a zone.
func (p *CloudflareProvider) zoneID(ctx context.Context, fqdn string) (string, error) {
	name := strings.TrimSuffix(fqdn, ".")
	labels := strings.Split(name, ".")

	var lastErr error
	for i := 1; i < len(labels)-1; i++ {
		candidate := strings.Join(labels[i:], ".")

		var zoneID string
		err := retryAPI(ctx, func() error {
			var err error
			zoneID, err = p.api.ZoneIDByName(candidate)
			return err
		})
		if err == nil {
			return zoneID, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("no zone found for %s: %w", fqdn, lastErr)
	}
	return "", fmt.Errorf("no zone found for %s", fqdn)
}

// findRecord returns the existing TXT record with the given name, or nil.
func (p *CloudflareProvider) findRecord(ctx context.Context, rc *cloudflare.ResourceContainer, name string) (*cloudflare.DNSRecord, error) {
	var records []cloudflare.DNSRecord
	err := retryAPI(ctx, func() error {
		var err error
		records, _, err = p.api.ListDNSRecords(ctx, rc, cloudflare.ListDNSRecordsParams{
			Type: "TXT",
			Name: name,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// retryAPI retries a Cloudflare API call with bounded exponential backoff.
func retryAPI(ctx context.Context, op func() error) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), apiAttempts-1)
	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return op()
	}, backoff.WithContext(policy, ctx))
}
