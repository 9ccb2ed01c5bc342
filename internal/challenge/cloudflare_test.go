package challenge

import (
	"context"
	"errors"
	"testing"

	cloudflare "github.com/cloudflare/cloudflare-go"
)

// fakeCloudflare implements cloudflareAPI with in-memory state.
type fakeCloudflare struct {
	zones   map[string]string // zone name -> zone ID
	records map[string]cloudflare.DNSRecord

	zoneLookups []string
	createCalls int
	updateCalls int
	deleteCalls int

	failures int // number of leading calls that fail (for retry tests)
}

func newFakeCloudflare() *fakeCloudflare {
	return &fakeCloudflare{
		zones:   map[string]string{"example.com": "zone-1"},
		records: make(map[string]cloudflare.DNSRecord),
	}
}

func (f *fakeCloudflare) failNext() error {
	if f.failures > 0 {
		f.failures--
		return errors.New("temporary API error")
	}
	return nil
}

func (f *fakeCloudflare) ZoneIDByName(zoneName string) (string, error) {
	f.zoneLookups = append(f.zoneLookups, zoneName)
	if id, ok := f.zones[zoneName]; ok {
		return id, nil
	}
	return "", errors.New("zone could not be found")
}

func (f *fakeCloudflare) ListDNSRecords(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.ListDNSRecordsParams) ([]cloudflare.DNSRecord, *cloudflare.ResultInfo, error) {
	if err := f.failNext(); err != nil {
		return nil, nil, err
	}
	if rec, ok := f.records[params.Name]; ok {
		return []cloudflare.DNSRecord{rec}, &cloudflare.ResultInfo{}, nil
	}
	return nil, &cloudflare.ResultInfo{}, nil
}

func (f *fakeCloudflare) CreateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.CreateDNSRecordParams) (cloudflare.DNSRecord, error) {
	if err := f.failNext(); err != nil {
		return cloudflare.DNSRecord{}, err
	}
	f.createCalls++
	rec := cloudflare.DNSRecord{ID: "rec-1", Type: params.Type, Name: params.Name, Content: params.Content}
	f.records[params.Name] = rec
	return rec, nil
}

func (f *fakeCloudflare) UpdateDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, params cloudflare.UpdateDNSRecordParams) (cloudflare.DNSRecord, error) {
	if err := f.failNext(); err != nil {
		return cloudflare.DNSRecord{}, err
	}
	f.updateCalls++
	rec := cloudflare.DNSRecord{ID: params.ID, Type: params.Type, Name: params.Name, Content: params.Content}
	f.records[params.Name] = rec
	return rec, nil
}

func (f *fakeCloudflare) DeleteDNSRecord(ctx context.Context, rc *cloudflare.ResourceContainer, recordID string) error {
	if err := f.failNext(); err != nil {
		return err
	}
	f.deleteCalls++
	for name, rec := range f.records {
		if rec.ID == recordID {
			delete(f.records, name)
			return nil
		}
	}
	return errors.New("record not found")
}

func testRequest() Request {
	return Request{
		Domain:      "example.com",
		Token:       "token",
		RecordName:  "_acme-challenge.example.com",
		RecordValue: "validation-value",
	}
}

func TestPublishCreatesRecord(t *testing.T) {
	fake := newFakeCloudflare()
	provider := NewCloudflareProvider(fake, 0)

	if err := provider.Publish(context.Background(), testRequest()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if fake.createCalls != 1 {
		t.Errorf("expected 1 create, got %d", fake.createCalls)
	}
	rec, ok := fake.records["_acme-challenge.example.com"]
	if !ok {
		t.Fatal("TXT record not created")
	}
	if rec.Content != "validation-value" {
		t.Errorf("unexpected record content: %q", rec.Content)
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	fake := newFakeCloudflare()
	provider := NewCloudflareProvider(fake, 0)

	req := testRequest()
	if err := provider.Publish(context.Background(), req); err != nil {
		t.Fatalf("first Publish failed: %v", err)
	}

	req.RecordValue = "second-value"
	if err := provider.Publish(context.Background(), req); err != nil {
		t.Fatalf("second Publish failed: %v", err)
	}

	if fake.createCalls != 1 {
		t.Errorf("expected exactly 1 create, got %d", fake.createCalls)
	}
	if fake.updateCalls != 1 {
		t.Errorf("expected 1 update for the republish, got %d", fake.updateCalls)
	}
	if len(fake.records) != 1 {
		t.Errorf("upsert must not accumulate records, got %d", len(fake.records))
	}
	if fake.records["_acme-challenge.example.com"].Content != "second-value" {
		t.Error("second publish should refresh the record value")
	}
}

func TestPublishWalksZoneHierarchy(t *testing.T) {
	fake := newFakeCloudflare()
	provider := NewCloudflareProvider(fake, 0)

	req := testRequest()
	req.Domain = "api.v2.example.com"
	req.RecordName = "_acme-challenge.api.v2.example.com"

	if err := provider.Publish(context.Background(), req); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Lookups walk parent labels until the registered zone matches.
	last := fake.zoneLookups[len(fake.zoneLookups)-1]
	if last != "example.com" {
		t.Errorf("expected final lookup example.com, got %q (all: %v)", last, fake.zoneLookups)
	}
}

func TestPublishUnknownZone(t *testing.T) {
	fake := newFakeCloudflare()
	fake.zones = map[string]string{}
	provider := NewCloudflareProvider(fake, 0)

	if err := provider.Publish(context.Background(), testRequest()); err == nil {
		t.Error("Publish should fail when no zone matches")
	}
}

func TestCleanupRemovesRecord(t *testing.T) {
	fake := newFakeCloudflare()
	provider := NewCloudflareProvider(fake, 0)

	req := testRequest()
	if err := provider.Publish(context.Background(), req); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := provider.Cleanup(context.Background(), req); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	if fake.deleteCalls != 1 {
		t.Errorf("expected 1 delete, got %d", fake.deleteCalls)
	}
	if len(fake.records) != 0 {
		t.Error("record should be gone after cleanup")
	}
}

func TestCleanupAbsentRecordIsNoop(t *testing.T) {
	fake := newFakeCloudflare()
	provider := NewCloudflareProvider(fake, 0)

	if err := provider.Cleanup(context.Background(), testRequest()); err != nil {
		t.Errorf("Cleanup of absent record should succeed, got %v", err)
	}
	if fake.deleteCalls != 0 {
		t.Errorf("expected no delete calls, got %d", fake.deleteCalls)
	}
}

func TestAPICallsAreRetried(t *testing.T) {
	fake := newFakeCloudflare()
	fake.failures = 2 // first two API calls fail, then recover
	provider := NewCloudflareProvider(fake, 0)

	if err := provider.Publish(context.Background(), testRequest()); err != nil {
		t.Fatalf("Publish should recover from transient failures: %v", err)
	}
	if fake.createCalls != 1 {
		t.Errorf("expected the create to eventually succeed, got %d calls", fake.createCalls)
	}
}
