package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()

	if cfg.DNSProvider != "cloudflare" {
		t.Errorf("expected default provider cloudflare, got %s", cfg.DNSProvider)
	}
	if cfg.CADirectoryURL != DefaultCADirectoryURL {
		t.Errorf("unexpected CA directory URL: %s", cfg.CADirectoryURL)
	}
	if cfg.RenewalThresholdDays != 30 {
		t.Errorf("expected 30 day renewal threshold, got %d", cfg.RenewalThresholdDays)
	}
	if cfg.Certificates == nil {
		t.Error("certificates map should be initialized")
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom on missing file should return defaults, got error: %v", err)
	}
	if cfg.DNSProvider != DefaultProvider {
		t.Errorf("expected default provider, got %s", cfg.DNSProvider)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := New()
	cfg.Email = "admin@example.com"
	cfg.EnvFile = "/srv/app/.env"
	cfg.PropagationSeconds = 45
	cfg.SetRecord(&CertificateRecord{
		Domain:    "example.com",
		ChainPath: "/certs/example.com/fullchain.pem",
		KeyPath:   "/certs/example.com/privkey.pem",
		IssuedAt:  time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2026, 11, 21, 10, 0, 0, 0, time.UTC),
	})

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Email != "admin@example.com" {
		t.Errorf("expected email to survive round trip, got %s", loaded.Email)
	}
	if loaded.PropagationSeconds != 45 {
		t.Errorf("expected propagation 45, got %d", loaded.PropagationSeconds)
	}

	record, ok := loaded.GetRecord("example.com")
	if !ok {
		t.Fatal("record for example.com not found after round trip")
	}
	if record.ChainPath != "/certs/example.com/fullchain.pem" {
		t.Errorf("unexpected chain path: %s", record.ChainPath)
	}
	if !record.ExpiresAt.Equal(time.Date(2026, 11, 21, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected expiry: %v", record.ExpiresAt)
	}
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dns_provider: [broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("email: x@example.com\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.DNSProvider != DefaultProvider {
		t.Errorf("missing provider should default, got %q", cfg.DNSProvider)
	}
	if cfg.ValidationTimeoutSeconds != DefaultValidationSecs {
		t.Errorf("missing timeout should default, got %d", cfg.ValidationTimeoutSeconds)
	}
	if cfg.Certificates == nil {
		t.Error("certificates map should be initialized on load")
	}
}

func TestRecordHelpers(t *testing.T) {
	now := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	record := &CertificateRecord{
		Domain:    "example.com",
		ExpiresAt: now.AddDate(0, 0, 60),
	}

	if got := record.RemainingValidity(now); got != 60*24*time.Hour {
		t.Errorf("expected 60 days remaining, got %v", got)
	}

	threshold := 30 * 24 * time.Hour
	if record.DueForRenewal(now, threshold) {
		t.Error("60 days out should not be due with a 30 day threshold")
	}

	record.ExpiresAt = now.AddDate(0, 0, 20)
	if !record.DueForRenewal(now, threshold) {
		t.Error("20 days out should be due with a 30 day threshold")
	}

	record.ExpiresAt = now.AddDate(0, 0, -1)
	if !record.DueForRenewal(now, threshold) {
		t.Error("expired certificate should always be due")
	}
}

func TestRecordCRUD(t *testing.T) {
	cfg := New()

	cfg.SetRecord(&CertificateRecord{Domain: "a.example.com"})
	cfg.SetRecord(&CertificateRecord{Domain: "b.example.com"})

	if len(cfg.ListRecords()) != 2 {
		t.Errorf("expected 2 records, got %d", len(cfg.ListRecords()))
	}

	if _, ok := cfg.GetRecord("a.example.com"); !ok {
		t.Error("record a.example.com should exist")
	}
	if _, ok := cfg.GetRecord("missing.example.com"); ok {
		t.Error("missing record should not be found")
	}

	// Replace keeps a single entry per domain.
	cfg.SetRecord(&CertificateRecord{Domain: "a.example.com", ChainPath: "/new"})
	if len(cfg.ListRecords()) != 2 {
		t.Errorf("replace should not grow the map, got %d records", len(cfg.ListRecords()))
	}
	record, _ := cfg.GetRecord("a.example.com")
	if record.ChainPath != "/new" {
		t.Errorf("replace should update the record, got %s", record.ChainPath)
	}

	if err := cfg.RemoveRecord("b.example.com"); err != nil {
		t.Errorf("RemoveRecord failed: %v", err)
	}
	if err := cfg.RemoveRecord("b.example.com"); err == nil {
		t.Error("removing a missing record should fail")
	}
}
