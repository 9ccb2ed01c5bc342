package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	DNSProvider              string                        `yaml:"dns_provider"`
	CADirectoryURL           string                        `yaml:"ca_directory_url"`
	Email                    string                        `yaml:"email,omitempty"`
	PropagationSeconds       int                           `yaml:"propagation_seconds"`
	RenewalThresholdDays     int                           `yaml:"renewal_threshold_days"`
	ValidationTimeoutSeconds int                           `yaml:"validation_timeout_seconds"`
	CertDir                  string                        `yaml:"cert_dir,omitempty"`
	CredentialsDir           string                        `yaml:"credentials_dir,omitempty"`
	EnvFile                  string                        `yaml:"env_file,omitempty"`
	Certificates             map[string]*CertificateRecord `yaml:"certificates"`
}

// Default settings for a fresh install.
const (
	DefaultProvider          = "cloudflare"
	DefaultCADirectoryURL    = "https://acme-v02.api.letsencrypt.org/directory"
	DefaultPropagationSecs   = 30
	DefaultRenewalDays       = 30
	DefaultValidationSecs    = 300
)

// configDir is the default config directory relative to the home dir.
const configDir = ".config/certman"
const configFile = "config.yaml"

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		DNSProvider:              DefaultProvider,
		CADirectoryURL:           DefaultCADirectoryURL,
		PropagationSeconds:       DefaultPropagationSecs,
		RenewalThresholdDays:     DefaultRenewalDays,
		ValidationTimeoutSeconds: DefaultValidationSecs,
		Certificates:             make(map[string]*CertificateRecord),
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from disk. A missing file yields defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from the given path. A missing file yields
// defaults, so the tool works before any configuration has been saved.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Certificates == nil {
		cfg.Certificates = make(map[string]*CertificateRecord)
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DNSProvider == "" {
		c.DNSProvider = DefaultProvider
	}
	if c.CADirectoryURL == "" {
		c.CADirectoryURL = DefaultCADirectoryURL
	}
	if c.PropagationSeconds <= 0 {
		c.PropagationSeconds = DefaultPropagationSecs
	}
	if c.RenewalThresholdDays <= 0 {
		c.RenewalThresholdDays = DefaultRenewalDays
	}
	if c.ValidationTimeoutSeconds <= 0 {
		c.ValidationTimeoutSeconds = DefaultValidationSecs
	}
}

// Save writes the config to disk.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to the given path, creating the parent
// directory if needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// ResolveCertDir returns the configured certificate directory, defaulting
// to <configdir>/certs.
func (c *Config) ResolveCertDir() (string, error) {
	if c.CertDir != "" {
		return c.CertDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "certs"), nil
}

// ResolveCredentialsDir returns the configured credentials directory,
// defaulting to <configdir>/credentials.
func (c *Config) ResolveCredentialsDir() (string, error) {
	if c.CredentialsDir != "" {
		return c.CredentialsDir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials"), nil
}

// SetRecord adds or replaces the certificate record for a domain.
func (c *Config) SetRecord(record *CertificateRecord) {
	c.Certificates[record.Domain] = record
}

// GetRecord returns the certificate record for a domain.
func (c *Config) GetRecord(domain string) (*CertificateRecord, bool) {
	record, ok := c.Certificates[domain]
	return record, ok
}

// RemoveRecord removes the certificate record for a domain.
func (c *Config) RemoveRecord(domain string) error {
	if _, ok := c.Certificates[domain]; !ok {
		return fmt.Errorf("no certificate record for %s", domain)
	}
	delete(c.Certificates, domain)
	return nil
}

// ListRecords returns all certificate records sorted by domain.
func (c *Config) ListRecords() []*CertificateRecord {
	records := make([]*CertificateRecord, 0, len(c.Certificates))
	for _, r := range c.Certificates {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Domain < records[j].Domain
	})
	return records
}
