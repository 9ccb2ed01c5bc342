package cli

import (
	"github.com/ksyq12/certman/internal/certclient"
	"github.com/ksyq12/certman/internal/challenge"
	"github.com/ksyq12/certman/internal/config"
	"github.com/ksyq12/certman/internal/credential"
	"github.com/ksyq12/certman/internal/envfile"
	"github.com/ksyq12/certman/internal/input"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	CredentialStore  CredentialStore
	ProviderFactory  ProviderFactory
	AuthorityFactory AuthorityFactory
	EnvSynchronizer  EnvSynchronizer
	StdinReader      StdinReader
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
}

// CredentialStore persists DNS provider credentials
type CredentialStore interface {
	Save(provider, token string, overwrite bool) (string, error)
	Load(provider string) (*credential.Credential, error)
	Path(provider string) string
}

// ProviderFactory creates challenge provider instances
type ProviderFactory interface {
	Create(name string, cred *credential.Credential, opts challenge.Options) (challenge.Provider, error)
}

// AuthorityFactory creates certificate authority clients
type AuthorityFactory interface {
	Create(directoryURL, accountDir, email string) (certclient.Authority, error)
}

// EnvSynchronizer applies certificate records to the server env file
type EnvSynchronizer interface {
	Apply(path string, record *config.CertificateRecord, extra []envfile.Entry) error
}

// StdinReader reads from stdin
type StdinReader interface {
	ReadString(delim byte) (string, error)
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	CredentialStore:  &realCredentialStore{},
	ProviderFactory:  &realProviderFactory{},
	AuthorityFactory: &realAuthorityFactory{},
	EnvSynchronizer:  &realEnvSynchronizer{},
	StdinReader:      input.NewStdinReader(),
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	if configPath != "" {
		return cfg.SaveTo(configPath)
	}
	return cfg.Save()
}

type realCredentialStore struct{}

func (r *realCredentialStore) store() (*credential.Store, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolveCredentialsDir()
	if err != nil {
		return nil, err
	}
	return credential.NewStore(dir), nil
}

func (r *realCredentialStore) Save(provider, token string, overwrite bool) (string, error) {
	s, err := r.store()
	if err != nil {
		return "", err
	}
	return s.Save(provider, token, overwrite)
}

func (r *realCredentialStore) Load(provider string) (*credential.Credential, error) {
	s, err := r.store()
	if err != nil {
		return nil, err
	}
	return s.Load(provider)
}

func (r *realCredentialStore) Path(provider string) string {
	s, err := r.store()
	if err != nil {
		return ""
	}
	return s.Path(provider)
}

type realProviderFactory struct{}

func (r *realProviderFactory) Create(name string, cred *credential.Credential, opts challenge.Options) (challenge.Provider, error) {
	return challenge.New(name, cred, opts)
}

type realAuthorityFactory struct{}

func (r *realAuthorityFactory) Create(directoryURL, accountDir, email string) (certclient.Authority, error) {
	key, err := certclient.LoadOrCreateAccountKey(accountDir, email)
	if err != nil {
		return nil, err
	}
	return certclient.NewACMEAuthority(directoryURL, key), nil
}

type realEnvSynchronizer struct{}

func (r *realEnvSynchronizer) Apply(path string, record *config.CertificateRecord, extra []envfile.Entry) error {
	return envfile.NewSynchronizer(path).Apply(record, extra)
}
