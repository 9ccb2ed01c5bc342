package cli

import (
	"time"

	"github.com/ksyq12/certman/internal/certclient"
	"github.com/ksyq12/certman/internal/challenge"
	"github.com/ksyq12/certman/internal/config"
	"github.com/ksyq12/certman/internal/credential"
	"github.com/ksyq12/certman/internal/envfile"
	"github.com/ksyq12/certman/internal/input"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func (m *MockConfigLoader) Load() (*config.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockCredentialStore is a test double for CredentialStore
type MockCredentialStore struct {
	Cred      *credential.Credential
	LoadErr   error
	SaveErr   error
	SaveCalls []string
	SavedPath string
}

func (m *MockCredentialStore) Save(provider, token string, overwrite bool) (string, error) {
	m.SaveCalls = append(m.SaveCalls, provider+"="+token)
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	m.Cred = &credential.Credential{Provider: provider, Token: token, CreatedAt: time.Now()}
	if m.SavedPath == "" {
		m.SavedPath = "/tmp/credentials/" + provider + ".credentials"
	}
	return m.SavedPath, nil
}

func (m *MockCredentialStore) Load(provider string) (*credential.Credential, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cred == nil {
		return &credential.Credential{Provider: provider, Token: "mock-token"}, nil
	}
	return m.Cred, nil
}

func (m *MockCredentialStore) Path(provider string) string {
	if m.SavedPath != "" {
		return m.SavedPath
	}
	return "/tmp/credentials/" + provider + ".credentials"
}

// MockProviderFactory is a test double for ProviderFactory
type MockProviderFactory struct {
	Provider challenge.Provider
	Err      error
}

func (m *MockProviderFactory) Create(name string, cred *credential.Credential, opts challenge.Options) (challenge.Provider, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Provider != nil {
		return m.Provider, nil
	}
	return challenge.NewMockProvider(), nil
}

// MockAuthorityFactory is a test double for AuthorityFactory
type MockAuthorityFactory struct {
	Authority certclient.Authority
	Err       error
}

func (m *MockAuthorityFactory) Create(directoryURL, accountDir, email string) (certclient.Authority, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Authority != nil {
		return m.Authority, nil
	}
	return &certclient.StubAuthority{}, nil
}

// MockEnvSynchronizer is a test double for EnvSynchronizer
type MockEnvSynchronizer struct {
	Err   error
	Calls []string
	Extra []envfile.Entry // entries passed to the most recent Apply
}

func (m *MockEnvSynchronizer) Apply(path string, record *config.CertificateRecord, extra []envfile.Entry) error {
	m.Calls = append(m.Calls, path+":"+record.Domain)
	m.Extra = extra
	return m.Err
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:     &MockConfigLoader{Cfg: config.New()},
			CredentialStore:  &MockCredentialStore{},
			ProviderFactory:  &MockProviderFactory{},
			AuthorityFactory: &MockAuthorityFactory{},
			EnvSynchronizer:  &MockEnvSynchronizer{},
			StdinReader:      input.NewStringReader("mock-token\n"),
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithCredentialStore sets a custom credential store
func (b *MockDependenciesBuilder) WithCredentialStore(store CredentialStore) *MockDependenciesBuilder {
	b.deps.CredentialStore = store
	return b
}

// WithProvider sets the challenge provider for the mock
func (b *MockDependenciesBuilder) WithProvider(p challenge.Provider) *MockDependenciesBuilder {
	b.deps.ProviderFactory = &MockProviderFactory{Provider: p}
	return b
}

// WithAuthority sets the certificate authority for the mock
func (b *MockDependenciesBuilder) WithAuthority(a certclient.Authority) *MockDependenciesBuilder {
	b.deps.AuthorityFactory = &MockAuthorityFactory{Authority: a}
	return b
}

// WithEnvSynchronizer sets a custom env synchronizer
func (b *MockDependenciesBuilder) WithEnvSynchronizer(s EnvSynchronizer) *MockDependenciesBuilder {
	b.deps.EnvSynchronizer = s
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(text string) *MockDependenciesBuilder {
	b.deps.StdinReader = input.NewStringReader(text)
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// TestHelper provides utilities for CLI tests
type TestHelper struct {
	T interface {
		Helper()
		Cleanup(func())
	}
	OldDeps       *Dependencies
	MockConfig    *MockConfigLoader
	StubAuthority *certclient.StubAuthority
	MockProvider  *challenge.MockProvider
	MockEnvSync   *MockEnvSynchronizer
}

// NewTestHelper creates a new test helper with mock dependencies
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}, certDir string) *TestHelper {
	t.Helper()

	cfg := config.New()
	cfg.CertDir = certDir
	cfg.Email = "admin@example.com"

	mockConfig := &MockConfigLoader{Cfg: cfg}
	stub := &certclient.StubAuthority{}
	provider := challenge.NewMockProvider()
	envSync := &MockEnvSynchronizer{}

	helper := &TestHelper{
		T:             t,
		OldDeps:       deps,
		MockConfig:    mockConfig,
		StubAuthority: stub,
		MockProvider:  provider,
		MockEnvSync:   envSync,
	}

	deps = NewMockDeps().
		WithConfigLoader(mockConfig).
		WithAuthority(stub).
		WithProvider(provider).
		WithEnvSynchronizer(envSync).
		Build()

	t.Cleanup(func() {
		deps = helper.OldDeps
	})

	return helper
}

// GetConfig returns the current mock config
func (h *TestHelper) GetConfig() *config.Config {
	return h.MockConfig.Cfg
}

// AddRecord adds a certificate record to the mock config
func (h *TestHelper) AddRecord(record *config.CertificateRecord) {
	h.MockConfig.Cfg.SetRecord(record)
}
