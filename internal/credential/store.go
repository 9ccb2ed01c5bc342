package credential

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"github.com/ksyq12/certman/internal/errors"
)

// Credential holds a DNS provider API secret.
type Credential struct {
	Provider  string
	Token     string
	CreatedAt time.Time
}

// Store reads and writes provider credential files in a directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the given directory. The directory
// is created lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the credential file path for a provider.
func (s *Store) Path(provider string) string {
	return filepath.Join(s.dir, provider+".credentials")
}

// lockPath is the advisory lock guarding writers.
func (s *Store) lockPath() string {
	return filepath.Join(s.dir, ".lock")
}

// Save writes a credential file for the provider and returns its path.
// Fails with ErrEmptySecret for a blank token and with ErrCredentialExists
// when a file is already present and overwrite is false; in that case the
// existing file is left untouched.
func (s *Store) Save(provider, token string, overwrite bool) (string, error) {
	if strings.TrimSpace(provider) == "" {
		return "", errors.Validation("provider cannot be empty")
	}
	if strings.TrimSpace(token) == "" {
		return "", errors.ErrEmptySecret
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, "failed to create credentials directory", err)
	}

	lock := flock.New(s.lockPath())
	if err := lock.Lock(); err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, "failed to lock credentials directory", err)
	}
	defer func() { _ = lock.Unlock() }()

	path := s.Path(provider)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", errors.CredentialExists(provider)
	}

	content := fmt.Sprintf("provider=%s\ntoken=%s\ncreated_at=%s\n",
		provider, token, time.Now().UTC().Format(time.RFC3339))

	// Temp file plus rename keeps a crash from leaving a half-written secret.
	tmp, err := os.CreateTemp(s.dir, provider+".credentials.*")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, "failed to create temp credential file", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.Wrap(errors.ErrCodeIO, "failed to restrict credential file mode", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errors.Wrap(errors.ErrCodeIO, "failed to write credential file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errors.Wrap(errors.ErrCodeIO, "failed to close credential file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", errors.Wrap(errors.ErrCodeIO, "failed to move credential file into place", err)
	}

	return path, nil
}

// Load reads the credential for a provider. Fails with
// ErrCredentialNotFound when no file exists.
func (s *Store) Load(provider string) (*Credential, error) {
	path := s.Path(provider)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.CredentialNotFound(provider)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, "failed to read credential file", err)
	}

	values, err := godotenv.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, "malformed credential file", err)
	}

	token := values["token"]
	if token == "" {
		return nil, errors.Wrap(errors.ErrCodeConfig,
			fmt.Sprintf("credential file for %q has no token", provider), nil)
	}

	cred := &Credential{
		Provider: provider,
		Token:    token,
	}
	if raw := values["created_at"]; raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			cred.CreatedAt = ts
		}
	}

	return cred, nil
}
