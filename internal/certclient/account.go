package certclient

import (
	"crypto"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/certcrypto"

	"github.com/ksyq12/certman/internal/errors"
)

// LoadOrCreateAccountKey returns the ACME account key for an email,
// generating and persisting a fresh EC P-256 key on first use. Renewals
// reuse the same account as the original issuance because the key file
// is keyed by email under dir.
func LoadOrCreateAccountKey(dir, email string) (crypto.PrivateKey, error) {
	if email == "" {
		return nil, errors.Validation("account email is required")
	}

	path := accountKeyPath(dir, email)

	data, err := os.ReadFile(path)
	if err == nil {
		key, parseErr := certcrypto.ParsePEMPrivateKey(data)
		if parseErr != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal,
				fmt.Sprintf("account key %s is corrupt", path), parseErr)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeIO, "failed to read account key", err)
	}

	key, err := certcrypto.GeneratePrivateKey(certcrypto.EC256)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to generate account key", err)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, "failed to create account directory", err)
	}
	if err := os.WriteFile(path, certcrypto.PEMEncode(key), 0600); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, "failed to write account key", err)
	}

	return key, nil
}

// accountKeyPath maps an email to a filesystem-safe key file name.
func accountKeyPath(dir, email string) string {
	safe := strings.NewReplacer("@", "_at_", "/", "_", string(os.PathSeparator), "_").Replace(email)
	return filepath.Join(dir, safe+".key")
}
