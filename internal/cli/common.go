package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certman/internal/certclient"
	"github.com/ksyq12/certman/internal/challenge"
	"github.com/ksyq12/certman/internal/config"
	"github.com/ksyq12/certman/internal/envfile"
	"github.com/ksyq12/certman/internal/errors"
	"github.com/ksyq12/certman/internal/output"
)

// exactArgs is cobra.ExactArgs with the failure mapped to a validation
// error so the process exits with the invalid-arguments code.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.Validation(fmt.Sprintf("%s expects %d argument(s), got %d", cmd.Name(), n, len(args)))
		}
		return nil
	}
}

// rangeArgs accepts between min and max positional arguments, mapping
// the failure to a validation error like exactArgs.
func rangeArgs(min, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			return errors.Validation(fmt.Sprintf("%s expects %d to %d argument(s), got %d", cmd.Name(), min, max, len(args)))
		}
		return nil
	}
}

// loadConfig loads the configuration through the injected loader
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildClient assembles the certificate client for a config: stored DNS
// credential, challenge provider, ACME authority, and lifecycle options.
// timeoutOverride, when positive, replaces the configured validation
// timeout.
func buildClient(cfg *config.Config, email string, timeoutOverride time.Duration) (*certclient.Client, error) {
	cred, err := deps.CredentialStore.Load(cfg.DNSProvider)
	if err != nil {
		return nil, err
	}

	provider, err := deps.ProviderFactory.Create(cfg.DNSProvider, cred, challenge.Options{
		PropagationDelay: time.Duration(cfg.PropagationSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	accountDir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	authority, err := deps.AuthorityFactory.Create(cfg.CADirectoryURL, accountDir, email)
	if err != nil {
		return nil, err
	}

	certDir, err := cfg.ResolveCertDir()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.ValidationTimeoutSeconds) * time.Second
	if timeoutOverride > 0 {
		timeout = timeoutOverride
	}

	return certclient.New(authority, provider, certclient.Options{
		CertDir:           certDir,
		RenewalThreshold:  time.Duration(cfg.RenewalThresholdDays) * 24 * time.Hour,
		ValidationTimeout: timeout,
	}), nil
}

// resolveEmail picks the contact email from the flag or the config.
func resolveEmail(flagEmail string, cfg *config.Config) (string, error) {
	if flagEmail != "" {
		return flagEmail, nil
	}
	if cfg.Email != "" {
		return cfg.Email, nil
	}
	return "", errors.Validation("an account email is required (use --email or set email in the config)")
}

// recordCertificate stores the record in the config and syncs the env
// file unless skipped. Env sync failures are warnings, the certificate
// itself was issued.
func recordCertificate(cfg *config.Config, record *config.CertificateRecord, extra []envfile.Entry, skipApply bool) error {
	cfg.SetRecord(record)
	if err := deps.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if skipApply || cfg.EnvFile == "" {
		return nil
	}
	if err := deps.EnvSynchronizer.Apply(cfg.EnvFile, record, extra); err != nil {
		output.Warn("certificate issued but env file update failed: %v", err)
	}
	return nil
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success   bool   `json:"success"`
	Domain    string `json:"domain,omitempty"`
	Action    string `json:"action,omitempty"`
	Message   string `json:"message,omitempty"`
	ChainPath string `json:"chain_path,omitempty"`
	KeyPath   string `json:"key_path,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// newCertResult builds the result payload for issue and renew.
func newCertResult(action string, record *config.CertificateRecord) CommandResult {
	return CommandResult{
		Success:   true,
		Domain:    record.Domain,
		Action:    action,
		ChainPath: record.ChainPath,
		KeyPath:   record.KeyPath,
		ExpiresAt: record.ExpiresAt.Format(time.RFC3339),
	}
}
