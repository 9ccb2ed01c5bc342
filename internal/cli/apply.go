package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certman/internal/envfile"
	"github.com/ksyq12/certman/internal/errors"
)

var applySet []string

var applyCmd = &cobra.Command{
	Use:   "apply <domain>",
	Short: "Sync a recorded certificate into the server env file",
	Long: `Write the certificate paths recorded for a domain into the server's
env file without contacting the certificate authority. Useful after
editing the env file by hand or pointing certman at a new server.

Additional keys can be upserted in the same atomic rewrite:

  certman apply example.com --set SERVER_PORT=9443`,
	Args: exactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringArrayVar(&applySet, "set", nil, "Extra KEY=VALUE entries to upsert (repeatable)")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	domain := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.EnvFile == "" {
		return errors.Validation("no env_file configured (set env_file in the config)")
	}

	record, ok := cfg.GetRecord(domain)
	if !ok {
		return errors.RecordNotFound(domain)
	}

	extra, err := parseSetFlags(applySet)
	if err != nil {
		return err
	}

	if err := deps.EnvSynchronizer.Apply(cfg.EnvFile, record, extra); err != nil {
		return err
	}

	return outputResult(
		CommandResult{Success: true, Domain: domain, Action: "apply"},
		"Env file %s updated for %s", cfg.EnvFile, domain,
	)
}

// parseSetFlags turns repeated KEY=VALUE flags into env entries.
func parseSetFlags(pairs []string) ([]envfile.Entry, error) {
	entries := make([]envfile.Entry, 0, len(pairs))
	for _, pair := range pairs {
		eq := strings.Index(pair, "=")
		if eq <= 0 {
			return nil, errors.Validation("invalid --set value, expected KEY=VALUE: " + pair)
		}
		entries = append(entries, envfile.Entry{
			Key:   strings.TrimSpace(pair[:eq]),
			Value: pair[eq+1:],
		})
	}
	return entries, nil
}
