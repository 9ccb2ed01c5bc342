package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certman/internal/errors"
	"github.com/ksyq12/certman/internal/output"
)

var (
	renewEmail   string
	renewForce   bool
	renewTimeout int
	renewNoApply bool
)

var renewCmd = &cobra.Command{
	Use:   "renew <domain>",
	Short: "Renew a certificate when it is close to expiry",
	Long: `Renew the certificate for a domain, reusing the CA account from the
original issuance.

When the current certificate still has more remaining validity than the
renewal threshold, the command reports that no renewal is needed and
exits successfully, so it is safe to run from cron or a systemd timer.
Use --force to renew regardless.

Examples:
  certman renew example.com
  certman renew example.com --force`,
	Args: exactArgs(1),
	RunE: runRenew,
}

func init() {
	renewCmd.Flags().StringVarP(&renewEmail, "email", "e", "", "Contact email for the CA account")
	renewCmd.Flags().BoolVar(&renewForce, "force", false, "Renew even if the certificate is not close to expiry")
	renewCmd.Flags().IntVar(&renewTimeout, "timeout", 0, "Validation timeout in seconds (overrides config)")
	renewCmd.Flags().BoolVar(&renewNoApply, "no-apply", false, "Skip updating the server env file")

	rootCmd.AddCommand(renewCmd)
}

func runRenew(cmd *cobra.Command, args []string) error {
	domain := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	email, err := resolveEmail(renewEmail, cfg)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg, email, time.Duration(renewTimeout)*time.Second)
	if err != nil {
		return err
	}

	current, _ := cfg.GetRecord(domain)

	output.Info("Renewing certificate for %s...", domain)
	record, err := client.Renew(context.Background(), domain, email, current, renewForce)
	if errors.Is(err, errors.ErrNotDueForRenewal) {
		// Scheduled runs hit this most of the time; it is not a failure.
		if jsonOutput {
			return output.JSON(CommandResult{
				Success: true,
				Domain:  domain,
				Action:  "renew",
				Message: "not due for renewal",
			})
		}
		output.Info("Certificate for %s is not due for renewal", domain)
		return nil
	}
	if err != nil {
		return err
	}

	if err := recordCertificate(cfg, record, nil, renewNoApply); err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(newCertResult("renew", record))
	}

	output.Success("Certificate renewed for %s", domain)
	output.Print("  Expires: %s", record.ExpiresAt.Format("2006-01-02"))

	return nil
}
