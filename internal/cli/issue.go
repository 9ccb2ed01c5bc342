package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certman/internal/output"
)

var (
	issueEmail    string
	issueAgreeTOS bool
	issueTimeout  int
	issueNoApply  bool
	issueSet      []string
)

var issueCmd = &cobra.Command{
	Use:   "issue <domain> [email]",
	Short: "Obtain a certificate for a domain",
	Long: `Obtain a TLS certificate through an ACME DNS-01 challenge.

The DNS provider credential must be stored first with
"certman credential set". On success the certificate chain and key are
written under the cert directory and the server env file is updated to
point at them.

The contact email may be given as the second argument, with --email, or
via the config file.

Examples:
  certman issue example.com admin@example.com --agree-tos
  certman issue example.com --agree-tos --timeout 600 --no-apply`,
	Args: rangeArgs(1, 2),
	RunE: runIssue,
}

func init() {
	issueCmd.Flags().StringVarP(&issueEmail, "email", "e", "", "Contact email for the CA account")
	issueCmd.Flags().BoolVar(&issueAgreeTOS, "agree-tos", false, "Agree to the certificate authority's terms of service")
	issueCmd.Flags().IntVar(&issueTimeout, "timeout", 0, "Validation timeout in seconds (overrides config)")
	issueCmd.Flags().BoolVar(&issueNoApply, "no-apply", false, "Skip updating the server env file")
	issueCmd.Flags().StringArrayVar(&issueSet, "set", nil, "Extra KEY=VALUE entries to upsert into the env file (repeatable)")

	rootCmd.AddCommand(issueCmd)
}

func runIssue(cmd *cobra.Command, args []string) error {
	domain := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flagEmail := issueEmail
	if flagEmail == "" && len(args) == 2 {
		flagEmail = args[1]
	}
	email, err := resolveEmail(flagEmail, cfg)
	if err != nil {
		return err
	}

	extra, err := parseSetFlags(issueSet)
	if err != nil {
		return err
	}

	client, err := buildClient(cfg, email, time.Duration(issueTimeout)*time.Second)
	if err != nil {
		return err
	}

	output.Info("Issuing certificate for %s...", domain)
	record, err := client.Issue(context.Background(), domain, email, issueAgreeTOS)
	if err != nil {
		return err
	}

	if err := recordCertificate(cfg, record, extra, issueNoApply); err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(newCertResult("issue", record))
	}

	output.Success("Certificate issued for %s", domain)
	output.Print("  Certificate: %s", record.ChainPath)
	output.Print("  Private Key: %s", record.KeyPath)
	output.Print("  Expires:     %s", record.ExpiresAt.Format("2006-01-02"))

	return nil
}
