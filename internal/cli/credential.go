package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certman/internal/errors"
	"github.com/ksyq12/certman/internal/output"
)

var (
	credentialToken     string
	credentialOverwrite bool
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage DNS provider credentials",
	Long:  `Store and inspect the API credentials used for DNS-01 challenges.`,
}

var credentialSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store a DNS provider API token",
	Long: `Store the API token for a DNS provider. The token is written to a
file readable only by the current user. An existing credential is never
replaced unless --overwrite is given.

The token is read from --token, or from stdin when the flag is absent,
so it can be piped in without appearing in shell history:

  echo "$CF_TOKEN" | certman credential set cloudflare
  certman credential set cloudflare --token abc123 --overwrite`,
	Args: exactArgs(1),
	RunE: runCredentialSet,
}

var credentialShowCmd = &cobra.Command{
	Use:   "show <provider>",
	Short: "Show stored credential metadata",
	Long: `Show where a provider credential is stored and when it was created.
The secret itself is never printed.`,
	Args: exactArgs(1),
	RunE: runCredentialShow,
}

func init() {
	credentialSetCmd.Flags().StringVar(&credentialToken, "token", "", "API token (read from stdin when omitted)")
	credentialSetCmd.Flags().BoolVar(&credentialOverwrite, "overwrite", false, "Replace an existing credential")

	credentialCmd.AddCommand(credentialSetCmd)
	credentialCmd.AddCommand(credentialShowCmd)

	rootCmd.AddCommand(credentialCmd)
}

func runCredentialSet(cmd *cobra.Command, args []string) error {
	provider := args[0]

	token := credentialToken
	if token == "" {
		line, err := deps.StdinReader.ReadString('\n')
		if err != nil && line == "" {
			return errors.Validation("no token provided (use --token or pipe it on stdin)")
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		return errors.ErrEmptySecret
	}

	path, err := deps.CredentialStore.Save(provider, token, credentialOverwrite)
	if err != nil {
		return err
	}

	return outputResult(
		map[string]interface{}{
			"success":  true,
			"provider": provider,
			"path":     path,
		},
		"Credential for %s stored at %s", provider, path,
	)
}

func runCredentialShow(cmd *cobra.Command, args []string) error {
	provider := args[0]

	cred, err := deps.CredentialStore.Load(provider)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{
			"provider":   cred.Provider,
			"path":       deps.CredentialStore.Path(provider),
			"created_at": cred.CreatedAt,
		})
	}

	output.Print("Provider:   %s", cred.Provider)
	output.Print("Path:       %s", deps.CredentialStore.Path(provider))
	if !cred.CreatedAt.IsZero() {
		output.Print("Created at: %s", cred.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}
