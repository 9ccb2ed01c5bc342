package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certman/internal/errors"
	"github.com/ksyq12/certman/internal/logger"
	"github.com/ksyq12/certman/internal/output"
)

var (
	jsonOutput bool
	verbose    bool
	configPath string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "certman",
	Short: "TLS certificate lifecycle management CLI",
	Long: `certman obtains and renews TLS certificates through ACME DNS-01
challenges and keeps the server's env configuration pointed at the
current certificate files.

It is designed for unattended use: renewals exit successfully when no
work is needed, and failures map to distinct exit codes so schedulers
can tell invalid arguments, missing credentials, validation timeouts,
and authority rejections apart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and maps failures to exit codes:
// 2 invalid arguments, 3 missing credentials, 4 validation timeout,
// 5 authority rejection, 1 everything else.
func Execute() {
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(errors.ExitCode(err))
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default ~/.config/certman/config.yaml)")
}
