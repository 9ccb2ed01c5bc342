package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ksyq12/certman/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show managed certificates and their expiry",
	Long: `List every certificate certman manages, with expiry dates and how
many days of validity remain.

Examples:
  certman status
  certman status --json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type certStatus struct {
	Domain    string `json:"domain"`
	ChainPath string `json:"chain_path"`
	ExpiresAt string `json:"expires_at"`
	DaysLeft  int    `json:"days_left"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	records := cfg.ListRecords()
	if len(records) == 0 {
		output.Info("No certificates managed yet. Issue one with: certman issue <domain>")
		return nil
	}

	now := time.Now()
	statuses := make([]certStatus, 0, len(records))
	for _, record := range records {
		statuses = append(statuses, certStatus{
			Domain:    record.Domain,
			ChainPath: record.ChainPath,
			ExpiresAt: record.ExpiresAt.Format("2006-01-02"),
			DaysLeft:  int(record.RemainingValidity(now).Hours() / 24),
		})
	}

	if jsonOutput {
		return output.JSON(statuses)
	}

	headers := []string{"DOMAIN", "EXPIRES", "DAYS LEFT", "CERTIFICATE"}
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		daysLeft := fmt.Sprintf("%d", s.DaysLeft)
		if s.DaysLeft < 0 {
			daysLeft = "expired"
		}
		rows = append(rows, []string{s.Domain, s.ExpiresAt, daysLeft, s.ChainPath})
	}
	output.Table(headers, rows)

	return nil
}
