package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/adbroker-backend/internal/app"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print broker reports as JSON",
	Long: `Prints a report as JSON.

Available subcommands:
  revenue   - prorated revenue, classifier cost and profit
  unclaimed - diseases seen in queries that nobody owns yet
  company   - per-category metrics for one company`,
}

var reportRevenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Print the revenue report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(a *app.App) (any, error) {
			return a.Services.Reports.RevenueReport(cmdContext(cmd))
		})
	},
}

var reportUnclaimedCmd = &cobra.Command{
	Use:   "unclaimed",
	Short: "Print unclaimed diseases by mention count",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(a *app.App) (any, error) {
			return a.Services.Reports.ListUnclaimed(cmdContext(cmd))
		})
	},
}

var reportCompanyCmd = &cobra.Command{
	Use:   "company [name]",
	Short: "Print the summary for one company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) (any, error) {
			return a.Services.Reports.CompanySummary(cmdContext(cmd), args[0])
		})
	},
}

func init() {
	reportCmd.AddCommand(reportRevenueCmd)
	reportCmd.AddCommand(reportUnclaimedCmd)
	reportCmd.AddCommand(reportCompanyCmd)
}

func withApp(cmd *cobra.Command, fn func(a *app.App) (any, error)) error {
	a, err := app.New(cmdContext(cmd))
	if err != nil {
		return err
	}
	defer a.Close()
	out, err := fn(a)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
