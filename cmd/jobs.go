package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"oreoffice-backend/utils"
)

var month string

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Monthly billing jobs",
}

var billingGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Create the month's billings for every active contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		result, err := newServices(cfg, db).Billings.Generate(monthOrCurrent())
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{
			"year_month": result.YearMonth,
			"created":    result.Created,
			"skipped":    result.Skipped,
		})
	},
}

var billingOverdueCmd = &cobra.Command{
	Use:   "refresh-overdue",
	Short: "Mark pending billings past their due date as overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		n, err := newServices(cfg, db).Billings.RefreshOverdue(time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d billing(s) marked overdue\n", n)
		return nil
	},
}

var settlementCmd = &cobra.Command{
	Use:   "settlement",
	Short: "Monthly settlement jobs",
}

var settlementGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compute and store the month's settlement snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		st, err := newServices(cfg, db).Settlements.Generate(monthOrPrevious())
		if err != nil {
			return err
		}
		return printJSON(cmd, st)
	},
}

func init() {
	billingGenerateCmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	settlementGenerateCmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: previous month)")
	billingCmd.AddCommand(billingGenerateCmd, billingOverdueCmd)
	settlementCmd.AddCommand(settlementGenerateCmd)
}

func monthOrCurrent() string {
	if month != "" {
		return month
	}
	return utils.YearMonthOf(time.Now())
}

func monthOrPrevious() string {
	if month != "" {
		return month
	}
	now := time.Now().UTC()
	return utils.YearMonthOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0))
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
