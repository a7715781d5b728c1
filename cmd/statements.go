package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statementsCmd = &cobra.Command{
	Use:   "statements [YYYY-MM]",
	Short: "Show the statement period or a month's statement download link",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatements,
}

func init() {
	rootCmd.AddCommand(statementsCmd)
}

func runStatements(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if len(args) == 0 {
		period, err := client.Statements.Period(ctx)
		if err != nil {
			return err
		}
		if ok, err := printJSON(period); ok {
			return err
		}
		fmt.Printf("Statements available from %s to %s\n", period.Start, period.End)
		return nil
	}

	month, year, err := parseMonth(args[0])
	if err != nil {
		return err
	}

	report, err := client.Statements.Report(ctx, int(month), year)
	if err != nil {
		return err
	}
	if ok, err := printJSON(report); ok {
		return err
	}

	fmt.Printf("Statement %04d-%02d: %s\n", report.Year, report.Month, report.DownloadURL)
	if report.URLExpiration != nil {
		fmt.Printf("  Link expires %s\n", report.URLExpiration.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
