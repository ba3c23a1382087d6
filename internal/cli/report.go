package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Someshwar1006/Digital-Wellbeing-for-Linux/internal/reporter"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:       "report [day|week|month]",
	Short:     "Show a usage report",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"day", "week", "month"},
	RunE: func(cmd *cobra.Command, args []string) error {
		periodType := "day"
		if len(args) > 0 {
			periodType = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, repo, err := openDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		rep := reporter.New(cfg, repo)
		report, err := rep.GenerateReport(periodType)
		if err != nil {
			return err
		}

		if reportJSON {
			out, err := rep.FormatReportJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}

		fmt.Print(rep.FormatReportText(report))

		if periodType == "day" || periodType == "today" {
			used, goal, percent, err := rep.DailyGoalProgress()
			if err == nil {
				fmt.Printf("\nDaily Goal: %s of %s (%.0f%%)\n",
					reporter.FormatDuration(used),
					reporter.FormatDuration(goal),
					percent)
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output the report as JSON")
}
