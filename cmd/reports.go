package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newReportsCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		runID  string
	)

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Show archived session reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := app.archive.List(cmd.Context())
			if err != nil {
				return err
			}

			if runID != "" {
				for _, report := range reports {
					if report.RunID == runID {
						return printReport(app, cmd.OutOrStdout(), report, asJSON)
					}
				}
				return fmt.Errorf("no archived report with run id %q", runID)
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(reports)
			}

			rendered, err := app.renderReports(reports)
			if err != nil {
				return fmt.Errorf("render reports: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print reports as JSON")
	cmd.Flags().StringVar(&runID, "run", "", "Show one report in full")

	return cmd
}
