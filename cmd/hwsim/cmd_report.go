package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hardware-sim/internal/analytics"
	"hardware-sim/internal/models"
	"hardware-sim/internal/store"
)

// hwsim report
func newReportCmd() *cobra.Command {
	var (
		threshold int
		weeks     int
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print KPIs, churn risk and the sales forecast for the stored scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Analytics.ChurnThresholdDays
			}
			if !cmd.Flags().Changed("weeks") {
				weeks = a.cfg.Analytics.ForecastWeeks
			}

			snap, err := store.LoadSnapshot(cmd.Context(), a.store)
			if err != nil {
				return fmt.Errorf("load scenario (run `hwsim simulate` first?): %w", err)
			}
			return writeReport(cmd.OutOrStdout(), snap, threshold, weeks, a.cfg.Analytics.ForecastWindowWeeks)
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", analytics.DefaultChurnThresholdDays, "days without an invoice before a customer is at risk")
	cmd.Flags().IntVar(&weeks, "weeks", analytics.DefaultForecastWeeks, "forecast horizon in weeks")
	return cmd
}

func writeReport(out io.Writer, snap *models.Snapshot, threshold, weeks, window int) error {
	kpi, err := analytics.KPIs(snap.Transactions, snap.Products)
	if err != nil {
		return err
	}
	atRisk, err := analytics.Churn(snap.Transactions, snap.Customers, threshold)
	if err != nil {
		return err
	}
	forecast, err := analytics.ForecastWindow(snap.Transactions, weeks, window)
	if err != nil {
		return err
	}

	sc := snap.Scenario
	fmt.Fprintf(out, "Scenario %s (seed %d, demand x%.2f, prices +%.0f%%)\n\n",
		sc.ScenarioID, sc.Seed, sc.DemandFactor, sc.PriceIncrease*100)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total sales\t%.2f\n", kpi.TotalSales)
	fmt.Fprintf(tw, "Total cost\t%.2f\n", kpi.TotalCost)
	fmt.Fprintf(tw, "Total margin\t%.2f\n", kpi.TotalMargin)
	fmt.Fprintf(tw, "Margin %%\t%.1f\n", kpi.MarginPercent)
	fmt.Fprintf(tw, "Average ticket\t%.2f\n", kpi.AvgTicket)
	fmt.Fprintf(tw, "Transactions\t%d\n", kpi.Transactions)
	fmt.Fprintf(tw, "At-risk customers (> %d days)\t%d\n", threshold, len(atRisk))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nForecast")
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, p := range forecast {
		fmt.Fprintf(tw, "%s\t%.2f\n", p.Date.Format("2006-01-02"), p.PredictedSales)
	}
	return tw.Flush()
}
