package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hwsim",
		Short:         "Hardware store scenario simulator",
		Long:          "Generate synthetic hardware-store sales scenarios and report KPIs, churn risk and demand forecasts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newExportCmd())
	return root
}
