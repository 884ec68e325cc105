package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hardware-sim/internal/simulation"
)

// hwsim simulate
func newSimulateCmd() *cobra.Command {
	var (
		demand    float64
		inflation float64
		seed      int64
		customers int
		base      int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a scenario and replace the stored tables",
		Example: `  hwsim simulate --demand 1.5 --inflation 10
  hwsim simulate --seed 7 --customers 200 --base 20000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			p := simulation.ParamsFromConfig(a.cfg.Simulation)
			flags := cmd.Flags()
			if flags.Changed("demand") {
				p.DemandFactor = demand
			}
			if flags.Changed("inflation") {
				p.PriceIncrease = inflation / 100
			}
			if flags.Changed("seed") {
				p.Seed = seed
			}
			if flags.Changed("customers") {
				p.Customers = customers
			}
			if flags.Changed("base") {
				p.BaseTransactions = base
			}

			res, err := simulation.NewRunner(a.store, a.logger).Run(cmd.Context(), p)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "scenario %s: %d transactions, %d customers, %d products (%s)\n",
				res.Snapshot.Scenario.ScenarioID,
				res.TransactionCount(),
				len(res.Snapshot.Customers),
				len(res.Snapshot.Products),
				res.Duration.Round(time.Millisecond),
			)
			return nil
		},
	}

	cmd.Flags().Float64Var(&demand, "demand", 1.0, "demand factor in [0.5, 2.0]")
	cmd.Flags().Float64Var(&inflation, "inflation", 0, "price increase in percent, 0 to 50")
	cmd.Flags().Int64Var(&seed, "seed", simulation.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&customers, "customers", simulation.DefaultCustomers, "number of B2B customers")
	cmd.Flags().IntVar(&base, "base", simulation.DefaultBaseTransactions, "base transaction count before the demand factor")
	return cmd
}
