package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hardware-sim/internal/export"
	"hardware-sim/internal/store"
)

// hwsim export
func newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored tables as CSV files or an XLSX workbook",
		Example: `  hwsim export --format csv --out ./bi
  hwsim export --format xlsx --out scenario.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "xlsx" {
				return fmt.Errorf("unknown format %q (want csv or xlsx)", format)
			}

			a, err := boot(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := store.LoadSnapshot(cmd.Context(), a.store)
			if err != nil {
				return fmt.Errorf("load scenario: %w", err)
			}

			switch format {
			case "csv":
				paths, err := export.WriteCSV(out, snap)
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), p)
				}
			case "xlsx":
				if err := export.WriteXLSXFile(out, snap); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "export", "output directory (csv) or file (xlsx)")
	return cmd
}
