package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synaptic-study/synaptic/internal/cli"
	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/review"
)

func newStatsCommand() *cobra.Command {
	var year, month int
	var exportPDF bool

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show study statistics and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			statsStore, closeStore, err := newStore(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeStore()
			}()

			clk := clock.System()
			service := review.NewService(statsStore, clk, sessionConfig(cfg), cfg.Notifications.AtRiskHour)
			statsCLI := cli.NewStatsCLI(service, clk, learnerID, cfg.Reports.OutputDirectory)
			return statsCLI.Run(cmd.Context(), year, month, exportPDF)
		},
	}
	command.Flags().IntVar(&year, "year", 0, "Filter by year (0 means all years)")
	command.Flags().IntVar(&month, "month", 0, "Filter by month, requires --year")
	command.Flags().BoolVar(&exportPDF, "pdf", false, "Export the report as markdown and PDF")

	return command
}
