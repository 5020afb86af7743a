package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/synaptic-study/synaptic/internal/cli"
	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/review"
)

func newReviewCommand() *cobra.Command {
	var limit int

	command := &cobra.Command{
		Use:   "review",
		Short: "Start an interactive review session with the cards that are due",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			reviewStore, closeStore, err := newStore(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeStore()
			}()

			clk := clock.System()
			service := review.NewService(reviewStore, clk, sessionConfig(cfg), cfg.Notifications.AtRiskHour)
			reviewCLI := cli.NewReviewCLI(service, clk, learnerID, limit)
			return reviewCLI.Run(cmd.Context())
		},
	}
	command.Flags().IntVar(&limit, "limit", 0, "Maximum cards per session (0 means no limit)")

	return command
}
