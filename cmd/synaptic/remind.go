package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/synaptic-study/synaptic/internal/cli"
	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/notify"
	"github.com/synaptic-study/synaptic/internal/review"
)

func newRemindCommand() *cobra.Command {
	var queueLimit int

	command := &cobra.Command{
		Use:   "remind",
		Short: "Run the reminder daemon for due cards and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			remindStore, closeStore, err := newStore(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeStore()
			}()

			var dispatcher notify.Dispatcher
			if cfg.Notifications.WebhookURL != "" {
				webhook := notify.NewWebhookDispatcher(cfg.Notifications.WebhookURL, cfg.Notifications.WebhookToken, true, 0)
				defer func() {
					_ = webhook.Close()
				}()
				dispatcher = webhook
			} else {
				dispatcher = notify.NewConsoleDispatcher(os.Stdout)
			}

			clk := clock.System()
			service := review.NewService(remindStore, clk, sessionConfig(cfg), cfg.Notifications.AtRiskHour)
			interval := time.Duration(cfg.Session.PollIntervalSeconds) * time.Second
			return cli.RunRemindDaemon(cmd.Context(), service, dispatcher, notifyPrefs(cfg), clk, learnerID, queueLimit, interval)
		},
	}
	command.Flags().IntVar(&queueLimit, "queue-limit", 0, "Maximum due cards per notification (0 means no limit)")

	return command
}
