package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/notify"
	"github.com/synaptic-study/synaptic/internal/review"
)

// RunRemindDaemon runs the reminder polling loop until the context is
// canceled or an interrupt arrives.
func RunRemindDaemon(
	ctx context.Context,
	service *review.Service,
	dispatcher notify.Dispatcher,
	prefs notify.Prefs,
	clk clock.Clock,
	learnerID string,
	queueLimit int,
	interval time.Duration,
) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	permission, err := dispatcher.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("dispatcher.RequestPermission > %w", err)
	}
	if permission == notify.PermissionDenied {
		return fmt.Errorf("notification permission denied")
	}

	poller := notify.StartPoller(
		notify.NewScheduler(),
		dispatcher,
		service.NotificationSource(learnerID, queueLimit),
		prefs,
		clk,
		interval,
	)
	defer poller.Stop()

	slog.Info("reminder daemon started", "learnerID", learnerID, "interval", interval)
	<-ctx.Done()
	slog.Info("reminder daemon stopping")
	return nil
}
