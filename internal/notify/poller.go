package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/streak"
)

// DefaultPollInterval is how often the poller recomputes pending
// notifications.
const DefaultPollInterval = time.Minute

// Source supplies the poller with current streak and due-queue state.
// The poller recomputes from it on every tick, so there is no cached
// schedule to go stale.
type Source func(ctx context.Context, now time.Time) (streak.Record, QueueSnapshot, error)

// Poller is the cooperative polling loop behind the reminder daemon: on
// every tick it recomputes pending notifications and dispatches them.
// Stop releases the ticker on any exit path.
type Poller struct {
	scheduler  *Scheduler
	dispatcher Dispatcher
	source     Source
	prefs      Prefs
	clk        clock.Clock
	interval   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartPoller begins the polling loop.
func StartPoller(
	scheduler *Scheduler,
	dispatcher Dispatcher,
	source Source,
	prefs Prefs,
	clk clock.Clock,
	interval time.Duration,
) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &Poller{
		scheduler:  scheduler,
		dispatcher: dispatcher,
		source:     source,
		prefs:      prefs,
		clk:        clk,
		interval:   interval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Poller) run() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()

	now := p.clk.Now()
	record, queue, err := p.source(ctx, now)
	if err != nil {
		// Skip this tick and keep prior state; the next tick retries.
		slog.Warn("failed to load notification inputs", "error", err)
		return
	}

	for _, notification := range p.scheduler.ComputePending(record, queue, now, p.prefs) {
		p.dispatch(ctx, notification)
		// Delivery is best-effort: an undeliverable notification is
		// dropped, not retried on the next tick.
		p.scheduler.MarkFired(notification, now)
	}
}

func (p *Poller) dispatch(ctx context.Context, notification Notification) {
	if !p.dispatcher.IsSupported() || !p.dispatcher.IsEnabled() {
		return
	}
	if err := p.dispatcher.Show(ctx, notification); err != nil {
		slog.Warn("failed to show notification",
			"kind", string(notification.Kind),
			"error", err,
		)
	}
}

// Stop cancels the recurring tick and waits for the loop to exit.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
}
