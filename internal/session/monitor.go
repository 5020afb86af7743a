package session

import (
	"sync"
	"time"

	"github.com/synaptic-study/synaptic/internal/clock"
)

// DefaultPollInterval is how often the monitor polls the timer.
const DefaultPollInterval = time.Minute

// Monitor polls a Timer on a recurring tick and hands fired events to a
// callback. Stop releases the ticker and is safe to call from any exit
// path, any number of times.
type Monitor struct {
	timer    *Timer
	clk      clock.Clock
	interval time.Duration
	onEvent  func(Event)

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartMonitor begins polling the timer every interval. The callback runs
// on the monitor goroutine; it must not block for long.
func StartMonitor(timer *Timer, clk clock.Clock, interval time.Duration, onEvent func(Event)) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	m := &Monitor{
		timer:    timer,
		clk:      clk,
		interval: interval,
		onEvent:  onEvent,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Monitor) run() {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			for _, event := range m.timer.Poll(m.clk.Now()) {
				m.onEvent(event)
			}
			if m.timer.State() == StateCompleted {
				return
			}
		}
	}
}

// Stop cancels the recurring tick and waits for the poll goroutine to
// exit, guaranteeing no events fire after it returns.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}
