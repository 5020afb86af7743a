package session

import (
	"math"
	"sync"
	"time"
)

// Config holds the timer's tunables. Zero values fall back to defaults.
type Config struct {
	// BreakThreshold is the stretch of continuous active time after which
	// a break reminder is emitted. Reminders repeat at every multiple.
	BreakThreshold time.Duration
	// InactivityTimeout auto-pauses the timer when no interaction has been
	// recorded for this long. Pausing and resuming resets the continuous
	// active stretch, so a reminder never fires across a pause.
	InactivityTimeout time.Duration
	// MaxDuration is the session ceiling; reaching it finalizes the
	// session as abandoned so a tab left open for days cannot produce a
	// runaway duration.
	MaxDuration time.Duration
}

const (
	DefaultBreakThreshold    = 25 * time.Minute
	DefaultInactivityTimeout = 5 * time.Minute
	DefaultMaxDuration       = 4 * time.Hour
)

func (c Config) withDefaults() Config {
	if c.BreakThreshold <= 0 {
		c.BreakThreshold = DefaultBreakThreshold
	}
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = DefaultInactivityTimeout
	}
	if c.MaxDuration <= 0 {
		c.MaxDuration = DefaultMaxDuration
	}
	return c
}

// EventKind identifies what a timer poll observed.
type EventKind string

const (
	// EventBreakDue fires once per break-threshold crossing of continuous
	// active time. Advisory only; the timer keeps running.
	EventBreakDue EventKind = "break-due"
	// EventAutoPaused fires when the inactivity timeout pauses the timer.
	EventAutoPaused EventKind = "auto-paused"
	// EventTimedOut fires when the session ceiling finalizes the session.
	EventTimedOut EventKind = "timed-out"
)

// Event is emitted by Timer.Poll for the caller to act on.
type Event struct {
	Kind      EventKind
	SessionID string
	// Crossing is the 1-based break-threshold multiple for EventBreakDue.
	Crossing int
	At       time.Time
}

// Timer accumulates active study time for one session. Methods are safe
// for concurrent use because the break monitor polls from its own
// goroutine while the owning session drives transitions.
type Timer struct {
	mu  sync.Mutex
	cfg Config

	state           State
	session         ReviewSession
	lastInteraction time.Time
	pausedAt        time.Time
	pausedTotal     time.Duration
	activeSince     time.Time
	breakCrossings  int
}

// NewTimer creates an idle timer for the given session record.
func NewTimer(session ReviewSession, cfg Config) *Timer {
	return &Timer{cfg: cfg.withDefaults(), session: session}
}

// State returns the timer's current lifecycle state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Session returns a snapshot of the session record.
func (t *Timer) Session() ReviewSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Start transitions Idle -> Active and records the session start time.
func (t *Timer) Start(now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return ErrInvalidTransition
	}
	t.state = StateActive
	t.session.StartedAt = now
	t.activeSince = now
	t.lastInteraction = now
	return nil
}

// Touch records learner interaction, holding off the inactivity timeout.
func (t *Timer) Touch(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateActive {
		t.lastInteraction = now
	}
}

// RecordCardReview bumps the reviewed-card count and counts as interaction.
func (t *Timer) RecordCardReview(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateActive {
		return
	}
	t.session.CardsReviewed++
	t.lastInteraction = now
}

// Pause transitions Active -> Paused; elapsed-time accumulation stops.
func (t *Timer) Pause(now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pauseLocked(now)
}

func (t *Timer) pauseLocked(now time.Time) error {
	if t.state != StateActive {
		return ErrInvalidTransition
	}
	t.state = StatePaused
	t.pausedAt = now
	return nil
}

// Resume transitions Paused -> Active. The continuous-active stretch
// restarts, so break reminders count from the resumption.
func (t *Timer) Resume(now time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return ErrInvalidTransition
	}
	t.state = StateActive
	t.pausedTotal += now.Sub(t.pausedAt)
	t.activeSince = now
	t.lastInteraction = now
	t.breakCrossings = 0
	return nil
}

// Complete finalizes the session from any non-completed state. The
// duration is the wall-clock span minus paused time, rounded to minutes
// and clamped to the configured maximum. A negative span is clamped to
// zero and the session flagged rather than stored as a negative value.
func (t *Timer) Complete(now time.Time, completed bool) (ReviewSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completeLocked(now, completed)
}

func (t *Timer) completeLocked(now time.Time, completed bool) (ReviewSession, error) {
	if t.state == StateCompleted || t.state == StateIdle {
		return t.session, ErrInvalidTransition
	}
	if t.state == StatePaused {
		t.pausedTotal += now.Sub(t.pausedAt)
	}
	t.state = StateCompleted

	elapsed := now.Sub(t.session.StartedAt) - t.pausedTotal
	if elapsed < 0 {
		elapsed = 0
		t.session.Flagged = true
	}
	if elapsed > t.cfg.MaxDuration {
		elapsed = t.cfg.MaxDuration
	}

	endedAt := now
	t.session.EndedAt = &endedAt
	t.session.DurationMinutes = int(math.Floor(elapsed.Minutes() + 0.5))
	t.session.Completed = completed
	return t.session, nil
}

// Poll advances time-driven behavior: break-threshold crossings, the
// inactivity auto-pause, and the session ceiling. It is called on every
// monitor tick and returns the events that fired, oldest first.
func (t *Timer) Poll(now time.Time) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []Event
	if t.state != StateActive {
		return events
	}

	// Session ceiling counts wall-clock time including pauses.
	if now.Sub(t.session.StartedAt) >= t.cfg.MaxDuration {
		if _, err := t.completeLocked(now, false); err == nil {
			events = append(events, Event{Kind: EventTimedOut, SessionID: t.session.ID, At: now})
		}
		return events
	}

	for crossing := t.breakCrossings + 1; now.Sub(t.activeSince) >= time.Duration(crossing)*t.cfg.BreakThreshold; crossing++ {
		t.breakCrossings = crossing
		events = append(events, Event{
			Kind:      EventBreakDue,
			SessionID: t.session.ID,
			Crossing:  crossing,
			At:        t.activeSince.Add(time.Duration(crossing) * t.cfg.BreakThreshold),
		})
	}

	if now.Sub(t.lastInteraction) >= t.cfg.InactivityTimeout {
		if err := t.pauseLocked(now); err == nil {
			events = append(events, Event{Kind: EventAutoPaused, SessionID: t.session.ID, At: now})
		}
	}
	return events
}
