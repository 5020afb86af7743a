package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

func newStartedTimer(t *testing.T, cfg Config) *Timer {
	t.Helper()
	timer := NewTimer(NewReviewSession(TypeReview), cfg)
	require.NoError(t, timer.Start(sessionStart))
	return timer
}

func TestTimer_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		run     func(t *testing.T, timer *Timer) error
		wantErr error
	}{
		{
			name: "start twice",
			run: func(t *testing.T, timer *Timer) error {
				return timer.Start(sessionStart)
			},
			wantErr: ErrInvalidTransition,
		},
		{
			name: "pause then resume",
			run: func(t *testing.T, timer *Timer) error {
				require.NoError(t, timer.Pause(sessionStart.Add(5*time.Minute)))
				assert.Equal(t, StatePaused, timer.State())
				return timer.Resume(sessionStart.Add(10 * time.Minute))
			},
		},
		{
			name: "resume while active",
			run: func(t *testing.T, timer *Timer) error {
				return timer.Resume(sessionStart.Add(time.Minute))
			},
			wantErr: ErrInvalidTransition,
		},
		{
			name: "pause while paused",
			run: func(t *testing.T, timer *Timer) error {
				require.NoError(t, timer.Pause(sessionStart.Add(time.Minute)))
				return timer.Pause(sessionStart.Add(2 * time.Minute))
			},
			wantErr: ErrInvalidTransition,
		},
		{
			name: "complete twice",
			run: func(t *testing.T, timer *Timer) error {
				_, err := timer.Complete(sessionStart.Add(time.Minute), true)
				require.NoError(t, err)
				_, err = timer.Complete(sessionStart.Add(2*time.Minute), true)
				return err
			},
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := newStartedTimer(t, Config{})
			err := tt.run(t, timer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTimer_CompleteBeforeStart(t *testing.T) {
	timer := NewTimer(NewReviewSession(TypeReview), Config{})
	_, err := timer.Complete(sessionStart, true)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTimer_DurationExcludesPauses(t *testing.T) {
	timer := newStartedTimer(t, Config{})

	require.NoError(t, timer.Pause(sessionStart.Add(20*time.Minute)))
	require.NoError(t, timer.Resume(sessionStart.Add(30*time.Minute)))

	got, err := timer.Complete(sessionStart.Add(50*time.Minute), true)
	require.NoError(t, err)

	assert.Equal(t, 40, got.DurationMinutes) // 50 wall minutes minus 10 paused
	assert.True(t, got.Completed)
	assert.False(t, got.Flagged)
	require.NotNil(t, got.EndedAt)
	assert.Equal(t, sessionStart.Add(50*time.Minute), *got.EndedAt)
}

func TestTimer_CompleteWhilePaused(t *testing.T) {
	timer := newStartedTimer(t, Config{})

	require.NoError(t, timer.Pause(sessionStart.Add(15*time.Minute)))

	got, err := timer.Complete(sessionStart.Add(45*time.Minute), false)
	require.NoError(t, err)
	assert.Equal(t, 15, got.DurationMinutes)
	assert.False(t, got.Completed)
}

func TestTimer_NegativeDurationClampedAndFlagged(t *testing.T) {
	timer := newStartedTimer(t, Config{})

	// The clock jumped backwards between start and end.
	got, err := timer.Complete(sessionStart.Add(-10*time.Minute), true)
	require.NoError(t, err)
	assert.Equal(t, 0, got.DurationMinutes)
	assert.True(t, got.Flagged)
}

func TestTimer_DurationClampedToMaximum(t *testing.T) {
	timer := newStartedTimer(t, Config{MaxDuration: 2 * time.Hour})

	got, err := timer.Complete(sessionStart.Add(9*time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, 120, got.DurationMinutes)
}

func TestTimer_Poll_BreakReminders(t *testing.T) {
	timer := newStartedTimer(t, Config{
		BreakThreshold:    25 * time.Minute,
		InactivityTimeout: 2 * time.Hour, // out of the way for this test
	})

	// Poll every minute over 70 continuous active minutes: exactly two
	// break reminders must fire, at +25m and +50m, and no third.
	var events []Event
	for minute := 1; minute <= 70; minute++ {
		now := sessionStart.Add(time.Duration(minute) * time.Minute)
		timer.Touch(now)
		events = append(events, timer.Poll(now)...)
	}

	require.Len(t, events, 2)
	assert.Equal(t, EventBreakDue, events[0].Kind)
	assert.Equal(t, 1, events[0].Crossing)
	assert.Equal(t, sessionStart.Add(25*time.Minute), events[0].At)
	assert.Equal(t, EventBreakDue, events[1].Kind)
	assert.Equal(t, 2, events[1].Crossing)
	assert.Equal(t, sessionStart.Add(50*time.Minute), events[1].At)
}

func TestTimer_Poll_BreakCounterResetsAfterPause(t *testing.T) {
	timer := newStartedTimer(t, Config{
		BreakThreshold:    25 * time.Minute,
		InactivityTimeout: 2 * time.Hour,
	})

	timer.Touch(sessionStart.Add(20 * time.Minute))
	assert.Empty(t, timer.Poll(sessionStart.Add(20*time.Minute)))

	require.NoError(t, timer.Pause(sessionStart.Add(20*time.Minute)))
	require.NoError(t, timer.Resume(sessionStart.Add(30*time.Minute)))

	// 20 minutes after resuming, the continuous stretch is only 20 minutes.
	timer.Touch(sessionStart.Add(50 * time.Minute))
	assert.Empty(t, timer.Poll(sessionStart.Add(50*time.Minute)))

	// 25 minutes after resuming, the first crossing of the new stretch fires.
	events := timer.Poll(sessionStart.Add(55 * time.Minute))
	require.Len(t, events, 1)
	assert.Equal(t, EventBreakDue, events[0].Kind)
	assert.Equal(t, 1, events[0].Crossing)
}

func TestTimer_Poll_InactivityAutoPause(t *testing.T) {
	timer := newStartedTimer(t, Config{InactivityTimeout: 5 * time.Minute})

	assert.Empty(t, timer.Poll(sessionStart.Add(4*time.Minute)))
	assert.Equal(t, StateActive, timer.State())

	events := timer.Poll(sessionStart.Add(5 * time.Minute))
	require.Len(t, events, 1)
	assert.Equal(t, EventAutoPaused, events[0].Kind)
	assert.Equal(t, StatePaused, timer.State())

	// A paused timer polls to nothing.
	assert.Empty(t, timer.Poll(sessionStart.Add(10*time.Minute)))
}

func TestTimer_Poll_SessionCeiling(t *testing.T) {
	timer := newStartedTimer(t, Config{
		MaxDuration:       time.Hour,
		InactivityTimeout: 2 * time.Hour,
	})

	timer.Touch(sessionStart.Add(59 * time.Minute))
	events := timer.Poll(sessionStart.Add(time.Hour))

	var kinds []EventKind
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, EventTimedOut)
	assert.Equal(t, StateCompleted, timer.State())

	got := timer.Session()
	assert.False(t, got.Completed, "a timed-out session counts as abandoned")
	assert.Equal(t, 60, got.DurationMinutes)
}

func TestTimer_RecordCardReview(t *testing.T) {
	timer := newStartedTimer(t, Config{})

	timer.RecordCardReview(sessionStart.Add(time.Minute))
	timer.RecordCardReview(sessionStart.Add(2 * time.Minute))

	got, err := timer.Complete(sessionStart.Add(3*time.Minute), true)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CardsReviewed)
}
