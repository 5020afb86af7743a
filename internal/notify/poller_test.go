package notify_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/synaptic-study/synaptic/internal/clock"
	mock_notify "github.com/synaptic-study/synaptic/internal/mocks/notify"
	"github.com/synaptic-study/synaptic/internal/notify"
	"github.com/synaptic-study/synaptic/internal/streak"
)

func TestPoller_DispatchesDueCards(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDispatcher := mock_notify.NewMockDispatcher(ctrl)

	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(now)

	record := streak.Record{
		LastActivityDate: streak.DateOf(now),
		CurrentStreak:    1,
		LongestStreak:    1,
	}
	source := func(context.Context, time.Time) (streak.Record, notify.QueueSnapshot, error) {
		return record, notify.QueueSnapshot{DueCardIDs: []string{"a", "b"}}, nil
	}

	shown := make(chan notify.Notification, 1)
	mockDispatcher.EXPECT().IsSupported().Return(true).MinTimes(1)
	mockDispatcher.EXPECT().IsEnabled().Return(true).MinTimes(1)
	mockDispatcher.EXPECT().Show(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n notify.Notification) error {
			select {
			case shown <- n:
			default:
			}
			return nil
		}).Times(1)

	poller := notify.StartPoller(
		notify.NewScheduler(),
		mockDispatcher,
		source,
		notify.Prefs{DueCardsEnabled: true},
		fake,
		time.Millisecond,
	)
	defer poller.Stop()

	select {
	case n := <-shown:
		assert.Equal(t, notify.KindDueCardsReady, n.Kind)
		assert.Equal(t, "2", n.Payload["due_count"])
	case <-time.After(time.Second):
		t.Fatal("notification was never dispatched")
	}

	// The due set is marked fired; later ticks inside the cool-down must
	// not call Show again. Give the poller a few more ticks to prove it.
	time.Sleep(20 * time.Millisecond)
}

func TestPoller_SkipsDisabledDispatcher(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDispatcher := mock_notify.NewMockDispatcher(ctrl)

	now := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	var calls atomic.Int32
	source := func(context.Context, time.Time) (streak.Record, notify.QueueSnapshot, error) {
		calls.Add(1)
		return streak.Record{}, notify.QueueSnapshot{DueCardIDs: []string{"a"}}, nil
	}

	// Show must never be called when the dispatcher is unsupported.
	mockDispatcher.EXPECT().IsSupported().Return(false).MinTimes(1)

	poller := notify.StartPoller(
		notify.NewScheduler(),
		mockDispatcher,
		source,
		notify.Prefs{DueCardsEnabled: true},
		clock.NewFake(now),
		time.Millisecond,
	)

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, time.Millisecond)
	poller.Stop()
	poller.Stop() // idempotent
}
