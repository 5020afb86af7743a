package notify

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/streak"
)

// Scheduler decides which notifications are pending. It tracks which
// {kind, dedup-key} pairs already fired during this runtime, so repeated
// calls with unchanged inputs never produce duplicates. It holds no
// durable state; a restart simply recomputes from current inputs.
type Scheduler struct {
	mu            sync.Mutex
	fired         map[string]time.Time
	pendingBreaks []Notification
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{fired: make(map[string]time.Time)}
}

// NoteBreak queues a break reminder for a session timer event. Crossings
// are deduplicated per session, so replaying the same event is harmless.
func (s *Scheduler) NoteBreak(event session.Event) {
	if event.Kind != session.EventBreakDue {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := event.SessionID + "|" + strconv.Itoa(event.Crossing)
	for _, n := range s.pendingBreaks {
		if n.DedupKey == key {
			return
		}
	}
	s.pendingBreaks = append(s.pendingBreaks, Notification{
		FireAt:   event.At,
		Kind:     KindBreakReminder,
		DedupKey: key,
		Payload: map[string]string{
			"session_id": event.SessionID,
			"crossing":   strconv.Itoa(event.Crossing),
		},
	})
}

// ComputePending returns the notifications that should fire at the given
// instant, honoring per-kind preferences and deduplication. The caller
// dispatches them and reports the outcome via MarkFired; until then the
// same entries stay pending.
func (s *Scheduler) ComputePending(record streak.Record, queue QueueSnapshot, now time.Time, prefs Prefs) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []Notification

	if prefs.DueCardsEnabled && len(queue.DueCardIDs) > 0 {
		key := dueSetKey(queue.DueCardIDs)
		if firedAt, ok := s.fired[firedKey(KindDueCardsReady, key)]; !ok || now.Sub(firedAt) >= prefs.dueCooldown() {
			pending = append(pending, Notification{
				FireAt:   now,
				Kind:     KindDueCardsReady,
				DedupKey: key,
				Payload: map[string]string{
					"due_count": strconv.Itoa(len(queue.DueCardIDs)),
				},
			})
		}
	}

	if prefs.StreakEnabled && streak.IsAtRisk(record, now, prefs.atRiskHour()) {
		key := streak.DateOf(now).String()
		if _, ok := s.fired[firedKey(KindStreakAtRisk, key)]; !ok {
			pending = append(pending, Notification{
				FireAt:   now,
				Kind:     KindStreakAtRisk,
				DedupKey: key,
				Payload: map[string]string{
					"current_streak": strconv.Itoa(record.CurrentStreak),
				},
			})
		}
	}

	if prefs.BreakEnabled {
		for _, n := range s.pendingBreaks {
			if _, ok := s.fired[firedKey(n.Kind, n.DedupKey)]; !ok && !n.FireAt.After(now) {
				pending = append(pending, n)
			}
		}
	}

	return pending
}

// MarkFired records that a notification was handed to the dispatcher.
// Delivery is best-effort, so undeliverable notifications are marked too
// rather than retried forever.
func (s *Scheduler) MarkFired(n Notification, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fired[firedKey(n.Kind, n.DedupKey)] = now
	if n.Kind == KindBreakReminder {
		kept := s.pendingBreaks[:0]
		for _, b := range s.pendingBreaks {
			if b.DedupKey != n.DedupKey {
				kept = append(kept, b)
			}
		}
		s.pendingBreaks = kept
	}
}

func firedKey(kind Kind, dedupKey string) string {
	return string(kind) + "|" + dedupKey
}

// dueSetKey digests the due card set so the same set maps to the same
// dedup key regardless of input order.
func dueSetKey(cardIDs []string) string {
	sorted := make([]string, len(cardIDs))
	copy(sorted, cardIDs)
	sort.Strings(sorted)

	sum := sha1.Sum([]byte(strings.Join(sorted, "\x00")))
	return hex.EncodeToString(sum[:8])
}
