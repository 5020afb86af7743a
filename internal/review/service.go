// Package review orchestrates the scheduling core against the persistence
// and clock collaborators: grading cards, building the due queue, running
// study sessions and recording streak activity.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/notify"
	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/srs"
	"github.com/synaptic-study/synaptic/internal/store"
	"github.com/synaptic-study/synaptic/internal/streak"
)

// Service coordinates reviews for learners. Scheduling results survive a
// persistence outage: failed card writes stay buffered in memory and are
// retried by Flush without recomputation.
type Service struct {
	store      store.Store
	clock      clock.Clock
	sessionCfg session.Config
	atRiskHour int

	mu      sync.Mutex
	pending map[string]pendingWrite
}

type pendingWrite struct {
	learnerID string
	state     srs.CardState
}

func NewService(st store.Store, clk clock.Clock, sessionCfg session.Config, atRiskHour int) *Service {
	return &Service{
		store:      st,
		clock:      clk,
		sessionCfg: sessionCfg,
		atRiskHour: atRiskHour,
		pending:    map[string]pendingWrite{},
	}
}

// SubmitReview grades a card and persists the rescheduled state. A card
// reviewed for the first time starts from the default state. When the
// store is unavailable the computed state is still returned alongside the
// error and buffered for a later Flush.
func (s *Service) SubmitReview(ctx context.Context, learnerID, cardID string, grade srs.Grade) (srs.CardState, error) {
	now := s.clock.Now()

	current, err := s.loadCardState(ctx, learnerID, cardID)
	if err != nil {
		return srs.CardState{}, err
	}

	next, err := srs.Schedule(current, grade, now)
	if err != nil {
		return srs.CardState{}, fmt.Errorf("srs.Schedule(%s) > %w", cardID, err)
	}

	if err := s.store.SaveCardState(ctx, learnerID, next); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			s.buffer(learnerID, next)
			return next, err
		}
		return srs.CardState{}, fmt.Errorf("store.SaveCardState(%s) > %w", cardID, err)
	}
	return next, nil
}

func (s *Service) loadCardState(ctx context.Context, learnerID, cardID string) (srs.CardState, error) {
	// A buffered write is newer than anything the store has.
	s.mu.Lock()
	if w, ok := s.pending[pendingKey(learnerID, cardID)]; ok {
		s.mu.Unlock()
		return w.state, nil
	}
	s.mu.Unlock()

	states, err := s.store.LoadCardStates(ctx, learnerID)
	if err != nil {
		return srs.CardState{}, fmt.Errorf("store.LoadCardStates > %w", err)
	}
	for _, state := range states {
		if state.CardID == cardID {
			return state, nil
		}
	}
	return srs.NewCardState(cardID, s.clock.Now()), nil
}

// DueQueue recomputes the learner's review queue from the persisted card
// states, with buffered writes overlaid so an outage never serves stale
// scheduling.
func (s *Service) DueQueue(ctx context.Context, learnerID string, limit int) ([]string, error) {
	states, err := s.store.LoadCardStates(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("store.LoadCardStates > %w", err)
	}

	s.mu.Lock()
	for _, w := range s.pending {
		if w.learnerID != learnerID {
			continue
		}
		replaced := false
		for i := range states {
			if states[i].CardID == w.state.CardID {
				states[i] = w.state
				replaced = true
				break
			}
		}
		if !replaced {
			states = append(states, w.state)
		}
	}
	s.mu.Unlock()

	return srs.BuildQueue(states, s.clock.Now(), limit), nil
}

// Flush retries every buffered card write. Writes that succeed leave the
// buffer; the first store failure stops the pass and reports how many
// writes remain.
func (s *Service) Flush(ctx context.Context) (remaining int, err error) {
	s.mu.Lock()
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.mu.Unlock()

	for _, k := range keys {
		s.mu.Lock()
		w, ok := s.pending[k]
		s.mu.Unlock()
		if !ok {
			continue
		}
		if saveErr := s.store.SaveCardState(ctx, w.learnerID, w.state); saveErr != nil {
			return s.pendingCount(), fmt.Errorf("store.SaveCardState(%s) > %w", w.state.CardID, saveErr)
		}
		s.mu.Lock()
		delete(s.pending, k)
		s.mu.Unlock()
	}
	return s.pendingCount(), nil
}

func (s *Service) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Service) buffer(learnerID string, state srs.CardState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[pendingKey(learnerID, state.CardID)] = pendingWrite{learnerID: learnerID, state: state}
}

func pendingKey(learnerID, cardID string) string {
	return learnerID + "\x00" + cardID
}

// StartSession creates and starts a timer for a new study session.
func (s *Service) StartSession(sessionType session.Type) (*session.Timer, error) {
	timer := session.NewTimer(session.NewReviewSession(sessionType), s.sessionCfg)
	if err := timer.Start(s.clock.Now()); err != nil {
		return nil, fmt.Errorf("timer.Start > %w", err)
	}
	return timer, nil
}

// FinishSession finalizes the timer, appends the session record and, when
// at least one card was reviewed, records streak activity for today. The
// streak update runs as a transactional read-modify-write in the store so
// concurrent devices cannot lose an increment.
func (s *Service) FinishSession(ctx context.Context, learnerID string, timer *session.Timer, completed bool) (session.ReviewSession, streak.Record, error) {
	now := s.clock.Now()

	var finished session.ReviewSession
	if timer.State() == session.StateCompleted {
		// The monitor already finalized the session at the duration
		// ceiling; only the record still needs persisting.
		finished = timer.Session()
	} else {
		var err error
		finished, err = timer.Complete(now, completed)
		if err != nil {
			return session.ReviewSession{}, streak.Record{}, fmt.Errorf("timer.Complete > %w", err)
		}
	}

	if err := s.store.AppendSession(ctx, learnerID, finished); err != nil {
		return session.ReviewSession{}, streak.Record{}, fmt.Errorf("store.AppendSession > %w", err)
	}

	var record streak.Record
	if finished.CardsReviewed > 0 {
		updated, err := s.store.UpdateStreak(ctx, learnerID, func(r streak.Record) (streak.Record, error) {
			return streak.RecordActivity(r, streak.DateOf(now))
		})
		if err != nil {
			if errors.Is(err, streak.ErrOutOfOrderActivity) {
				return finished, streak.Record{}, err
			}
			return finished, streak.Record{}, fmt.Errorf("store.UpdateStreak > %w", err)
		}
		record = updated
	} else {
		loaded, err := s.store.LoadStreak(ctx, learnerID)
		if err != nil {
			slog.Warn("failed to load streak after session", "learnerID", learnerID, "error", err)
			loaded = streak.Record{}
		}
		record = loaded
	}

	return finished, record, nil
}

// Streak returns the learner's current streak record together with
// whether it is at risk of lapsing today.
func (s *Service) Streak(ctx context.Context, learnerID string) (streak.Record, bool, error) {
	record, err := s.store.LoadStreak(ctx, learnerID)
	if err != nil {
		return streak.Record{}, false, fmt.Errorf("store.LoadStreak > %w", err)
	}
	return record, streak.IsAtRisk(record, s.clock.Now(), s.atRiskHour), nil
}

// Sessions returns the learner's recorded study sessions.
func (s *Service) Sessions(ctx context.Context, learnerID string) ([]session.ReviewSession, error) {
	sessions, err := s.store.LoadSessions(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("store.LoadSessions > %w", err)
	}
	return sessions, nil
}

// NotificationSource adapts the service into the poller's snapshot
// source for a single learner.
func (s *Service) NotificationSource(learnerID string, queueLimit int) notify.Source {
	return func(ctx context.Context, now time.Time) (streak.Record, notify.QueueSnapshot, error) {
		record, err := s.store.LoadStreak(ctx, learnerID)
		if err != nil {
			return streak.Record{}, notify.QueueSnapshot{}, fmt.Errorf("store.LoadStreak > %w", err)
		}
		dueCardIDs, err := s.DueQueue(ctx, learnerID, queueLimit)
		if err != nil {
			return streak.Record{}, notify.QueueSnapshot{}, err
		}
		return record, notify.QueueSnapshot{DueCardIDs: dueCardIDs}, nil
	}
}
