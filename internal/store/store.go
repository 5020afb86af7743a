// Package store defines the persistence collaborator contracts for the
// review scheduler and provides YAML-file and MySQL implementations. The
// core never issues raw queries; everything flows through these
// interfaces.
package store

import (
	"context"
	"errors"

	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/srs"
	"github.com/synaptic-study/synaptic/internal/streak"
)

// ErrUnavailable marks a persistence failure. Callers keep their
// in-memory state and may re-attempt the write without recomputation.
// Check with errors.Is.
var ErrUnavailable = errors.New("store: persistence unavailable")

// CardStore owns per-card scheduling state. Card writes may be
// last-writer-wins: scheduling is self-correcting across devices.
type CardStore interface {
	LoadCardStates(ctx context.Context, learnerID string) ([]srs.CardState, error)
	SaveCardState(ctx context.Context, learnerID string, state srs.CardState) error
}

// StreakStore owns the learner's streak record. UpdateStreak must apply
// the mutation as a transactional read-modify-write so two devices
// cannot lose an increment. The apply function's error aborts the update
// and is returned unwrapped.
type StreakStore interface {
	LoadStreak(ctx context.Context, learnerID string) (streak.Record, error)
	UpdateStreak(ctx context.Context, learnerID string, apply func(streak.Record) (streak.Record, error)) (streak.Record, error)
}

// SessionStore appends finalized study sessions.
type SessionStore interface {
	AppendSession(ctx context.Context, learnerID string, reviewSession session.ReviewSession) error
	LoadSessions(ctx context.Context, learnerID string) ([]session.ReviewSession, error)
}

// Store bundles the three collaborator contracts.
type Store interface {
	CardStore
	StreakStore
	SessionStore
}
