// Package session tracks one study session's elapsed active time and
// drives break reminders. The timer is a state machine over
// Idle -> Active <-> Paused -> Completed; a Monitor polls it on a
// recurring tick that is released on every exit path.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type classifies what kind of study activity a session covers.
type Type string

const (
	TypeReview  Type = "review"
	TypeChat    Type = "chat"
	TypePodcast Type = "podcast"
	TypeMindMap Type = "mindmap"
	TypeExam    Type = "exam"
)

// ReviewSession is the persisted record of one study session. It is
// created at session start, mutated as reviews occur, and finalized once
// on completion or abandonment.
type ReviewSession struct {
	ID              string     `yaml:"id" db:"id"`
	Type            Type       `yaml:"type" db:"type"`
	StartedAt       time.Time  `yaml:"started_at" db:"started_at"`
	EndedAt         *time.Time `yaml:"ended_at,omitempty" db:"ended_at"`
	DurationMinutes int        `yaml:"duration_minutes" db:"duration_minutes"`
	Completed       bool       `yaml:"completed" db:"completed"`
	CardsReviewed   int        `yaml:"cards_reviewed" db:"cards_reviewed"`
	// Flagged marks a session whose end time computed earlier than its
	// start time; the duration is clamped to zero instead of going negative.
	Flagged bool `yaml:"flagged,omitempty" db:"flagged"`
}

// NewReviewSession creates an unstarted session record with a fresh ID.
func NewReviewSession(sessionType Type) ReviewSession {
	return ReviewSession{
		ID:   uuid.NewString(),
		Type: sessionType,
	}
}

// ErrInvalidTransition is returned for a timer call that is not legal in
// the current state, such as pausing an idle session.
var ErrInvalidTransition = errors.New("session: invalid state transition")

// State is the timer's position in the session lifecycle.
type State int

const (
	StateIdle State = iota
	StateActive
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}
