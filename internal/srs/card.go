// Package srs implements the SM-2 spaced-repetition scheduler and the
// due-card review queue. All functions are pure: state goes in, state
// comes out, and the current instant is always an explicit argument.
package srs

import "time"

const (
	// DefaultEaseFactor is the ease factor assigned to a card on first exposure.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3
)

// CardState is the per-card, per-learner scheduling state. It is soft
// state owned by the learner's account: created with defaults on first
// exposure, mutated only by Schedule, never deleted while the card exists.
type CardState struct {
	CardID         string     `yaml:"card_id" db:"card_id"`
	EaseFactor     float64    `yaml:"ease_factor" db:"ease_factor"`
	IntervalDays   int        `yaml:"interval_days" db:"interval_days"`
	Repetitions    int        `yaml:"repetitions" db:"repetitions"`
	DueAt          time.Time  `yaml:"due_at" db:"due_at"`
	LastReviewedAt *time.Time `yaml:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
}

// NewCardState creates scheduling state for a card the learner has never
// seen. The card is due immediately.
func NewCardState(cardID string, now time.Time) CardState {
	return CardState{
		CardID:     cardID,
		EaseFactor: DefaultEaseFactor,
		DueAt:      now,
	}
}

// Due reports whether the card should be shown at the given instant.
func (s CardState) Due(now time.Time) bool {
	return !s.DueAt.After(now)
}
