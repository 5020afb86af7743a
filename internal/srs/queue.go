package srs

import (
	"sort"
	"time"
)

// BuildQueue selects the cards due at the given instant and orders them
// for review: most overdue first, then fewer repetitions (less-mastered
// cards surface first on exact due-time ties), then card ID for
// determinism. A limit above zero caps the queue length without changing
// relative order. The queue is recomputed from the given states on every
// call and holds no cursor of its own.
func BuildQueue(states []CardState, now time.Time, limit int) []string {
	due := make([]CardState, 0, len(states))
	for _, s := range states {
		if s.Due(now) {
			due = append(due, s)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		if due[i].Repetitions != due[j].Repetitions {
			return due[i].Repetitions < due[j].Repetitions
		}
		return due[i].CardID < due[j].CardID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	ids := make([]string, len(due))
	for i, s := range due {
		ids[i] = s.CardID
	}
	return ids
}
