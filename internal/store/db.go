package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/avast/retry-go"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/srs"
	"github.com/synaptic-study/synaptic/internal/streak"
)

// DBStore implements Store on MySQL. Card writes are single-row upserts
// (last-writer-wins); streak updates run inside a transaction with a
// row lock so concurrent devices cannot lose an increment.
type DBStore struct {
	db            *sqlx.DB
	retryAttempts uint
}

// NewDBStore creates a MySQL-backed store. Writes are retried a few
// times on transient connection errors and deadlocks.
func NewDBStore(db *sqlx.DB, retryAttempts uint) *DBStore {
	if retryAttempts == 0 {
		retryAttempts = 2
	}
	return &DBStore{db: db, retryAttempts: retryAttempts}
}

type cardStateRow struct {
	srs.CardState
	LearnerID string `db:"learner_id"`
}

// LoadCardStates returns all card states for the learner.
func (s *DBStore) LoadCardStates(ctx context.Context, learnerID string) ([]srs.CardState, error) {
	var rows []cardStateRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM card_states WHERE learner_id = ? ORDER BY card_id",
		learnerID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(card_states) > %w", wrapUnavailable(err))
	}

	states := make([]srs.CardState, len(rows))
	for i, row := range rows {
		states[i] = row.CardState
	}
	return states, nil
}

// SaveCardState upserts one card's scheduling state.
func (s *DBStore) SaveCardState(ctx context.Context, learnerID string, state srs.CardState) error {
	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO card_states
				(learner_id, card_id, ease_factor, interval_days, repetitions, due_at, last_reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				ease_factor = VALUES(ease_factor),
				interval_days = VALUES(interval_days),
				repetitions = VALUES(repetitions),
				due_at = VALUES(due_at),
				last_reviewed_at = VALUES(last_reviewed_at)`,
			learnerID, state.CardID, state.EaseFactor, state.IntervalDays,
			state.Repetitions, state.DueAt, state.LastReviewedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("db.ExecContext(card_states) > %w", wrapUnavailable(err))
	}
	return nil
}

type streakRow struct {
	streak.Record
	LearnerID string `db:"learner_id"`
}

// LoadStreak returns the learner's streak record, zero when absent.
func (s *DBStore) LoadStreak(ctx context.Context, learnerID string) (streak.Record, error) {
	var row streakRow
	err := s.db.GetContext(ctx, &row,
		"SELECT * FROM streaks WHERE learner_id = ?", learnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return streak.Record{}, nil
	}
	if err != nil {
		return streak.Record{}, fmt.Errorf("db.GetContext(streaks) > %w", wrapUnavailable(err))
	}
	return row.Record, nil
}

// UpdateStreak applies the mutation as a transactional read-modify-write
// with a row lock held across the cycle.
func (s *DBStore) UpdateStreak(ctx context.Context, learnerID string, apply func(streak.Record) (streak.Record, error)) (streak.Record, error) {
	var updated streak.Record
	var applyErr error
	err := s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTxx() > %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		var row streakRow
		err = tx.GetContext(ctx, &row,
			"SELECT * FROM streaks WHERE learner_id = ? FOR UPDATE", learnerID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("tx.GetContext(streaks) > %w", err)
		}

		updated, err = apply(row.Record)
		if err != nil {
			applyErr = err
			return retry.Unrecoverable(err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO streaks (learner_id, last_activity_date, current_streak, longest_streak)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				last_activity_date = VALUES(last_activity_date),
				current_streak = VALUES(current_streak),
				longest_streak = VALUES(longest_streak)`,
			learnerID, updated.LastActivityDate, updated.CurrentStreak, updated.LongestStreak); err != nil {
			return fmt.Errorf("tx.ExecContext(streaks) > %w", err)
		}
		return tx.Commit()
	})
	if applyErr != nil {
		// The apply function's own error comes back unwrapped so the
		// caller can match it with errors.Is.
		return streak.Record{}, applyErr
	}
	if err != nil {
		return streak.Record{}, fmt.Errorf("update streak(%s) > %w", learnerID, wrapUnavailable(err))
	}
	return updated, nil
}

// AppendSession inserts a finalized study session.
func (s *DBStore) AppendSession(ctx context.Context, learnerID string, reviewSession session.ReviewSession) error {
	err := s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO review_sessions
				(id, learner_id, type, started_at, ended_at, duration_minutes, completed, cards_reviewed, flagged)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			reviewSession.ID, learnerID, reviewSession.Type, reviewSession.StartedAt,
			reviewSession.EndedAt, reviewSession.DurationMinutes, reviewSession.Completed,
			reviewSession.CardsReviewed, reviewSession.Flagged)
		return err
	})
	if err != nil {
		return fmt.Errorf("db.ExecContext(review_sessions) > %w", wrapUnavailable(err))
	}
	return nil
}

type sessionRow struct {
	session.ReviewSession
	LearnerID string `db:"learner_id"`
}

// LoadSessions returns the learner's sessions, oldest first.
func (s *DBStore) LoadSessions(ctx context.Context, learnerID string) ([]session.ReviewSession, error) {
	var rows []sessionRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM review_sessions WHERE learner_id = ? ORDER BY started_at",
		learnerID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(review_sessions) > %w", wrapUnavailable(err))
	}

	sessions := make([]session.ReviewSession, len(rows))
	for i, row := range rows {
		sessions[i] = row.ReviewSession
	}
	return sessions, nil
}

func (s *DBStore) withRetry(ctx context.Context, operation func() error) error {
	return retry.Do(
		func() error {
			err := operation()
			if err != nil && !isTransientDBError(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.retryAttempts+1),
		retry.DelayType(retry.BackOffDelay),
	)
}

// isTransientDBError reports whether a write is worth retrying: broken
// connections and InnoDB deadlocks, not constraint or syntax failures.
func isTransientDBError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// 1213 deadlock, 1205 lock wait timeout.
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}

	message := err.Error()
	return strings.Contains(message, "connection refused") || strings.Contains(message, "i/o timeout")
}

func wrapUnavailable(err error) error {
	return errors.Join(ErrUnavailable, err)
}
