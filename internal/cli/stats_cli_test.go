package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synaptic-study/synaptic/internal/clock"
	"github.com/synaptic-study/synaptic/internal/review"
	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/store"
	"github.com/synaptic-study/synaptic/internal/streak"
)

func TestStatsCLI_Run(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 10, 19, 0, 0, 0, time.UTC)

	newFixture := func(t *testing.T) (*StatsCLI, store.Store, *bytes.Buffer) {
		yamlStore, err := store.NewYAMLStore(t.TempDir())
		require.NoError(t, err)
		service := review.NewService(yamlStore, clock.Fixed{Instant: now}, session.Config{}, 18)

		cli := NewStatsCLI(service, clock.Fixed{Instant: now}, "alice", filepath.Join(t.TempDir(), "reports"))
		out := &bytes.Buffer{}
		cli.stdoutWriter = out
		return cli, yamlStore, out
	}

	t.Run("prints monthly statistics and at-risk streak", func(t *testing.T) {
		cli, yamlStore, out := newFixture(t)

		require.NoError(t, yamlStore.AppendSession(ctx, "alice", session.ReviewSession{
			ID:              "s-1",
			Type:            session.TypeReview,
			StartedAt:       now.Add(-24 * time.Hour),
			DurationMinutes: 30,
			CardsReviewed:   12,
			Completed:       true,
		}))
		_, err := yamlStore.UpdateStreak(ctx, "alice", func(r streak.Record) (streak.Record, error) {
			return streak.RecordActivity(r, streak.Date{Year: 2025, Month: 2, Day: 9})
		})
		require.NoError(t, err)

		require.NoError(t, cli.Run(ctx, 0, 0, false))

		output := out.String()
		assert.Contains(t, output, "Streak: 1 days (best 1)")
		assert.Contains(t, output, "Your streak is at risk today.")
		assert.Contains(t, output, "2025-02")
		assert.Contains(t, output, "sessions: 1 (100% completed)")
		assert.Contains(t, output, "cards reviewed: 12")
		assert.Contains(t, output, "study time: 30 minutes")
	})

	t.Run("filter excluding every session", func(t *testing.T) {
		cli, yamlStore, out := newFixture(t)

		require.NoError(t, yamlStore.AppendSession(ctx, "alice", session.ReviewSession{
			ID:        "s-1",
			Type:      session.TypeReview,
			StartedAt: now,
		}))

		require.NoError(t, cli.Run(ctx, 2023, 0, false))
		assert.Contains(t, out.String(), "No study sessions recorded.")
	})
}
