package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/srs"
	"github.com/synaptic-study/synaptic/internal/streak"
)

const (
	cardsFileName    = "cards.yml"
	streakFileName   = "streak.yml"
	sessionsFileName = "sessions.yml"
)

// YAMLStore persists scheduling state as per-learner YAML files under a
// base directory: <base>/<learner>/cards.yml, streak.yml, sessions.yml.
// It is the default local backend. A single process owns the directory;
// the internal lock serializes read-modify-write cycles.
type YAMLStore struct {
	mu      sync.Mutex
	baseDir string
}

// NewYAMLStore creates a store rooted at baseDir, creating it if needed.
func NewYAMLStore(baseDir string) (*YAMLStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", baseDir, errors.Join(ErrUnavailable, err))
	}
	return &YAMLStore{baseDir: baseDir}, nil
}

// LoadCardStates returns all card states for the learner; a learner with
// no file yet has no states.
func (s *YAMLStore) LoadCardStates(_ context.Context, learnerID string) ([]srs.CardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var states []srs.CardState
	if err := readYamlFile(s.learnerPath(learnerID, cardsFileName), &states); err != nil {
		return nil, err
	}
	return states, nil
}

// SaveCardState upserts one card's scheduling state. Last writer wins.
func (s *YAMLStore) SaveCardState(_ context.Context, learnerID string, state srs.CardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.learnerPath(learnerID, cardsFileName)
	var states []srs.CardState
	if err := readYamlFile(path, &states); err != nil {
		return err
	}

	replaced := false
	for i, existing := range states {
		if existing.CardID == state.CardID {
			states[i] = state
			replaced = true
			break
		}
	}
	if !replaced {
		states = append(states, state)
	}
	return s.writeLearnerFile(learnerID, cardsFileName, states)
}

// LoadStreak returns the learner's streak record, zero when absent.
func (s *YAMLStore) LoadStreak(_ context.Context, learnerID string) (streak.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var record streak.Record
	if err := readYamlFile(s.learnerPath(learnerID, streakFileName), &record); err != nil {
		return streak.Record{}, err
	}
	return record, nil
}

// UpdateStreak applies the mutation under the store lock, which is the
// single-process equivalent of a transactional read-modify-write.
func (s *YAMLStore) UpdateStreak(_ context.Context, learnerID string, apply func(streak.Record) (streak.Record, error)) (streak.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.learnerPath(learnerID, streakFileName)
	var record streak.Record
	if err := readYamlFile(path, &record); err != nil {
		return streak.Record{}, err
	}

	updated, err := apply(record)
	if err != nil {
		return record, err
	}
	if err := s.writeLearnerFile(learnerID, streakFileName, updated); err != nil {
		return record, err
	}
	return updated, nil
}

// AppendSession appends a finalized session to the learner's log.
func (s *YAMLStore) AppendSession(_ context.Context, learnerID string, reviewSession session.ReviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.learnerPath(learnerID, sessionsFileName)
	var sessions []session.ReviewSession
	if err := readYamlFile(path, &sessions); err != nil {
		return err
	}
	sessions = append(sessions, reviewSession)
	return s.writeLearnerFile(learnerID, sessionsFileName, sessions)
}

// LoadSessions returns the learner's session log, oldest first.
func (s *YAMLStore) LoadSessions(_ context.Context, learnerID string) ([]session.ReviewSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []session.ReviewSession
	if err := readYamlFile(s.learnerPath(learnerID, sessionsFileName), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *YAMLStore) learnerPath(learnerID, fileName string) string {
	return filepath.Join(s.baseDir, learnerID, fileName)
}

func (s *YAMLStore) writeLearnerFile(learnerID, fileName string, data any) error {
	dir := filepath.Join(s.baseDir, learnerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, errors.Join(ErrUnavailable, err))
	}
	return writeYamlFile(filepath.Join(dir, fileName), data)
}

// readYamlFile decodes path into out. A missing file leaves out at its
// zero value.
func readYamlFile(path string, out any) error {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("os.ReadFile(%s) > %w", path, errors.Join(ErrUnavailable, err))
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	return nil
}

func writeYamlFile(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, errors.Join(ErrUnavailable, err))
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("yaml.NewEncoder(%s).Encode() > %w", path, errors.Join(ErrUnavailable, err))
	}
	return nil
}
