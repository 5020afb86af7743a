package main

import (
	"fmt"
	"time"

	"github.com/synaptic-study/synaptic/internal/config"
	"github.com/synaptic-study/synaptic/internal/database"
	"github.com/synaptic-study/synaptic/internal/notify"
	"github.com/synaptic-study/synaptic/internal/session"
	"github.com/synaptic-study/synaptic/internal/store"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// newStore builds the configured persistence backend. The returned close
// function must be called when the command finishes.
func newStore(cfg *config.Config) (store.Store, func() error, error) {
	switch cfg.Store.Backend {
	case "mysql":
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open > %w", err)
		}
		return store.NewDBStore(db, 0), db.Close, nil
	default:
		yamlStore, err := store.NewYAMLStore(cfg.Store.Directory)
		if err != nil {
			return nil, nil, fmt.Errorf("store.NewYAMLStore > %w", err)
		}
		return yamlStore, func() error { return nil }, nil
	}
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		BreakThreshold:    time.Duration(cfg.Session.BreakThresholdMinutes) * time.Minute,
		InactivityTimeout: time.Duration(cfg.Session.InactivityTimeoutMinutes) * time.Minute,
		MaxDuration:       time.Duration(cfg.Session.MaxDurationMinutes) * time.Minute,
	}
}

func notifyPrefs(cfg *config.Config) notify.Prefs {
	return notify.Prefs{
		DueCardsEnabled: cfg.Notifications.DueCardsEnabled,
		StreakEnabled:   cfg.Notifications.StreakEnabled,
		BreakEnabled:    cfg.Notifications.BreakEnabled,
		DueCooldown:     time.Duration(cfg.Notifications.DueCooldownHours) * time.Hour,
		AtRiskHour:      cfg.Notifications.AtRiskHour,
	}
}
