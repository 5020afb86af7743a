// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Store         StoreConfig         `mapstructure:"store"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Session       SessionConfig       `mapstructure:"session"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Reports       ReportsConfig       `mapstructure:"reports"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is "yaml" for the local file store or "mysql".
	Backend   string `mapstructure:"backend" validate:"oneof=yaml mysql"`
	Directory string `mapstructure:"directory" validate:"required_if=Backend yaml"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// SessionConfig holds the session timer tunables, in minutes and seconds
// so the YAML stays human-editable.
type SessionConfig struct {
	BreakThresholdMinutes    int `mapstructure:"break_threshold_minutes" validate:"min=1"`
	InactivityTimeoutMinutes int `mapstructure:"inactivity_timeout_minutes" validate:"min=1"`
	MaxDurationMinutes       int `mapstructure:"max_duration_minutes" validate:"min=1"`
	PollIntervalSeconds      int `mapstructure:"poll_interval_seconds" validate:"min=1"`
}

type NotificationsConfig struct {
	DueCardsEnabled  bool   `mapstructure:"due_cards_enabled"`
	StreakEnabled    bool   `mapstructure:"streak_enabled"`
	BreakEnabled     bool   `mapstructure:"break_enabled"`
	DueCooldownHours int    `mapstructure:"due_cooldown_hours" validate:"min=1"`
	AtRiskHour       int    `mapstructure:"at_risk_hour" validate:"min=0,max=23"`
	WebhookURL       string `mapstructure:"webhook_url" validate:"omitempty,url"`
	WebhookToken     string `mapstructure:"webhook_token"`
}

type ReportsConfig struct {
	OutputDirectory string `mapstructure:"output_directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/synaptic")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

// Load reads, unmarshals and validates the configuration in one step.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("store.backend", "yaml")
	v.SetDefault("store.directory", filepath.Join("data", "learners"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "synaptic")
	v.SetDefault("database.username", "synaptic")
	v.SetDefault("session.break_threshold_minutes", 25)
	v.SetDefault("session.inactivity_timeout_minutes", 5)
	v.SetDefault("session.max_duration_minutes", 240)
	v.SetDefault("session.poll_interval_seconds", 60)
	v.SetDefault("notifications.due_cards_enabled", true)
	v.SetDefault("notifications.streak_enabled", true)
	v.SetDefault("notifications.break_enabled", true)
	v.SetDefault("notifications.due_cooldown_hours", 4)
	v.SetDefault("notifications.at_risk_hour", 18)
	v.SetDefault("reports.output_directory", filepath.Join("outputs", "reports"))

	// Bind secrets to environment variables only (not from config file)
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("notifications.webhook_token", "WEBHOOK_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind WEBHOOK_TOKEN environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
