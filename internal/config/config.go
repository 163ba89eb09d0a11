// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Durations are carried as integer fields with their unit in the name.
// - Derived values (squad limits, timeouts) come from accessor methods.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/squadkit/internal/domain/model"
	"github.com/okian/squadkit/internal/domain/squad"
)

// Provider endpoints used when no sources are configured.
const (
	DefaultBootstrapURL = "https://fantasy.premierleague.com/api/bootstrap-static/"
	DefaultFixturesURL  = "https://fantasy.premierleague.com/api/fixtures/"
	DefaultUpstream     = "https://fantasy.premierleague.com/api"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BootstrapSources and FixturesSources are tried in order. Env values
	// are comma separated.
	BootstrapSources []string `koanf:"bootstrap_sources"`
	FixturesSources  []string `koanf:"fixtures_sources"`

	// SourceTimeoutMS bounds each source attempt.
	SourceTimeoutMS int `koanf:"source_timeout_ms"`

	// MaxPayloadBytes caps a source response body.
	MaxPayloadBytes int64 `koanf:"max_payload_bytes"`

	// MinElements and MinFixtures reject suspiciously small payloads.
	MinElements int `koanf:"min_elements"`
	MinFixtures int `koanf:"min_fixtures"`

	// StartingBudget is in millions, e.g. 100.0.
	StartingBudget float64 `koanf:"starting_budget"`

	// SquadSize, PositionLimits and ClubCap are the squad rules.
	SquadSize      int            `koanf:"squad_size"`
	PositionLimits map[string]int `koanf:"position_limits"`
	ClubCap        int            `koanf:"club_cap"`

	// LeaderboardPath points at a JSON file of other managers. Empty uses
	// the built-in entries.
	LeaderboardPath string `koanf:"leaderboard_path"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit and GET /fixtures?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// RefreshIntervalSec reloads the pool periodically. Zero disables it.
	RefreshIntervalSec int `koanf:"refresh_interval_sec"`

	// SessionTTLSec expires idle squad sessions.
	SessionTTLSec int `koanf:"session_ttl_sec"`

	// RelayEnabled mounts the /fpl/* pass-through routes.
	RelayEnabled bool `koanf:"relay_enabled"`

	// RelayUpstream is the provider API base the relay forwards to.
	RelayUpstream string `koanf:"relay_upstream"`

	// RelayMaxAgeSec is advertised in the relay's Cache-Control header.
	RelayMaxAgeSec int `koanf:"relay_max_age_sec"`

	// UserAgent is sent to the provider by sources and relay.
	UserAgent string `koanf:"user_agent"`

	// ShutdownTimeoutSec bounds graceful HTTP shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		BootstrapSources: []string{DefaultBootstrapURL},
		FixturesSources:  []string{DefaultFixturesURL},
		SourceTimeoutMS:  8000,
		MaxPayloadBytes:  16 << 20,
		MinElements:      50,
		MinFixtures:      1,
		StartingBudget:   100.0,
		SquadSize:        squad.DefaultSquadSize,
		PositionLimits: map[string]int{
			"gk":  2,
			"def": 5,
			"mid": 5,
			"fwd": 3,
		},
		ClubCap:             squad.DefaultClubCap,
		MaxLeaderboardLimit: 100,
		RefreshIntervalSec:  0,
		SessionTTLSec:       24 * 60 * 60,
		RelayEnabled:        true,
		RelayUpstream:       DefaultUpstream,
		RelayMaxAgeSec:      300,
		ShutdownTimeoutSec:  10,
	}
}

// SquadLimits converts the squad rules into domain limits.
func (c *Config) SquadLimits() (squad.Limits, error) {
	per := make(map[model.Position]int, len(c.PositionLimits))
	for k, v := range c.PositionLimits {
		pos, err := model.ParsePosition(strings.ToUpper(strings.TrimSpace(k)))
		if err != nil {
			return squad.Limits{}, fmt.Errorf("%w: position_limits: %w", ErrInvalidConfig, err)
		}
		per[pos] = v
	}
	l := squad.Limits{
		TotalSquadSize: c.SquadSize,
		PerPosition:    per,
		ClubCap:        c.ClubCap,
		StartingBudget: model.PriceFromFloat(c.StartingBudget),
	}
	if err := l.Validate(); err != nil {
		return squad.Limits{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return l, nil
}

// SourceTimeout returns the per-attempt timeout.
func (c *Config) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutMS) * time.Millisecond
}

// RefreshInterval returns the pool refresh period, zero when disabled.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// SessionTTL returns how long idle sessions are kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}

// RelayMaxAge returns the relay cache lifetime.
func (c *Config) RelayMaxAge() time.Duration {
	return time.Duration(c.RelayMaxAgeSec) * time.Second
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(nonBlank(c.BootstrapSources)) == 0:
		return fmt.Errorf("%w: at least one bootstrap source is required", ErrInvalidConfig)
	case c.SourceTimeoutMS <= 0:
		return fmt.Errorf("%w: source_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxPayloadBytes <= 0:
		return fmt.Errorf("%w: max_payload_bytes must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit <= 0:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.RefreshIntervalSec < 0:
		return fmt.Errorf("%w: refresh_interval_sec must not be negative", ErrInvalidConfig)
	case c.SessionTTLSec <= 0:
		return fmt.Errorf("%w: session_ttl_sec must be positive", ErrInvalidConfig)
	case c.RelayEnabled && strings.TrimSpace(c.RelayUpstream) == "":
		return fmt.Errorf("%w: relay_upstream must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	_, err := c.SquadLimits()
	return err
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
