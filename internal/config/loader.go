package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "SQUAD_"
	EnvConfig = "SQUAD_CONFIG"
	EnvDotenv = "SQUAD_DOTENV"

	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, an optional .env file, an
// optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. .env from SQUAD_DOTENV, or ./.env when present; never overrides the
//     real environment
//  3. file (YAML) if SQUAD_CONFIG is set
//  4. env (prefix SQUAD_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SQUAD_SOURCE_TIMEOUT_MS -> source_timeout_ms, and
	// SQUAD_POSITION_LIMITS_GK -> position_limits.gk
	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	cfg.BootstrapSources, cfg.FixturesSources, cfg.PositionLimits = nil, nil, nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if !k.Exists("bootstrap_sources") {
		cfg.BootstrapSources = base.BootstrapSources
	}
	if !k.Exists("fixtures_sources") {
		cfg.FixturesSources = base.FixturesSources
	}
	cfg.BootstrapSources = nonBlank(cfg.BootstrapSources)
	cfg.FixturesSources = nonBlank(cfg.FixturesSources)
	cfg.PositionLimits = mergeLimits(base.PositionLimits, cfg.PositionLimits)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if rest, ok := strings.CutPrefix(s, "position_limits_"); ok {
		return "position_limits." + rest
	}
	return s
}

func loadDotenv() error {
	path := os.Getenv(EnvDotenv)
	if path == "" {
		if _, err := os.Stat(defaultDotenv); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = defaultDotenv
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// mergeLimits overlays override onto the defaults with case-folded keys.
func mergeLimits(defaults, override map[string]int) map[string]int {
	out := make(map[string]int, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range override {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
