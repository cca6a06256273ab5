// Package config reads trailhead's settings from the environment,
// optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/req"
	"github.com/xy-planning-network/trailhead/logger"
)

const (
	// Environment defaults
	EnvironmentEnvVar  = "ENVIRONMENT"
	defaultEnvironment = trailhead.Development

	// Log defaults
	LogLevelEnvVar  = "LOG_LEVEL"
	defaultLogLevel = logger.LogLevelInfo
	SentryDSNEnvVar = "SENTRY_DSN"

	// Web server defaults
	HostEnvVar                = "HOST"
	DefaultHost               = "localhost"
	PortEnvVar                = "PORT"
	DefaultPort               = "3000"
	ServerReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	ServerWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Request normalization defaults
	MaxBodyBytesEnvVar   = "MAX_BODY_BYTES"
	MaxMemoryBytesEnvVar = "MAX_MEMORY_BYTES"
	AddEmptyEnvVar       = "ADD_EMPTY"
	defaultAddEmpty      = true
	RulesFileEnvVar      = "RULES_FILE"

	// Rate limit defaults; a RATE_LIMIT of 0 turns limiting off
	RateLimitEnvVar  = "RATE_LIMIT"
	RateBurstEnvVar  = "RATE_BURST"
	defaultRateBurst = 20
)

// Config holds what a trailhead server needs to run.
type Config struct {
	Env          trailhead.Environment
	LogLevel     logger.LogLevel
	SentryDSN    string
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MaxBodyBytes   int64
	MaxMemoryBytes int64
	AddEmpty       bool
	RulesFile      string

	// RateLimit is requests per second allowed each client IP address.
	RateLimit int
	RateBurst int
}

// Load reads envFiles into the environment, without overriding variables already set,
// then builds a Config from it.
// A missing env file is skipped; with no envFiles, Load tries ".env".
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("%w: failed loading %s: %s", trailhead.ErrBadConfig, file, err)
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// FromEnv builds a Config from the environment, using defaults for unset or unparsable variables.
func FromEnv() Config {
	return Config{
		Env:            trailhead.EnvVarOrEnv(EnvironmentEnvVar, defaultEnvironment),
		LogLevel:       trailhead.EnvVarOrLogLevel(LogLevelEnvVar, defaultLogLevel),
		SentryDSN:      os.Getenv(SentryDSNEnvVar),
		Host:           trailhead.EnvVarOrString(HostEnvVar, DefaultHost),
		Port:           trailhead.EnvVarOrString(PortEnvVar, DefaultPort),
		ReadTimeout:    trailhead.EnvVarOrDuration(ServerReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout:   trailhead.EnvVarOrDuration(ServerWriteTimeoutEnvVar, DefaultServerWriteTimeout),
		MaxBodyBytes:   trailhead.EnvVarOrInt64(MaxBodyBytesEnvVar, req.DefaultMaxBodyBytes),
		MaxMemoryBytes: trailhead.EnvVarOrInt64(MaxMemoryBytesEnvVar, req.DefaultMaxMemory),
		AddEmpty:       trailhead.EnvVarOrBool(AddEmptyEnvVar, defaultAddEmpty),
		RulesFile:      os.Getenv(RulesFileEnvVar),
		RateLimit:      trailhead.EnvVarOrInt(RateLimitEnvVar, 0),
		RateBurst:      trailhead.EnvVarOrInt(RateBurstEnvVar, defaultRateBurst),
	}
}

// Validate reports an ErrBadConfig naming the first setting that cannot work.
func (c Config) Validate() error {
	if err := c.Env.Valid(); err != nil {
		return fmt.Errorf("%w: environment %q", trailhead.ErrBadConfig, c.Env)
	}

	if c.LogLevel == logger.LogLevelUnk {
		return fmt.Errorf("%w: unknown log level", trailhead.ErrBadConfig)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", trailhead.ErrBadConfig, MaxBodyBytesEnvVar, c.MaxBodyBytes)
	}

	if c.MaxMemoryBytes <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", trailhead.ErrBadConfig, MaxMemoryBytesEnvVar, c.MaxMemoryBytes)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %d", trailhead.ErrBadConfig, RateLimitEnvVar, c.RateLimit)
	}

	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", trailhead.ErrBadConfig, RateBurstEnvVar, c.RateBurst)
	}

	if _, err := net.LookupPort("tcp", c.Port); err != nil {
		return fmt.Errorf("%w: %s %q: %s", trailhead.ErrBadConfig, PortEnvVar, c.Port, err)
	}

	return nil
}

// Addr joins Host and Port for a listener.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Logger constructs the logger c describes.
// With a SentryDSN, errors are shipped to Sentry too.
func (c Config) Logger() logger.Logger {
	l := logger.NewLogger(logger.WithEnv(c.Env.String()), logger.WithLevel(c.LogLevel))
	if tl, ok := l.(*logger.TrailheadLogger); ok && c.SentryDSN != "" {
		return logger.NewSentryLogger(tl, c.SentryDSN)
	}

	return l
}

// Rules loads the rules RulesFile names, or returns none if it is unset.
// The rules are checked against the built-in filters.
func (c Config) Rules() (filter.Rules, error) {
	if c.RulesFile == "" {
		return filter.Rules{}, nil
	}

	f, err := os.Open(c.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", trailhead.ErrBadConfig, err)
	}
	defer f.Close()

	rules, err := filter.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("failed loading %s: %w", c.RulesFile, err)
	}

	if _, err := filter.NewRegistry().Compile(rules); err != nil {
		return nil, fmt.Errorf("failed checking %s: %w", c.RulesFile, err)
	}

	return rules, nil
}

// RequestOptions translates c into the req.Options every normalized request uses.
func (c Config) RequestOptions() []req.Option {
	return []req.Option{
		req.WithMaxBodyBytes(c.MaxBodyBytes),
		req.WithMaxMemory(c.MaxMemoryBytes),
		req.WithAddEmpty(c.AddEmpty),
	}
}
