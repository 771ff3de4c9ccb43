// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"medichat/models"
	"medichat/utils"

	"github.com/caarlos0/env/v11"
)

// Config carries every runtime setting.
type Config struct {
	Server    ServerConfig
	Stream    StreamConfig
	RateLimit RateLimitConfig
	Discord   DiscordConfig

	// CatalogPath overrides the embedded knowledge base.
	CatalogPath string `env:"CATALOG_PATH"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"8080"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// StreamConfig holds the default streaming behaviour.
type StreamConfig struct {
	Mode       models.StreamMode `env:"STREAMING_MODE" envDefault:"chunk"`
	ChunkSize  int               `env:"CHUNK_SIZE" envDefault:"8"`
	DelayScale float64           `env:"STREAM_DELAY_SCALE" envDefault:"1.0"`
}

// RateLimitConfig is the per-client token bucket for chat requests.
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"2"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

// DiscordConfig enables the optional Discord transport.
type DiscordConfig struct {
	Enabled       bool   `env:"ENABLE_DISCORD" envDefault:"false"`
	Token         string `env:"DISCORD_BOT_TOKEN"`
	CommandPrefix string `env:"DISCORD_COMMAND_PREFIX" envDefault:"!medi "`
}

// Load reads .env files (if any) and then the process environment.
func Load() (*Config, error) {
	if err := utils.LoadEnvWithFallback(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv parses the process environment without touching .env files.
func FromEnv() (*Config, error) {
	return parse(env.Options{})
}

// FromMap parses configuration from vars instead of the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %s", c.Server.ShutdownTimeout)
	}
	if !c.Stream.Mode.Valid() {
		return fmt.Errorf("invalid STREAMING_MODE %q (want chunk or word)", c.Stream.Mode)
	}
	if c.Stream.ChunkSize <= 0 {
		return fmt.Errorf("invalid CHUNK_SIZE %d", c.Stream.ChunkSize)
	}
	if c.Stream.DelayScale < 0 {
		return fmt.Errorf("invalid STREAM_DELAY_SCALE %g", c.Stream.DelayScale)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("invalid rate limit %g/s burst %d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.Discord.Enabled && strings.TrimSpace(c.Discord.Token) == "" {
		return fmt.Errorf("ENABLE_DISCORD is set but DISCORD_BOT_TOKEN is empty")
	}
	return nil
}

// Addr returns the listen address, e.g. ":8080".
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
