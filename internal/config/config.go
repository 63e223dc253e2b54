package config

import (
	"strconv"
	"time"
)

// DefaultPort is the port the relay listens on when nothing else is configured.
const DefaultPort = 8081

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	Port              int           `mapstructure:"port" yaml:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	SendBuffer        int           `mapstructure:"send_buffer" yaml:"send_buffer"`
	ReadLimit         int64         `mapstructure:"read_limit" yaml:"read_limit"`
	RateLimit         int           `mapstructure:"rate_limit" yaml:"rate_limit"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	Version           string        `mapstructure:"version" yaml:"version"`
	SpawnSeed         int64         `mapstructure:"spawn_seed" yaml:"spawn_seed"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Port:              DefaultPort,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		WriteTimeout:      5 * time.Second,
		SendBuffer:        256,
		ReadLimit:         32 << 10,
		LogLevel:          "info",
		LogFormat:         "console",
		Version:           "1.0.0",
		SpawnSeed:         1,
	}
}

// ListenAddr returns Addr when set, otherwise ":<Port>".
func (c *Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return ":" + strconv.Itoa(c.Port)
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.Port != 0 {
		c.Port = other.Port
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.SendBuffer != 0 {
		c.SendBuffer = other.SendBuffer
	}
	if other.ReadLimit != 0 {
		c.ReadLimit = other.ReadLimit
	}
	if other.RateLimit != 0 {
		c.RateLimit = other.RateLimit
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.Version != "" {
		c.Version = other.Version
	}
	if other.SpawnSeed != 0 {
		c.SpawnSeed = other.SpawnSeed
	}
}
