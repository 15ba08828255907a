package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_PIPE_PATH       = "/tmp/cyg_pipe_test"
	DEFAULT_POLL_TIMEOUT_MS = 1000
)

type ScheduleCfg struct {
	Cron string `yaml:"cron"` // cronexpr expression, empty runs once
	Runs int    `yaml:"runs"` // 0 keeps running until interrupted
}

type MetricsCfg struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile path, empty disables metrics
}

type LoggingCfg struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type Config struct {
	PipePath      string      `yaml:"pipe_path"`
	PollTimeoutMs int         `yaml:"poll_timeout_ms"`
	Schedule      ScheduleCfg `yaml:"schedule"`
	Metrics       MetricsCfg  `yaml:"metrics"`
	Logging       LoggingCfg  `yaml:"logging"`
}

var (
	errNegativeTimeout = errors.New("poll_timeout_ms cannot be negative")
	errNegativeRuns    = errors.New("schedule.runs cannot be negative")
)

// The configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.validateAndDefault()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.PipePath == "" {
		c.PipePath = DEFAULT_PIPE_PATH
	}

	if c.PollTimeoutMs < 0 {
		return errNegativeTimeout
	}
	if c.PollTimeoutMs == 0 {
		c.PollTimeoutMs = DEFAULT_POLL_TIMEOUT_MS
	}

	if c.Schedule.Runs < 0 {
		return errNegativeRuns
	}
	return nil
}

// Validates the config again, after flags have been applied on top of it.
func (c *Config) Validate() error {
	return c.validateAndDefault()
}

func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutMs) * time.Millisecond
}
