// Package config handles loading and parsing the application's configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
)

// Config holds all configuration for the application.
// We use struct tags to explicitly map TOML keys to struct fields.
type Config struct {
	NodeID         string        `toml:"node_id"` // Raft server id of this process
	Host           string        `toml:"host"`
	Port           int           `toml:"port"`
	Seed           bool          `toml:"seed"`        // start with the sample books
	AllowBlank     bool          `toml:"allow_blank"` // accept empty title/author
	LogLevel       string        `toml:"log_level"`
	LogJSON        bool          `toml:"log_json"`
	ApplyTimeout   time.Duration `toml:"apply_timeout"`
	AllowedOrigins []string      `toml:"allowed_origins"` // CORS origin hosts
	Raft           RaftConfig    `toml:"raft"`
}

// RaftConfig tunes the command log. The defaults match raft.DefaultConfig.
type RaftConfig struct {
	HeartbeatTimeout   time.Duration `toml:"heartbeat_timeout"`
	ElectionTimeout    time.Duration `toml:"election_timeout"`
	LeaderLeaseTimeout time.Duration `toml:"leader_lease_timeout"`
	CommitTimeout      time.Duration `toml:"commit_timeout"`
	SnapshotThreshold  uint64        `toml:"snapshot_threshold"`
}

// New returns a new Config with default values.
func New() *Config {
	return &Config{
		NodeID:         "node1",
		Host:           "localhost",
		Port:           8080,
		Seed:           true,
		LogLevel:       "info",
		ApplyTimeout:   5 * time.Second,
		AllowedOrigins: []string{"localhost"},
		Raft: RaftConfig{
			HeartbeatTimeout:   time.Second,
			ElectionTimeout:    time.Second,
			LeaderLeaseTimeout: 500 * time.Millisecond,
			CommitTimeout:      50 * time.Millisecond,
			SnapshotThreshold:  8192,
		},
	}
}

// Load reads a configuration file from the given path and populates the Config struct.
func (c *Config) Load(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return c.Validate()
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks values that toml cannot check by type alone.
func (c *Config) Validate() error {
	var errs []error
	if c.NodeID == "" {
		errs = append(errs, errors.New("node_id must not be empty"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if c.ApplyTimeout <= 0 {
		errs = append(errs, errors.New("apply_timeout must be positive"))
	}
	r := c.Raft
	if r.HeartbeatTimeout < 5*time.Millisecond || r.ElectionTimeout < 5*time.Millisecond {
		errs = append(errs, errors.New("raft heartbeat_timeout and election_timeout must be at least 5ms"))
	}
	if r.LeaderLeaseTimeout < 5*time.Millisecond || r.LeaderLeaseTimeout > r.HeartbeatTimeout {
		errs = append(errs, errors.New("raft leader_lease_timeout must be between 5ms and heartbeat_timeout"))
	}
	if r.CommitTimeout < time.Millisecond {
		errs = append(errs, errors.New("raft commit_timeout must be at least 1ms"))
	}
	return errors.Join(errs...)
}
