package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestConfig_Defaults(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.True(t, cfg.Seed)
	assert.False(t, cfg.AllowBlank)
	assert.Equal(t, []string{"localhost"}, cfg.AllowedOrigins)
}

func TestConfig_Load(t *testing.T) {
	// --- Test Case 1: Valid configuration file ---
	path := writeConfig(t, "valid.toml", `
node_id = "books-a"
host = "127.0.0.1"
port = 9000
seed = false
allow_blank = true
log_level = "debug"
apply_timeout = "2s"
allowed_origins = ["localhost", "books.example"]

[raft]
heartbeat_timeout = "100ms"
election_timeout = "100ms"
leader_lease_timeout = "50ms"
`)
	cfg := New()
	require.NoError(t, cfg.Load(path))

	assert.Equal(t, "books-a", cfg.NodeID)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.False(t, cfg.Seed)
	assert.True(t, cfg.AllowBlank)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.ApplyTimeout)
	assert.Equal(t, []string{"localhost", "books.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 100*time.Millisecond, cfg.Raft.HeartbeatTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Raft.LeaderLeaseTimeout)
	// untouched keys keep their defaults
	assert.Equal(t, 50*time.Millisecond, cfg.Raft.CommitTimeout)

	// --- Test Case 2: File does not exist ---
	err := New().Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	assert.Error(t, err)

	// --- Test Case 3: Invalid TOML format ---
	path = writeConfig(t, "invalid.toml", `host = 127.0.0.1`)
	assert.Error(t, New().Load(path))

	// --- Test Case 4: Unknown key ---
	path = writeConfig(t, "unknown.toml", `data_dir = "/tmp"`)
	err = New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data_dir")
}

func TestConfig_Validate(t *testing.T) {
	cfg := New()
	cfg.NodeID = ""
	cfg.Port = 70000
	cfg.LogLevel = "loud"
	cfg.ApplyTimeout = 0
	cfg.Raft.LeaderLeaseTimeout = 2 * cfg.Raft.HeartbeatTimeout

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"node_id", "port", "log_level", "apply_timeout", "leader_lease_timeout"} {
		assert.Contains(t, err.Error(), want)
	}
}
