package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_AllFields(t *testing.T) {
	envVars := map[string]string{
		"RSHELL_HOST":         "127.0.0.1",
		"RSHELL_PORT":         "5555",
		"RSHELL_BACKLOG":      "16",
		"RSHELL_SHELL":        "/bin/bash",
		"RSHELL_CWD_SCOPE":    "isolated",
		"RSHELL_EXEC_TIMEOUT": "30s",
		"RSHELL_STATUS_ADDR":  "127.0.0.1:9090",
		"RSHELL_GRACE_PERIOD": "2s",
		"RSHELL_VERBOSE":      "3",
		"RSHELL_CONFIG":       "/etc/rshell.yaml",
	}
	for k, v := range envVars {
		t.Setenv(k, v)
	}

	cfg := Default()
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 5555, cfg.Port)
	assert.Equal(t, 16, cfg.Backlog)
	assert.Equal(t, "/bin/bash", cfg.Shell)
	assert.Equal(t, ScopeIsolated, cfg.CwdScope)
	assert.Equal(t, 30*time.Second, cfg.ExecTimeout)
	assert.Equal(t, "127.0.0.1:9090", cfg.StatusAddr)
	assert.Equal(t, 2*time.Second, cfg.GracePeriod)
	assert.Equal(t, 3, cfg.Verbose)
	assert.Equal(t, "/etc/rshell.yaml", cfg.ConfigFile)
	assert.Equal(t, "/etc/rshell.yaml", ConfigPathFromEnv())
}

func TestLoadFromEnv_NoOverrideWhenUnset(t *testing.T) {
	for _, key := range []string{"RSHELL_HOST", "RSHELL_PORT", "RSHELL_CWD_SCOPE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Default()
	cfg.Host = "original"
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, "original", cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, ScopeShared, cfg.CwdScope)
}

func TestLoadFromEnv_InvalidInt(t *testing.T) {
	t.Setenv("RSHELL_PORT", "not-a-number")

	err := LoadFromEnv(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "env")
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rshell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
host: 127.0.0.1
port: 6000
cwd_scope: isolated
exec_timeout: 1m
grace_period: 250ms
`)

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, ScopeIsolated, cfg.CwdScope)
	assert.Equal(t, time.Minute, cfg.ExecTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.GracePeriod)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultBacklog, cfg.Backlog)
	assert.Equal(t, DefaultShell(), cfg.Shell)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadFile_Empty(t *testing.T) {
	path := writeFile(t, "")

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeFile(t, "hots: 127.0.0.1\n")

	err := LoadFile(path, Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadFile_Missing(t *testing.T) {
	err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestPrecedence_EnvOverFile verifies the env layer wins over the file.
func TestPrecedence_EnvOverFile(t *testing.T) {
	path := writeFile(t, "port: 6000\nhost: 10.0.0.1\n")
	t.Setenv("RSHELL_PORT", "7000")

	cfg := Default()
	require.NoError(t, LoadFile(path, cfg))
	require.NoError(t, LoadFromEnv(cfg))

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "10.0.0.1", cfg.Host)
}
