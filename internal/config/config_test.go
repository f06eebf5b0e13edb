package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
addr: 127.0.0.1:2121
root: /srv/ftp
max_connections: 8
max_idle_time: 90s
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:2121", cfg.Addr)
	assert.Equal(t, "/srv/ftp", cfg.Root)
	assert.Equal(t, 1024, cfg.BufferSize)
	assert.Equal(t, 8, cfg.MaxConnections)
	assert.Equal(t, 90*time.Second, cfg.MaxIdleTime)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative buffer", "buffer_size: -1"},
		{"negative connections", "max_connections: -2"},
		{"bad level", "log:\n  level: loud"},
		{"bad format", "log:\n  format: xml"},
		{"not yaml", "addr: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rpcftpd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("passive_host: 10.0.0.5\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.PassiveHost)
	assert.Equal(t, ":1099", cfg.Addr)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("trace")
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}
