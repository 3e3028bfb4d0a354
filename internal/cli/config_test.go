package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwell/migrate/internal/entity"
	"github.com/emberwell/migrate/internal/ingest"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "migrate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
source:
  dir: ./export
target:
  database: ./migrate.db
workers: 8
timeout: 10m
max_pages: 500
documents:
  users: users-2024.csv
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./export", cfg.Source.Dir)
	assert.Equal(t, "./migrate.db", cfg.Target.Database)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 500, cfg.MaxPages)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout())

	docs := cfg.DocumentOverrides()
	assert.Equal(t, "users-2024.csv", docs[entity.TypeUser])

	assert.Equal(t, ingest.DirSource{Dir: "./export"}, cfg.NewSource())
}

func TestLoadConfig_RemoteStrategies(t *testing.T) {
	path := writeConfig(t, `
source:
  url: https://legacy.example.com/exports
target:
  endpoint: https://store.example.com/v1
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	src, ok := cfg.NewSource().(ingest.HTTPSource)
	require.True(t, ok)
	assert.Equal(t, "https://legacy.example.com/exports", src.BaseURL)
	assert.Zero(t, cfg.RunTimeout(), "unset timeout means no deadline")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "unknown key",
			body: "source:\n  dir: ./x\ntarget:\n  database: ./d\nworker_count: 4\n",
		},
		{
			name: "wrong type",
			body: "source:\n  dir: ./x\ntarget:\n  database: ./d\nworkers: many\n",
		},
		{
			name: "no source mechanism",
			body: "target:\n  database: ./d\n",
		},
		{
			name: "both source mechanisms",
			body: "source:\n  dir: ./x\n  url: https://e\ntarget:\n  database: ./d\n",
		},
		{
			name: "both target strategies",
			body: "source:\n  dir: ./x\ntarget:\n  database: ./d\n  endpoint: https://e\n",
		},
		{
			name: "bad timeout",
			body: "source:\n  dir: ./x\ntarget:\n  database: ./d\ntimeout: soon\n",
		},
		{
			name: "unknown document entity",
			body: "source:\n  dir: ./x\ntarget:\n  database: ./d\ndocuments:\n  invoices: invoices.csv\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "want *ConfigError, got %v", err)
			assert.Equal(t, ErrCodeConfigInvalid, ce.Code)
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrCodeConfigNotFound, ce.Code)
}
