package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsaude/roster-engine/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFromPath_Valid(t *testing.T) {
	// GIVEN: A complete configuration file
	// WHEN: Loading it
	// THEN: All fields are populated from the file

	path := writeConfig(t, `
listenAddr: ":9090"
databasePath: "/var/lib/roster/roster.db"
logLevel: debug
allowedOrigins:
  - "https://ds.example.org"
`)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/roster/roster.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://ds.example.org"}, cfg.AllowedOrigins)
}

func TestLoadFromPath_PartialFileKeepsDefaults(t *testing.T) {
	// GIVEN: A file overriding only the listen address
	// WHEN: Loading it
	// THEN: Unspecified fields keep their defaults

	path := writeConfig(t, `listenAddr: ":3000"`)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, config.Default().DatabasePath, cfg.DatabasePath)
	assert.Equal(t, config.Default().LogLevel, cfg.LogLevel)
}

func TestLoadFromPath_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `logLevel: verbose`)

	_, err := config.LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := writeConfig(t, `listenAddr: [`)

	_, err := config.LoadFromPath(path)
	assert.Error(t, err)
}

func TestLoadFromPath_Missing(t *testing.T) {
	_, err := config.LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	// GIVEN: The factory defaults
	// WHEN: Validating them
	// THEN: They pass, so a configless start always works

	assert.NoError(t, config.Validate(config.Default()))
}
