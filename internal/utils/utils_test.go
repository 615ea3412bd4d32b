package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigFileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	configPath := filepath.Join(root, ConfigFileName)
	require.NoError(t, WriteConfig(configPath, &Config{OutputDir: "exports", Driver: "sqlite"}))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, configPath, found)
}

func TestFindConfigFilePrefersNearest(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, WriteConfig(filepath.Join(root, ConfigFileName), DefaultConfig()))
	require.NoError(t, WriteConfig(filepath.Join(nested, ConfigFileName), DefaultConfig()))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nested, ConfigFileName), found)
}

func TestFindConfigFileFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := FindConfigFile(t.TempDir())
	require.Error(t, err)

	global := GlobalConfigPath(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(global), 0755))
	require.NoError(t, WriteConfig(global, DefaultConfig()))

	found, err := FindConfigFile(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, global, found)
}

func TestReadConfigKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("output_dir: exports\nodbc_driver: MDBTools\n"), 0644))

	config, err := ReadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "exports", config.OutputDir)
	assert.Equal(t, "MDBTools", config.ODBCDriver)
	assert.Equal(t, "jet", config.Driver)
	assert.Equal(t, "info", config.LogLevel)
}

func TestReadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("output_dir: [unclosed"), 0644))

	_, err := ReadConfig(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestWriteConfigRoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	want := &Config{OutputDir: "out", Driver: "duckdb", MetricsFile: "run.prom", LogLevel: "debug"}
	require.NoError(t, WriteConfig(configPath, want))

	got, err := ReadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	_, err = NewLogger(&buf, "loud")
	assert.Error(t, err)
}
