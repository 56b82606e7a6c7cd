package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"__", "pop up"}, cfg.Splitter.Separators)
	assert.Equal(t, "</br>", cfg.Splitter.LineBreakToken)
	assert.Equal(t, "cisco_ios", cfg.Extract.Platform)
	assert.Equal(t, ".log", cfg.Extract.LogExtension)
	assert.Equal(t, "commands_map.json", cfg.Extract.CommandsMapFile)
	assert.Equal(t, 30*time.Second, cfg.FileTimeout())
	assert.False(t, cfg.ClickHouse.Enabled)
	assert.Empty(t, cfg.ProcessedStorage)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
Splitter:
  RootDir: /data/captures
  Separators: ["====", "--More--"]
Extract:
  Platform: cisco_nxos
  FileTimeout: 5
Logging:
  Level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/captures", cfg.Splitter.RootDir)
	assert.Equal(t, []string{"====", "--More--"}, cfg.Splitter.Separators)
	assert.Equal(t, "cisco_nxos", cfg.Extract.Platform)
	assert.Equal(t, 5*time.Second, cfg.FileTimeout())
	assert.Equal(t, "debug", cfg.Logging.Level)
	// не указанные поля остаются по умолчанию
	assert.Equal(t, "./ntc-templates/templates", cfg.Extract.TemplateDir)
}

func TestLoadConfig_BOMAndTabs(t *testing.T) {
	path := writeConfig(t, "\xEF\xBB\xBFExtract:\n\tPlatform: juniper_junos\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "juniper_junos", cfg.Extract.Platform)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("NETLOG_EXTRACT_PLATFORM", "arista_eos")
	path := writeConfig(t, "Extract:\n  Platform: cisco_ios\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "arista_eos", cfg.Extract.Platform)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no separators", func(c *Config) { c.Splitter.Separators = nil }},
		{"empty separator", func(c *Config) { c.Splitter.Separators = []string{"__", ""} }},
		{"no extension", func(c *Config) { c.Extract.LogExtension = "" }},
		{"negative timeout", func(c *Config) { c.Extract.FileTimeout = -1 }},
		{"clickhouse without address", func(c *Config) { c.ClickHouse.Enabled = true; c.ClickHouse.Database = "db" }},
		{"clickhouse without batch", func(c *Config) {
			c.ClickHouse = ClickHouseConfig{Enabled: true, Address: "ch:9000", Database: "db", Table: "t"}
			c.BatchSize = 0
		}},
		{"unknown storage", func(c *Config) { c.ProcessedStorage = "s3" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
