package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Source.Kind = SourceREST
	cfg.Source.URL = "https://example.supabase.co"
	cfg.Display.HiddenUsers = []string{"spammer"}
	require.NoError(t, cfg.SaveTo(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Source, loaded.Source)
	assert.Equal(t, []string{"spammer"}, loaded.Display.HiddenUsers)
	assert.Equal(t, cfg.Schedule, loaded.Schedule)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[analysis]
batch_size = 5
`), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Analysis.BatchSize)
	assert.Equal(t, ProviderAnthropic, cfg.Analysis.LLMProvider)
	assert.Equal(t, "18:00", cfg.Schedule.SummaryTime)
}

func TestLoadFrom_Missing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, Default().SaveTo(path))

	t.Setenv("SENTIVIEW_SOURCE_URL", "https://env.example.com")
	t.Setenv("SENTIVIEW_ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("SENTIVIEW_LOG_LEVEL", "debug")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Source.URL)
	assert.Equal(t, "sk-test", cfg.Analysis.APIKey)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown source", func(c *Config) { c.Source.Kind = "ftp" }},
		{"rest without url", func(c *Config) { c.Source.Kind = SourceREST }},
		{"file without path", func(c *Config) { c.Source.Kind = SourceFile }},
		{"zero batch", func(c *Config) { c.Analysis.BatchSize = 0 }},
		{"bad interval", func(c *Config) { c.Schedule.RefreshIntervalHours = 0 }},
		{"bad time", func(c *Config) { c.Schedule.SummaryTime = "6pm" }},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{"bad format", func(c *Config) { c.Report.Format = "gif" }},
		{"zero max per run", func(c *Config) { c.Analysis.MaxPerRun = 0 }},
		{"bad summary window", func(c *Config) { c.Schedule.SummaryWindow = "yesterday" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveHiddenUsers_KeepsEnvOutOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	onDisk := Default()
	onDisk.Source.URL = "https://file.example.com"
	require.NoError(t, onDisk.SaveTo(path))

	t.Setenv("SENTIVIEW_SOURCE_URL", "https://env.example.com")
	t.Setenv("SENTIVIEW_ANTHROPIC_API_KEY", "sk-from-env")
	t.Setenv("SENTIVIEW_SMTP_PASS", "smtp-from-env")

	require.NoError(t, SaveHiddenUsers(path, []string{"bob"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-from-env")
	assert.NotContains(t, string(data), "smtp-from-env")
	assert.NotContains(t, string(data), "env.example.com")

	loaded, err := loadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, loaded.Display.HiddenUsers)
	assert.Equal(t, "https://file.example.com", loaded.Source.URL)
}

func TestSaveHiddenUsers_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	require.NoError(t, SaveHiddenUsers(path, []string{"carol"}))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, loaded.Display.HiddenUsers)
}

func TestLoadOrDefault_FirstRunWritesNoSecrets(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("SENTIVIEW_ANTHROPIC_API_KEY", "sk-from-env")

	cfg, created, err := LoadOrDefault()
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "sk-from-env", cfg.Analysis.APIKey)

	path, err := ConfigPath()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-from-env")
}

func TestResolvedPaths(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "/tmp/x.db"
	cfg.Report.OutputDir = "/tmp/reports"

	p, err := cfg.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", p)

	d, err := cfg.ReportDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/reports", d)
}
