package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/ibeckermayer/sentiview/internal/sentiment"
)

// Source kinds
const (
	SourceREST  = "rest"
	SourceFile  = "file"
	SourceStore = "store"
)

// ProviderAnthropic is the only supported labelling provider
const ProviderAnthropic = "anthropic"

// Config holds all application configuration
type Config struct {
	Version  int            `toml:"version"`
	Source   SourceConfig   `toml:"source"`
	Database DatabaseConfig `toml:"database"`
	Analysis AnalysisConfig `toml:"analysis"`
	Report   ReportConfig   `toml:"report"`
	Schedule ScheduleConfig `toml:"schedule"`
	Email    EmailConfig    `toml:"email"`
	Display  DisplayConfig  `toml:"display"`
	Logging  LoggingConfig  `toml:"logging"`
}

type SourceConfig struct {
	Kind     string `toml:"kind"` // "rest", "file" or "store"
	URL      string `toml:"url"`
	APIKey   string `toml:"api_key"`
	Table    string `toml:"table"`
	FilePath string `toml:"file_path"`
	Attempts int    `toml:"attempts"`
}

type DatabaseConfig struct {
	Path string `toml:"path"` // empty means <cache dir>/sentiview.db
}

type AnalysisConfig struct {
	LLMProvider string `toml:"llm_provider"`
	APIKey      string `toml:"api_key"`
	Model       string `toml:"model"`
	BatchSize   int    `toml:"batch_size"`
	MaxPerRun   int    `toml:"max_per_run"`

	RequestsPerMinute int `toml:"requests_per_minute"` // 0 means unlimited
}

type ReportConfig struct {
	OutputDir string `toml:"output_dir"` // empty means <cache dir>/reports
	MaxPosts  int    `toml:"max_posts"`
	Format    string `toml:"format"` // "html" or "jpg"
}

type ScheduleConfig struct {
	RefreshIntervalHours int    `toml:"refresh_interval_hours"`
	SummaryTime          string `toml:"summary_time"`
	Timezone             string `toml:"timezone"`
	SummaryWindow        string `toml:"summary_window"`
}

type EmailConfig struct {
	Provider string `toml:"provider"`
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
	FromAddr string `toml:"from_address"`
	ToAddr   string `toml:"to_address"`
}

type DisplayConfig struct {
	HiddenUsers []string `toml:"hidden_users"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  bool   `toml:"file"` // write to a dated file under the cache dir instead of stderr
}

// envOverrides are read from SENTIVIEW_* variables and win over the file.
type envOverrides struct {
	SourceURL    string `envconfig:"SOURCE_URL"`
	SourceKey    string `envconfig:"SOURCE_KEY"`
	AnthropicKey string `envconfig:"ANTHROPIC_API_KEY"`
	SMTPPass     string `envconfig:"SMTP_PASS"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Source: SourceConfig{
			Kind:     SourceStore,
			Table:    "SentimentResult",
			Attempts: 5,
		},
		Analysis: AnalysisConfig{
			LLMProvider: ProviderAnthropic,
			Model:       "claude-sonnet-4-20250514",
			BatchSize:   20,
			MaxPerRun:   200,

			RequestsPerMinute: 50,
		},
		Report: ReportConfig{
			MaxPosts: 50,
			Format:   "html",
		},
		Schedule: ScheduleConfig{
			RefreshIntervalHours: 1,
			SummaryTime:          "18:00",
			Timezone:             "America/New_York",
			SummaryWindow:        "today",
		},
		Email: EmailConfig{
			Provider: "smtp",
			SMTPPort: 587,
		},
		Display: DisplayConfig{
			HiddenUsers: []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the platform-appropriate config directory
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sentiview"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the platform-appropriate cache directory.
// On macOS this is ~/Library/Caches/sentiview/
func CacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "sentiview"), nil
}

// Load reads config from the default path and applies environment overrides
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path on top of the defaults
func LoadFrom(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes path over the defaults. Environment overrides are not
// applied, so the result is safe to write back.
func loadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveHiddenUsers replaces display.hidden_users in the file at path and
// leaves every other value as the file has it. A missing file is created
// from the defaults.
func SaveHiddenUsers(path string, hidden []string) error {
	cfg, err := loadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return err
	}

	cfg.Display.HiddenUsers = hidden
	return cfg.SaveTo(path)
}

// LoadOrDefault loads the config, falling back to (and saving) defaults on
// first run. The returned bool reports whether a new file was created.
func LoadOrDefault() (*Config, bool, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	// Write the defaults before the environment is layered on top
	cfg = Default()
	if err := cfg.Save(); err != nil {
		return nil, false, fmt.Errorf("save default config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("sentiview", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	if env.SourceURL != "" {
		c.Source.URL = env.SourceURL
	}
	if env.SourceKey != "" {
		c.Source.APIKey = env.SourceKey
	}
	if env.AnthropicKey != "" {
		c.Analysis.APIKey = env.AnthropicKey
	}
	if env.SMTPPass != "" {
		c.Email.SMTPPass = env.SMTPPass
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceREST:
		if c.Source.URL == "" {
			return errors.New("source.url is required for the rest source")
		}
	case SourceFile:
		if c.Source.FilePath == "" {
			return errors.New("source.file_path is required for the file source")
		}
	case SourceStore:
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}

	if c.Analysis.BatchSize <= 0 {
		return fmt.Errorf("analysis.batch_size must be positive, got %d", c.Analysis.BatchSize)
	}
	if c.Analysis.MaxPerRun <= 0 {
		return fmt.Errorf("analysis.max_per_run must be positive, got %d", c.Analysis.MaxPerRun)
	}
	if c.Schedule.RefreshIntervalHours <= 0 || c.Schedule.RefreshIntervalHours > 23 {
		return fmt.Errorf("schedule.refresh_interval_hours must be between 1 and 23, got %d", c.Schedule.RefreshIntervalHours)
	}
	if _, err := time.Parse("15:04", c.Schedule.SummaryTime); err != nil {
		return fmt.Errorf("schedule.summary_time: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if _, err := sentiment.ParseWindow(c.Schedule.SummaryWindow); err != nil {
		return fmt.Errorf("schedule.summary_window: %w", err)
	}
	switch c.Report.Format {
	case "html", "jpg":
	default:
		return fmt.Errorf("report.format must be html or jpg, got %q", c.Report.Format)
	}
	return nil
}

// DatabasePath resolves the SQLite path
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sentiview.db"), nil
}

// ReportDir resolves the report output directory
func (c *Config) ReportDir() (string, error) {
	if c.Report.OutputDir != "" {
		return c.Report.OutputDir, nil
	}
	dir, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "reports"), nil
}

// Save writes config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
