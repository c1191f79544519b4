package config

import (
	"errors"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "SCHOLARTRACK_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	openAlexMailtoEnv = "OPENALEX_MAILTO"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// ErrMissingDSN aborts a run before any adapter can write.
var ErrMissingDSN = errors.New("config: database DSN is not set")

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	OpenAlex      OpenAlexConfig     `yaml:"openalex"`
	Tracker       TrackerConfig      `yaml:"tracker"`
	Report        ReportConfig       `yaml:"report"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines the timezone recurring runs are anchored to.
type SchedulerConfig struct {
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// OpenAlexConfig wires the bibliographic API client.
type OpenAlexConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	Mailto         string `yaml:"mailto"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout returns the per-request timeout as a duration.
func (o OpenAlexConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// TrackerConfig selects the activity source strategy and the snapshot policy
// for entities whose identifier fails shape validation.
type TrackerConfig struct {
	Source string `yaml:"source"`
	// DropUnresolved restores the historical behavior of dropping prior
	// snapshot rows for entities with unresolvable identifiers. The default
	// (false) carries their last-known state forward.
	DropUnresolved bool `yaml:"dropUnresolved"`
}

// ReportConfig tunes the monthly aggregation.
type ReportConfig struct {
	// Countries restricts aggregation to the listed countries. Empty means
	// every non-empty country value qualifies.
	Countries       []string `yaml:"countries"`
	PriorityDays    int      `yaml:"priorityDays"`
	TopUniversities int      `yaml:"topUniversities"`
	TopMachines     int      `yaml:"topMachines"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports fatal configuration errors. Called before any adapter is
// constructed so a bad config can never partially apply writes.
func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return ErrMissingDSN
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(openAlexMailtoEnv); v != "" {
		c.OpenAlex.Mailto = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.OpenAlex.BaseURL != "" {
		base.OpenAlex.BaseURL = override.OpenAlex.BaseURL
	}
	if override.OpenAlex.Mailto != "" {
		base.OpenAlex.Mailto = override.OpenAlex.Mailto
	}
	if override.OpenAlex.TimeoutSeconds > 0 {
		base.OpenAlex.TimeoutSeconds = override.OpenAlex.TimeoutSeconds
	}

	if override.Tracker.Source != "" {
		base.Tracker.Source = override.Tracker.Source
	}
	base.Tracker.DropUnresolved = override.Tracker.DropUnresolved || base.Tracker.DropUnresolved

	if len(override.Report.Countries) > 0 {
		base.Report.Countries = override.Report.Countries
	}
	if override.Report.PriorityDays > 0 {
		base.Report.PriorityDays = override.Report.PriorityDays
	}
	if override.Report.TopUniversities > 0 {
		base.Report.TopUniversities = override.Report.TopUniversities
	}
	if override.Report.TopMachines > 0 {
		base.Report.TopMachines = override.Report.TopMachines
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{DSN: ""},
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		OpenAlex: OpenAlexConfig{
			BaseURL:        "https://api.openalex.org",
			Mailto:         "",
			TimeoutSeconds: 30,
		},
		Tracker: TrackerConfig{Source: "openalex"},
		Report: ReportConfig{
			Countries:       nil,
			PriorityDays:    90,
			TopUniversities: 5,
			TopMachines:     8,
		},
	}
}
