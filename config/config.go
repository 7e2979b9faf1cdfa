package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	Environment EnvironmentConfig

	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	Schedule ScheduleConfig
	Session  SessionConfig
	Storage  StorageConfig

	GoogleCalendar GoogleCalendarConfig
	ICSFeeds       []ICSFeedConfig
	Sync           SyncConfig

	// Optional chat front end for the dispatcher.
	Telegram TelegramConfig

	// Optional; enables the model-assisted slot finder.
	LLM LLMConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
	// APIKey protects /api/v1 when set.
	APIKey string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// ScheduleConfig holds the workday and search parameters.
type ScheduleConfig struct {
	Timezone                    string
	WorkdayStart                string
	WorkdayEnd                  string
	BufferMinutes               int
	RecommendationBufferMinutes int
	MinBlockMinutes             int
	DefaultEventMinutes         int
	LockTimeout                 time.Duration
	ArchiveWeeks                bool
	SlotFinder                  string // "greedy" or "llm"
}

type SessionConfig struct {
	TTL         time.Duration
	MaxSessions int
}

type StorageConfig struct {
	Driver   string // memory, file, redis, postgres
	File     FileStorageConfig
	Redis    RedisConfig
	Postgres PostgresConfig
}

type FileStorageConfig struct {
	Dir string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type PostgresConfig struct {
	DSN string
}

type GoogleCalendarConfig struct {
	Enabled           bool
	CredentialsPath   string
	TokenPath         string
	CalendarID        string
	RequestsPerSecond float64
}

type TelegramConfig struct {
	BotToken      string
	WebhookURL    string
	WebhookSecret string
}

// ICSFeedConfig is a read-only subscribed calendar.
type ICSFeedConfig struct {
	ID  string
	URL string
}

type SyncConfig struct {
	Enabled        bool
	Schedule       string
	Timeout        time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Breaker        BreakerConfig
}

type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// LLMConfig holds configuration for the LLM provider abstraction layer.
type LLMConfig struct {
	Providers       []ProviderConfig `yaml:"providers"`
	FallbackEnabled bool             `yaml:"fallback_enabled"`
	RetryAttempts   int              `yaml:"retry_attempts"`
	RetryDelay      string           `yaml:"retry_delay"`
	MaxTotalTimeout string           `yaml:"max_total_timeout"`
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Priority int    `yaml:"priority"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// Load reads configuration with Viper. When path is empty, config.yaml is
// searched in ./config, . and /etc/weekly-scheduler/.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/weekly-scheduler/")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Environment.Name = v.GetString("environment.name")
	cfg.HTTPServer.Port = v.GetInt("http_server.port")
	cfg.HTTPServer.Mode = v.GetString("http_server.mode")
	cfg.HTTPServer.APIKey = expandEnvVar(v.GetString("http_server.api_key"))
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")

	cfg.Schedule.Timezone = v.GetString("schedule.timezone")
	cfg.Schedule.WorkdayStart = v.GetString("schedule.workday_start")
	cfg.Schedule.WorkdayEnd = v.GetString("schedule.workday_end")
	cfg.Schedule.BufferMinutes = v.GetInt("schedule.buffer_minutes")
	cfg.Schedule.RecommendationBufferMinutes = v.GetInt("schedule.recommendation_buffer_minutes")
	cfg.Schedule.MinBlockMinutes = v.GetInt("schedule.min_block_minutes")
	cfg.Schedule.DefaultEventMinutes = v.GetInt("schedule.default_event_minutes")
	cfg.Schedule.LockTimeout = v.GetDuration("schedule.lock_timeout")
	cfg.Schedule.ArchiveWeeks = v.GetBool("schedule.archive_weeks")
	cfg.Schedule.SlotFinder = v.GetString("schedule.slot_finder")

	cfg.Session.TTL = v.GetDuration("session.ttl")
	cfg.Session.MaxSessions = v.GetInt("session.max_sessions")

	cfg.Storage.Driver = v.GetString("storage.driver")
	cfg.Storage.File.Dir = v.GetString("storage.file.dir")
	cfg.Storage.Redis.Addr = v.GetString("storage.redis.addr")
	cfg.Storage.Redis.Password = expandEnvVar(v.GetString("storage.redis.password"))
	cfg.Storage.Redis.DB = v.GetInt("storage.redis.db")
	cfg.Storage.Redis.KeyPrefix = v.GetString("storage.redis.key_prefix")
	cfg.Storage.Postgres.DSN = expandEnvVar(v.GetString("storage.postgres.dsn"))

	cfg.GoogleCalendar.Enabled = v.GetBool("google_calendar.enabled")
	cfg.GoogleCalendar.CredentialsPath = v.GetString("google_calendar.credentials_path")
	cfg.GoogleCalendar.TokenPath = v.GetString("google_calendar.token_path")
	cfg.GoogleCalendar.CalendarID = v.GetString("google_calendar.calendar_id")
	cfg.GoogleCalendar.RequestsPerSecond = v.GetFloat64("google_calendar.requests_per_second")
	if creds := v.GetString("google_calendar_credentials"); creds != "" {
		cfg.GoogleCalendar.CredentialsPath = creds
	}

	if raw, ok := v.Get("ics_feeds").([]interface{}); ok {
		for _, item := range raw {
			if m, ok := item.(map[string]interface{}); ok {
				cfg.ICSFeeds = append(cfg.ICSFeeds, ICSFeedConfig{
					ID:  getStringFromMap(m, "id"),
					URL: expandEnvVar(getStringFromMap(m, "url")),
				})
			}
		}
	}

	cfg.Telegram.BotToken = expandEnvVar(v.GetString("telegram.bot_token"))
	cfg.Telegram.WebhookURL = v.GetString("telegram.webhook_url")
	cfg.Telegram.WebhookSecret = expandEnvVar(v.GetString("telegram.webhook_secret"))

	cfg.Sync.Enabled = v.GetBool("sync.enabled")
	cfg.Sync.Schedule = v.GetString("sync.schedule")
	cfg.Sync.Timeout = v.GetDuration("sync.timeout")
	cfg.Sync.InitialBackoff = v.GetDuration("sync.initial_backoff")
	cfg.Sync.MaxBackoff = v.GetDuration("sync.max_backoff")
	cfg.Sync.Breaker.MaxRequests = v.GetUint32("sync.breaker.max_requests")
	cfg.Sync.Breaker.Interval = v.GetDuration("sync.breaker.interval")
	cfg.Sync.Breaker.Timeout = v.GetDuration("sync.breaker.timeout")
	cfg.Sync.Breaker.FailureRatio = v.GetFloat64("sync.breaker.failure_ratio")
	cfg.Sync.Breaker.MinRequests = v.GetUint32("sync.breaker.min_requests")

	cfg.LLM.FallbackEnabled = v.GetBool("llm.fallback_enabled")
	cfg.LLM.RetryAttempts = v.GetInt("llm.retry_attempts")
	cfg.LLM.RetryDelay = v.GetString("llm.retry_delay")
	cfg.LLM.MaxTotalTimeout = v.GetString("llm.max_total_timeout")
	if raw, ok := v.Get("llm.providers").([]interface{}); ok {
		for _, p := range raw {
			if m, ok := p.(map[string]interface{}); ok {
				cfg.LLM.Providers = append(cfg.LLM.Providers, ProviderConfig{
					Name:     getStringFromMap(m, "name"),
					Enabled:  getBoolFromMap(m, "enabled"),
					Priority: getIntFromMap(m, "priority"),
					APIKey:   expandEnvVar(getStringFromMap(m, "api_key")),
					BaseURL:  getStringFromMap(m, "base_url"),
					Model:    getStringFromMap(m, "model"),
					Timeout:  getStringFromMap(m, "timeout"),
				})
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("storage.postgres.dsn is required for the postgres driver")
	}
	if c.Schedule.SlotFinder == "llm" && len(c.LLM.Providers) == 0 {
		return fmt.Errorf("schedule.slot_finder is llm but no llm.providers are configured")
	}
	for _, f := range c.ICSFeeds {
		if f.ID == "" || f.URL == "" {
			return fmt.Errorf("ics_feeds entries need both id and url")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment.name", "development")
	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.mode", "debug")
	v.SetDefault("logger.level", "debug")
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.color_enabled", true)

	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.workday_start", "08:00")
	v.SetDefault("schedule.workday_end", "21:00")
	v.SetDefault("schedule.buffer_minutes", 15)
	v.SetDefault("schedule.recommendation_buffer_minutes", 0)
	v.SetDefault("schedule.min_block_minutes", 30)
	v.SetDefault("schedule.default_event_minutes", 60)
	v.SetDefault("schedule.lock_timeout", "2s")
	v.SetDefault("schedule.archive_weeks", true)
	v.SetDefault("schedule.slot_finder", "greedy")

	v.SetDefault("session.ttl", "5m")
	v.SetDefault("session.max_sessions", 1000)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.file.dir", "./data/weeks")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.key_prefix", "weekly-scheduler:week:")

	v.SetDefault("google_calendar.token_path", "token.json")
	v.SetDefault("google_calendar.calendar_id", "primary")
	v.SetDefault("google_calendar.requests_per_second", 5)

	v.SetDefault("sync.enabled", true)
	v.SetDefault("sync.schedule", "@every 15m")
	v.SetDefault("sync.timeout", "30s")
	v.SetDefault("sync.initial_backoff", "30s")
	v.SetDefault("sync.max_backoff", "30m")
	v.SetDefault("sync.breaker.max_requests", 1)
	v.SetDefault("sync.breaker.interval", "1m")
	v.SetDefault("sync.breaker.timeout", "2m")
	v.SetDefault("sync.breaker.failure_ratio", 0.6)
	v.SetDefault("sync.breaker.min_requests", 3)

	v.SetDefault("llm.fallback_enabled", true)
	v.SetDefault("llm.retry_attempts", 2)
	v.SetDefault("llm.retry_delay", "500ms")
	v.SetDefault("llm.max_total_timeout", "10s")
}

func getStringFromMap(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getBoolFromMap(m map[string]interface{}, key string) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

func getIntFromMap(m map[string]interface{}, key string) int {
	switch n := m[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// expandEnvVar resolves values written as ${VAR}.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}
