package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"stayfront/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Session    SessionConfig    `yaml:"session"`
	Redis      RedisConfig      `yaml:"redis"`
	View       ViewConfig       `yaml:"view"`
	Exports    ExportConfig     `yaml:"exports"`
	Admin      AdminConfig      `yaml:"admin"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	Worker     WorkerConfig     `yaml:"worker"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BackendConfig points at the booking backend that owns all business state.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CacheTTL       int    `yaml:"cache_ttl"` // seconds; negative disables GET caching
}

// SessionConfig points at the auth service used for session checks.
type SessionConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type ViewConfig struct {
	PageSize int `yaml:"page_size"`
	StateTTL int `yaml:"state_ttl"` // seconds
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// AdminConfig guards the admin console surface with API keys.
type AdminConfig struct {
	HeaderAPIKey string        `yaml:"header_api_key"`
	HeaderExtra  string        `yaml:"header_extra"`
	APIKeys      []AdminAPIKey `yaml:"api_keys"`
}

type AdminAPIKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type TelegramConfig struct {
	Enabled    bool            `yaml:"enabled"`
	BotToken   string          `yaml:"bot_token"`
	OwnerChats map[int64]int64 `yaml:"owner_chats"` // owner user id -> chat id
}

type GoogleConfig struct {
	CredentialsFile       string `yaml:"credentials_file"`
	PaymentsSpreadsheetID string `yaml:"payments_spreadsheet_id"`
	BookingsSpreadsheetID string `yaml:"bookings_spreadsheet_id"`
}

type WorkerConfig struct {
	PayoutPollSeconds int     `yaml:"payout_poll_seconds"`
	PayoutOwners      []int64 `yaml:"payout_owners"`
	SheetsEnabled     bool    `yaml:"sheets_enabled"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url is required")
	}

	if c.Session.BaseURL == "" {
		return errors.New("session base_url is required")
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required when telegram is enabled")
	}

	return validateAPIKeys(c.Admin.APIKeys)
}

func validateAPIKeys(keys []AdminAPIKey) error {
	seen := make(map[string]bool)
	for _, k := range keys {
		if k.Key == "" {
			return fmt.Errorf("admin api key '%s' has empty key", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate admin api key found: %s", k.Name)
		}
		seen[k.Key] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 10
	}
	if c.Backend.CacheTTL == 0 {
		c.Backend.CacheTTL = models.ReviewsCacheTTL
	}
	if c.Session.TimeoutSeconds == 0 {
		c.Session.TimeoutSeconds = 5
	}
	if c.View.PageSize == 0 {
		c.View.PageSize = models.DefaultPageSize
	}
	if c.View.StateTTL == 0 {
		c.View.StateTTL = models.DefaultViewStateTTL
	}
	if c.Admin.HeaderAPIKey == "" {
		c.Admin.HeaderAPIKey = "x-api-key"
	}
	if c.Admin.HeaderExtra == "" {
		c.Admin.HeaderExtra = "x-api-extra"
	}
	if c.Worker.PayoutPollSeconds == 0 {
		c.Worker.PayoutPollSeconds = 300
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}

// BackendTimeout returns the backend HTTP timeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SessionTimeout returns the auth service HTTP timeout as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutSeconds) * time.Second
}
