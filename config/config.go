package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for slim containers

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	API      APIConfig      `mapstructure:"api"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Backup   BackupConfig   `mapstructure:"backup"`
	CalDAV   CalDAVConfig   `mapstructure:"caldav"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	TimezoneName string         `mapstructure:"timezone"`
	Timezone     *time.Location `mapstructure:"-"`
}

type TelegramConfig struct {
	Token             string `mapstructure:"token"`
	OwnerTelegramID   int64  `mapstructure:"owner_id"`
	PartnerTelegramID int64  `mapstructure:"partner_id"`
	WebhookURL        string `mapstructure:"webhook_url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Port      string  `mapstructure:"port"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second per client
}

// APIConfig holds the REST API credentials, the API is off when either is blank
type APIConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

type BackupConfig struct {
	Dir  string `mapstructure:"dir"`
	Cron string `mapstructure:"cron"`
}

type CalDAVConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Calendar string `mapstructure:"calendar"`
	SyncCron string `mapstructure:"sync_cron"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load reads configuration from the environment and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	tz, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "./data/couplebot.db")
	v.SetDefault("timezone", "Asia/Seoul")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit", 20)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")

	v.SetDefault("backup.dir", "./data/backup")
	v.SetDefault("backup.cron", "0 4 * * *")

	v.SetDefault("caldav.calendar", "couplebot")
	v.SetDefault("caldav.sync_cron", "*/30 * * * *")

	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.owner_id", "OWNER_TELEGRAM_ID")
	v.BindEnv("telegram.partner_id", "PARTNER_TELEGRAM_ID")
	v.BindEnv("telegram.webhook_url", "WEBHOOK_URL")

	v.BindEnv("database.path", "DATABASE_PATH")
	v.BindEnv("timezone", "TIMEZONE")

	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.rate_limit", "RATE_LIMIT")

	v.BindEnv("api.username", "API_USERNAME")
	v.BindEnv("api.password", "API_PASSWORD")

	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILE")

	v.BindEnv("backup.dir", "BACKUP_DIR")
	v.BindEnv("backup.cron", "BACKUP_CRON")

	v.BindEnv("caldav.url", "CALDAV_URL")
	v.BindEnv("caldav.username", "CALDAV_USERNAME")
	v.BindEnv("caldav.password", "CALDAV_PASSWORD")
	v.BindEnv("caldav.calendar", "CALDAV_CALENDAR")
	v.BindEnv("caldav.sync_cron", "CALDAV_SYNC_CRON")

	v.BindEnv("metrics.enabled", "METRICS_ENABLED")
}

func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token != "" && cfg.Telegram.OwnerTelegramID == 0 {
		return fmt.Errorf("OWNER_TELEGRAM_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative")
	}
	return nil
}

// BotEnabled reports whether a Telegram token is configured
func (c *Config) BotEnabled() bool {
	return c.Telegram.Token != ""
}

// APIEnabled reports whether API credentials are configured
func (c *Config) APIEnabled() bool {
	return c.API.Username != "" && c.API.Password != ""
}

// CalDAVEnabled reports whether a CalDAV server is configured
func (c *Config) CalDAVEnabled() bool {
	return c.CalDAV.URL != ""
}

func (c *Config) IsAllowedUser(telegramID int64) bool {
	if telegramID == 0 {
		return false
	}
	return telegramID == c.Telegram.OwnerTelegramID || telegramID == c.Telegram.PartnerTelegramID
}
