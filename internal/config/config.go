package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingConfig is returned by Validate when a required setting is empty.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Alerts   AlertsConfig   `mapstructure:"alerts"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Batch    BatchConfig    `mapstructure:"batch"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// CatalogConfig holds TMDB catalog configuration.
type CatalogConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Timeout      int    `mapstructure:"timeout"` // seconds
	WatchRegion  string `mapstructure:"watch_region"`
}

// SMTPConfig holds outbound mail configuration.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// AlertsConfig holds the alert window and fallback recipients.
type AlertsConfig struct {
	Timezone       string `mapstructure:"timezone"`
	Weekday        string `mapstructure:"weekday"`
	Start          string `mapstructure:"start"`
	End            string `mapstructure:"end"`
	HorizonDays    int    `mapstructure:"horizon_days"`
	DefaultEmail   string `mapstructure:"default_email"`
	DefaultSMSTo   string `mapstructure:"default_sms_to"`
	DefaultCarrier string `mapstructure:"default_carrier"`
}

// ScheduleConfig holds the serve-mode trigger configuration.
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// BatchConfig holds batch run configuration.
type BatchConfig struct {
	LockPath string `mapstructure:"lock_path"`
}

// legacyEnv maps config keys to the bare environment variable names used by
// earlier deployments. The BINGEBUDDY_ prefixed form always wins.
var legacyEnv = map[string][]string{
	"catalog.api_key":        {"TMDB_API_KEY", "DEFAULT_API_KEY"},
	"smtp.host":              {"SMTP_HOST"},
	"smtp.port":              {"SMTP_PORT"},
	"smtp.username":          {"SMTP_USER"},
	"smtp.password":          {"SMTP_PASS"},
	"smtp.use_tls":           {"SMTP_USE_TLS"},
	"alerts.default_email":   {"ALERT_EMAIL_TO"},
	"alerts.default_sms_to":  {"ALERT_SMS_TO"},
	"alerts.default_carrier": {"ALERT_SMS_CARRIER"},
	"logging.path":           {"LOG_DIR"},
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "./data/bingebuddy.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			Path:       "./logs",
			MaxSizeMB:  1,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Catalog: CatalogConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Timeout:      20,
			WatchRegion:  "US",
		},
		SMTP: SMTPConfig{
			Port:   587,
			UseTLS: true,
		},
		Alerts: AlertsConfig{
			Timezone:    "America/Denver",
			Weekday:     "sunday",
			Start:       "13:00:00",
			End:         "23:59:59",
			HorizonDays: 7,
		},
		Schedule: ScheduleConfig{
			Cron: "0 */11 * * *",
		},
		Batch: BatchConfig{
			LockPath: "./data/bingebuddy.lock",
		},
	}
}

// Load reads configuration from a .env file, a config file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.bingebuddy")
	}

	v.SetEnvPrefix("BINGEBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		envKey := "BINGEBUDDY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		args := append([]string{key, envKey}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("catalog.api_key", EmbeddedTMDBKey)
	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.image_base_url", d.Catalog.ImageBaseURL)
	v.SetDefault("catalog.timeout", d.Catalog.Timeout)
	v.SetDefault("catalog.watch_region", d.Catalog.WatchRegion)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", d.SMTP.Port)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.use_tls", d.SMTP.UseTLS)

	v.SetDefault("alerts.timezone", d.Alerts.Timezone)
	v.SetDefault("alerts.weekday", d.Alerts.Weekday)
	v.SetDefault("alerts.start", d.Alerts.Start)
	v.SetDefault("alerts.end", d.Alerts.End)
	v.SetDefault("alerts.horizon_days", d.Alerts.HorizonDays)
	v.SetDefault("alerts.default_email", "")
	v.SetDefault("alerts.default_sms_to", "")
	v.SetDefault("alerts.default_carrier", "")

	v.SetDefault("schedule.cron", d.Schedule.Cron)
	v.SetDefault("schedule.run_on_start", d.Schedule.RunOnStart)

	v.SetDefault("batch.lock_path", d.Batch.LockPath)
}

// SenderAddress returns the envelope sender, falling back to the SMTP username.
func (c *SMTPConfig) SenderAddress() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

// Address returns the SMTP server address string.
func (c *SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
