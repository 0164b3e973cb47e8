package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Catalog.APIKey = "key"
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Username = "bot@example.com"
	cfg.SMTP.Password = "secret"
	cfg.Alerts.DefaultEmail = "me@example.com"
	return cfg
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidate_MissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.SMTP.Host = ""
	cfg.SMTP.Password = "  "

	err := cfg.Validate()
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("Validate() error = %v, want ErrMissingConfig", err)
	}
	for _, key := range []string{"smtp.host", "smtp.password"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestValidate_BadWindow(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"timezone", func(c *Config) { c.Alerts.Timezone = "Mars/Olympus" }},
		{"weekday", func(c *Config) { c.Alerts.Weekday = "someday" }},
		{"start", func(c *Config) { c.Alerts.Start = "25:00" }},
		{"end before start", func(c *Config) { c.Alerts.End = "12:00:00" }},
		{"port", func(c *Config) { c.SMTP.Port = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if errors.Is(err, ErrMissingConfig) {
				t.Errorf("unexpected ErrMissingConfig: %v", err)
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
	}{
		{"sunday", time.Sunday},
		{"Sunday", time.Sunday},
		{"mon", time.Monday},
		{" SAT ", time.Saturday},
	}
	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		if err != nil {
			t.Errorf("ParseWeekday(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseWeekday("su"); err == nil {
		t.Error("ParseWeekday(su) expected error")
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("13:00:00")
	if err != nil || got != 13*time.Hour {
		t.Errorf("ParseClock(13:00:00) = %v, %v", got, err)
	}

	got, err = ParseClock("23:59")
	if err != nil || got != 23*time.Hour+59*time.Minute {
		t.Errorf("ParseClock(23:59) = %v, %v", got, err)
	}

	if _, err := ParseClock("noon"); err == nil {
		t.Error("ParseClock(noon) expected error")
	}
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SMTP_HOST", "legacy.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("BINGEBUDDY_ALERTS_DEFAULT_EMAIL", "me@example.com")
	t.Setenv("ALERT_EMAIL_TO", "ignored@example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SMTP.Host != "legacy.example.com" {
		t.Errorf("SMTP.Host = %q", cfg.SMTP.Host)
	}
	if cfg.SMTP.Port != 465 {
		t.Errorf("SMTP.Port = %d", cfg.SMTP.Port)
	}
	if cfg.Alerts.DefaultEmail != "me@example.com" {
		t.Errorf("Alerts.DefaultEmail = %q, prefixed variable should win", cfg.Alerts.DefaultEmail)
	}
	if cfg.Alerts.Weekday != "sunday" {
		t.Errorf("Alerts.Weekday default = %q", cfg.Alerts.Weekday)
	}
}
