package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that every setting required for a batch run is present and
// well-formed. Any failure here is fatal: nothing should run on partial config.
func (c *Config) Validate() error {
	var missing []string
	require := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	require("catalog.api_key", c.Catalog.APIKey)
	require("database.path", c.Database.Path)
	require("smtp.host", c.SMTP.Host)
	require("smtp.username", c.SMTP.Username)
	require("smtp.password", c.SMTP.Password)
	require("alerts.default_email", c.Alerts.DefaultEmail)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid smtp.port %d", c.SMTP.Port)
	}
	if c.Alerts.HorizonDays < 0 {
		return fmt.Errorf("invalid alerts.horizon_days %d", c.Alerts.HorizonDays)
	}

	if _, err := c.Alerts.Location(); err != nil {
		return err
	}
	if _, err := ParseWeekday(c.Alerts.Weekday); err != nil {
		return err
	}
	start, err := ParseClock(c.Alerts.Start)
	if err != nil {
		return fmt.Errorf("alerts.start: %w", err)
	}
	end, err := ParseClock(c.Alerts.End)
	if err != nil {
		return fmt.Errorf("alerts.end: %w", err)
	}
	if end < start {
		return fmt.Errorf("alerts.end %s is before alerts.start %s", c.Alerts.End, c.Alerts.Start)
	}

	return nil
}

// Location loads the alert window timezone.
func (c *AlertsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid alerts.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses a full or three-letter English weekday name.
func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdays[key]; ok {
		return wd, nil
	}
	for name, wd := range weekdays {
		if len(key) == 3 && strings.HasPrefix(name, key) {
			return wd, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	layout := "15:04:05"
	if strings.Count(s, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}
