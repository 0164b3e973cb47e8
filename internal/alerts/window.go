package alerts

import (
	"fmt"
	"time"

	"github.com/bingebuddy/bingebuddy/internal/config"
)

// Window is a weekly period in a fixed timezone during which alerts may be
// sent. Start and End are offsets from local midnight and both are inclusive.
type Window struct {
	Location *time.Location
	Weekday  time.Weekday
	Start    time.Duration
	End      time.Duration
}

// WindowFromConfig builds the alert window from the alerts config section.
func WindowFromConfig(cfg config.AlertsConfig) (Window, error) {
	loc, err := cfg.Location()
	if err != nil {
		return Window{}, err
	}
	weekday, err := config.ParseWeekday(cfg.Weekday)
	if err != nil {
		return Window{}, err
	}
	start, err := config.ParseClock(cfg.Start)
	if err != nil {
		return Window{}, err
	}
	end, err := config.ParseClock(cfg.End)
	if err != nil {
		return Window{}, err
	}
	if end < start {
		return Window{}, fmt.Errorf("alert window ends (%s) before it starts (%s)", cfg.End, cfg.Start)
	}
	return Window{Location: loc, Weekday: weekday, Start: start, End: end}, nil
}

// IsOpen reports whether now falls inside the window. Time of day is compared
// at second precision.
func (w Window) IsOpen(now time.Time) bool {
	local := now.In(w.location())
	if local.Weekday() != w.Weekday {
		return false
	}
	tod := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second
	return tod >= w.Start && tod <= w.End
}

// Today returns the calendar date of now in the window's timezone.
func (w Window) Today(now time.Time) time.Time {
	local := now.In(w.location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (w Window) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

func (w Window) String() string {
	return fmt.Sprintf("%s %s-%s %s", w.Weekday, clock(w.Start), clock(w.End), w.location())
}

func clock(d time.Duration) string {
	return time.Time{}.Add(d).Format("15:04:05")
}
