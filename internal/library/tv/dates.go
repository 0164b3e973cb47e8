package tv

import (
	"database/sql"
	"strings"
	"time"
)

// DateLayout is the storage and catalog format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a catalog date. Empty or malformed input is treated as
// absent.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatDate renders a date in DateLayout, or "" when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func nullDate(s string) sql.NullString {
	if d := ParseDate(s); d != nil {
		return sql.NullString{String: d.Format(DateLayout), Valid: true}
	}
	return sql.NullString{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func dateFromNull(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	return ParseDate(ns.String)
}
