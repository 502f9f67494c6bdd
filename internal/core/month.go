package core

import (
	"strings"
	"time"
)

const monthLayout = "2006-01"

// MonthKey identifies a calendar month as a zero-padded "YYYY-MM" string.
// Lexicographic order of keys matches chronological order.
type MonthKey string

// ParseMonthKey validates s as a YYYY-MM key.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse(monthLayout, s); err != nil {
		return "", ErrInvalidMonth
	}
	return MonthKey(s), nil
}

// CurrentMonth returns the key for the month containing now.
func CurrentMonth(now time.Time) MonthKey {
	return MonthKey(now.Format(monthLayout))
}

// Label returns the two-digit month portion ("MM"). It does not carry the
// year, so labels repeat across year boundaries.
func (m MonthKey) Label() string {
	if len(m) < 7 {
		return string(m)
	}
	return string(m[5:7])
}

// Contains reports whether d falls in the month.
func (m MonthKey) Contains(d Date) bool {
	return d.MonthKey() == m
}

// Previous returns the key of the preceding month.
func (m MonthKey) Previous() MonthKey {
	t, err := time.Parse(monthLayout, string(m))
	if err != nil {
		return m
	}
	return MonthKey(t.AddDate(0, -1, 0).Format(monthLayout))
}

func (m MonthKey) String() string {
	return string(m)
}
