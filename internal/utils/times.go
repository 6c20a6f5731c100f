package utils

import (
	"fmt"
	"strings"
	"time"
)

// Clock abstracts time so that day-based stats are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reports local wall time; streaks are counted in local dates.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}

const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "2006-01-02 15:04"
)

var experimentTimeLayouts = []string{
	DisplayLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
}

// StartOfDay returns local midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayKey is the calendar date of t in loc, e.g. "2026-10-19".
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseExperimentTime accepts RFC3339 or a handful of local date-time layouts.
func ParseExperimentTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range experimentTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q, use YYYY-MM-DD HH:MM", value)
}

// FormatForDisplay renders t in local time, or "—" for the zero time.
func FormatForDisplay(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format(DisplayLayout)
}

// FormatDelay renders a duration as "Xd Yh Zm" for reminder messages.
func FormatDelay(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	d = d.Round(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
