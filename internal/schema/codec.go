package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	DateLayout      = "2006-01-02"
	DateTimeLayout  = "2006-01-02T15:04"
	displayDateTime = "2006-01-02 15:04"
)

// ParseDate reads a date field value. Picker values ("2006-01-02") are
// taken as calendar dates in loc; timestamps are moved into loc before the
// calendar date is read.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, nil
	}
	t, err := parseInstant(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseDateTime reads a datetime field value. Picker values
// ("2006-01-02T15:04") are wall-clock times in loc.
func ParseDateTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateTimeLayout, raw, loc); err == nil {
		return t, nil
	}
	t, err := parseInstant(raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse datetime %q: %w", raw, err)
	}
	return t, nil
}

// parseInstant reads an API timestamp and moves it into loc. RFC 3339 values
// keep their own offset; strings without a zone are read as wall-clock time
// in loc.
func parseInstant(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.In(loc), nil
	}
	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// FormatDate renders the wire form of a date field.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateTime renders the wire form of a datetime field, keeping the
// local offset so the picked wall-clock time survives.
func FormatDateTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// DateInputValue converts an API value into a date picker value. Values
// that cannot be parsed yield "".
func DateInputValue(raw string, loc *time.Location) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	t, err := ParseDate(raw, loc)
	if err != nil {
		return ""
	}
	return t.Format(DateLayout)
}

// DateTimeInputValue converts an API value into a datetime picker value.
func DateTimeInputValue(raw string, loc *time.Location) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	t, err := ParseDateTime(raw, loc)
	if err != nil {
		return ""
	}
	return t.Format(DateTimeLayout)
}
