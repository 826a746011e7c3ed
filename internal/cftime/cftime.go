// Package cftime converts timestamps to the CF "hours since" encoding used by
// Medslik-II wind files.
package cftime

import (
	"fmt"
	"strings"
	"time"
)

// Units is the value of the units attribute of the time variable.
const Units = "hours since 1950-01-01 00:00"

// Epoch is the reference time of Units.
var Epoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

// Fractional seconds are accepted after the seconds field without being
// part of the layout.
var layouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15Z07:00",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date or date-time. The date and time may
// be separated by 'T' or a space. Timestamps without an offset are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if len(v) > 10 && v[10] == ' ' {
		v = v[:10] + "T" + v[11:]
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", s)
}

// Hours returns the whole number of hours between Epoch and t, truncated
// toward zero.
func Hours(t time.Time) int32 {
	// time.Duration overflows 292 years from Epoch.
	return int32((t.Unix() - Epoch.Unix()) / 3600)
}
