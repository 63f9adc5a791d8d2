package util

import (
	"fmt"
	"strings"
	"time"
)

// ParseISOMonth validates a YYYY-MM month string.
func ParseISOMonth(iso string) (time.Time, error) {
	t, err := time.Parse("2006-01", iso)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", iso)
	}
	return t, nil
}

// MonthAndYear translates "2025-01" into ("january", "2025"), the form used
// in NHS publication page URLs.
func MonthAndYear(iso string) (string, string, error) {
	t, err := ParseISOMonth(iso)
	if err != nil {
		return "", "", err
	}
	return strings.ToLower(t.Month().String()), t.Format("2006"), nil
}

// DataFileSuffix returns the filename suffix carried by the per-region
// extracts for a month, e.g. "_Feb_25.csv" for "2025-02".
func DataFileSuffix(iso string) (string, error) {
	t, err := ParseISOMonth(iso)
	if err != nil {
		return "", err
	}
	return "_" + t.Format("Jan_06") + ".csv", nil
}

// PreviousMonth returns the month before now as YYYY-MM. Publications lag by
// a month, so this is the default target for an update.
func PreviousMonth(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -1).Format("2006-01")
}
