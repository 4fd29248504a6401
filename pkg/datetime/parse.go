// Package datetime provides calendar date utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/commerce-analytics/pkg/constants"
)

const (
	// DateLayout is the format of input and output calendar dates.
	DateLayout = constants.DateLayout
)

// MustParseDate parses a date string using DateLayout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(dateStr string) time.Time {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// calendar days relative to the given date.
func OffsetDate(date string, days int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}

// NextDates returns the count calendar days following last. Weekends and
// holidays are not skipped.
func NextDates(last string, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}
	t, err := time.Parse(DateLayout, last)
	if err != nil {
		return nil, err
	}
	dates := make([]string, count)
	for i := range dates {
		t = t.AddDate(0, 0, 1)
		dates[i] = t.Format(DateLayout)
	}
	return dates, nil
}

// DateRange returns count consecutive dates starting at start.
func DateRange(start string, count int) ([]string, error) {
	first, err := time.Parse(DateLayout, start)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return []string{}, nil
	}
	rest, err := NextDates(start, count-1)
	if err != nil {
		return nil, err
	}
	return append([]string{first.Format(DateLayout)}, rest...), nil
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
