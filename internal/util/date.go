package util

import (
	"regexp"
	"strconv"
	"time"
)

// Spreadsheet serial days count from 1899-12-30 (the 1900 leap-year bug
// shifts the nominal 1900-01-01 epoch back two days).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	minSerialDay = 18000
	maxSerialDay = 60000
)

var serialPattern = regexp.MustCompile(`^\d{4,6}$`)

var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1-2-2006",
	"01-02-2006",
	"1/2/06",
	"01-02-06",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"20060102",
}

// ParseMixedDate accepts calendar strings and spreadsheet serial day numbers.
// Serial numbers are only considered when calendar parsing fails and the value
// is a 4-6 digit integer within [18000, 60000] (about 1949 to 2064).
func ParseMixedDate(input string) (time.Time, bool) {
	s, ok := CleanText(input)
	if !ok {
		return time.Time{}, false
	}
	if t, ok := parseCalendarDate(s); ok {
		return t, true
	}
	if !serialPattern.MatchString(s) {
		return time.Time{}, false
	}
	days, err := strconv.Atoi(s)
	if err != nil || days < minSerialDay || days > maxSerialDay {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, days), true
}

func parseCalendarDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
