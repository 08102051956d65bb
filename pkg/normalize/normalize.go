package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical rendering for leg dates.
const DateLayout = "January 2, 2006"

var monthMap = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseMonth resolves a three-letter GDS month token.
func ParseMonth(token string) (time.Month, bool) {
	m, ok := monthMap[strings.ToUpper(token)]
	return m, ok
}

// InferYear picks the soonest future occurrence of month/day relative
// to now: a month/day already past this calendar year rolls to next
// year. Today itself counts as future.
func InferYear(month time.Month, day int, now time.Time) int {
	year := now.Year()
	if month < now.Month() || (month == now.Month() && day < now.Day()) {
		year++
	}
	return year
}

// FormatDate renders the canonical full-month form, e.g. "October 17, 2025".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

var dateLayouts = []string{
	DateLayout,
	"January 2 2006",
	"2 January 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"02/01/2006",
}

var yearlessLayouts = []string{
	"January 2",
	"2 January",
	"02 Jan",
	"Jan 2",
}

// NormalizeDate coerces a date string into the canonical layout,
// inferring the soonest future year when the source has none.
// Unparseable input comes back unchanged; the caller decides whether
// that is acceptable.
func NormalizeDate(s string, now time.Time) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return FormatDate(t)
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			year := InferYear(t.Month(), t.Day(), now)
			return FormatDate(time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
		}
	}
	if t, ok := parseGDSDate(trimmed, now); ok {
		return FormatDate(t)
	}
	return s
}

var gdsDateRegex = regexp.MustCompile(`^(\d{1,2})([A-Za-z]{3})(\d{2,4})?$`)

// parseGDSDate handles compact GDS dates like "17OCT" or "17OCT25".
func parseGDSDate(s string, now time.Time) (time.Time, bool) {
	match := gdsDateRegex.FindStringSubmatch(s)
	if match == nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(match[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := ParseMonth(match[2])
	if !ok {
		return time.Time{}, false
	}
	year := 0
	if match[3] != "" {
		year, _ = strconv.Atoi(match[3])
		if year < 100 {
			year += 2000
		}
	} else {
		year = InferYear(month, day, now)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// GDSDate is the exported form of compact-date parsing for the segment
// grammar.
func GDSDate(s string, now time.Time) (time.Time, bool) {
	return parseGDSDate(strings.TrimSpace(s), now)
}

// Clock12 renders hour/minute (24h values) as "2:10 PM".
func Clock12(hour, minute int) string {
	meridiem := "AM"
	h := hour
	switch {
	case hour == 0:
		h = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		h = hour - 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, meridiem)
}

var clockRegex = regexp.MustCompile(`^(\d{1,2}):?(\d{2})\s*([AaPp][Mm])?$`)

// ParseClock accepts "1410", "14:10", "2:10 PM" or "11:50pm" and
// returns 24-hour components.
func ParseClock(s string) (hour, minute int, err error) {
	match := clockRegex.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return 0, 0, fmt.Errorf("unrecognized clock time %q", s)
	}
	hour, _ = strconv.Atoi(match[1])
	minute, _ = strconv.Atoi(match[2])
	if meridiem := strings.ToUpper(match[3]); meridiem != "" {
		if hour < 1 || hour > 12 {
			return 0, 0, fmt.Errorf("invalid 12-hour value %q", s)
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "PM" {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("clock time out of range %q", s)
	}
	return hour, minute, nil
}

// To12Hour coerces a time string into "2:10 PM" form. Unparseable input
// comes back unchanged.
func To12Hour(s string) string {
	hour, minute, err := ParseClock(s)
	if err != nil {
		return s
	}
	return Clock12(hour, minute)
}

// Overnight reports whether the arrival clock is chronologically
// earlier than the departure clock, the proxy for "crosses midnight".
// Unparseable times never flag a leg overnight.
func Overnight(departureTime, arrivalTime string) bool {
	dh, dm, err := ParseClock(departureTime)
	if err != nil {
		return false
	}
	ah, am, err := ParseClock(arrivalTime)
	if err != nil {
		return false
	}
	return ah*60+am < dh*60+dm
}

var cabinNames = map[string]string{
	"F": "First", "A": "First",
	"J": "Business", "C": "Business", "D": "Business", "I": "Business", "Z": "Business",
	"W": "Premium Economy", "E": "Premium Economy",
}

// CabinClassName expands a single booking-class letter. Unrecognized
// letters fall back to Economy, the conservative default.
func CabinClassName(letter string) string {
	if name, ok := cabinNames[strings.ToUpper(strings.TrimSpace(letter))]; ok {
		return name
	}
	return "Economy"
}

// pnrToken is alphanumeric with at least one letter; purely numeric
// strings are ticket numbers, not record locators.
var pnrToken = regexp.MustCompile(`^[A-Z0-9]+$`)

// ExtractPNR pulls the record locator from the start of raw GDS text:
// the token before the first "/" delimiter. Later agent codes (trailing
// "AG" marker) and numeric ticket strings never win. Empty result means
// no confident locator.
func ExtractPNR(raw string) string {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return ""
	}
	candidate := fields[0]
	if idx := strings.IndexByte(candidate, '/'); idx >= 0 {
		candidate = candidate[:idx]
	}
	candidate = strings.ToUpper(candidate)
	if len(candidate) < 3 || len(candidate) > 8 {
		return ""
	}
	if !pnrToken.MatchString(candidate) {
		return ""
	}
	if _, err := strconv.Atoi(candidate); err == nil {
		return ""
	}
	return candidate
}

// PNRSuspect reports whether a locator's length falls outside the
// expected 5 to 7 characters. Suspect values are flagged, never
// rejected.
func PNRSuspect(pnr string) bool {
	n := len(pnr)
	return n < 5 || n > 7
}

// CombineInstant builds the departure instant from the canonical date
// and time strings in the given location.
func CombineInstant(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.Parse(DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	hour, minute, err := ParseClock(timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", timeStr, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
