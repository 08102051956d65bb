package gds

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/pkg/normalize"
)

// Parse runs the deterministic segment grammar over pasted GDS text.
// The second return is false when no segment line parsed, which tells
// the pipeline to fall back to the completion endpoint. Airline names
// and city expansion are left to the reference-data pass; this layer
// only sees the text.
func Parse(raw string, now time.Time) (*entity.ItineraryParseResult, bool) {
	legs := parseSegments(raw, now)
	if len(legs) == 0 {
		return nil, false
	}

	result := &entity.ItineraryParseResult{
		PassengerName: parsePassengers(raw),
		Flights:       legs,
		PNR:           normalize.ExtractPNR(raw),
		Source:        entity.SourceGDS,
	}
	result.TotalAmount, result.Currency = parseTotal(raw)
	return result, true
}

// Segment lines follow the classic availability/booking layout:
//
//	1  UR 121 K 17OCT 6 JUBEBB HK1  1410 1635
//	KQ407 Y 21JUN NBO EBB HK1 0530 0815+1
//
// with the leading segment number, the day-of-week digit, the status
// group and the next-day marker all optional.
var segmentRegex = regexp.MustCompile(`^\s*(?:\d{1,2}\s+)?([A-Z][A-Z0-9])\s?(\d{1,4})\s+([A-Z])\s+(\d{1,2}[A-Z]{3})\s+(?:[1-7]\s+)?([A-Z]{3})\s?([A-Z]{3})\s+(?:([A-Z]{2}\d{0,2})\s+)?(\d{4})\s+(\d{4})(\+1)?\b`)

func parseSegments(raw string, now time.Time) []entity.FlightLeg {
	var legs []entity.FlightLeg

	for _, line := range strings.Split(raw, "\n") {
		match := segmentRegex.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}

		airlineCode := match[1]
		flightDigits := match[2]
		class := match[3]
		dateToken := match[4]
		from := match[5]
		to := match[6]
		status := match[7]
		departClock := match[8]
		arriveClock := match[9]
		nextDay := match[10] != ""

		if from == to {
			continue
		}
		departDay, ok := normalize.GDSDate(dateToken, now)
		if !ok {
			continue
		}
		dh, dm, err := normalize.ParseClock(departClock)
		if err != nil {
			continue
		}
		ah, am, err := normalize.ParseClock(arriveClock)
		if err != nil {
			continue
		}

		overnight := nextDay || ah*60+am < dh*60+dm
		arriveDay := departDay
		if overnight {
			arriveDay = departDay.AddDate(0, 0, 1)
		}

		legs = append(legs, entity.FlightLeg{
			AirlineCode:        airlineCode,
			FlightNumber:       airlineCode + " " + flightDigits,
			CabinClass:         class,
			CabinClassName:     normalize.CabinClassName(class),
			DepartureDate:      normalize.FormatDate(departDay),
			ArrivalDate:        normalize.FormatDate(arriveDay),
			DepartureAirport:   from,
			ArrivalAirport:     to,
			DepartureTime:      normalize.Clock12(dh, dm),
			ArrivalTime:        normalize.Clock12(ah, am),
			Duration:           legDuration(dh*60+dm, ah*60+am, nextDay),
			Overnight:          overnight,
			ConfirmationStatus: expandStatus(status),
		})
	}
	return legs
}

// legDuration renders the clock difference as free text. Without
// timezone data this is an estimate; the reference-data pass does not
// refine it.
func legDuration(departMin, arriveMin int, nextDay bool) string {
	diff := arriveMin - departMin
	if nextDay && diff > 0 {
		diff += 24 * 60
	}
	if diff < 0 {
		diff += 24 * 60
	}
	if diff == 0 {
		return ""
	}
	if diff < 60 {
		return fmt.Sprintf("%dm", diff)
	}
	return fmt.Sprintf("%dh %02dm", diff/60, diff%60)
}

var statusNames = map[string]string{
	"HK": "Confirmed",
	"KK": "Confirmed",
	"RR": "Confirmed",
	"TK": "Confirmed, schedule change",
	"HL": "Waitlisted",
	"UN": "Unable, flight cancelled",
	"UC": "Unable, flight closed",
	"NO": "No action taken",
}

// expandStatus maps the two-letter GDS action code, dropping the seat
// count. Unknown codes pass through unchanged.
func expandStatus(status string) string {
	if len(status) < 2 {
		return status
	}
	if name, ok := statusNames[status[:2]]; ok {
		return name
	}
	return status
}

// Name items look like "1.MUTUA/JOHN MR" with optional infant/child
// markers, either "(INF)" or an INF/CHD title.
var nameRegex = regexp.MustCompile(`\d{1,2}\.([A-Z][A-Z' -]*)/([A-Z][A-Z' -]*?)(?:\s+(MR|MRS|MS|MSTR|MISS|CHD|INF))?(?:\((INF|CHD)\))?(?:\s|$)`)

func parsePassengers(raw string) string {
	matches := nameRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return ""
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		last := strings.TrimSpace(m[1])
		first := strings.TrimSpace(m[2])
		title := m[3]
		marker := m[4]

		name := first + " " + last
		switch {
		case marker == "INF" || title == "INF":
			name += " (Infant)"
		case marker == "CHD" || title == "CHD" || title == "MSTR" || title == "MISS":
			name += " (Child)"
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

var totalRegex = regexp.MustCompile(`(?im)^\s*(?:GRAND\s+)?TOTAL[:\s]+([A-Z]{3})\s*([\d,]+(?:\.\d{1,2})?)\s*$`)

// parseTotal reads the first fare-total line. Absent totals report 0,
// meaning "not extracted", never a fabricated figure.
func parseTotal(raw string) (float64, string) {
	match := totalRegex.FindStringSubmatch(raw)
	if match == nil {
		return 0, ""
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[2], ",", ""), 64)
	if err != nil || amount < 0 {
		return 0, ""
	}
	return amount, strings.ToUpper(match[1])
}
