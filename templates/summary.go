package templates

import (
	"fmt"
	"strings"

	"traveldesk-service/internal/domain/entity"
)

// Summary renders the one-line card header for a parsed itinerary, e.g.
// "DQVJ6T · JOHN MUTUA · JUB → EBB → JUB (2 flights)".
func Summary(result *entity.ItineraryParseResult) string {
	legWord := "flights"
	if len(result.Flights) == 1 {
		legWord = "flight"
	}
	return fmt.Sprintf("%s · %s · %s (%d %s)",
		result.PNR, result.PassengerName, routeChain(result.Flights), len(result.Flights), legWord)
}

// FriendlySummary renders the conversational confirmation shown before
// the traveler opts in to saving.
func FriendlySummary(result *entity.ItineraryParseResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✈️ Trip summary for %s\n", result.PassengerName)
	fmt.Fprintf(&b, "Booking %s\n\n", result.PNR)

	for _, leg := range result.Flights {
		fmt.Fprintf(&b, "%s %s (%s)\n", leg.FlightNumber, leg.AirlineName, leg.CabinClassName)
		from := leg.DepartureAirport
		if leg.DepartureCity != "" {
			from = fmt.Sprintf("%s (%s)", leg.DepartureAirport, leg.DepartureCity)
		}
		to := leg.ArrivalAirport
		if leg.ArrivalCity != "" {
			to = fmt.Sprintf("%s (%s)", leg.ArrivalAirport, leg.ArrivalCity)
		}
		fmt.Fprintf(&b, "%s → %s\n", from, to)
		fmt.Fprintf(&b, "%s, %s → %s", leg.DepartureDate, leg.DepartureTime, leg.ArrivalTime)
		if leg.Overnight {
			b.WriteString(" (next day)")
		}
		b.WriteString("\n\n")
	}

	if result.TotalAmount > 0 {
		fmt.Fprintf(&b, "Total: %s %.2f\n", result.Currency, result.TotalAmount)
	}
	b.WriteString("Save this trip to get check-in reminders 24 hours and 3 hours before each departure.")
	return b.String()
}

// routeChain collapses contiguous legs into "JUB → EBB → JUB"; when a
// leg starts somewhere other than where the previous one landed the
// chain restarts after a comma.
func routeChain(legs []entity.FlightLeg) string {
	if len(legs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(legs[0].DepartureAirport)
	b.WriteString(" → ")
	b.WriteString(legs[0].ArrivalAirport)
	for i := 1; i < len(legs); i++ {
		if legs[i].DepartureAirport == legs[i-1].ArrivalAirport {
			b.WriteString(" → ")
		} else {
			b.WriteString(", ")
			b.WriteString(legs[i].DepartureAirport)
			b.WriteString(" → ")
		}
		b.WriteString(legs[i].ArrivalAirport)
	}
	return b.String()
}
