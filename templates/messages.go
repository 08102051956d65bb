package templates

import (
	"fmt"
	"net/url"
	"strings"

	"traveldesk-service/internal/domain/entity"
)

// Message templates for the two reminder offsets. Ordering of verbs
// matters to travelers: 24h says check-in opened, 3h says go now.
const (
	msgCheckin24h = `Hi %s, check-in is now open for flight %s (%s) %s departing %s at %s. PNR %s.`

	msgCheckin3h = `Hi %s, flight %s %s departs at %s. Complete check-in now if you have not already. PNR %s.`
)

// CheckinReminderTitle is the notification headline for one offset.
func CheckinReminderTitle(offset entity.ReminderOffset) string {
	if offset == entity.Offset24h {
		return "Check-in is open"
	}
	return "Flight departing soon"
}

// CheckinReminderBody renders the notification text for one leg.
func CheckinReminderBody(r *entity.TravelRecord, offset entity.ReminderOffset) string {
	route := fmt.Sprintf("%s → %s", r.DepartureAirport, r.ArrivalAirport)
	if offset == entity.Offset24h {
		return fmt.Sprintf(msgCheckin24h,
			r.PassengerName, r.FlightNumber, r.AirlineName, route, r.DepartureDate, r.DepartureTime, r.PNR)
	}
	return fmt.Sprintf(msgCheckin3h,
		r.PassengerName, r.FlightNumber, route, r.DepartureTime, r.PNR)
}

// ShareMessage renders the text a traveler forwards to family after
// saving an itinerary.
func ShareMessage(records []*entity.TravelRecord) string {
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✈️ Travel plans for %s\n", records[0].PassengerName)
	for _, r := range records {
		fmt.Fprintf(&b, "%s %s → %s on %s at %s\n",
			r.FlightNumber, r.DepartureAirport, r.ArrivalAirport, r.DepartureDate, r.DepartureTime)
	}
	fmt.Fprintf(&b, "Booking reference: %s", records[0].PNR)
	return b.String()
}

// WhatsAppShareLink wraps a message in the wa.me deep link format. The
// caller opens it; nothing is sent or awaited here.
func WhatsAppShareLink(message string) string {
	return "https://wa.me/?text=" + url.QueryEscape(message)
}
