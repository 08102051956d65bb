package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"traveldesk-service/internal/domain/entity"
)

// CalendarExporter serializes saved legs as an iCalendar feed with the
// same two reminder offsets the scheduler uses, so a subscribed phone
// alarms even when the service cannot reach it.
type CalendarExporter struct{}

func NewCalendarExporter() *CalendarExporter {
	return &CalendarExporter{}
}

// Build returns the VCALENDAR text for the given legs. One VEVENT per
// leg, each carrying a 24 hour and a 3 hour display alarm.
func (ce *CalendarExporter) Build(records []*entity.TravelRecord, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//TravelDesk//Itinerary//EN")

	for _, r := range records {
		event := cal.AddEvent(fmt.Sprintf("%s@traveldesk", r.ID))
		event.SetDtStampTime(now.UTC())
		event.SetStartAt(r.DepartureUTC)
		// Arrival instants are not persisted. Block a nominal two hours.
		event.SetEndAt(r.DepartureUTC.Add(2 * time.Hour))
		event.SetSummary(fmt.Sprintf("Flight %s %s-%s", r.FlightNumber, r.DepartureAirport, r.ArrivalAirport))
		event.SetLocation(fmt.Sprintf("%s Airport", r.DepartureAirport))
		event.SetDescription(fmt.Sprintf(
			"Passenger: %s\nPNR: %s\nAirline: %s\nCabin: %s\nDeparts %s at %s",
			r.PassengerName, r.PNR, r.AirlineName, r.CabinClassName, r.DepartureDate, r.DepartureTime,
		))

		for _, trigger := range []string{"-PT24H", "-PT3H"} {
			alarm := event.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger(trigger)
			alarm.SetProperty(ics.ComponentPropertyDescription, fmt.Sprintf("Check in for flight %s", r.FlightNumber))
		}
	}

	return cal.Serialize()
}
