package entity

import (
	"time"
)

// TravelRecord is one persisted flight leg. One parsed itinerary with N
// legs becomes N records sharing a BatchID.
type TravelRecord struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	BatchID          string    `bson:"batchId" json:"batch_id"`
	PassengerName    string    `bson:"passengerName" json:"passenger_name"`
	PNR              string    `bson:"pnr" json:"pnr"`
	DepartureDate    string    `bson:"departureDate" json:"departure_date"`
	DepartureTime    string    `bson:"departureTime" json:"departure_time"`
	ArrivalDate      string    `bson:"arrivalDate" json:"arrival_date"`
	DepartureAirport string    `bson:"departureAirport" json:"departure_airport"`
	ArrivalAirport   string    `bson:"arrivalAirport" json:"arrival_airport"`
	AirlineName      string    `bson:"airlineName" json:"airline_name"`
	FlightNumber     string    `bson:"flightNumber" json:"flight_number"`
	CabinClassName   string    `bson:"cabinClassName" json:"cabin_class_name"`
	DepartureUTC     time.Time `bson:"departureUtc" json:"departure_utc"`
	Checkin24hAlert  bool      `bson:"checkin24hAlert" json:"checkin_24h_alert"`
	Checkin3hAlert   bool      `bson:"checkin3hAlert" json:"checkin_3h_alert"`
	CheckinCompleted bool      `bson:"checkinCompleted" json:"checkin_completed"`
	TotalAmount      float64   `bson:"totalAmount" json:"total_amount"`
	Currency         string    `bson:"currency" json:"currency"`
	CreatedAt        time.Time `bson:"createdAt" json:"created_at"`
	UserID           string    `bson:"userId" json:"user_id"`
	RawItinerary     string    `bson:"rawItinerary" json:"raw_itinerary"`
	ContactInfo      string    `bson:"contactInfo,omitempty" json:"contact_info,omitempty"`
}

// ReminderOffset is one of the two check-in reminder offsets before
// departure.
type ReminderOffset time.Duration

const (
	Offset24h = ReminderOffset(24 * time.Hour)
	Offset3h  = ReminderOffset(3 * time.Hour)
)

func (o ReminderOffset) Duration() time.Duration { return time.Duration(o) }

func (o ReminderOffset) String() string {
	if o == Offset24h {
		return "24h"
	}
	return "3h"
}

// TriggerAt is the instant the reminder for this offset fires.
func (r *TravelRecord) TriggerAt(offset ReminderOffset) time.Time {
	return r.DepartureUTC.Add(-offset.Duration())
}

// AlertSent reports whether the flag for the given offset is already set.
func (r *TravelRecord) AlertSent(offset ReminderOffset) bool {
	if offset == Offset24h {
		return r.Checkin24hAlert
	}
	return r.Checkin3hAlert
}
