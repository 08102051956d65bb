package entity

// ParseSource identifies which parser produced an itinerary.
type ParseSource string

const (
	SourceGDS        ParseSource = "gds"
	SourceCompletion ParseSource = "completion"
)

// ItineraryParseResult is the structured form of one pasted booking
// confirmation. It is transient; persistence happens per leg as
// TravelRecord rows.
type ItineraryParseResult struct {
	PassengerName    string      `json:"passengerName"`
	Flights          []FlightLeg `json:"flights"`
	TotalAmount      float64     `json:"totalAmount"`
	Currency         string      `json:"currency"`
	PNR              string      `json:"pnr"`
	BookingReference string      `json:"bookingReference,omitempty"`
	Summary          string      `json:"summary"`
	FriendlySummary  string      `json:"friendlySummary"`

	// Set by the pipeline, never decoded from model output.
	Source   ParseSource `json:"source,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// FlightLeg is one segment of an itinerary, in itinerary order.
type FlightLeg struct {
	AirlineCode        string `json:"airlineCode"`
	AirlineName        string `json:"airlineName"`
	FlightNumber       string `json:"flightNumber"`
	CabinClass         string `json:"cabinClass"`
	CabinClassName     string `json:"cabinClassName"`
	DepartureDate      string `json:"departureDate"`
	ArrivalDate        string `json:"arrivalDate,omitempty"`
	DepartureAirport   string `json:"departureAirport"`
	ArrivalAirport     string `json:"arrivalAirport"`
	DepartureCity      string `json:"departureCity"`
	ArrivalCity        string `json:"arrivalCity"`
	DepartureTime      string `json:"departureTime"`
	ArrivalTime        string `json:"arrivalTime"`
	Duration           string `json:"duration"`
	Overnight          bool   `json:"overnight"`
	ConfirmationStatus string `json:"confirmationStatus,omitempty"`
}

// Route renders "JUB → EBB" for summaries and invoices.
func (l *FlightLeg) Route() string {
	return l.DepartureAirport + " → " + l.ArrivalAirport
}
