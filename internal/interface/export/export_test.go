package export

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traveldesk-service/internal/domain/entity"
)

func sampleResult() *entity.ItineraryParseResult {
	return &entity.ItineraryParseResult{
		PassengerName: "JOHN MUTUA",
		PNR:           "DQVJ6T",
		TotalAmount:   145800,
		Currency:      "KES",
		Flights: []entity.FlightLeg{
			{
				AirlineCode:      "UR",
				AirlineName:      "Uganda Airlines",
				FlightNumber:     "UR 121",
				CabinClassName:   "Economy",
				DepartureDate:    "March 18, 2026",
				ArrivalDate:      "March 18, 2026",
				DepartureAirport: "JUB",
				ArrivalAirport:   "EBB",
				DepartureTime:    "12:30 PM",
				ArrivalTime:      "2:10 PM",
				Duration:         "1h 40m",
			},
			{
				AirlineCode:        "UR",
				AirlineName:        "Uganda Airlines",
				FlightNumber:       "UR 122",
				CabinClassName:     "Economy",
				DepartureDate:      "March 25, 2026",
				ArrivalDate:        "March 25, 2026",
				DepartureAirport:   "EBB",
				ArrivalAirport:     "JUB",
				DepartureTime:      "2:10 PM",
				ArrivalTime:        "3:45 PM",
				Duration:           "1h 35m",
				ConfirmationStatus: "Confirmed",
			},
		},
	}
}

func sampleBatch() []*entity.TravelRecord {
	return []*entity.TravelRecord{
		{
			ID:               "rec-1",
			BatchID:          "batch-1",
			PassengerName:    "JOHN MUTUA",
			PNR:              "DQVJ6T",
			DepartureDate:    "March 18, 2026",
			DepartureTime:    "12:30 PM",
			ArrivalDate:      "March 18, 2026",
			DepartureAirport: "JUB",
			ArrivalAirport:   "EBB",
			AirlineName:      "Uganda Airlines",
			FlightNumber:     "UR 121",
			CabinClassName:   "Economy",
			DepartureUTC:     time.Date(2026, time.March, 18, 9, 30, 0, 0, time.UTC),
			TotalAmount:      145800,
			Currency:         "KES",
		},
		{
			ID:               "rec-2",
			BatchID:          "batch-1",
			PassengerName:    "JOHN MUTUA",
			PNR:              "DQVJ6T",
			DepartureDate:    "March 25, 2026",
			DepartureTime:    "2:10 PM",
			ArrivalDate:      "March 25, 2026",
			DepartureAirport: "EBB",
			ArrivalAirport:   "JUB",
			AirlineName:      "Uganda Airlines",
			FlightNumber:     "UR 122",
			CabinClassName:   "Economy",
			DepartureUTC:     time.Date(2026, time.March, 25, 11, 10, 0, 0, time.UTC),
			TotalAmount:      145800,
			Currency:         "KES",
		},
	}
}

func TestInvoiceRenderProducesPDF(t *testing.T) {
	renderer := NewInvoiceRenderer()
	issuedAt := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

	pdfBytes, number, err := renderer.Render(sampleResult(), issuedAt)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"), "output must be a PDF document")
	assert.Regexp(t, regexp.MustCompile(`^TT-INV-202603-[A-Z0-9]{6}$`), number)
}

func TestInvoiceRenderWithoutFare(t *testing.T) {
	result := sampleResult()
	result.TotalAmount = 0
	result.Currency = ""

	pdfBytes, _, err := NewInvoiceRenderer().Render(result, time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))
}

func TestInvoiceRenderManyLegsPaginates(t *testing.T) {
	result := sampleResult()
	leg := result.Flights[0]
	for i := 0; i < 60; i++ {
		result.Flights = append(result.Flights, leg)
	}

	pdfBytes, _, err := NewInvoiceRenderer().Render(result, time.Now())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))
}

func TestInvoiceRenderEmpty(t *testing.T) {
	_, _, err := NewInvoiceRenderer().Render(nil, time.Now())
	assert.Error(t, err)

	_, _, err = NewInvoiceRenderer().Render(&entity.ItineraryParseResult{}, time.Now())
	assert.Error(t, err)
}

func TestFromRecordsKeepsLegOrderAndFare(t *testing.T) {
	result := FromRecords(sampleBatch())
	require.NotNil(t, result)

	assert.Equal(t, "JOHN MUTUA", result.PassengerName)
	assert.Equal(t, "DQVJ6T", result.PNR)
	assert.Equal(t, float64(145800), result.TotalAmount)
	assert.Equal(t, "KES", result.Currency)
	require.Len(t, result.Flights, 2)
	assert.Equal(t, "UR 121", result.Flights[0].FlightNumber)
	assert.Equal(t, "UR 122", result.Flights[1].FlightNumber)

	assert.Nil(t, FromRecords(nil))
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "0.00"},
		{950, "950.00"},
		{999, "999.00"},
		{1000, "1,000.00"},
		{145800, "145,800.00"},
		{85000.5, "85,000.50"},
		{1234567.8, "1,234,567.80"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatAmount(tc.amount), "amount %v", tc.amount)
	}
}

func TestCalendarBuildEventsAndAlarms(t *testing.T) {
	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	out := NewCalendarExporter().Build(sampleBatch(), now)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 2, strings.Count(out, "TRIGGER:-PT24H"))
	assert.Equal(t, 2, strings.Count(out, "TRIGGER:-PT3H"))
	assert.Contains(t, out, "SUMMARY:Flight UR 121 JUB-EBB")
	assert.Contains(t, out, "DTSTART:20260318T093000Z")
	assert.Contains(t, out, "UID:rec-1@traveldesk")
	assert.Contains(t, out, "LOCATION:JUB Airport")
}

func TestCalendarBuildEmpty(t *testing.T) {
	out := NewCalendarExporter().Build(nil, time.Now())
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
