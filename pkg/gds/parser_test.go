package gds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traveldesk-service/internal/domain/entity"
)

var jan10 = time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)

func TestParse_SingleSegment(t *testing.T) {
	result, ok := Parse("UR 121 K 17OCT JUBEBB HK1 1410 1635", jan10)
	require.True(t, ok)
	require.Len(t, result.Flights, 1)

	leg := result.Flights[0]
	assert.Equal(t, "UR", leg.AirlineCode)
	assert.Equal(t, "UR 121", leg.FlightNumber)
	assert.Equal(t, "K", leg.CabinClass)
	assert.Equal(t, "Economy", leg.CabinClassName)
	assert.Equal(t, "October 17, 2025", leg.DepartureDate)
	assert.Equal(t, "October 17, 2025", leg.ArrivalDate)
	assert.Equal(t, "JUB", leg.DepartureAirport)
	assert.Equal(t, "EBB", leg.ArrivalAirport)
	assert.Equal(t, "2:10 PM", leg.DepartureTime)
	assert.Equal(t, "4:35 PM", leg.ArrivalTime)
	assert.Equal(t, "Confirmed", leg.ConfirmationStatus)
	assert.False(t, leg.Overnight)
	assert.Equal(t, entity.SourceGDS, result.Source)
}

func TestParse_FullBooking(t *testing.T) {
	raw := `DQVJ6T/SC NBOOU 39K8SC AG
1.MUTUA/JOHN MR 2.MUTUA/MARY MRS(INF)
1  KQ 310 J 12MAR 4 NBOJUB HK2  0820 1005
2  KQ 311 J 19MAR 4 JUBNBO HK2  2350 0115+1
TOTAL KES 145,800.00`

	result, ok := Parse(raw, jan10)
	require.True(t, ok)

	assert.Equal(t, "DQVJ6T", result.PNR)
	assert.Equal(t, "JOHN MUTUA, MARY MUTUA (Infant)", result.PassengerName)
	assert.Equal(t, 145800.00, result.TotalAmount)
	assert.Equal(t, "KES", result.Currency)

	require.Len(t, result.Flights, 2)

	outbound := result.Flights[0]
	assert.Equal(t, "KQ 310", outbound.FlightNumber)
	assert.Equal(t, "Business", outbound.CabinClassName)
	assert.Equal(t, "March 12, 2025", outbound.DepartureDate)
	assert.Equal(t, "NBO", outbound.DepartureAirport)
	assert.Equal(t, "JUB", outbound.ArrivalAirport)
	assert.False(t, outbound.Overnight)

	ret := result.Flights[1]
	assert.Equal(t, "11:50 PM", ret.DepartureTime)
	assert.Equal(t, "1:15 AM", ret.ArrivalTime)
	assert.True(t, ret.Overnight)
	assert.Equal(t, "March 19, 2025", ret.DepartureDate)
	assert.Equal(t, "March 20, 2025", ret.ArrivalDate)
}

func TestParse_OvernightFromClocks(t *testing.T) {
	result, ok := Parse("ET 821 Y 05NOV ADDJUB HK1 2350 0115", jan10)
	require.True(t, ok)
	require.Len(t, result.Flights, 1)

	leg := result.Flights[0]
	assert.True(t, leg.Overnight)
	assert.Equal(t, "November 5, 2025", leg.DepartureDate)
	assert.Equal(t, "November 6, 2025", leg.ArrivalDate)
}

func TestParse_FutureYearInference(t *testing.T) {
	// Current date past the segment's month/day rolls into next year.
	nov := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)

	result, ok := Parse("UR 121 K 17OCT JUBEBB HK1 1410 1635", nov)
	require.True(t, ok)
	assert.Equal(t, "October 17, 2026", result.Flights[0].DepartureDate)
}

func TestParse_CompactFlightNumberAndSplitAirports(t *testing.T) {
	result, ok := Parse("KQ407 Y 21JUN NBO EBB HK1 0530 0815", jan10)
	require.True(t, ok)
	require.Len(t, result.Flights, 1)

	leg := result.Flights[0]
	assert.Equal(t, "KQ", leg.AirlineCode)
	assert.Equal(t, "KQ 407", leg.FlightNumber)
	assert.Equal(t, "NBO", leg.DepartureAirport)
	assert.Equal(t, "EBB", leg.ArrivalAirport)
	assert.Equal(t, "2h 45m", leg.Duration)
}

func TestParse_SkipsIdenticalAirportPair(t *testing.T) {
	_, ok := Parse("UR 121 K 17OCT JUBJUB HK1 1410 1635", jan10)
	assert.False(t, ok)
}

func TestParse_NoSegmentsLowConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "prose email", raw: "Dear traveler, your booking is confirmed for next month."},
		{name: "pnr header only", raw: "DQVJ6T/SC NBOOU 39K8SC AG"},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Parse(tt.raw, jan10)
			assert.False(t, ok)
			assert.Nil(t, result)
		})
	}
}

func TestParse_PNRPrecedence(t *testing.T) {
	result, ok := Parse("DQVJ6T/SC NBOOU 39K8SC AG\nUR 121 K 17OCT JUBEBB HK1 1410 1635", jan10)
	require.True(t, ok)
	assert.Equal(t, "DQVJ6T", result.PNR)
}
