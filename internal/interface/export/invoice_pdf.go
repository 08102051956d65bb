package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"traveldesk-service/internal/domain/entity"
)

// InvoiceRenderer draws a paginated PDF for a validated itinerary.
// Amounts come from the parsed booking only: when the itinerary carried
// no fare the pricing block says so instead of estimating one.
type InvoiceRenderer struct{}

func NewInvoiceRenderer() *InvoiceRenderer {
	return &InvoiceRenderer{}
}

// InvoiceNumber mints a display reference like TT-INV-202603-4F21AC.
func InvoiceNumber(issuedAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TT-INV-%s-%s", issuedAt.Format("200601"), suffix)
}

// Render produces the PDF bytes and the invoice number for one parsed
// itinerary.
func (ir *InvoiceRenderer) Render(result *entity.ItineraryParseResult, issuedAt time.Time) ([]byte, string, error) {
	if result == nil || len(result.Flights) == 0 {
		return nil, "", errors.New("no flights to render")
	}

	number := InvoiceNumber(issuedAt)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Travel Invoice "+number, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(120, 10, "TRAVEL INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(70, 10, number, "", 1, "R", false, 0, "")
	pdf.CellFormat(120, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(70, 6, "Issued "+issuedAt.Format("January 2, 2006"), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Booking block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(95, 6, "Passenger", "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Booking Reference (PNR)", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(95, 6, result.PassengerName, "", 0, "L", false, 0, "")
	pnr := result.PNR
	if result.BookingReference != "" && result.BookingReference != result.PNR {
		pnr = fmt.Sprintf("%s / %s", result.PNR, result.BookingReference)
	}
	pdf.CellFormat(95, 6, pnr, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	// Legs table. Rows flow onto following pages automatically.
	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(24, 8, "Flight", "1", 0, "L", true, 0, "")
		pdf.CellFormat(44, 8, "Airline", "1", 0, "L", true, 0, "")
		pdf.CellFormat(26, 8, "Route", "1", 0, "C", true, 0, "")
		pdf.CellFormat(46, 8, "Departure", "1", 0, "L", true, 0, "")
		pdf.CellFormat(20, 8, "Duration", "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 8, "Cabin", "1", 1, "L", true, 0, "")
	}
	drawHeader()

	pdf.SetFont("Helvetica", "", 10)
	for _, leg := range result.Flights {
		if pdf.GetY() > 260 {
			pdf.AddPage()
			drawHeader()
			pdf.SetFont("Helvetica", "", 10)
		}
		route := fmt.Sprintf("%s - %s", leg.DepartureAirport, leg.ArrivalAirport)
		departure := strings.TrimSpace(leg.DepartureDate + " " + leg.DepartureTime)
		cabin := leg.CabinClassName
		if leg.ConfirmationStatus != "" {
			cabin = fmt.Sprintf("%s (%s)", leg.CabinClassName, leg.ConfirmationStatus)
		}
		pdf.CellFormat(24, 8, leg.FlightNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(44, 8, leg.AirlineName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(26, 8, route, "1", 0, "C", false, 0, "")
		pdf.CellFormat(46, 8, departure, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, leg.Duration, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, cabin, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Pricing block: the parsed fare as-is, or an explicit absence.
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(144, 8, "Total (as ticketed)", "", 0, "R", false, 0, "")
	if result.TotalAmount > 0 {
		pdf.CellFormat(46, 8, fmt.Sprintf("%s %s", result.Currency, formatAmount(result.TotalAmount)), "", 1, "R", false, 0, "")
	} else {
		pdf.CellFormat(46, 8, "Fare data not extracted", "", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(190, 5, "Estimate only. The itinerary text carried no fare information.", "", 1, "R", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(190, 4, "Generated from the booking itinerary. Fares shown are the totals stated on the itinerary at parse time and may exclude later changes.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), number, nil
}

// FromRecords rebuilds the renderable itinerary from one persisted
// batch. Fields the record does not keep (duration, cities, leg status)
// stay empty.
func FromRecords(records []*entity.TravelRecord) *entity.ItineraryParseResult {
	if len(records) == 0 {
		return nil
	}

	head := records[0]
	result := &entity.ItineraryParseResult{
		PassengerName: head.PassengerName,
		PNR:           head.PNR,
		TotalAmount:   head.TotalAmount,
		Currency:      head.Currency,
	}
	for _, r := range records {
		result.Flights = append(result.Flights, entity.FlightLeg{
			AirlineName:      r.AirlineName,
			FlightNumber:     r.FlightNumber,
			CabinClassName:   r.CabinClassName,
			DepartureDate:    r.DepartureDate,
			ArrivalDate:      r.ArrivalDate,
			DepartureAirport: r.DepartureAirport,
			ArrivalAirport:   r.ArrivalAirport,
			DepartureTime:    r.DepartureTime,
		})
	}
	return result
}

// formatAmount renders 145800 as "145,800.00".
func formatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	pre := len(intPart) % 3
	if pre > 0 {
		b.WriteString(intPart[:pre])
		if len(intPart) > pre {
			b.WriteString(",")
		}
	}
	for i := pre; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteString(",")
		}
	}
	return b.String() + frac
}
