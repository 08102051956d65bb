package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/domain/repository"
	"traveldesk-service/pkg/gds"
	"traveldesk-service/pkg/jsonextract"
	"traveldesk-service/pkg/logger"
	"traveldesk-service/pkg/metrics"
	"traveldesk-service/pkg/normalize"
	"traveldesk-service/templates"
)

// ItineraryService runs the parse pipeline: deterministic reservation-
// system parse first, completion fallback second, then sanitize,
// validate and normalize. Nothing here persists; persistence is a
// separate opt-in through RecordService.
type ItineraryService struct {
	completionRepo repository.CompletionRepository
	airlineRepo    repository.AirlineRepository
	airportRepo    repository.AirportRepository
	parseCache     repository.ParseCache
	metrics        *metrics.Metrics
	logger         logger.Logger
}

// NewItineraryService creates the pipeline service.
func NewItineraryService(
	completionRepo repository.CompletionRepository,
	airlineRepo repository.AirlineRepository,
	airportRepo repository.AirportRepository,
	parseCache repository.ParseCache,
	m *metrics.Metrics,
	logger logger.Logger,
) *ItineraryService {
	return &ItineraryService{
		completionRepo: completionRepo,
		airlineRepo:    airlineRepo,
		airportRepo:    airportRepo,
		parseCache:     parseCache,
		metrics:        m,
		logger:         logger,
	}
}

// Parse turns pasted itinerary text into a normalized result. Parse
// failures abort here; no partial result ever reaches persistence.
func (s *ItineraryService) Parse(ctx context.Context, rawText string, now time.Time) (*entity.ItineraryParseResult, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, entity.NewParseError(entity.ErrNoFlightsExtracted, "empty itinerary text", "")
	}

	if s.parseCache != nil {
		if cached, ok := s.parseCache.GetResult(ctx, rawText); ok {
			s.logger.Debug("Parse cache hit", "source", cached.Source)
			s.metrics.ItinerariesParsed.WithLabelValues(string(cached.Source), "cached").Inc()
			return cached, nil
		}
	}

	start := time.Now()
	defer func() {
		s.metrics.ParseDuration.Observe(time.Since(start).Seconds())
	}()

	result, err := s.parse(ctx, rawText, now)
	if err != nil {
		return nil, err
	}

	if err := s.normalizeResult(ctx, result, now); err != nil {
		s.metrics.ItinerariesParsed.WithLabelValues(string(result.Source), "error").Inc()
		return nil, err
	}

	result.Summary = templates.Summary(result)
	result.FriendlySummary = templates.FriendlySummary(result)

	if s.parseCache != nil {
		s.parseCache.SetResult(ctx, rawText, result)
	}
	s.metrics.ItinerariesParsed.WithLabelValues(string(result.Source), "success").Inc()
	s.logger.Info("Itinerary parsed",
		"source", result.Source,
		"pnr", result.PNR,
		"legs", len(result.Flights),
		"warnings", len(result.Warnings))
	return result, nil
}

// parse produces the raw structured result from whichever parser is
// confident about the input.
func (s *ItineraryService) parse(ctx context.Context, rawText string, now time.Time) (*entity.ItineraryParseResult, error) {
	if result, ok := gds.Parse(rawText, now); ok {
		s.logger.Debug("Reservation-system parse succeeded", "legs", len(result.Flights))
		result.Source = entity.SourceGDS
		return result, nil
	}

	raw, err := s.completionRepo.Complete(ctx, rawText, now)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("completion_call").Inc()
		s.metrics.ItinerariesParsed.WithLabelValues(string(entity.SourceCompletion), "error").Inc()
		s.logger.Error("Completion call failed", "error", err)
		return nil, err
	}

	extracted, err := jsonextract.Extract(raw)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("sanitize").Inc()
		s.metrics.ItinerariesParsed.WithLabelValues(string(entity.SourceCompletion), "error").Inc()
		s.logger.Error("No JSON in completion output", "error", err, "rawLen", len(raw))
		return nil, err
	}

	result, err := s.validate(extracted)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("validate").Inc()
		s.metrics.ItinerariesParsed.WithLabelValues(string(entity.SourceCompletion), "error").Inc()
		s.logger.Error("Completion output failed validation", "error", err)
		return nil, err
	}
	result.Source = entity.SourceCompletion
	return result, nil
}

// validate decodes the extracted object into the typed result. Decode
// failures keep the parser message and the offending text for the logs.
func (s *ItineraryService) validate(extracted string) (*entity.ItineraryParseResult, error) {
	var result entity.ItineraryParseResult
	if err := json.Unmarshal([]byte(extracted), &result); err != nil {
		return nil, entity.NewParseError(entity.ErrMalformedJSON, err.Error(), extracted)
	}
	if len(result.Flights) == 0 {
		return nil, entity.NewParseError(entity.ErrNoFlightsExtracted, "flights array empty or absent", extracted)
	}

	// Pipeline-owned fields are never trusted from model output.
	result.Source = ""
	result.Warnings = nil
	result.Summary = ""
	result.FriendlySummary = ""
	return &result, nil
}

// normalizeResult applies the executable normalization rules to every
// field, whichever parser produced it.
func (s *ItineraryService) normalizeResult(ctx context.Context, result *entity.ItineraryParseResult, now time.Time) error {
	result.PassengerName = strings.TrimSpace(result.PassengerName)
	if result.PassengerName == "" {
		result.Warnings = append(result.Warnings, "passenger name missing")
	}

	if cleaned := normalize.ExtractPNR(result.PNR); cleaned != "" {
		result.PNR = cleaned
	} else {
		result.PNR = strings.ToUpper(strings.TrimSpace(result.PNR))
	}
	if normalize.PNRSuspect(result.PNR) {
		s.logger.Warn("PNR length outside expected range", "pnr", result.PNR)
		result.Warnings = append(result.Warnings, fmt.Sprintf("pnr %q length outside expected 5-7 characters", result.PNR))
	}

	if result.TotalAmount < 0 {
		result.Warnings = append(result.Warnings, "negative total amount discarded")
		result.TotalAmount = 0
	}
	result.Currency = strings.ToUpper(strings.TrimSpace(result.Currency))
	if result.Currency != "" && len(result.Currency) != 3 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("currency %q is not a 3-letter code", result.Currency))
		result.Currency = ""
	}

	legs := result.Flights[:0]
	for i := range result.Flights {
		leg := &result.Flights[i]
		s.normalizeLeg(ctx, leg, now)
		if leg.DepartureAirport == leg.ArrivalAirport {
			result.Warnings = append(result.Warnings, fmt.Sprintf("dropped leg %s: identical departure and arrival airport %s", leg.FlightNumber, leg.DepartureAirport))
			continue
		}
		legs = append(legs, *leg)
	}
	result.Flights = legs

	if len(result.Flights) == 0 {
		return entity.NewParseError(entity.ErrNoFlightsExtracted, "no usable flight legs after normalization", "")
	}
	return nil
}

func (s *ItineraryService) normalizeLeg(ctx context.Context, leg *entity.FlightLeg, now time.Time) {
	leg.DepartureAirport = strings.ToUpper(strings.TrimSpace(leg.DepartureAirport))
	leg.ArrivalAirport = strings.ToUpper(strings.TrimSpace(leg.ArrivalAirport))
	leg.AirlineCode = strings.ToUpper(strings.TrimSpace(leg.AirlineCode))

	leg.DepartureDate = normalize.NormalizeDate(leg.DepartureDate, now)
	leg.DepartureTime = normalize.To12Hour(leg.DepartureTime)
	leg.ArrivalTime = normalize.To12Hour(leg.ArrivalTime)

	// The executable overnight rule can only widen what the parser or
	// model already marked.
	leg.Overnight = leg.Overnight || normalize.Overnight(leg.DepartureTime, leg.ArrivalTime)

	switch {
	case leg.ArrivalDate != "":
		leg.ArrivalDate = normalize.NormalizeDate(leg.ArrivalDate, now)
	case leg.Overnight:
		if dep, err := time.Parse(normalize.DateLayout, leg.DepartureDate); err == nil {
			leg.ArrivalDate = normalize.FormatDate(dep.AddDate(0, 0, 1))
		} else {
			leg.ArrivalDate = leg.DepartureDate
		}
	default:
		leg.ArrivalDate = leg.DepartureDate
	}

	if leg.CabinClassName == "" {
		leg.CabinClassName = normalize.CabinClassName(leg.CabinClass)
	}

	if leg.AirlineCode == "" && len(leg.FlightNumber) >= 2 {
		leg.AirlineCode = strings.ToUpper(leg.FlightNumber[:2])
	}
	if leg.AirlineName == "" && leg.AirlineCode != "" {
		if airline, err := s.airlineRepo.GetByCode(ctx, leg.AirlineCode); err == nil {
			leg.AirlineName = airline.Name
		} else {
			// Unknown carrier renders as its bare code, never a guess.
			leg.AirlineName = leg.AirlineCode
		}
	}

	leg.DepartureCity = s.cityFor(ctx, leg.DepartureAirport, leg.DepartureCity)
	leg.ArrivalCity = s.cityFor(ctx, leg.ArrivalAirport, leg.ArrivalCity)
}

// cityFor fills a missing city from the airport reference table. An
// unknown airport keeps its bare code as the display city.
func (s *ItineraryService) cityFor(ctx context.Context, airportCode, current string) string {
	if current != "" {
		return current
	}
	if airportCode == "" {
		return ""
	}
	airport, err := s.airportRepo.GetByCode(ctx, airportCode)
	if err != nil {
		return airportCode
	}
	return airport.CityName
}
