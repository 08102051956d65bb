package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/domain/repository"
	"traveldesk-service/pkg/logger"
	"traveldesk-service/pkg/metrics"
	"traveldesk-service/pkg/normalize"
)

// ReminderArmer is what the gateway needs from the scheduler: arm the
// timers of a freshly saved record, drop them when the record goes.
type ReminderArmer interface {
	Arm(record *entity.TravelRecord)
	CancelRecord(recordID string)
}

// RecordView is one record with its derived display status.
type RecordView struct {
	*entity.TravelRecord
	Status entity.Status `json:"status"`
}

// RecordService is the persistence gateway: one record per flight leg,
// written only on explicit opt-in. A failed batch insert rolls the
// whole batch back; partial itineraries are never left behind.
type RecordService struct {
	recordRepo  repository.TravelRecordRepository
	airportRepo repository.AirportRepository
	scheduler   ReminderArmer
	publisher   repository.EventPublisher
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewRecordService creates the gateway.
func NewRecordService(
	recordRepo repository.TravelRecordRepository,
	airportRepo repository.AirportRepository,
	scheduler ReminderArmer,
	publisher repository.EventPublisher,
	m *metrics.Metrics,
	logger logger.Logger,
) *RecordService {
	return &RecordService{
		recordRepo:  recordRepo,
		airportRepo: airportRepo,
		scheduler:   scheduler,
		publisher:   publisher,
		metrics:     m,
		logger:      logger,
	}
}

// SaveItinerary persists one record per leg and arms their reminders.
func (s *RecordService) SaveItinerary(ctx context.Context, userID string, result *entity.ItineraryParseResult, contactInfo, rawText string) ([]*entity.TravelRecord, error) {
	if result == nil || len(result.Flights) == 0 {
		return nil, entity.ErrNoFlightsExtracted
	}

	batchID := uuid.NewString()
	records := lo.Map(result.Flights, func(leg entity.FlightLeg, _ int) *entity.TravelRecord {
		return &entity.TravelRecord{
			BatchID:          batchID,
			PassengerName:    result.PassengerName,
			PNR:              result.PNR,
			DepartureDate:    leg.DepartureDate,
			DepartureTime:    leg.DepartureTime,
			ArrivalDate:      leg.ArrivalDate,
			DepartureAirport: leg.DepartureAirport,
			ArrivalAirport:   leg.ArrivalAirport,
			AirlineName:      leg.AirlineName,
			FlightNumber:     leg.FlightNumber,
			CabinClassName:   leg.CabinClassName,
			DepartureUTC:     s.departureInstant(ctx, &leg),
			TotalAmount:      result.TotalAmount,
			Currency:         result.Currency,
			UserID:           userID,
			RawItinerary:     rawText,
			ContactInfo:      contactInfo,
		}
	})

	if err := s.recordRepo.InsertBatch(ctx, records); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("persist").Inc()
		s.logger.Error("Batch insert failed, rolling back", "batchId", batchID, "error", err)
		if rbErr := s.recordRepo.DeleteBatch(ctx, batchID); rbErr != nil {
			s.logger.Error("Batch rollback failed", "batchId", batchID, "error", rbErr)
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	s.metrics.RecordsPersisted.Add(float64(len(records)))
	for _, record := range records {
		s.scheduler.Arm(record)
	}

	if err := s.publisher.Publish(ctx, repository.EventRecordCreated, batchID, records); err != nil {
		s.logger.Warn("Record created event not published", "batchId", batchID, "error", err)
	}

	s.logger.Info("Itinerary saved",
		"batchId", batchID,
		"userId", userID,
		"records", len(records),
		"pnr", result.PNR)
	return records, nil
}

// departureInstant anchors the leg's local wall-clock departure in its
// airport's zone. Unknown airports or unparseable fields anchor in UTC
// or yield the zero instant, which the scheduler treats as unarmable.
func (s *RecordService) departureInstant(ctx context.Context, leg *entity.FlightLeg) time.Time {
	loc := time.UTC
	if airport, err := s.airportRepo.GetByCode(ctx, leg.DepartureAirport); err == nil && airport.TzName != "" {
		if l, err := time.LoadLocation(airport.TzName); err == nil {
			loc = l
		}
	}

	instant, err := normalize.CombineInstant(leg.DepartureDate, leg.DepartureTime, loc)
	if err != nil {
		s.logger.Warn("Departure instant not derivable, reminders stay unarmed",
			"flight", leg.FlightNumber,
			"date", leg.DepartureDate,
			"time", leg.DepartureTime,
			"error", err)
		return time.Time{}
	}
	return instant.UTC()
}

// List returns the user's records with display status, most pressing
// first.
func (s *RecordService) List(ctx context.Context, userID string, now time.Time) ([]RecordView, error) {
	records, err := s.recordRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}

	views := lo.Map(records, func(r *entity.TravelRecord, _ int) RecordView {
		return RecordView{TravelRecord: r, Status: r.Status(now)}
	})
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Status.Rank() != views[j].Status.Rank() {
			return views[i].Status.Rank() < views[j].Status.Rank()
		}
		return views[i].DepartureUTC.Before(views[j].DepartureUTC)
	})
	return views, nil
}

// Batch returns every leg of the itinerary the given record belongs to,
// after checking the caller owns it.
func (s *RecordService) Batch(ctx context.Context, userID, recordID string) ([]*entity.TravelRecord, error) {
	record, err := s.owned(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.FindByBatch(ctx, record.BatchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	return records, nil
}

// CompleteCheckin marks the record checked in. The transition is
// monotonic; repeating it is a harmless no-op.
func (s *RecordService) CompleteCheckin(ctx context.Context, userID, recordID string) error {
	record, err := s.owned(ctx, userID, recordID)
	if err != nil {
		return err
	}
	if record.CheckinCompleted {
		return nil
	}

	if err := s.recordRepo.SetCheckinCompleted(ctx, recordID); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	if err := s.publisher.Publish(ctx, repository.EventCheckinCompleted, recordID, record); err != nil {
		s.logger.Warn("Checkin completed event not published", "recordId", recordID, "error", err)
	}
	s.logger.Info("Check-in completed", "recordId", recordID, "userId", userID)
	return nil
}

// Delete removes one record and drops its pending reminders.
func (s *RecordService) Delete(ctx context.Context, userID, recordID string) error {
	record, err := s.owned(ctx, userID, recordID)
	if err != nil {
		return err
	}

	s.scheduler.CancelRecord(recordID)
	if err := s.recordRepo.Delete(ctx, recordID); err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", entity.ErrPersistenceFailure, err)
	}
	if err := s.publisher.Publish(ctx, repository.EventRecordDeleted, recordID, record); err != nil {
		s.logger.Warn("Record deleted event not published", "recordId", recordID, "error", err)
	}
	s.logger.Info("Record deleted", "recordId", recordID, "userId", userID)
	return nil
}

// owned loads a record and hides other users' records behind not-found.
func (s *RecordService) owned(ctx context.Context, userID, recordID string) (*entity.TravelRecord, error) {
	record, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(record.UserID, userID) {
		return nil, entity.ErrRecordNotFound
	}
	return record, nil
}
