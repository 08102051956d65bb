package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/internal/domain/repository"
	"traveldesk-service/pkg/logger"
	"traveldesk-service/pkg/metrics"
	"traveldesk-service/templates"
)

// ReminderScheduler arms at most one timer per (record, offset) and
// fires the check-in reminders at departure minus 24h and minus 3h.
// Triggers already in the past are skipped, never fired late. Timers
// live in memory only; Run's startup and periodic rescans rebuild them
// from persisted records, so reminders survive restarts.
type ReminderScheduler struct {
	recordRepo   repository.TravelRecordRepository
	notifier     repository.Notifier
	armLock      repository.ArmLock
	publisher    repository.EventPublisher
	metrics      *metrics.Metrics
	logger       logger.Logger
	scanInterval time.Duration
	horizon      time.Duration

	mu    sync.Mutex
	armed map[string]map[entity.ReminderOffset]*time.Timer

	now func() time.Time
}

// NewReminderScheduler creates the scheduler. armLock may be nil when
// the deployment has a single replica.
func NewReminderScheduler(
	recordRepo repository.TravelRecordRepository,
	notifier repository.Notifier,
	armLock repository.ArmLock,
	publisher repository.EventPublisher,
	m *metrics.Metrics,
	logger logger.Logger,
	scanInterval time.Duration,
	horizon time.Duration,
) *ReminderScheduler {
	return &ReminderScheduler{
		recordRepo:   recordRepo,
		notifier:     notifier,
		armLock:      armLock,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		scanInterval: scanInterval,
		horizon:      horizon,
		armed:        make(map[string]map[entity.ReminderOffset]*time.Timer),
		now:          time.Now,
	}
}

// Arm schedules the unfired future reminders of one record. Arming is
// idempotent: offsets with a live timer are left alone.
func (s *ReminderScheduler) Arm(record *entity.TravelRecord) {
	if record.ID == "" || record.DepartureUTC.IsZero() || record.CheckinCompleted {
		return
	}

	now := s.now()
	for _, offset := range []entity.ReminderOffset{entity.Offset24h, entity.Offset3h} {
		if record.AlertSent(offset) {
			continue
		}
		trigger := record.TriggerAt(offset)
		if !trigger.After(now) {
			continue
		}
		s.arm(record.ID, offset, trigger)
	}
}

func (s *ReminderScheduler) arm(recordID string, offset entity.ReminderOffset, trigger time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, alreadyArmed := s.armed[recordID][offset]; alreadyArmed {
		return
	}

	if s.armLock != nil {
		ttl := time.Until(trigger) + time.Hour
		if !s.armLock.AcquireArmLock(context.Background(), recordID, offset, ttl) {
			s.logger.Debug("Reminder owned by another replica", "recordId", recordID, "offset", offset)
			return
		}
	}

	offsets, ok := s.armed[recordID]
	if !ok {
		offsets = make(map[entity.ReminderOffset]*time.Timer)
		s.armed[recordID] = offsets
	}
	delay := trigger.Sub(s.now())
	offsets[offset] = time.AfterFunc(delay, func() {
		s.fire(recordID, offset)
	})
	s.logger.Info("Reminder armed",
		"recordId", recordID,
		"offset", offset,
		"triggerAt", trigger.UTC().Format(time.RFC3339))
}

// fire delivers one reminder, then writes its flag exactly once. A flag
// write that fails after the notification went out is logged and
// counted, never rolled back or retried.
func (s *ReminderScheduler) fire(recordID string, offset entity.ReminderOffset) {
	defer s.remove(recordID, offset)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	record, err := s.recordRepo.FindByID(ctx, recordID)
	if err != nil {
		if !errors.Is(err, entity.ErrRecordNotFound) {
			s.logger.Error("Reminder fired but record unreadable", "recordId", recordID, "error", err)
			s.metrics.ErrorsCount.WithLabelValues("reminder_fire").Inc()
		}
		return
	}
	if record.AlertSent(offset) || record.CheckinCompleted {
		s.logger.Debug("Reminder already handled", "recordId", recordID, "offset", offset)
		return
	}

	title := templates.CheckinReminderTitle(offset)
	body := templates.CheckinReminderBody(record, offset)
	if err := s.notifier.Notify(ctx, record.ContactInfo, title, body); err != nil {
		s.logger.Error("Reminder notification failed", "recordId", recordID, "offset", offset, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("notify").Inc()
	}

	if err := s.recordRepo.SetAlertFlag(ctx, recordID, offset); err != nil {
		s.logger.Error("Alert flag write failed after notification", "recordId", recordID, "offset", offset, "error", err)
		s.metrics.ErrorsCount.WithLabelValues("flag_write").Inc()
	}

	s.metrics.RemindersFired.WithLabelValues(offset.String()).Inc()
	if err := s.publisher.Publish(ctx, repository.EventReminderFired, recordID, map[string]string{
		"record_id": recordID,
		"offset":    offset.String(),
		"flight":    record.FlightNumber,
	}); err != nil {
		s.logger.Warn("Reminder fired event not published", "recordId", recordID, "error", err)
	}
	s.logger.Info("Reminder fired", "recordId", recordID, "offset", offset, "flight", record.FlightNumber)
}

// CancelRecord stops any pending timers for the record.
func (s *ReminderScheduler) CancelRecord(recordID string) {
	s.mu.Lock()
	offsets := s.armed[recordID]
	delete(s.armed, recordID)
	s.mu.Unlock()

	for offset, timer := range offsets {
		timer.Stop()
		if s.armLock != nil {
			s.armLock.ReleaseArmLock(context.Background(), recordID, offset)
		}
	}
}

// Run blocks, re-arming from persistence at startup and on every scan
// tick, until the context ends. On exit all timers are stopped.
func (s *ReminderScheduler) Run(ctx context.Context) {
	s.rearm(ctx)

	ticker := time.NewTicker(s.scanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-ticker.C:
			s.rearm(ctx)
		}
	}
}

// rearm rebuilds timers for upcoming records whose next trigger falls
// inside the scan horizon. Later departures are picked up by a later
// scan.
func (s *ReminderScheduler) rearm(ctx context.Context) {
	now := s.now()
	records, err := s.recordRepo.FindUpcoming(ctx, now)
	if err != nil {
		s.logger.Error("Rearm scan failed", "error", err)
		s.metrics.ErrorsCount.WithLabelValues("rearm_scan").Inc()
		return
	}

	cutoff := now.Add(s.horizon)
	armedCount := 0
	for _, record := range records {
		if record.TriggerAt(entity.Offset24h).After(cutoff) {
			continue
		}
		s.Arm(record)
		armedCount++
	}
	s.logger.Debug("Rearm scan complete", "upcoming", len(records), "considered", armedCount)
}

// Stop cancels every armed timer.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for recordID, offsets := range s.armed {
		for _, timer := range offsets {
			timer.Stop()
		}
		delete(s.armed, recordID)
	}
	s.logger.Info("Reminder scheduler stopped")
}

func (s *ReminderScheduler) remove(recordID string, offset entity.ReminderOffset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offsets, ok := s.armed[recordID]; ok {
		delete(offsets, offset)
		if len(offsets) == 0 {
			delete(s.armed, recordID)
		}
	}
}

// armedOffsets reports the live timers of one record.
func (s *ReminderScheduler) armedOffsets(recordID string) []entity.ReminderOffset {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.ReminderOffset
	for offset := range s.armed[recordID] {
		out = append(out, offset)
	}
	return out
}

// ArmedCount is the number of records with at least one live timer.
func (s *ReminderScheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.armed)
}
