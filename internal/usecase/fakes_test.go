package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"traveldesk-service/internal/domain/entity"
	"traveldesk-service/pkg/metrics"
)

func testMetrics() *metrics.Metrics {
	return metrics.NewMetricsWith(prometheus.NewRegistry(), "test")
}

var errRefMiss = errors.New("reference data miss")

type fakeCompletion struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompletion) Complete(_ context.Context, _ string, _ time.Time) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeAirlineRepo struct {
	names map[string]string
}

func (f *fakeAirlineRepo) GetByCode(_ context.Context, code string) (*entity.Airline, error) {
	name, ok := f.names[code]
	if !ok {
		return nil, errRefMiss
	}
	return &entity.Airline{Code: code, Name: name}, nil
}

type fakeAirportRepo struct {
	airports map[string]*entity.Airport
}

func (f *fakeAirportRepo) GetByCode(_ context.Context, code string) (*entity.Airport, error) {
	airport, ok := f.airports[code]
	if !ok {
		return nil, errRefMiss
	}
	return airport, nil
}

type fakeParseCache struct {
	mu     sync.Mutex
	stored map[string]*entity.ItineraryParseResult
	hits   int
	sets   int
}

func newFakeParseCache() *fakeParseCache {
	return &fakeParseCache{stored: make(map[string]*entity.ItineraryParseResult)}
}

func (f *fakeParseCache) GetResult(_ context.Context, rawText string) (*entity.ItineraryParseResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.stored[rawText]
	if ok {
		f.hits++
	}
	return result, ok
}

func (f *fakeParseCache) SetResult(_ context.Context, rawText string, result *entity.ItineraryParseResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.stored[rawText] = result
}

type flagWrite struct {
	recordID string
	offset   entity.ReminderOffset
}

type fakeRecordRepo struct {
	mu             sync.Mutex
	records        map[string]*entity.TravelRecord
	insertErr      error
	inserted       int
	deletedBatches []string
	flagWrites     []flagWrite
	flagErr        error
	checkins       []string
	deleted        []string
	upcoming       []*entity.TravelRecord
	upcomingErr    error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*entity.TravelRecord)}
}

func (f *fakeRecordRepo) InsertBatch(_ context.Context, records []*entity.TravelRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	for i, r := range records {
		if r.ID == "" {
			r.ID = "rec-" + string(rune('a'+f.inserted+i))
		}
		r.CreatedAt = time.Now().UTC()
		f.records[r.ID] = r
	}
	f.inserted += len(records)
	return nil
}

func (f *fakeRecordRepo) DeleteBatch(_ context.Context, batchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedBatches = append(f.deletedBatches, batchID)
	for id, r := range f.records {
		if r.BatchID == batchID {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeRecordRepo) FindByID(_ context.Context, id string) (*entity.TravelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, entity.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (f *fakeRecordRepo) FindByBatch(_ context.Context, batchID string) ([]*entity.TravelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.TravelRecord
	for _, r := range f.records {
		if r.BatchID == batchID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListByUser(_ context.Context, userID string) ([]*entity.TravelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.TravelRecord
	for _, r := range f.records {
		if r.UserID == userID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) FindUpcoming(_ context.Context, _ time.Time) ([]*entity.TravelRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upcomingErr != nil {
		return nil, f.upcomingErr
	}
	return f.upcoming, nil
}

func (f *fakeRecordRepo) SetAlertFlag(_ context.Context, id string, offset entity.ReminderOffset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flagErr != nil {
		return f.flagErr
	}
	record, ok := f.records[id]
	if !ok {
		return entity.ErrRecordNotFound
	}
	if offset == entity.Offset24h {
		record.Checkin24hAlert = true
	} else {
		record.Checkin3hAlert = true
	}
	f.flagWrites = append(f.flagWrites, flagWrite{recordID: id, offset: offset})
	return nil
}

func (f *fakeRecordRepo) SetCheckinCompleted(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return entity.ErrRecordNotFound
	}
	record.CheckinCompleted = true
	f.checkins = append(f.checkins, id)
	return nil
}

func (f *fakeRecordRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return entity.ErrRecordNotFound
	}
	delete(f.records, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRecordRepo) flagWriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.flagWrites)
}

type sentNote struct {
	to    string
	title string
	body  string
}

type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	notes []sentNote
}

func (f *fakeNotifier) Notify(_ context.Context, to, title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, sentNote{to: to, title: title, body: body})
	return f.err
}

func (f *fakeNotifier) sent() []sentNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentNote(nil), f.notes...)
}

type pubEvent struct {
	eventType string
	key       string
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []pubEvent
}

func (f *fakePublisher) Publish(_ context.Context, eventType, key string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, pubEvent{eventType: eventType, key: key})
	return f.err
}

func (f *fakePublisher) published() []pubEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pubEvent(nil), f.events...)
}

type fakeArmLock struct {
	mu       sync.Mutex
	deny     bool
	acquired []string
	released []string
}

func (f *fakeArmLock) AcquireArmLock(_ context.Context, recordID string, offset entity.ReminderOffset, _ time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acquired = append(f.acquired, recordID+"/"+offset.String())
	return !f.deny
}

func (f *fakeArmLock) ReleaseArmLock(_ context.Context, recordID string, offset entity.ReminderOffset) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, recordID+"/"+offset.String())
}

type fakeArmer struct {
	mu        sync.Mutex
	armed     []*entity.TravelRecord
	cancelled []string
}

func (f *fakeArmer) Arm(record *entity.TravelRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, record)
}

func (f *fakeArmer) CancelRecord(recordID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, recordID)
}
