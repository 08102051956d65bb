package repository

import (
	"context"
	"time"

	"traveldesk-service/internal/domain/entity"
)

// TravelRecordRepository defines the interface for travel record operations
type TravelRecordRepository interface {
	// InsertBatch writes one record per flight leg of a single opt-in
	// action. Implementations stop at the first failed insert; the
	// caller rolls back the batch.
	InsertBatch(ctx context.Context, records []*entity.TravelRecord) error
	DeleteBatch(ctx context.Context, batchID string) error
	FindByID(ctx context.Context, id string) (*entity.TravelRecord, error)
	// FindByBatch returns every leg saved by one opt-in action, ordered
	// by departure.
	FindByBatch(ctx context.Context, batchID string) ([]*entity.TravelRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.TravelRecord, error)
	// FindUpcoming returns records departing at or after the given
	// instant, for re-arming reminders on process start.
	FindUpcoming(ctx context.Context, from time.Time) ([]*entity.TravelRecord, error)
	// SetAlertFlag sets the reminder flag for the offset true. The write
	// is monotonic: flags never reset.
	SetAlertFlag(ctx context.Context, id string, offset entity.ReminderOffset) error
	SetCheckinCompleted(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
