package repository

import (
	"context"
	"time"

	"traveldesk-service/internal/domain/entity"
)

// ParseCache returns earlier pipeline output for byte-identical input.
// Misses and lookup failures are indistinguishable on purpose.
type ParseCache interface {
	GetResult(ctx context.Context, rawText string) (*entity.ItineraryParseResult, bool)
	SetResult(ctx context.Context, rawText string, result *entity.ItineraryParseResult)
}

// ArmLock claims one (record, offset) reminder so only a single replica
// arms a timer for it. Implementations without shared state grant every
// claim.
type ArmLock interface {
	AcquireArmLock(ctx context.Context, recordID string, offset entity.ReminderOffset, ttl time.Duration) bool
	ReleaseArmLock(ctx context.Context, recordID string, offset entity.ReminderOffset)
}
