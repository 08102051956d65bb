package repository

import "context"

// Record lifecycle event types published to the message broker.
const (
	EventRecordCreated    = "record_created"
	EventReminderFired    = "reminder_fired"
	EventCheckinCompleted = "checkin_completed"
	EventRecordDeleted    = "record_deleted"
)

// EventPublisher publishes record lifecycle events. Publishing is
// best-effort: failures are logged by callers, never propagated into
// the user-facing flow.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, payload interface{}) error
}
