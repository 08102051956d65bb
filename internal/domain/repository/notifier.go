package repository

import "context"

// Notifier delivers a user-facing notification with a title and body.
// Built once at startup and injected; implementations degrade to an
// in-app notice when no delivery channel is configured for the target.
type Notifier interface {
	Notify(ctx context.Context, to string, title string, body string) error
}
