package notify

import "context"

// Permission is the outcome of a notification permission request.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

//go:generate mockgen -destination=../mocks/notify/dispatcher.go -package=mock_notify github.com/synaptic-study/synaptic/internal/notify Dispatcher

// Dispatcher presents notifications to the learner. Implementations own
// the permission flow; the scheduler only ever calls Show. Delivery is
// best-effort: an undeliverable notification is dropped, never surfaced
// as a scheduling failure.
type Dispatcher interface {
	IsSupported() bool
	IsEnabled() bool
	RequestPermission(ctx context.Context) (Permission, error)
	Show(ctx context.Context, notification Notification) error
}
