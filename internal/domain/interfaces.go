package domain

import (
	"context"
	"time"

	"roombooker/internal/models"
)

// LocalStore is the durable local storage consumed by the offline layer.
// All operations are atomic per call.
type LocalStore interface {
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	GetAllRooms(ctx context.Context) ([]models.Room, error)
	GetRoomsByType(ctx context.Context, roomType string) ([]models.Room, error)
	GetRoomsByPriceRange(ctx context.Context, min, max float64) ([]models.Room, error)
	SearchRooms(ctx context.Context, query string) ([]models.Room, error)
	SaveRoom(ctx context.Context, room *models.Room) error
	SaveRooms(ctx context.Context, rooms []models.Room) error
	DeleteRoom(ctx context.Context, id string) error
	CountRooms(ctx context.Context) (int, error)

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetBookingsByStatus(ctx context.Context, status string) ([]models.Booking, error)
	SaveBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id, status string) error
	ReplaceBookingID(ctx context.Context, oldID, newID string) error
	DeleteBooking(ctx context.Context, id string) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error

	GetSession(ctx context.Context) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context) error
}

// RemoteBookingService abstracts the remote API. Application-level failures
// (success=false envelopes) come back as *remote.APIError so callers can
// tell them apart from transport errors.
type RemoteBookingService interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	CreateBooking(ctx context.Context, booking *models.Booking) (string, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	CancelBooking(ctx context.Context, bookingID string) error
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

// ConnectivityMonitor exposes the current network state and a deduplicated
// change stream. The returned cancel func must release the subscription.
type ConnectivityMonitor interface {
	CurrentState() models.NetworkState
	Online() bool
	Subscribe() (<-chan models.NetworkState, func())
}

// SyncStatusSource publishes sync progress. Late subscribers receive the
// latest value followed by subsequent transitions, never full history.
type SyncStatusSource interface {
	Current() models.SyncState
	Subscribe() (<-chan models.SyncState, func())
}

// SyncEnqueuer accepts mutation intents for eventual replay.
type SyncEnqueuer interface {
	Enqueue(ctx context.Context, op models.SyncOperation)
	DrainAll(ctx context.Context)
	PendingCount() int
}

// SessionRepository caches the active session outside the local store.
type SessionRepository interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// EventPublisher pushes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
