package offline

import (
	"context"
	"fmt"
	"sync"

	"roombooker/internal/domain"
	"roombooker/internal/models"

	"github.com/rs/zerolog"
)

// Aggregator composes LocalStore reads, connectivity and sync status into a
// single DataState per query. Writes are local-first durable and enqueued
// for replay; they are never blocked by connectivity.
type Aggregator struct {
	store   domain.LocalStore
	queue   domain.SyncEnqueuer
	status  domain.SyncStatusSource
	monitor domain.ConnectivityMonitor
	logger  *zerolog.Logger
}

func NewAggregator(
	store domain.LocalStore,
	queue domain.SyncEnqueuer,
	status domain.SyncStatusSource,
	monitor domain.ConnectivityMonitor,
	logger *zerolog.Logger,
) *Aggregator {
	return &Aggregator{
		store:   store,
		queue:   queue,
		status:  status,
		monitor: monitor,
		logger:  logger,
	}
}

// combineState maps a query result plus the ambient states onto a
// DataState. Precedence when several conditions hold: Syncing > Error >
// Offline > Success.
func combineState[T any](data T, net models.NetworkState, syncSt models.SyncState) models.DataState[T] {
	switch {
	case syncSt.Status == models.SyncSyncing:
		return models.DataStateLoading(data, syncSt.Message)
	case syncSt.Status == models.SyncError:
		return models.DataStateError(syncSt.Message, data)
	case !net.Online():
		return models.DataStateOffline(data, "Offline mode")
	default:
		return models.DataStateSuccess(data)
	}
}

// watch runs query once per network or sync transition and emits the
// combined DataState. Stale data keeps flowing on degraded paths; a failed
// re-query falls back to the last good result plus the error.
func watch[T any](ctx context.Context, a *Aggregator, query func(ctx context.Context) (T, error)) (<-chan models.DataState[T], func()) {
	out := make(chan models.DataState[T], 16)
	done := make(chan struct{})

	netCh, netCancel := a.monitor.Subscribe()
	syncCh, syncCancel := a.status.Subscribe()

	go func() {
		defer close(out)
		defer netCancel()
		defer syncCancel()

		netState := a.monitor.CurrentState()
		syncState := a.status.Current()
		var lastData T

		emit := func() {
			data, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				a.logger.Error().Err(err).Msg("Local query failed, serving stale data")
				send(out, models.DataStateError(err.Error(), lastData))
				return
			}
			lastData = data
			send(out, combineState(data, netState, syncState))
		}

		emit()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case ns, ok := <-netCh:
				if !ok {
					return
				}
				netState = ns
				emit()
			case ss, ok := <-syncCh:
				if !ok {
					return
				}
				syncState = ss
				emit()
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { close(done) })
	}
	return out, cancel
}

func send[T any](out chan<- models.DataState[T], state models.DataState[T]) {
	select {
	case out <- state:
	default:
		// Receiver is behind; it will catch up on the next transition.
	}
}

// WatchAllRooms streams the room catalog.
func (a *Aggregator) WatchAllRooms(ctx context.Context) (<-chan models.DataState[[]models.Room], func()) {
	return watch(ctx, a, a.store.GetAllRooms)
}

// WatchRoomsByType streams rooms filtered by type.
func (a *Aggregator) WatchRoomsByType(ctx context.Context, roomType string) (<-chan models.DataState[[]models.Room], func()) {
	return watch(ctx, a, func(ctx context.Context) ([]models.Room, error) {
		return a.store.GetRoomsByType(ctx, roomType)
	})
}

// WatchRoomSearch streams free-text search results.
func (a *Aggregator) WatchRoomSearch(ctx context.Context, query string) (<-chan models.DataState[[]models.Room], func()) {
	return watch(ctx, a, func(ctx context.Context) ([]models.Room, error) {
		return a.store.SearchRooms(ctx, query)
	})
}

// WatchUserBookings streams a user's booking history.
func (a *Aggregator) WatchUserBookings(ctx context.Context, userID string) (<-chan models.DataState[[]models.Booking], func()) {
	return watch(ctx, a, func(ctx context.Context) ([]models.Booking, error) {
		return a.store.GetBookingsByUser(ctx, userID)
	})
}

// GetRoom is a one-shot read of a single room.
func (a *Aggregator) GetRoom(ctx context.Context, roomID string) models.DataState[*models.Room] {
	room, err := a.store.GetRoom(ctx, roomID)
	if err != nil {
		return models.DataStateError[*models.Room](fmt.Sprintf("failed to load room: %v", err), nil)
	}
	if !a.monitor.Online() {
		return models.DataStateOffline(room, "Offline mode")
	}
	return models.DataStateSuccess(room)
}

// GetRoomsByPriceRange is a one-shot filtered read.
func (a *Aggregator) GetRoomsByPriceRange(ctx context.Context, min, max float64) models.DataState[[]models.Room] {
	rooms, err := a.store.GetRoomsByPriceRange(ctx, min, max)
	if err != nil {
		return models.DataStateError[[]models.Room](fmt.Sprintf("failed to load rooms: %v", err), nil)
	}
	return combineState(rooms, a.monitor.CurrentState(), a.status.Current())
}

// CreateBooking persists the booking locally, enqueues the create intent
// and reports local success or offline deferral.
func (a *Aggregator) CreateBooking(ctx context.Context, booking *models.Booking) models.DataState[string] {
	if err := a.store.SaveBooking(ctx, booking); err != nil {
		return models.DataStateError(fmt.Sprintf("failed to create booking: %v", err), "")
	}

	a.queue.Enqueue(ctx, models.NewCreateBooking(*booking))

	if !a.monitor.Online() {
		return models.DataStateOffline(booking.ID, "Booking saved offline. Will sync when online.")
	}
	return models.DataStateSuccess(booking.ID)
}

// UpdateBooking persists the changed booking locally and enqueues the
// update intent.
func (a *Aggregator) UpdateBooking(ctx context.Context, booking *models.Booking) models.DataState[string] {
	if err := a.store.SaveBooking(ctx, booking); err != nil {
		return models.DataStateError(fmt.Sprintf("failed to update booking: %v", err), booking.ID)
	}

	a.queue.Enqueue(ctx, models.NewUpdateBooking(*booking))

	if !a.monitor.Online() {
		return models.DataStateOffline(booking.ID, "Booking updated offline. Will sync when online.")
	}
	return models.DataStateSuccess(booking.ID)
}

// CancelBooking optimistically cancels locally and enqueues the cancel
// intent.
func (a *Aggregator) CancelBooking(ctx context.Context, bookingID string) models.DataState[string] {
	if err := a.store.UpdateBookingStatus(ctx, bookingID, models.StatusCancelled); err != nil {
		return models.DataStateError(fmt.Sprintf("failed to cancel booking: %v", err), bookingID)
	}

	a.queue.Enqueue(ctx, models.NewCancelBooking(bookingID))

	if !a.monitor.Online() {
		return models.DataStateOffline(bookingID, "Booking cancelled offline. Will sync when online.")
	}
	return models.DataStateSuccess(bookingID)
}

// SyncNow triggers a one-shot drain without waiting for a connectivity
// transition.
func (a *Aggregator) SyncNow(ctx context.Context) {
	go a.queue.DrainAll(ctx)
}

// PendingOperationCount reports queue depth for UI indicators.
func (a *Aggregator) PendingOperationCount() int {
	return a.queue.PendingCount()
}

// IsOnline reports current connectivity.
func (a *Aggregator) IsOnline() bool {
	return a.monitor.Online()
}

// SyncStatus reports the latest published sync state.
func (a *Aggregator) SyncStatus() models.SyncState {
	return a.status.Current()
}
