package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"roombooker/internal/domain"
	"roombooker/internal/events"
	"roombooker/internal/metrics"
	"roombooker/internal/models"
	"roombooker/internal/remote"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const deadLetterKey = "sync:deadletter"

// Queue buffers pending mutation intents and replays them against the
// remote service when connectivity allows. Producers append under a mutex;
// exactly one drain consumes at a time.
type Queue struct {
	store    domain.LocalStore
	remote   domain.RemoteBookingService
	monitor  domain.ConnectivityMonitor
	retryer  *Retryer
	status   *StatusBroadcaster
	eventBus domain.EventPublisher
	redis    *redis.Client
	logger   *zerolog.Logger

	batchSize int

	mu        sync.Mutex
	pending   []models.SyncOperation
	baseCtx   context.Context
	isSyncing atomic.Bool
}

// NewQueue builds a sync queue. redisClient is optional and only used for
// the dead-letter list; eventBus is optional.
func NewQueue(
	store domain.LocalStore,
	remoteSvc domain.RemoteBookingService,
	monitor domain.ConnectivityMonitor,
	retryer *Retryer,
	eventBus domain.EventPublisher,
	redisClient *redis.Client,
	batchSize int,
	logger *zerolog.Logger,
) *Queue {
	if batchSize <= 0 {
		batchSize = models.DefaultDrainBatchSize
	}
	return &Queue{
		store:     store,
		remote:    remoteSvc,
		monitor:   monitor,
		retryer:   retryer,
		status:    NewStatusBroadcaster(),
		eventBus:  eventBus,
		redis:     redisClient,
		batchSize: batchSize,
		baseCtx:   context.Background(),
		logger:    logger,
	}
}

// workCtx returns the queue's own lifecycle context. Drains and immediate
// attempts run on it, never on a caller's request-scoped context: queued
// work must survive the handler that triggered it.
func (q *Queue) workCtx() context.Context {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.baseCtx
}

// Status exposes the sync status stream.
func (q *Queue) Status() *StatusBroadcaster { return q.status }

// Current implements domain.SyncStatusSource.
func (q *Queue) Current() models.SyncState { return q.status.Current() }

// Subscribe implements domain.SyncStatusSource.
func (q *Queue) Subscribe() (<-chan models.SyncState, func()) { return q.status.Subscribe() }

// PendingCount returns the number of operations waiting for a drain.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Enqueue appends the operation to the pending set and returns immediately.
// When currently online, it also fires an immediate attempt for this one
// operation, in addition to batch drains. The attempt runs on the queue's
// lifecycle context, not the caller's.
func (q *Queue) Enqueue(_ context.Context, op models.SyncOperation) {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	op.State = models.OpStateQueued

	q.mu.Lock()
	q.pending = append(q.pending, op)
	depth := len(q.pending)
	q.mu.Unlock()

	metrics.SetPendingOps(depth)
	q.logger.Debug().Str("op_id", op.ID).Str("op_type", op.Type).
		Str("booking_id", op.BookingID).Int("pending", depth).Msg("Sync operation enqueued")

	if q.monitor != nil && q.monitor.Online() {
		go q.attemptOne(q.workCtx(), op.ID)
	}
}

// attemptOne claims a single queued operation by id and processes it. If a
// concurrent drain already took it, this is a no-op (exactly-once per
// enqueue).
func (q *Queue) attemptOne(ctx context.Context, opID string) {
	op, ok := q.claim(opID)
	if !ok {
		return
	}
	q.processOperation(ctx, op)
	metrics.SetPendingOps(q.PendingCount())
}

func (q *Queue) claim(opID string) (models.SyncOperation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, op := range q.pending {
		if op.ID == opID {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return op, true
		}
	}
	return models.SyncOperation{}, false
}

// Start subscribes to connectivity and drains whenever the network comes
// back. Runs until ctx is done.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	q.baseCtx = ctx
	q.mu.Unlock()

	states, cancel := q.monitor.Subscribe()
	defer cancel()

	q.logger.Info().Msg("Sync queue started")
	defer q.logger.Info().Msg("Sync queue stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			switch state.Status {
			case models.NetworkAvailable:
				q.DrainAll(ctx)
			case models.NetworkUnavailable:
				q.status.Publish(models.SyncStateOffline())
			case models.NetworkError:
				q.status.Publish(models.SyncStateError("network error: " + state.Reason))
			}
		}
	}
}

// DrainAll attempts every currently queued operation in enqueue order, then
// refreshes cacheable remote data. Idempotent: a second concurrent call is
// a no-op while a drain is in progress. The caller's context is not used;
// drain work runs on the queue's lifecycle context.
func (q *Queue) DrainAll(_ context.Context) {
	if !q.isSyncing.CompareAndSwap(false, true) {
		return
	}
	defer q.isSyncing.Store(false)

	ctx := q.workCtx()

	if q.monitor != nil && !q.monitor.Online() {
		q.status.Publish(models.SyncStateOffline())
		return
	}

	q.status.Publish(models.SyncStateSyncing("Syncing pending operations"))

	// Snapshot under the lock; enqueues during this drain land in the next
	// one, never dropped or double-processed.
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	var failed int
	var lastErr string
	for start := 0; start < len(batch); start += q.batchSize {
		end := start + q.batchSize
		if end > len(batch) {
			end = len(batch)
		}
		for i := start; i < end; i++ {
			if err := q.processOperation(ctx, batch[i]); err != nil {
				failed++
				lastErr = err.Error()
			}
		}
		metrics.SetPendingOps(q.PendingCount() + len(batch) - end)
	}
	metrics.SetPendingOps(q.PendingCount())

	q.refreshFromServer(ctx)

	if failed > 0 {
		q.status.Publish(models.SyncStateError(
			fmt.Sprintf("sync finished with %d failed operation(s): %s", failed, lastErr)))
		return
	}
	q.status.Publish(models.SyncStateSuccess("Sync completed successfully"))
}

// processOperation drives one operation to a terminal outcome. The
// operation never returns to the queue: it ends in a logged success or a
// logged, dead-lettered failure.
func (q *Queue) processOperation(ctx context.Context, op models.SyncOperation) error {
	op.State = models.OpStateInFlight

	err := q.retryer.Run(ctx, func(ctx context.Context) error {
		metrics.IncSyncAttempt(op.Type)
		return q.applyRemote(ctx, &op)
	}, nil, func(attempt int, attemptErr error) {
		q.logger.Warn().Err(attemptErr).Str("op_id", op.ID).Str("op_type", op.Type).
			Int("attempt", attempt).Msg("Sync attempt failed, will retry")
	})

	if err != nil {
		op.State = models.OpStateFailed
		op.LastError = err.Error()
		metrics.IncSyncOutcome(op.Type, "failed")
		q.logger.Error().Err(err).Str("op_id", op.ID).Str("op_type", op.Type).
			Str("booking_id", op.BookingID).Msg("Sync operation failed permanently")
		q.pushDeadLetter(ctx, &op)
		q.publishBookingEvent(events.EventBookingSyncError, &op, err.Error())
		q.status.Publish(models.SyncStateError(err.Error()))
		return err
	}

	op.State = models.OpStateSucceeded
	metrics.IncSyncOutcome(op.Type, "succeeded")
	q.logger.Info().Str("op_id", op.ID).Str("op_type", op.Type).
		Str("booking_id", op.BookingID).Msg("Sync operation succeeded")
	q.publishBookingEvent(events.EventBookingSynced, &op, "")
	return nil
}

// applyRemote performs the remote call and, on acknowledgement, confirms
// the already-applied optimistic local write.
func (q *Queue) applyRemote(ctx context.Context, op *models.SyncOperation) error {
	switch op.Type {
	case models.OpCreateBooking:
		if op.Booking == nil {
			return fmt.Errorf("create operation %s has no booking payload", op.ID)
		}
		serverID, err := q.remote.CreateBooking(ctx, op.Booking)
		if err != nil {
			return err
		}
		return q.confirmCreate(ctx, op, serverID)

	case models.OpUpdateBooking:
		if op.Booking == nil {
			return fmt.Errorf("update operation %s has no booking payload", op.ID)
		}
		if err := q.remote.UpdateBooking(ctx, op.Booking); err != nil {
			return err
		}
		// Local copy already holds the update; nothing to narrow.
		return nil

	case models.OpCancelBooking:
		if err := q.remote.CancelBooking(ctx, op.BookingID); err != nil {
			return err
		}
		if err := q.store.UpdateBookingStatus(ctx, op.BookingID, models.StatusCancelled); err != nil {
			q.logger.Warn().Err(err).Str("booking_id", op.BookingID).
				Msg("Cancel confirmed remotely but local status update failed")
		}
		return nil

	default:
		return fmt.Errorf("unknown sync operation type: %s", op.Type)
	}
}

// confirmCreate swaps in the server-issued id and narrows Pending to
// Confirmed. A booking the user cancelled locally in the meantime is never
// resurrected.
func (q *Queue) confirmCreate(ctx context.Context, op *models.SyncOperation, serverID string) error {
	localID := op.BookingID
	if serverID != "" && serverID != localID {
		if err := q.store.ReplaceBookingID(ctx, localID, serverID); err != nil {
			return fmt.Errorf("replace booking id %s: %w", localID, err)
		}
		op.BookingID = serverID
	}

	current, err := q.store.GetBooking(ctx, op.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %s after create: %w", op.BookingID, err)
	}
	if current.Status == models.StatusPending {
		if err := q.store.UpdateBookingStatus(ctx, op.BookingID, models.StatusConfirmed); err != nil {
			return fmt.Errorf("confirm booking %s: %w", op.BookingID, err)
		}
	}
	return nil
}

// refreshFromServer performs a best-effort refresh of cacheable remote data
// after a drain. Failures keep existing local data.
func (q *Queue) refreshFromServer(ctx context.Context) {
	rooms, err := q.remote.ListRooms(ctx)
	if err != nil {
		q.logger.Warn().Err(err).Msg("Room catalog refresh failed, keeping local data")
	} else if len(rooms) > 0 {
		if err := q.store.SaveRooms(ctx, rooms); err != nil {
			q.logger.Warn().Err(err).Msg("Failed to persist refreshed rooms")
		} else if q.eventBus != nil {
			_ = q.eventBus.PublishJSON(events.EventRoomsRefreshed, map[string]int{"count": len(rooms)})
		}
	}

	user, err := q.remote.GetCurrentUser(ctx)
	if err != nil {
		var apiErr *remote.APIError
		if !errors.As(err, &apiErr) {
			q.logger.Debug().Err(err).Msg("User profile refresh failed")
		}
		return
	}
	if user != nil {
		if err := q.store.SaveUser(ctx, user); err != nil {
			q.logger.Warn().Err(err).Msg("Failed to persist refreshed user profile")
		}
	}
}

func (q *Queue) publishBookingEvent(eventType string, op *models.SyncOperation, errMsg string) {
	if q.eventBus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:  op.BookingID,
		Error:      errMsg,
		OccurredAt: time.Now(),
	}
	if op.Booking != nil {
		payload.UserID = op.Booking.UserID
		payload.RoomID = op.Booking.RoomID
		payload.RoomName = op.Booking.RoomName
		payload.Status = op.Booking.Status
		payload.CheckInDate = op.Booking.CheckInDate
		payload.CheckOutDate = op.Booking.CheckOutDate
	}
	_ = q.eventBus.PublishJSON(eventType, payload)
}

// pushDeadLetter records a permanently failed operation for manual
// reconciliation. Best effort: the failure is already logged.
func (q *Queue) pushDeadLetter(ctx context.Context, op *models.SyncOperation) {
	if q.redis == nil {
		return
	}
	data, err := json.Marshal(op)
	if err != nil {
		q.logger.Warn().Err(err).Str("op_id", op.ID).Msg("Failed to encode dead-letter operation")
		return
	}
	if err := q.redis.LPush(ctx, deadLetterKey, data).Err(); err != nil {
		q.logger.Warn().Err(err).Str("op_id", op.ID).Msg("Failed to push dead-letter operation")
	}
}
