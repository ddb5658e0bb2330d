package offline

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"roombooker/internal/database"
	"roombooker/internal/models"
	"roombooker/internal/netmon"
	syncq "roombooker/internal/sync"

	"github.com/rs/zerolog"
)

// fakeEnqueuer records intents without talking to any remote.
type fakeEnqueuer struct {
	mu     sync.Mutex
	ops    []models.SyncOperation
	drains int
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, op models.SyncOperation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

func (f *fakeEnqueuer) DrainAll(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drains++
}

func (f *fakeEnqueuer) PendingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ops)
}

func (f *fakeEnqueuer) queued() []models.SyncOperation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SyncOperation(nil), f.ops...)
}

func (f *fakeEnqueuer) drainCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drains
}

func newTestAggregator(t *testing.T, online bool) (*Aggregator, *database.DB, *fakeEnqueuer, *netmon.Monitor, *syncq.StatusBroadcaster) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	logger := zerolog.New(io.Discard)
	monitor := netmon.NewMonitor(nil, time.Hour, &logger)
	if online {
		monitor.SetState(models.NetworkStateAvailable())
	}
	status := syncq.NewStatusBroadcaster()
	queue := &fakeEnqueuer{}

	return NewAggregator(db, queue, status, monitor, &logger), db, queue, monitor, status
}

func seedRoom(t *testing.T, db *database.DB, id string) {
	t.Helper()
	room := models.Room{
		ID:            id,
		Name:          "Standard Room",
		Type:          models.RoomTypeStandard,
		PricePerNight: 89.99,
		HotelName:     "Comfort Inn",
		MaxGuests:     2,
		IsAvailable:   true,
	}
	if err := db.SaveRoom(context.Background(), &room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
}

func TestCombineStatePrecedence(t *testing.T) {
	online := models.NetworkStateAvailable()
	offline := models.NetworkStateUnavailable()

	cases := []struct {
		name string
		net  models.NetworkState
		sync models.SyncState
		want string
	}{
		{"syncing wins over offline", offline, models.SyncStateSyncing("working"), models.DataLoading},
		{"syncing wins over error", online, models.SyncStateSyncing("working"), models.DataLoading},
		{"error wins over offline", offline, models.SyncStateError("boom"), models.DataError},
		{"offline when idle", offline, models.SyncStateIdle(), models.DataOffline},
		{"success when online and idle", online, models.SyncStateIdle(), models.DataSuccess},
		{"success after sync success", online, models.SyncStateSuccess("done"), models.DataSuccess},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := combineState([]models.Room{}, tc.net, tc.sync)
			if got.Status != tc.want {
				t.Fatalf("expected %s, got %+v", tc.want, got)
			}
		})
	}
}

func TestCreateBookingOfflineSavesLocallyAndQueues(t *testing.T) {
	agg, db, queue, _, _ := newTestAggregator(t, false)

	booking := &models.Booking{
		ID: "b1", UserID: "user1", RoomID: "room1",
		CheckInDate: "2026-10-01", CheckOutDate: "2026-10-03",
		Status: models.StatusPending,
	}

	state := agg.CreateBooking(context.Background(), booking)

	if state.Status != models.DataOffline {
		t.Fatalf("expected offline deferral, got %+v", state)
	}
	if state.Data != "b1" {
		t.Fatalf("expected booking id in state, got %q", state.Data)
	}

	stored, err := db.GetBooking(context.Background(), "b1")
	if err != nil {
		t.Fatalf("booking not persisted locally: %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Fatalf("expected pending, got %s", stored.Status)
	}

	if len(queue.queued()) != 1 || queue.queued()[0].Type != models.OpCreateBooking {
		t.Fatalf("expected one queued create intent, got %+v", queue.queued())
	}
}

func TestCreateBookingOnlineReportsSuccess(t *testing.T) {
	agg, _, queue, _, _ := newTestAggregator(t, true)

	booking := &models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	state := agg.CreateBooking(context.Background(), booking)

	if state.Status != models.DataSuccess {
		t.Fatalf("expected success, got %+v", state)
	}
	if len(queue.queued()) != 1 {
		t.Fatalf("create must be queued even when online, got %d ops", len(queue.queued()))
	}
}

func TestCancelBookingIsLocalFirst(t *testing.T) {
	agg, db, queue, _, _ := newTestAggregator(t, false)

	booking := &models.Booking{ID: "b1", UserID: "user1", Status: models.StatusConfirmed}
	if err := db.SaveBooking(context.Background(), booking); err != nil {
		t.Fatalf("save booking: %v", err)
	}

	state := agg.CancelBooking(context.Background(), "b1")
	if state.Status != models.DataOffline {
		t.Fatalf("expected offline deferral, got %+v", state)
	}

	stored, err := db.GetBooking(context.Background(), "b1")
	if err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if stored.Status != models.StatusCancelled {
		t.Fatalf("expected immediate local cancel, got %s", stored.Status)
	}
	if len(queue.queued()) != 1 || queue.queued()[0].Type != models.OpCancelBooking {
		t.Fatalf("expected queued cancel intent, got %+v", queue.queued())
	}
}

func TestCancelUnknownBookingReturnsError(t *testing.T) {
	agg, _, queue, _, _ := newTestAggregator(t, true)

	state := agg.CancelBooking(context.Background(), "missing")
	if state.Status != models.DataError {
		t.Fatalf("expected error state, got %+v", state)
	}
	if len(queue.queued()) != 0 {
		t.Fatalf("failed local cancel must not be queued, got %+v", queue.queued())
	}
}

func TestWatchAllRoomsEmitsOnNetworkTransitions(t *testing.T) {
	agg, db, _, monitor, _ := newTestAggregator(t, true)
	seedRoom(t, db, "room1")

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	stream, cancel := agg.WatchAllRooms(ctx)
	defer cancel()

	waitFor := func(want string) models.DataState[[]models.Room] {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case state := <-stream:
				if state.Status == want {
					return state
				}
			case <-deadline:
				t.Fatalf("never observed %s state", want)
			}
		}
	}

	first := waitFor(models.DataSuccess)
	if len(first.Data) != 1 {
		t.Fatalf("expected 1 room, got %d", len(first.Data))
	}

	monitor.SetState(models.NetworkStateUnavailable())
	offline := waitFor(models.DataOffline)
	if len(offline.Data) != 1 {
		t.Fatal("offline state must still carry local data")
	}

	monitor.SetState(models.NetworkStateAvailable())
	waitFor(models.DataSuccess)
}

func TestWatchReflectsSyncTransitions(t *testing.T) {
	agg, db, _, _, status := newTestAggregator(t, true)
	seedRoom(t, db, "room1")

	ctx := context.Background()
	stream, cancel := agg.WatchAllRooms(ctx)
	defer cancel()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case state := <-stream:
				if state.Status == want {
					return
				}
			case <-deadline:
				t.Fatalf("never observed %s state", want)
			}
		}
	}

	waitFor(models.DataSuccess)

	status.Publish(models.SyncStateSyncing("Syncing pending operations"))
	waitFor(models.DataLoading)

	status.Publish(models.SyncStateError("2 operations failed"))
	waitFor(models.DataError)

	status.Publish(models.SyncStateSuccess("Sync completed successfully"))
	waitFor(models.DataSuccess)
}

func TestGetRoomOneShot(t *testing.T) {
	agg, db, _, monitor, _ := newTestAggregator(t, true)
	seedRoom(t, db, "room1")

	state := agg.GetRoom(context.Background(), "room1")
	if state.Status != models.DataSuccess || state.Data == nil {
		t.Fatalf("expected success with room, got %+v", state)
	}

	monitor.SetState(models.NetworkStateUnavailable())
	state = agg.GetRoom(context.Background(), "room1")
	if state.Status != models.DataOffline || state.Data == nil {
		t.Fatalf("expected offline with stale room, got status %s", state.Status)
	}

	state = agg.GetRoom(context.Background(), "missing")
	if state.Status != models.DataError {
		t.Fatalf("expected error for unknown room, got %+v", state)
	}
}

func TestSyncNowTriggersDrain(t *testing.T) {
	agg, _, queue, _, _ := newTestAggregator(t, true)

	agg.SyncNow(context.Background())

	deadline := time.After(time.Second)
	for queue.drainCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("drain was never triggered")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWatchCancelIsSafeToCallConcurrently(t *testing.T) {
	agg, db, _, _, _ := newTestAggregator(t, true)
	seedRoom(t, db, "room1")

	stream, cancel := agg.WatchAllRooms(context.Background())
	<-stream

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancel()
		}()
	}
	wg.Wait()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not close after cancel")
		}
	}
}
