package sync

import (
	"context"
	"errors"
	"io"
	"sync"
	"syscall"
	"testing"
	"time"

	"roombooker/internal/models"
	"roombooker/internal/remote"

	"github.com/rs/zerolog"
)

// stubMonitor is a controllable ConnectivityMonitor for tests.
type stubMonitor struct {
	mu     sync.Mutex
	state  models.NetworkState
	subs   []chan models.NetworkState
}

func newStubMonitor(online bool) *stubMonitor {
	state := models.NetworkStateUnavailable()
	if online {
		state = models.NetworkStateAvailable()
	}
	return &stubMonitor{state: state}
}

func (m *stubMonitor) CurrentState() models.NetworkState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *stubMonitor) Online() bool { return m.CurrentState().Online() }

func (m *stubMonitor) Subscribe() (<-chan models.NetworkState, func()) {
	ch := make(chan models.NetworkState, 16)
	m.mu.Lock()
	ch <- m.state
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch, func() {}
}

func (m *stubMonitor) setOnline(online bool) {
	state := models.NetworkStateUnavailable()
	if online {
		state = models.NetworkStateAvailable()
	}
	m.mu.Lock()
	m.state = state
	subs := append([]chan models.NetworkState(nil), m.subs...)
	m.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- state:
		default:
		}
	}
}

// fakeStore is an in-memory LocalStore sufficient for queue tests.
type fakeStore struct {
	mu       sync.Mutex
	rooms    map[string]models.Room
	bookings map[string]models.Booking
	users    map[string]models.User
	session  *models.Session

	savedRooms int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rooms:    make(map[string]models.Room),
		bookings: make(map[string]models.Booking),
		users:    make(map[string]models.User),
	}
}

var errFakeNotFound = errors.New("not found")

func (s *fakeStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return &room, nil
}

func (s *fakeStore) GetAllRooms(ctx context.Context) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeStore) GetRoomsByType(ctx context.Context, roomType string) ([]models.Room, error) {
	return s.GetAllRooms(ctx)
}

func (s *fakeStore) GetRoomsByPriceRange(ctx context.Context, min, max float64) ([]models.Room, error) {
	return s.GetAllRooms(ctx)
}

func (s *fakeStore) SearchRooms(ctx context.Context, query string) ([]models.Room, error) {
	return s.GetAllRooms(ctx)
}

func (s *fakeStore) SaveRoom(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = *room
	return nil
}

func (s *fakeStore) SaveRooms(ctx context.Context, rooms []models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	s.savedRooms += len(rooms)
	return nil
}

func (s *fakeStore) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *fakeStore) CountRooms(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms), nil
}

func (s *fakeStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return &b, nil
}

func (s *fakeStore) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) GetBookingsByStatus(ctx context.Context, status string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveBooking(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *fakeStore) UpdateBookingStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return errFakeNotFound
	}
	b.Status = status
	s.bookings[id] = b
	return nil
}

func (s *fakeStore) ReplaceBookingID(ctx context.Context, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[oldID]
	if !ok {
		return errFakeNotFound
	}
	delete(s.bookings, oldID)
	b.ID = newID
	s.bookings[newID] = b
	return nil
}

func (s *fakeStore) DeleteBooking(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings, id)
	return nil
}

func (s *fakeStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return &u, nil
}

func (s *fakeStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *fakeStore) GetSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, errFakeNotFound
	}
	return s.session, nil
}

func (s *fakeStore) SetSession(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *fakeStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *fakeStore) bookingStatus(t *testing.T, id string) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		t.Fatalf("booking %s not in store", id)
	}
	return b.Status
}

// fakeRemote records calls and returns scripted results.
type fakeRemote struct {
	mu sync.Mutex

	createCalls int
	updateCalls int
	cancelCalls int
	listCalls   int
	userCalls   int

	createErr error
	updateErr error
	cancelErr error
	serverID  string
	rooms     []models.Room
	user      *models.User
}

func (r *fakeRemote) ListRooms(ctx context.Context) ([]models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	return r.rooms, nil
}

func (r *fakeRemote) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return nil, errFakeNotFound
}

func (r *fakeRemote) CreateBooking(ctx context.Context, booking *models.Booking) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return "", r.createErr
	}
	if r.serverID != "" {
		return r.serverID, nil
	}
	return booking.ID, nil
}

func (r *fakeRemote) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	return r.updateErr
}

func (r *fakeRemote) CancelBooking(ctx context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelCalls++
	return r.cancelErr
}

func (r *fakeRemote) GetCurrentUser(ctx context.Context) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userCalls++
	if r.user == nil {
		return nil, &remote.APIError{Message: "not authenticated"}
	}
	return r.user, nil
}

func (r *fakeRemote) totalMutations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createCalls + r.updateCalls + r.cancelCalls
}

func newTestQueue(store *fakeStore, remoteSvc *fakeRemote, monitor *stubMonitor) *Queue {
	logger := zerolog.New(io.Discard)
	retryer := NewRetryer(RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}, monitor)
	return NewQueue(store, remoteSvc, monitor, retryer, nil, nil, 100, &logger)
}

func TestEnqueueOfflineMakesNoRemoteCalls(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(false)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", RoomID: "room1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)

	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))
	queue.Enqueue(context.Background(), models.NewCancelBooking("b2"))

	time.Sleep(50 * time.Millisecond)
	if got := remoteSvc.totalMutations(); got != 0 {
		t.Fatalf("expected no remote calls while offline, got %d", got)
	}
	if queue.PendingCount() != 2 {
		t.Fatalf("expected 2 pending operations, got %d", queue.PendingCount())
	}
}

func TestDrainAllProcessesQueueAndPublishesSuccess(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(true)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", RoomID: "room1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)

	// Enqueue while offline first so the immediate attempt does not race
	// the drain under test.
	monitor.setOnline(false)
	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))
	monitor.setOnline(true)

	queue.DrainAll(context.Background())

	if queue.PendingCount() != 0 {
		t.Fatalf("expected empty queue after drain, got %d", queue.PendingCount())
	}
	if remoteSvc.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", remoteSvc.createCalls)
	}
	if state := queue.Current(); state.Status != models.SyncSuccess {
		t.Fatalf("expected success state, got %+v", state)
	}
	if got := store.bookingStatus(t, "b1"); got != models.StatusConfirmed {
		t.Fatalf("expected booking confirmed after sync, got %s", got)
	}
}

func TestDrainAllOfflinePublishesOffline(t *testing.T) {
	queue := newTestQueue(newFakeStore(), &fakeRemote{}, newStubMonitor(false))

	queue.DrainAll(context.Background())

	if state := queue.Current(); state.Status != models.SyncOffline {
		t.Fatalf("expected offline state, got %+v", state)
	}
}

func TestDrainAllConcurrentSecondCallIsNoop(t *testing.T) {
	store := newFakeStore()
	monitor := newStubMonitor(false)

	block := make(chan struct{})
	remoteSvc := &fakeRemote{}
	logger := zerolog.New(io.Discard)
	retryer := NewRetryer(RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond}, nil)
	queue := NewQueue(store, &blockingRemote{inner: remoteSvc, release: block}, monitor, retryer, nil, nil, 100, &logger)

	booking := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)
	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))
	monitor.setOnline(true)

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			queue.DrainAll(context.Background())
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(block)
	wg.Wait()

	if remoteSvc.createCalls != 1 {
		t.Fatalf("expected exactly 1 create call from concurrent drains, got %d", remoteSvc.createCalls)
	}
}

// blockingRemote parks the first mutation until release closes, so tests can
// hold a drain open.
type blockingRemote struct {
	inner   *fakeRemote
	release chan struct{}
}

func (r *blockingRemote) ListRooms(ctx context.Context) ([]models.Room, error) {
	return r.inner.ListRooms(ctx)
}

func (r *blockingRemote) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return r.inner.GetRoom(ctx, id)
}

func (r *blockingRemote) CreateBooking(ctx context.Context, booking *models.Booking) (string, error) {
	<-r.release
	return r.inner.CreateBooking(ctx, booking)
}

func (r *blockingRemote) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	<-r.release
	return r.inner.UpdateBooking(ctx, booking)
}

func (r *blockingRemote) CancelBooking(ctx context.Context, bookingID string) error {
	<-r.release
	return r.inner.CancelBooking(ctx, bookingID)
}

func (r *blockingRemote) GetCurrentUser(ctx context.Context) (*models.User, error) {
	return r.inner.GetCurrentUser(ctx)
}

func TestEnqueueWhileOnlineAttemptsImmediately(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(true)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)

	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))

	deadline := time.After(2 * time.Second)
	for remoteSvc.totalMutations() == 0 {
		select {
		case <-deadline:
			t.Fatal("operation was not attempted while online")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if queue.PendingCount() != 0 {
		t.Fatalf("expected empty queue after immediate attempt, got %d", queue.PendingCount())
	}
}

func TestDrainAllSurvivesCancelledCallerContext(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(false)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)
	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))
	monitor.setOnline(true)

	// A handler-scoped context dies as soon as the response is written; the
	// drain it triggered must still reach the server.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	queue.DrainAll(ctx)

	if remoteSvc.createCalls != 1 {
		t.Fatalf("expected 1 create call despite cancelled trigger context, got %d", remoteSvc.createCalls)
	}
	if queue.PendingCount() != 0 {
		t.Fatalf("expected empty queue, got %d", queue.PendingCount())
	}
	if state := queue.Current(); state.Status != models.SyncSuccess {
		t.Fatalf("expected success state, got %+v", state)
	}
	if got := store.bookingStatus(t, "b1"); got != models.StatusConfirmed {
		t.Fatalf("expected booking confirmed, got %s", got)
	}
}

func TestEnqueueImmediateAttemptSurvivesCancelledCallerContext(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(true)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	queue.Enqueue(ctx, models.NewCreateBooking(booking))

	deadline := time.After(2 * time.Second)
	for remoteSvc.totalMutations() == 0 {
		select {
		case <-deadline:
			t.Fatal("immediate attempt never reached the server")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := store.bookingStatus(t, "b1"); got != models.StatusConfirmed {
		t.Fatalf("expected booking confirmed, got %s", got)
	}
}

func TestDrainAllProcessesBeyondBatchSize(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(false)
	logger := zerolog.New(io.Discard)
	retryer := NewRetryer(RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond}, monitor)
	queue := NewQueue(store, remoteSvc, monitor, retryer, nil, nil, 2, &logger)

	for _, id := range []string{"b1", "b2", "b3", "b4", "b5"} {
		booking := models.Booking{ID: id, UserID: "user1", Status: models.StatusPending}
		_ = store.SaveBooking(context.Background(), &booking)
		queue.Enqueue(context.Background(), models.NewCreateBooking(booking))
	}

	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	if remoteSvc.createCalls != 5 {
		t.Fatalf("expected all 5 operations drained, got %d", remoteSvc.createCalls)
	}
	if queue.PendingCount() != 0 {
		t.Fatalf("expected empty queue after drain, got %d", queue.PendingCount())
	}
}

func TestDrainContinuesPastFailedOperation(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{cancelErr: syscall.ECONNREFUSED}
	monitor := newStubMonitor(false)
	queue := newTestQueue(store, remoteSvc, monitor)

	first := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	third := models.Booking{ID: "b3", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &first)
	_ = store.SaveBooking(context.Background(), &third)

	// Middle operation exhausts its retries; its neighbours must still sync.
	queue.Enqueue(context.Background(), models.NewCreateBooking(first))
	queue.Enqueue(context.Background(), models.NewCancelBooking("b2"))
	queue.Enqueue(context.Background(), models.NewUpdateBooking(third))

	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	if remoteSvc.createCalls != 1 {
		t.Fatalf("expected first operation synced once, got %d calls", remoteSvc.createCalls)
	}
	if remoteSvc.cancelCalls != 3 {
		t.Fatalf("expected middle operation retried to exhaustion, got %d calls", remoteSvc.cancelCalls)
	}
	if remoteSvc.updateCalls != 1 {
		t.Fatalf("expected third operation synced after the failure, got %d calls", remoteSvc.updateCalls)
	}
	if queue.PendingCount() != 0 {
		t.Fatalf("failed operation must not be requeued, got %d pending", queue.PendingCount())
	}
	if state := queue.Current(); state.Status != models.SyncError {
		t.Fatalf("expected error state after partial drain, got %+v", state)
	}
	if got := store.bookingStatus(t, "b1"); got != models.StatusConfirmed {
		t.Fatalf("expected first booking confirmed, got %s", got)
	}
}

func TestConfirmCreateAdoptsServerID(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{serverID: "srv-42"}
	monitor := newStubMonitor(false)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "local-1", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)
	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))

	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	if _, err := store.GetBooking(context.Background(), "local-1"); err == nil {
		t.Fatal("expected local id to be replaced")
	}
	if got := store.bookingStatus(t, "srv-42"); got != models.StatusConfirmed {
		t.Fatalf("expected server-side booking confirmed, got %s", got)
	}
}

func TestConfirmCreateNeverResurrectsCancelledBooking(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(false)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)
	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))

	// User cancels locally before the sync ever runs.
	_ = store.UpdateBookingStatus(context.Background(), "b1", models.StatusCancelled)

	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	if got := store.bookingStatus(t, "b1"); got != models.StatusCancelled {
		t.Fatalf("cancelled booking was resurrected to %s", got)
	}
}

func TestApplicationErrorIsNotRetried(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{cancelErr: &remote.APIError{Message: "booking already completed"}}
	monitor := newStubMonitor(true)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusCancelled}
	_ = store.SaveBooking(context.Background(), &booking)

	monitor.setOnline(false)
	queue.Enqueue(context.Background(), models.NewCancelBooking("b1"))
	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	if remoteSvc.cancelCalls != 1 {
		t.Fatalf("expected single attempt for application error, got %d", remoteSvc.cancelCalls)
	}
	if state := queue.Current(); state.Status != models.SyncError {
		t.Fatalf("expected error state after permanent failure, got %+v", state)
	}
}

func TestTransientErrorRetriedToExhaustion(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{createErr: syscall.ECONNREFUSED}
	monitor := newStubMonitor(true)
	queue := newTestQueue(store, remoteSvc, monitor)

	booking := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &booking)

	monitor.setOnline(false)
	queue.Enqueue(context.Background(), models.NewCreateBooking(booking))
	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	if remoteSvc.createCalls != 3 {
		t.Fatalf("expected 3 attempts before giving up, got %d", remoteSvc.createCalls)
	}
	if got := store.bookingStatus(t, "b1"); got != models.StatusPending {
		t.Fatalf("expected booking to stay pending after failed sync, got %s", got)
	}
}

func TestDrainRefreshesRoomsAndUser(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{
		rooms: []models.Room{{ID: "room1", Name: "Standard Room"}},
		user:  &models.User{ID: "user1", Name: "John Doe"},
	}
	monitor := newStubMonitor(true)
	queue := newTestQueue(store, remoteSvc, monitor)

	queue.DrainAll(context.Background())

	if remoteSvc.listCalls != 1 || remoteSvc.userCalls != 1 {
		t.Fatalf("expected one rooms and one user refresh, got %d/%d", remoteSvc.listCalls, remoteSvc.userCalls)
	}
	if _, err := store.GetRoom(context.Background(), "room1"); err != nil {
		t.Fatalf("expected refreshed room in store: %v", err)
	}
	if _, err := store.GetUser(context.Background(), "user1"); err != nil {
		t.Fatalf("expected refreshed user in store: %v", err)
	}
}

func TestEnqueueDuringDrainLandsInNextDrain(t *testing.T) {
	store := newFakeStore()
	remoteSvc := &fakeRemote{}
	monitor := newStubMonitor(false)
	queue := newTestQueue(store, remoteSvc, monitor)

	first := models.Booking{ID: "b1", UserID: "user1", Status: models.StatusPending}
	second := models.Booking{ID: "b2", UserID: "user1", Status: models.StatusPending}
	_ = store.SaveBooking(context.Background(), &first)
	_ = store.SaveBooking(context.Background(), &second)

	queue.Enqueue(context.Background(), models.NewCreateBooking(first))
	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	monitor.setOnline(false)
	queue.Enqueue(context.Background(), models.NewCreateBooking(second))
	if queue.PendingCount() != 1 {
		t.Fatalf("expected 1 pending op, got %d", queue.PendingCount())
	}

	monitor.setOnline(true)
	queue.DrainAll(context.Background())

	if queue.PendingCount() != 0 {
		t.Fatalf("expected empty queue, got %d", queue.PendingCount())
	}
	if remoteSvc.createCalls != 2 {
		t.Fatalf("expected both creates synced, got %d", remoteSvc.createCalls)
	}
}
