package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"roombooker/internal/database"
	"roombooker/internal/models"
	"roombooker/internal/service"
)

var (
	errMissingAPIKey = errors.New("missing api key header")
	errInvalidAPIKey = errors.New("invalid api key")
	errRateLimited   = errors.New("rate limit exceeded")
)

// dataStateResponse is the JSON shape for every read endpoint: the current
// data plus the offline/sync status it was served under.
type dataStateResponse[T any] struct {
	Status  string `json:"status"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Pending int    `json:"pending_operations"`
}

func toResponse[T any](state models.DataState[T], pending int) dataStateResponse[T] {
	return dataStateResponse[T]{
		Status:  state.Status,
		Data:    state.Data,
		Message: state.Message,
		Pending: pending,
	}
}

// handleRooms serves GET /api/v1/rooms with optional type, q, min_price and
// max_price filters.
func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	q := r.URL.Query()

	var state models.DataState[[]models.Room]
	switch {
	case q.Get("q") != "":
		stream, cancel := s.aggregator.WatchRoomSearch(ctx, q.Get("q"))
		state = <-stream
		cancel()
	case q.Get("type") != "":
		roomType := strings.ToLower(q.Get("type"))
		if !models.ValidRoomType(roomType) {
			writeError(w, http.StatusBadRequest, "unknown room type")
			return
		}
		stream, cancel := s.aggregator.WatchRoomsByType(ctx, roomType)
		state = <-stream
		cancel()
	case q.Get("min_price") != "" || q.Get("max_price") != "":
		min, _ := strconv.ParseFloat(q.Get("min_price"), 64)
		max, err := strconv.ParseFloat(q.Get("max_price"), 64)
		if err != nil || max == 0 {
			max = 1 << 20
		}
		state = s.aggregator.GetRoomsByPriceRange(ctx, min, max)
	default:
		stream, cancel := s.aggregator.WatchAllRooms(ctx)
		state = <-stream
		cancel()
	}

	writeJSON(w, http.StatusOK, toResponse(state, s.aggregator.PendingOperationCount()))
}

// handleRoomByID serves GET /api/v1/rooms/{id}.
func (s *HTTPServer) handleRoomByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/rooms/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "room id is required")
		return
	}

	state := s.aggregator.GetRoom(r.Context(), id)
	if state.Status == models.DataError {
		writeError(w, http.StatusNotFound, state.Message)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(state, s.aggregator.PendingOperationCount()))
}

// handleBookings serves GET /api/v1/bookings?user_id= and POST /api/v1/bookings.
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			session, err := s.users.CurrentSession(r.Context())
			if err != nil {
				writeError(w, http.StatusBadRequest, "user_id is required")
				return
			}
			userID = session.UserID
		}
		stream, cancel := s.aggregator.WatchUserBookings(r.Context(), userID)
		state := <-stream
		cancel()
		writeJSON(w, http.StatusOK, toResponse(state, s.aggregator.PendingOperationCount()))

	case http.MethodPost:
		var req service.BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		state, err := s.bookings.CreateBooking(r.Context(), req)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "room not found")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		code := http.StatusCreated
		if state.Status == models.DataError {
			code = http.StatusInternalServerError
		}
		writeJSON(w, code, toResponse(state, s.aggregator.PendingOperationCount()))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleBookingByID serves GET and DELETE /api/v1/bookings/{id}.
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "booking id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		booking, err := s.bookings.GetBooking(r.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "booking not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, booking)

	case http.MethodPut:
		var booking models.Booking
		if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		booking.ID = id
		state, err := s.bookings.UpdateBooking(r.Context(), &booking)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "booking not found")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toResponse(state, s.aggregator.PendingOperationCount()))

	case http.MethodDelete:
		state, err := s.bookings.CancelBooking(r.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				writeError(w, http.StatusNotFound, "booking not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toResponse(state, s.aggregator.PendingOperationCount()))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSync serves POST /api/v1/sync as a one-shot drain trigger.
func (s *HTTPServer) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.aggregator.SyncNow(r.Context())
	writeJSON(w, http.StatusAccepted, map[string]any{
		"triggered":          true,
		"pending_operations": s.aggregator.PendingOperationCount(),
	})
}

// handleSyncStatus serves GET /api/v1/sync/status for UI indicators.
func (s *HTTPServer) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	state := s.aggregator.SyncStatus()
	writeJSON(w, http.StatusOK, map[string]any{
		"online":             s.aggregator.IsOnline(),
		"sync_status":        state.Status,
		"sync_message":       state.Message,
		"pending_operations": s.aggregator.PendingOperationCount(),
	})
}

// handleExport serves GET /api/v1/export?user_id= and returns the report path.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	path, err := s.exporter.UserBookings(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
