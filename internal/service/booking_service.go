package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombooker/internal/domain"
	"roombooker/internal/events"
	"roombooker/internal/models"
	"roombooker/internal/offline"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrPastCheckIn      = errors.New("check-in date is in the past")
	ErrInvalidDateRange = errors.New("check-out must be after check-in")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrTooManyGuests    = errors.New("guest count exceeds room capacity")
	ErrRoomUnavailable  = errors.New("room is not available")
)

// BookingService is the booking use-case layer: it validates requests,
// prices the stay and builds the optimistic local booking before handing it
// to the offline aggregator.
type BookingService struct {
	aggregator *offline.Aggregator
	store      domain.LocalStore
	eventBus   domain.EventPublisher
	logger     *zerolog.Logger
}

func NewBookingService(aggregator *offline.Aggregator, store domain.LocalStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		aggregator: aggregator,
		store:      store,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// BookingRequest carries everything needed to create a booking.
type BookingRequest struct {
	UserID          string `json:"user_id"`
	RoomID          string `json:"room_id"`
	CheckInDate     string `json:"check_in_date"`
	CheckOutDate    string `json:"check_out_date"`
	Guests          int    `json:"guests"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// ValidateDates checks the calendar range: parseable, not in the past,
// check-out strictly after check-in.
func (s *BookingService) ValidateDates(checkIn, checkOut string) error {
	in, err := time.Parse(models.DateLayout, checkIn)
	if err != nil {
		return ErrInvalidDate
	}
	out, err := time.Parse(models.DateLayout, checkOut)
	if err != nil {
		return ErrInvalidDate
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.Before(today) {
		return ErrPastCheckIn
	}
	if !out.After(in) {
		return ErrInvalidDateRange
	}
	return nil
}

// CalculateTotal prices the stay at the room's nightly rate.
func (s *BookingService) CalculateTotal(room *models.Room, checkIn, checkOut string) (float64, error) {
	in, err := time.Parse(models.DateLayout, checkIn)
	if err != nil {
		return 0, ErrInvalidDate
	}
	out, err := time.Parse(models.DateLayout, checkOut)
	if err != nil {
		return 0, ErrInvalidDate
	}
	nights := int(out.Sub(in).Hours() / 24)
	if nights <= 0 {
		return 0, ErrInvalidDateRange
	}
	return float64(nights) * room.PricePerNight, nil
}

// CreateBooking validates the request, builds the Pending booking with a
// client-issued id and hands it to the aggregator (local-first, then sync).
func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (models.DataState[string], error) {
	var zero models.DataState[string]

	if err := s.ValidateDates(req.CheckInDate, req.CheckOutDate); err != nil {
		return zero, err
	}

	room, err := s.store.GetRoom(ctx, req.RoomID)
	if err != nil {
		return zero, fmt.Errorf("load room %s: %w", req.RoomID, err)
	}
	if !room.IsAvailable {
		return zero, ErrRoomUnavailable
	}
	if req.Guests < 1 {
		req.Guests = 1
	}
	if req.Guests > room.MaxGuests {
		return zero, ErrTooManyGuests
	}

	total, err := s.CalculateTotal(room, req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return zero, err
	}

	booking := &models.Booking{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		RoomID:          room.ID,
		RoomName:        room.Name,
		HotelName:       room.HotelName,
		RoomType:        room.Type,
		CheckInDate:     req.CheckInDate,
		CheckOutDate:    req.CheckOutDate,
		Guests:          req.Guests,
		TotalPrice:      total,
		Status:          models.StatusPending,
		SpecialRequests: req.SpecialRequests,
		CreatedAt:       time.Now(),
	}
	if len(room.Images) > 0 {
		booking.RoomImage = room.Images[0]
	}

	state := s.aggregator.CreateBooking(ctx, booking)
	if state.Status == models.DataError {
		return state, nil
	}

	s.publishEvent(events.EventBookingCreated, booking, "")
	s.logger.Info().Str("booking_id", booking.ID).Str("room_id", room.ID).
		Str("user_id", req.UserID).Float64("total", total).Msg("Booking created")

	return state, nil
}

// UpdateBooking applies an edited booking locally and queues the update.
func (s *BookingService) UpdateBooking(ctx context.Context, booking *models.Booking) (models.DataState[string], error) {
	var zero models.DataState[string]

	if err := s.ValidateDates(booking.CheckInDate, booking.CheckOutDate); err != nil {
		return zero, err
	}
	if _, err := s.store.GetBooking(ctx, booking.ID); err != nil {
		return zero, fmt.Errorf("load booking %s: %w", booking.ID, err)
	}

	return s.aggregator.UpdateBooking(ctx, booking), nil
}

// CancelBooking optimistically cancels locally and queues the cancel.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (models.DataState[string], error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return models.DataState[string]{}, fmt.Errorf("load booking %s: %w", bookingID, err)
	}

	state := s.aggregator.CancelBooking(ctx, bookingID)
	if state.Status != models.DataError {
		s.publishEvent(events.EventBookingCancelled, booking, "")
	}
	return state, nil
}

// GetBooking reads a single booking from the local store.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, errMsg string) {
	if s.eventBus == nil {
		return
	}
	_ = s.eventBus.PublishJSON(eventType, events.BookingEventPayload{
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		RoomID:       booking.RoomID,
		RoomName:     booking.RoomName,
		Status:       booking.Status,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
		Error:        errMsg,
		OccurredAt:   time.Now(),
	})
}
