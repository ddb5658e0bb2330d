package models

import "time"

// Sync operation kinds. A SyncOperation is an intent to replay a local
// mutation against the remote service, not a booking state of its own.
const (
	OpCreateBooking = "create_booking"
	OpUpdateBooking = "update_booking"
	OpCancelBooking = "cancel_booking"
)

// Per-operation lifecycle while it sits in the queue.
const (
	OpStateQueued    = "queued"
	OpStateInFlight  = "in_flight"
	OpStateSucceeded = "succeeded"
	OpStateFailed    = "failed"
)

// SyncOperation is consumed at most once per enqueue and leaves the queue
// only after a terminal outcome.
type SyncOperation struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // create_booking, update_booking, cancel_booking
	BookingID string    `json:"booking_id"`
	Booking   *Booking  `json:"booking,omitempty"`
	State     string    `json:"state"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCreateBooking builds a create intent carrying a snapshot of the booking.
func NewCreateBooking(b Booking) SyncOperation {
	return SyncOperation{
		Type:      OpCreateBooking,
		BookingID: b.ID,
		Booking:   &b,
		State:     OpStateQueued,
		CreatedAt: time.Now(),
	}
}

// NewUpdateBooking builds an update intent carrying a snapshot of the booking.
func NewUpdateBooking(b Booking) SyncOperation {
	return SyncOperation{
		Type:      OpUpdateBooking,
		BookingID: b.ID,
		Booking:   &b,
		State:     OpStateQueued,
		CreatedAt: time.Now(),
	}
}

// NewCancelBooking builds a cancel intent referencing the booking by id.
func NewCancelBooking(bookingID string) SyncOperation {
	return SyncOperation{
		Type:      OpCancelBooking,
		BookingID: bookingID,
		State:     OpStateQueued,
		CreatedAt: time.Now(),
	}
}
