package models

import "time"

type Booking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	RoomID          string    `json:"room_id"`
	RoomName        string    `json:"room_name"`
	HotelName       string    `json:"hotel_name"`
	RoomType        string    `json:"room_type"`
	RoomImage       string    `json:"room_image,omitempty"`
	CheckInDate     string    `json:"check_in_date"`  // YYYY-MM-DD
	CheckOutDate    string    `json:"check_out_date"` // YYYY-MM-DD
	Guests          int       `json:"guests"`
	TotalPrice      float64   `json:"total_price"`
	Status          string    `json:"status"` // pending, confirmed, cancelled, completed
	SpecialRequests string    `json:"special_requests,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Nights returns the number of nights between check-in and check-out,
// zero when the dates do not parse or the range is inverted.
func (b *Booking) Nights() int {
	in, err := time.Parse(DateLayout, b.CheckInDate)
	if err != nil {
		return 0
	}
	out, err := time.Parse(DateLayout, b.CheckOutDate)
	if err != nil {
		return 0
	}
	nights := int(out.Sub(in).Hours() / 24)
	if nights < 0 {
		return 0
	}
	return nights
}

// IsActive reports whether the booking still occupies the room.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}
