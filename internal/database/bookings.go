package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roombooker/internal/models"
)

const bookingColumns = `id, user_id, room_id, room_name, hotel_name, room_type, room_image,
            check_in_date, check_out_date, guests, total_price, status,
            special_requests, created_at, updated_at`

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC`
	return db.queryBookings(ctx, query, userID)
}

func (db *DB) GetBookingsByStatus(ctx context.Context, status string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = ? ORDER BY created_at DESC`
	return db.queryBookings(ctx, query, status)
}

// SaveBooking upserts the optimistic local copy of a booking.
func (db *DB) SaveBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	query := `INSERT INTO bookings (` + bookingColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                user_id=excluded.user_id, room_id=excluded.room_id,
                room_name=excluded.room_name, hotel_name=excluded.hotel_name,
                room_type=excluded.room_type, room_image=excluded.room_image,
                check_in_date=excluded.check_in_date, check_out_date=excluded.check_out_date,
                guests=excluded.guests, total_price=excluded.total_price,
                status=excluded.status, special_requests=excluded.special_requests,
                updated_at=excluded.updated_at`
	_, err := db.db.ExecContext(ctx, query,
		booking.ID, booking.UserID, booking.RoomID, booking.RoomName,
		booking.HotelName, booking.RoomType, booking.RoomImage,
		booking.CheckInDate, booking.CheckOutDate, booking.Guests,
		booking.TotalPrice, booking.Status, booking.SpecialRequests,
		booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	result, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceBookingID swaps a client-issued id for the server-issued one after
// a confirmed create.
func (db *DB) ReplaceBookingID(ctx context.Context, oldID, newID string) error {
	result, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET id = ?, updated_at = ? WHERE id = ?`,
		newID, time.Now(), oldID,
	)
	if err != nil {
		return fmt.Errorf("failed to replace booking id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteBooking(ctx context.Context, id string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var roomImage, requests sql.NullString
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.RoomName, &b.HotelName, &b.RoomType,
		&roomImage, &b.CheckInDate, &b.CheckOutDate, &b.Guests, &b.TotalPrice,
		&b.Status, &requests, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.RoomImage = roomImage.String
	b.SpecialRequests = requests.String
	return &b, nil
}
