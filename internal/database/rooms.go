package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"roombooker/internal/models"
)

const roomColumns = `id, name, description, type, price_per_night, hotel_name, location,
            rating, review_count, images, amenities, max_guests, size, bed_type,
            is_available, cancellation_policy, latitude, longitude`

func (db *DB) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	room, err := scanRoom(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (db *DB) GetAllRooms(ctx context.Context) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms ORDER BY hotel_name, name`
	return db.queryRooms(ctx, query)
}

func (db *DB) GetRoomsByType(ctx context.Context, roomType string) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE type = ? ORDER BY price_per_night`
	return db.queryRooms(ctx, query, roomType)
}

func (db *DB) GetRoomsByPriceRange(ctx context.Context, min, max float64) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE price_per_night BETWEEN ? AND ? ORDER BY price_per_night`
	return db.queryRooms(ctx, query, min, max)
}

func (db *DB) SearchRooms(ctx context.Context, search string) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms
              WHERE name LIKE ? OR description LIKE ? OR hotel_name LIKE ? OR location LIKE ?
              ORDER BY rating DESC`
	pattern := "%" + search + "%"
	return db.queryRooms(ctx, query, pattern, pattern, pattern, pattern)
}

func (db *DB) SaveRoom(ctx context.Context, room *models.Room) error {
	images, err := json.Marshal(room.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	amenities, err := json.Marshal(room.Amenities)
	if err != nil {
		return fmt.Errorf("encode amenities: %w", err)
	}

	query := `INSERT INTO rooms (` + roomColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                name=excluded.name, description=excluded.description, type=excluded.type,
                price_per_night=excluded.price_per_night, hotel_name=excluded.hotel_name,
                location=excluded.location, rating=excluded.rating,
                review_count=excluded.review_count, images=excluded.images,
                amenities=excluded.amenities, max_guests=excluded.max_guests,
                size=excluded.size, bed_type=excluded.bed_type,
                is_available=excluded.is_available,
                cancellation_policy=excluded.cancellation_policy,
                latitude=excluded.latitude, longitude=excluded.longitude`
	_, err = db.db.ExecContext(ctx, query,
		room.ID, room.Name, room.Description, room.Type, room.PricePerNight,
		room.HotelName, room.Location, room.Rating, room.ReviewCount,
		string(images), string(amenities), room.MaxGuests, room.Size, room.BedType,
		room.IsAvailable, room.CancellationPolicy, room.Latitude, room.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}
	return nil
}

func (db *DB) SaveRooms(ctx context.Context, rooms []models.Room) error {
	for i := range rooms {
		if err := db.SaveRoom(ctx, &rooms[i]); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) DeleteRoom(ctx context.Context, id string) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

func (db *DB) CountRooms(ctx context.Context) (int, error) {
	var count int
	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return count, nil
}

func (db *DB) queryRooms(ctx context.Context, query string, args ...interface{}) ([]models.Room, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var room models.Room
	var description, location, size, bedType, policy sql.NullString
	var images, amenities sql.NullString
	err := row.Scan(
		&room.ID, &room.Name, &description, &room.Type, &room.PricePerNight,
		&room.HotelName, &location, &room.Rating, &room.ReviewCount,
		&images, &amenities, &room.MaxGuests, &size, &bedType,
		&room.IsAvailable, &policy, &room.Latitude, &room.Longitude,
	)
	if err != nil {
		return nil, err
	}
	room.Description = description.String
	room.Location = location.String
	room.Size = size.String
	room.BedType = bedType.String
	room.CancellationPolicy = policy.String
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &room.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	if amenities.Valid && amenities.String != "" {
		if err := json.Unmarshal([]byte(amenities.String), &room.Amenities); err != nil {
			return nil, fmt.Errorf("decode amenities: %w", err)
		}
	}
	return &room, nil
}
