package database

import (
	"context"
	"fmt"
	"time"

	"roombooker/internal/models"
)

// SeedDemoData populates the room catalog and demo users when the store is
// empty, so a fresh install has browsable data before the first successful
// sync. It is a no-op when rooms already exist.
func (d *DB) SeedDemoData(ctx context.Context) error {
	count, err := d.CountRooms(ctx)
	if err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := d.SaveRooms(ctx, demoRooms()); err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}
	for _, user := range demoUsers() {
		u := user
		if err := d.SaveUser(ctx, &u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	return nil
}

func demoRooms() []models.Room {
	return []models.Room{
		{
			ID:            "room1",
			Name:          "Deluxe Ocean View",
			Description:   "Spacious room with a stunning ocean view, perfect for a relaxing vacation. Features modern amenities and premium bedding.",
			Type:          models.RoomTypeDeluxe,
			PricePerNight: 199.99,
			HotelName:     "Luxury Beach Resort",
			Location:      "Miami Beach, FL",
			Rating:        4.7,
			ReviewCount:   128,
			Images: []string{
				"https://example.com/room1_1.jpg",
				"https://example.com/room1_2.jpg",
				"https://example.com/room1_3.jpg",
			},
			Amenities: []string{
				"Free WiFi", "Air Conditioning", "Ocean View", "King Size Bed",
				"Private Balcony", "Minibar", "Room Service", "Flat Screen TV",
			},
			MaxGuests:          2,
			Size:               "450 sq.ft",
			BedType:            "1 King Bed",
			IsAvailable:        true,
			CancellationPolicy: "Free cancellation until 24 hours before check-in",
		},
		{
			ID:            "room2",
			Name:          "Executive Suite",
			Description:   "Luxurious suite with separate living area and premium amenities. Ideal for business travelers or couples seeking extra space.",
			Type:          models.RoomTypeSuite,
			PricePerNight: 299.99,
			HotelName:     "Grand City Hotel",
			Location:      "New York, NY",
			Rating:        4.8,
			ReviewCount:   215,
			Images: []string{
				"https://example.com/room2_1.jpg",
				"https://example.com/room2_2.jpg",
			},
			Amenities: []string{
				"Free WiFi", "Air Conditioning", "City View", "King Size Bed",
				"Living Area", "Work Desk", "Minibar", "Room Service", "Premium Toiletries",
			},
			MaxGuests:          3,
			Size:               "650 sq.ft",
			BedType:            "1 King Bed, 1 Sofa Bed",
			IsAvailable:        true,
			CancellationPolicy: "Free cancellation until 48 hours before check-in",
		},
		{
			ID:            "room3",
			Name:          "Standard Room",
			Description:   "Comfortable and affordable room perfect for budget-conscious travelers. Clean, modern, and well-maintained.",
			Type:          models.RoomTypeStandard,
			PricePerNight: 89.99,
			HotelName:     "Comfort Inn",
			Location:      "Chicago, IL",
			Rating:        4.2,
			ReviewCount:   89,
			Images:        []string{"https://example.com/room3_1.jpg"},
			Amenities: []string{
				"Free WiFi", "Air Conditioning", "Queen Size Bed", "TV", "Basic Toiletries",
			},
			MaxGuests:          2,
			Size:               "300 sq.ft",
			BedType:            "1 Queen Bed",
			IsAvailable:        true,
			CancellationPolicy: "Free cancellation until 24 hours before check-in",
		},
		{
			ID:            "room4",
			Name:          "Presidential Suite",
			Description:   "Ultimate luxury experience with panoramic views, premium services, and exclusive amenities. Perfect for special occasions.",
			Type:          models.RoomTypePresidential,
			PricePerNight: 899.99,
			HotelName:     "Royal Palace Hotel",
			Location:      "Las Vegas, NV",
			Rating:        4.9,
			ReviewCount:   45,
			Images: []string{
				"https://example.com/room4_1.jpg",
				"https://example.com/room4_2.jpg",
				"https://example.com/room4_3.jpg",
			},
			Amenities: []string{
				"Free WiFi", "Air Conditioning", "Panoramic View", "King Size Bed",
				"Living Area", "Dining Area", "Private Butler", "Champagne",
				"Jacuzzi", "Premium Sound System", "24/7 Room Service",
			},
			MaxGuests:          4,
			Size:               "1200 sq.ft",
			BedType:            "1 King Bed, 2 Queen Beds",
			IsAvailable:        true,
			CancellationPolicy: "Free cancellation until 72 hours before check-in",
		},
	}
}

func demoUsers() []models.User {
	return []models.User{
		{
			ID:          "user1",
			Name:        "John Doe",
			Email:       "john.doe@example.com",
			Phone:       "+1234567890",
			MemberSince: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Preferences: models.UserPreferences{
				Language:             "en",
				Currency:             "USD",
				NotificationsEnabled: true,
			},
		},
		{
			ID:          "user2",
			Name:        "Jane Smith",
			Email:       "jane.smith@example.com",
			Phone:       "+1234567891",
			MemberSince: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
			Preferences: models.UserPreferences{
				Language:             "en",
				Currency:             "USD",
				NotificationsEnabled: true,
				DarkMode:             true,
			},
		},
	}
}
