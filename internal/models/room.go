package models

const (
	RoomTypeStandard     = "standard"
	RoomTypeDeluxe       = "deluxe"
	RoomTypeSuite        = "suite"
	RoomTypePresidential = "presidential"
)

type Room struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Type               string   `json:"type"` // standard, deluxe, suite, presidential
	PricePerNight      float64  `json:"price_per_night"`
	HotelName          string   `json:"hotel_name"`
	Location           string   `json:"location"`
	Rating             float64  `json:"rating"`
	ReviewCount        int      `json:"review_count"`
	Images             []string `json:"images"`
	Amenities          []string `json:"amenities"`
	MaxGuests          int      `json:"max_guests"`
	Size               string   `json:"size"`
	BedType            string   `json:"bed_type"`
	IsAvailable        bool     `json:"is_available"`
	CancellationPolicy string   `json:"cancellation_policy"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
}

// ValidRoomType reports whether t is one of the known room types.
func ValidRoomType(t string) bool {
	switch t {
	case RoomTypeStandard, RoomTypeDeluxe, RoomTypeSuite, RoomTypePresidential:
		return true
	default:
		return false
	}
}
