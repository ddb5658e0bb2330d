package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"roombooker/internal/models"

	"github.com/redis/go-redis/v9"
)

// APIError is an application-level failure: the service answered but
// rejected the request. Never retried by the sync layer.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "remote service error"
	}
	return e.Message
}

// envelope is the wire wrapper for every remote response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client talks to the remote booking API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
}

// NewClient constructs a client with baseURL and API key.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UseRedisCache configures optional Redis caching for GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// ListRooms returns the full room catalog.
func (c *Client) ListRooms(ctx context.Context) ([]models.Room, error) {
	endpoint := fmt.Sprintf("%s/api/v1/rooms", c.baseURL)
	cacheKey := "rooms"
	var rooms []models.Room

	if c.readCache(ctx, cacheKey, &rooms) {
		return rooms, nil
	}

	if err := c.doGet(ctx, endpoint, &rooms); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, rooms)
	return rooms, nil
}

// GetRoom fetches a single room by id.
func (c *Client) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	endpoint := fmt.Sprintf("%s/api/v1/rooms/%s", c.baseURL, url.PathEscape(id))
	var room models.Room
	if err := c.doGet(ctx, endpoint, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// createBookingRequest is the create payload; the server issues the id.
type createBookingRequest struct {
	RoomID          string  `json:"room_id"`
	UserID          string  `json:"user_id"`
	CheckInDate     string  `json:"check_in_date"`
	CheckOutDate    string  `json:"check_out_date"`
	Guests          int     `json:"guests"`
	TotalPrice      float64 `json:"total_price"`
	SpecialRequests string  `json:"special_requests,omitempty"`
}

// CreateBooking submits a booking and returns the server-issued id.
func (c *Client) CreateBooking(ctx context.Context, booking *models.Booking) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bookings", c.baseURL)
	body := createBookingRequest{
		RoomID:          booking.RoomID,
		UserID:          booking.UserID,
		CheckInDate:     booking.CheckInDate,
		CheckOutDate:    booking.CheckOutDate,
		Guests:          booking.Guests,
		TotalPrice:      booking.TotalPrice,
		SpecialRequests: booking.SpecialRequests,
	}
	var id string
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, &id); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateBooking replaces the remote copy of a booking.
func (c *Client) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	endpoint := fmt.Sprintf("%s/api/v1/bookings/%s", c.baseURL, url.PathEscape(booking.ID))
	return c.doJSON(ctx, http.MethodPut, endpoint, booking, nil)
}

// CancelBooking cancels the remote booking by id.
func (c *Client) CancelBooking(ctx context.Context, bookingID string) error {
	endpoint := fmt.Sprintf("%s/api/v1/bookings/%s", c.baseURL, url.PathEscape(bookingID))
	return c.doJSON(ctx, http.MethodDelete, endpoint, nil, nil)
}

// GetCurrentUser fetches the profile bound to the API key.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	endpoint := fmt.Sprintf("%s/api/v1/users/me", c.baseURL)
	var user models.User
	if err := c.doGet(ctx, endpoint, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, "remote:"+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, "remote:"+key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reader *strings.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = strings.NewReader(string(data))
	} else {
		reader = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return &APIError{Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
