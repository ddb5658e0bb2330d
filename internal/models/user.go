package models

import "time"

type User struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	ProfileImage string          `json:"profile_image,omitempty"`
	MemberSince  time.Time       `json:"member_since"`
	Preferences  UserPreferences `json:"preferences"`
}

type UserPreferences struct {
	Language             string `json:"language"`
	Currency             string `json:"currency"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	DarkMode             bool   `json:"dark_mode"`
}

// Session is the single active user session. At most one row exists in the
// local store at any time.
type Session struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
