package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roombooker/internal/models"
)

func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, email, phone, profile_image, member_since,
              language, currency, notifications_enabled, dark_mode
              FROM users WHERE id = ?`
	var user models.User
	var email, phone, image sql.NullString
	var memberSince sql.NullTime
	err := db.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &email, &phone, &image, &memberSince,
		&user.Preferences.Language, &user.Preferences.Currency,
		&user.Preferences.NotificationsEnabled, &user.Preferences.DarkMode,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Email = email.String
	user.Phone = phone.String
	user.ProfileImage = image.String
	user.MemberSince = memberSince.Time
	return &user, nil
}

func (db *DB) SaveUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, name, email, phone, profile_image, member_since,
                language, currency, notifications_enabled, dark_mode)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                name=excluded.name, email=excluded.email, phone=excluded.phone,
                profile_image=excluded.profile_image, member_since=excluded.member_since,
                language=excluded.language, currency=excluded.currency,
                notifications_enabled=excluded.notifications_enabled,
                dark_mode=excluded.dark_mode`
	_, err := db.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.ProfileImage,
		user.MemberSince, user.Preferences.Language, user.Preferences.Currency,
		user.Preferences.NotificationsEnabled, user.Preferences.DarkMode,
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (db *DB) GetSession(ctx context.Context) (*models.Session, error) {
	var s models.Session
	var token sql.NullString
	err := db.db.QueryRowContext(ctx,
		`SELECT user_id, token, created_at FROM session WHERE id = 1`,
	).Scan(&s.UserID, &token, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionMissing
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	s.Token = token.String
	return &s, nil
}

func (db *DB) SetSession(ctx context.Context, session *models.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	query := `INSERT INTO session (id, user_id, token, created_at) VALUES (1, ?, ?, ?)
              ON CONFLICT(id) DO UPDATE SET
                user_id=excluded.user_id, token=excluded.token, created_at=excluded.created_at`
	_, err := db.db.ExecContext(ctx, query, session.UserID, session.Token, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (db *DB) ClearSession(ctx context.Context) error {
	_, err := db.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
