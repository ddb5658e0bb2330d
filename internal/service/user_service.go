package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombooker/internal/database"
	"roombooker/internal/domain"
	"roombooker/internal/models"

	"github.com/rs/zerolog"
)

var ErrNoActiveSession = errors.New("no active session")

// UserService owns the single-session concept: the durable copy lives in
// the local store, a cached copy in the session repository.
type UserService struct {
	store    domain.LocalStore
	sessions domain.SessionRepository
	logger   *zerolog.Logger
}

func NewUserService(store domain.LocalStore, sessions domain.SessionRepository, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:    store,
		sessions: sessions,
		logger:   logger,
	}
}

// SignIn records userID as the active session, replacing any previous one.
func (s *UserService) SignIn(ctx context.Context, userID string) error {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("load user %s: %w", userID, err)
	}

	session := &models.Session{UserID: userID, CreatedAt: time.Now()}
	if err := s.store.SetSession(ctx, session); err != nil {
		return err
	}
	if err := s.sessions.SetSession(ctx, session); err != nil {
		s.logger.Warn().Err(err).Msg("Session cache write failed, store copy is authoritative")
	}
	return nil
}

// SignOut clears the active session everywhere.
func (s *UserService) SignOut(ctx context.Context) error {
	if err := s.sessions.ClearSession(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Session cache clear failed")
	}
	return s.store.ClearSession(ctx)
}

// CurrentSession returns the active session, preferring the cache.
func (s *UserService) CurrentSession(ctx context.Context) (*models.Session, error) {
	session, err := s.sessions.GetSession(ctx)
	if err == nil && session != nil {
		return session, nil
	}
	if err != nil {
		s.logger.Debug().Err(err).Msg("Session cache read failed, falling back to store")
	}

	session, err = s.store.GetSession(ctx)
	if err != nil {
		if errors.Is(err, database.ErrSessionMissing) {
			return nil, ErrNoActiveSession
		}
		return nil, err
	}
	return session, nil
}

// CurrentUser resolves the active session to its user profile.
func (s *UserService) CurrentUser(ctx context.Context) (*models.User, error) {
	session, err := s.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, session.UserID)
}

// SaveUser persists a user profile locally.
func (s *UserService) SaveUser(ctx context.Context, user *models.User) error {
	return s.store.SaveUser(ctx, user)
}
