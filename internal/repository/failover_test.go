package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"roombooker/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetSession(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockRepo) SetSession(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockRepo) ClearSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverSessionRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverSessionRepository(primary, fallback, &logger)
	ctx := context.Background()

	session := &models.Session{UserID: "user1"}

	t.Run("uses primary while healthy", func(t *testing.T) {
		primary.On("GetSession", ctx).Return(session, nil).Once()

		got, err := repo.GetSession(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "user1", got.UserID)
		primary.AssertExpectations(t)
	})

	t.Run("falls back when primary fails", func(t *testing.T) {
		primary.On("GetSession", ctx).Return(nil, errors.New("redis down")).Once()
		fallback.On("GetSession", ctx).Return(session, nil).Once()

		got, err := repo.GetSession(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "user1", got.UserID)
		fallback.AssertExpectations(t)
	})

	t.Run("stays on fallback inside recovery window", func(t *testing.T) {
		fallback.On("GetSession", ctx).Return(session, nil).Once()

		got, err := repo.GetSession(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "user1", got.UserID)
		// Primary must not be probed again immediately.
		primary.AssertNumberOfCalls(t, "GetSession", 2)
	})
}

func TestFailoverSetKeepsFallbackWarm(t *testing.T) {
	primary := new(mockRepo)
	fallback := NewMemorySessionRepository(time.Hour)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverSessionRepository(primary, fallback, &logger)
	ctx := context.Background()

	session := &models.Session{UserID: "user1"}
	primary.On("SetSession", ctx, session).Return(nil).Once()

	assert.NoError(t, repo.SetSession(ctx, session))

	// The fallback received the write too, so a later failover still sees it.
	got, err := fallback.GetSession(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "user1", got.UserID)
}

func TestFailoverRateLimit(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverSessionRepository(primary, fallback, &logger)
	ctx := context.Background()

	primary.On("CheckRateLimit", ctx, "client1", 10, time.Minute).
		Return(false, errors.New("redis down")).Once()
	fallback.On("CheckRateLimit", ctx, "client1", 10, time.Minute).
		Return(true, nil).Once()

	allowed, err := repo.CheckRateLimit(ctx, "client1", 10, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed)
	fallback.AssertExpectations(t)
}
