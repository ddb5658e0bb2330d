package repository

import (
	"context"
	"sync"
	"time"

	"roombooker/internal/models"
)

// MemorySessionRepository keeps the active session in process memory. Used
// as the failover target when Redis is down and in tests.
type MemorySessionRepository struct {
	mu         sync.RWMutex
	session    *models.Session
	expiresAt  time.Time
	ttl        time.Duration
	rateLimits sync.Map
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{ttl: ttl}
}

func (r *MemorySessionRepository) GetSession(ctx context.Context) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return nil, nil
	}
	if r.ttl > 0 && time.Now().After(r.expiresAt) {
		return nil, nil
	}
	return r.session, nil
}

func (r *MemorySessionRepository) SetSession(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = session
	r.expiresAt = time.Now().Add(r.ttl)
	return nil
}

func (r *MemorySessionRepository) ClearSession(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = nil
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
