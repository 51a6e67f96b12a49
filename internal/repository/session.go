package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
)

var ErrSessionNotFound = fmt.Errorf("session %w", apperror.ErrNotFound)

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}

// memSession keeps sessions in process memory only; they die with the process.
type memSession struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

func NewSessionRepository() SessionRepository {
	return &memSession{
		sessions: make(map[string]*entity.Session),
	}
}

func (that *memSession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = session

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

// DeleteIdle drops every session last seen before the given time and reports how many went.
func (that *memSession) DeleteIdle(_ context.Context, before time.Time) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	deleted := 0
	for id, session := range that.sessions {
		if session.LastSeen().Before(before) {
			delete(that.sessions, id)
			deleted++
		}
	}

	return deleted, nil
}
