// Package session stores the per-admin conversational cursor. A session that
// sees no activity for the configured window soft-resets to idle on the next
// read; pending input is simply forgotten.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Memory is the in-process session store used when no REDIS_URL is set.
type Memory struct {
	mu       sync.Mutex
	sessions map[int64]domain.Session
	ttl      time.Duration
	clock    clockwork.Clock
}

func NewMemory(ttl time.Duration, clock clockwork.Clock) *Memory {
	return &Memory{
		sessions: make(map[int64]domain.Session),
		ttl:      ttl,
		clock:    clock,
	}
}

// Get returns the admin's session, or an idle one when none exists or the
// stored session has been inactive past the window. Expired entries are
// removed on read.
func (m *Memory) Get(_ context.Context, adminID int64) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[adminID]
	if !ok {
		return domain.IdleSession(), nil
	}
	if m.clock.Since(s.UpdatedAt) > m.ttl {
		delete(m.sessions, adminID)
		return domain.IdleSession(), nil
	}
	return s, nil
}

func (m *Memory) Put(_ context.Context, adminID int64, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.UpdatedAt = m.clock.Now()
	m.sessions[adminID] = s
	return nil
}

func (m *Memory) Delete(_ context.Context, adminID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, adminID)
	return nil
}
