package state

import (
	"context"
	"sync"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

// Memory keeps the durable state in process memory. Used in tests and when
// no DATABASE_URL is configured; state then does not survive restarts.
type Memory struct {
	mu       sync.RWMutex
	settings domain.Settings
	records  []domain.AlertRecord
	snapshot *domain.Snapshot
}

func NewMemory() *Memory {
	return &Memory{settings: domain.DefaultSettings()}
}

func (m *Memory) Settings(_ context.Context) (domain.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

func (m *Memory) UpdateSettings(_ context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated, err := m.settings.Apply(patch)
	if err != nil {
		return m.settings, err
	}
	m.settings = updated
	return updated, nil
}

func (m *Memory) AlertRecords(_ context.Context) ([]domain.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.AlertRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) SaveAlertRecords(_ context.Context, records []domain.AlertRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make([]domain.AlertRecord, len(records))
	copy(m.records, records)
	return nil
}

func (m *Memory) Snapshot(_ context.Context) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot, nil
}

func (m *Memory) SaveSnapshot(_ context.Context, snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snap
	return nil
}
