package storage

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

// MemoryStore keeps the session for the life of the process only.
type MemoryStore struct {
	mu      sync.Mutex
	sealer  *Sealer
	payload []byte
}

func NewMemoryStore(sealer *Sealer) *MemoryStore {
	return &MemoryStore{sealer: sealer}
}

func (m *MemoryStore) Load(_ context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, nil
	}
	return decode(m.sealer, m.payload)
}

func (m *MemoryStore) Save(_ context.Context, session *models.Session) error {
	payload, err := encode(m.sealer, session)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.payload = payload
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.payload = nil
	m.mu.Unlock()
	return nil
}
