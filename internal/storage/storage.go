package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

var (
	ErrCorrupt = errors.New("stored session is unreadable")
)

// Store persists the single gateway session of this client so it survives a
// restart. Load returns nil, nil when nothing is stored.
type Store interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Clear(ctx context.Context) error
}

func encode(sealer *Sealer, session *models.Session) ([]byte, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return sealer.Seal(raw)
}

func decode(sealer *Sealer, payload []byte) (*models.Session, error) {
	raw, err := sealer.Open(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &session, nil
}
