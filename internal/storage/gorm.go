package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
)

// GormStore keeps the session in the local stored_sessions table.
type GormStore struct {
	db     *gorm.DB
	key    string
	sealer *Sealer
}

func NewGormStore(db *gorm.DB, key string, sealer *Sealer) *GormStore {
	return &GormStore{db: db, key: key, sealer: sealer}
}

func (s *GormStore) Load(ctx context.Context) (*models.Session, error) {
	var row models.StoredSession
	err := s.db.WithContext(ctx).Where("key = ?", s.key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decode(s.sealer, row.Payload)
}

func (s *GormStore) Save(ctx context.Context, session *models.Session) error {
	payload, err := encode(s.sealer, session)
	if err != nil {
		return err
	}
	row := models.StoredSession{
		Key:       s.key,
		Payload:   payload,
		UserID:    session.User.ID,
		ExpiresAt: session.ExpiresAt,
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "user_id", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("key = ?", s.key).Delete(&models.StoredSession{}).Error; err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
