package models

import "time"

// StoredSession is the sealed, persisted copy of the last gateway session so
// it can be restored at startup.
type StoredSession struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Payload   []byte    `gorm:"type:bytea;not null" json:"-"`
	UserID    string    `gorm:"size:64;index" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
