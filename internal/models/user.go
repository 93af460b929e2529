package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"  json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// RefreshToken stores only the sha256 of the issued token.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	JTI       string    `gorm:"uniqueIndex;not null"      json:"jti"`
	TokenHash string    `gorm:"not null"                  json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"  json:"user_id"`
	ExpiresAt int64     `gorm:"not null"                  json:"expires_at"`
	Revoked   bool      `gorm:"default:false"             json:"revoked"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
